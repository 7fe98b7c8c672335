package skill

// Metadata is a skill's static, read-only descriptor. It is built once at
// construction time and never mutated afterward; the registry treats Name as
// the skill's stable identity.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Permissions PermissionSet
	// Intents is the ordered sequence of intent strings this skill handles.
	// Order is preserved for display (e.g. /intents) but carries no routing
	// significance: the registry indexes each intent independently.
	Intents []string
}

// ToMapping renders Metadata as a JSON-ready map, the Go analogue of a
// to_dict/from_dict round-trip pair named in the spec's testable properties.
func (m Metadata) ToMapping() map[string]any {
	perms := make([]string, 0, m.Permissions.Len())
	for _, p := range m.Permissions.List() {
		perms = append(perms, string(p))
	}
	return map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"version":     m.Version,
		"permissions": perms,
		"intents":     append([]string{}, m.Intents...),
	}
}

// Request is one inbound dispatch. It is immutable once created; its
// identity is ID and its lifetime is exactly one call to Skill.Handle.
type Request struct {
	ID      string
	UserID  string
	Intent  string
	Message string
	Context map[string]any
}

// Response is always keyed to the Request that produced it.
type Response struct {
	RequestID string
	Success   bool
	Message   string
	Data      map[string]any
	Error     string
}

// ToMapping renders Response as a JSON-ready map.
func (r Response) ToMapping() map[string]any {
	data := r.Data
	if data == nil {
		data = map[string]any{}
	}
	m := map[string]any{
		"request_id": r.RequestID,
		"success":    r.Success,
		"message":    r.Message,
		"data":       data,
	}
	if r.Error != "" {
		m["error"] = r.Error
	}
	return m
}

// ErrorResponse builds a failed Response for req with the given message.
func ErrorResponse(req Request, message string) Response {
	return Response{RequestID: req.ID, Success: false, Message: message, Error: message}
}

// OKResponse builds a successful Response for req.
func OKResponse(req Request, message string, data map[string]any) Response {
	return Response{RequestID: req.ID, Success: true, Message: message, Data: data}
}

// Status is a skill's lifecycle state. The framework is the only writer; a
// skill observes its own status only incidentally through SafeInitialize's
// return value.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusError        Status = "error"
	StatusDisabled     Status = "disabled"
)

// HeartbeatAction is produced by a skill's heartbeat hook and consumed by an
// external chat adapter. Priority is an ordinal used only for ordering
// (higher values surface first); it carries no other semantics.
type HeartbeatAction struct {
	SkillName  string
	ActionType string
	UserID     string
	Data       map[string]any
	Priority   int
}

// ToMapping renders HeartbeatAction as a JSON-ready map.
func (a HeartbeatAction) ToMapping() map[string]any {
	data := a.Data
	if data == nil {
		data = map[string]any{}
	}
	return map[string]any{
		"skill_name":  a.SkillName,
		"action_type": a.ActionType,
		"user_id":     a.UserID,
		"data":        data,
		"priority":    a.Priority,
	}
}
