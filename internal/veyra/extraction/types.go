// Package extraction implements the three-tier signal pipeline: a free,
// instant regex pass; an escalation to a local LLM for uncertain signals;
// and a further escalation to a cloud LLM for still-uncertain, high-value
// signals.
package extraction

import "time"

// ItemType is the closed set of signal categories the pipeline extracts.
type ItemType string

const (
	ItemTask     ItemType = "task"
	ItemDeadline ItemType = "deadline"
	ItemMeeting  ItemType = "meeting"
	ItemContact  ItemType = "contact"
	ItemReminder ItemType = "reminder"
	ItemFact     ItemType = "fact"
)

// Tier identifies which stage of the pipeline produced an item. Values are
// ordered so a later tier compares greater than an earlier one.
type Tier int

const (
	TierRegex Tier = 1
	TierLocal Tier = 2
	TierCloud Tier = 3
)

// Escalation confidence thresholds and the minimum content length worth
// sending to an LLM tier.
const (
	EscalationLow          = 0.3
	EscalationHigh         = 0.6
	MinContentLengthForLLM = 20
)

// ObservationEvent is one inbound message the pipeline extracts signals
// from.
type ObservationEvent struct {
	Source              string
	SourceID            string
	UserID              string
	Author              string
	Content             string
	Timestamp           time.Time
	Context             map[string]any
	ConversationHistory []string
}

// ExtractedItem is one signal pulled out of an ObservationEvent, tagged with
// the tier that produced it.
type ExtractedItem struct {
	ItemType       ItemType
	Content        string
	Confidence     float64
	Metadata       map[string]any
	SourceEvent    ObservationEvent
	ExtractionTier Tier
}

// ToMapping renders ExtractedItem as a JSON-ready map.
func (i ExtractedItem) ToMapping() map[string]any {
	meta := i.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return map[string]any{
		"item_type":       string(i.ItemType),
		"content":         i.Content,
		"confidence":      i.Confidence,
		"metadata":        meta,
		"extraction_tier": int(i.ExtractionTier),
	}
}

// RawItem is the loosely-typed shape an LLMProvider returns; item_type
// strings outside the closed ItemType set fall back to ItemFact.
type RawItem struct {
	ItemType   string
	Content    string
	Confidence float64
	Metadata   map[string]any
}

func parseItemType(s string) ItemType {
	switch ItemType(s) {
	case ItemTask, ItemDeadline, ItemMeeting, ItemContact, ItemReminder, ItemFact:
		return ItemType(s)
	default:
		return ItemFact
	}
}
