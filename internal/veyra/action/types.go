// Package action gates every outbound effect (sending a reply, taking a
// domain action) behind a per-(user, domain, action) Policy, falling back to
// the safest possible decision when no policy exists.
package action

import "github.com/veyra-ai/veyra/internal/veyra/trust"

// Mode is the closed set of policy modes.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeDraft Mode = "draft"
	ModeAsk   Mode = "ask"
	ModeNever Mode = "never"
)

// DraftThreshold is the trust bar a draft-mode policy must clear to execute
// automatically.
const DraftThreshold = 0.85

// Policy is the stored gate for one (user, domain, action) triple.
type Policy struct {
	UserID     string
	Domain     string
	Action     string
	Mode       Mode
	TrustScore float64
}

// Decision is the outcome of evaluating a Policy.
type Decision struct {
	Mode    Mode
	Execute bool
	Trust   float64
	Reason  string
}

// Evaluate derives a Decision from an existing Policy.
func Evaluate(p Policy) Decision {
	switch p.Mode {
	case ModeAuto:
		return Decision{Mode: ModeAuto, Execute: true, Trust: p.TrustScore, Reason: "mode=auto"}
	case ModeDraft:
		execute := p.TrustScore >= DraftThreshold
		reason := "trust below draft threshold"
		if execute {
			reason = "trust clears draft threshold"
		}
		return Decision{Mode: ModeDraft, Execute: execute, Trust: p.TrustScore, Reason: reason}
	case ModeNever:
		return Decision{Mode: ModeNever, Execute: false, Trust: p.TrustScore, Reason: "mode=never"}
	case ModeAsk:
		return Decision{Mode: ModeAsk, Execute: false, Trust: p.TrustScore, Reason: "mode=ask"}
	default:
		return Decision{Mode: ModeAsk, Execute: false, Trust: 0, Reason: "no policy"}
	}
}

// noPolicyDecision is returned when no Policy row exists for the triple.
func noPolicyDecision() Decision {
	return Decision{Mode: ModeAsk, Execute: false, Trust: 0, Reason: "no policy"}
}

// ApplyOutcome folds a trust.Outcome into p's trust score using the same
// fixed delta table as the trust ledger, clamped to [0, trust.GlobalCap].
func ApplyOutcome(p Policy, outcome trust.Outcome) (Policy, error) {
	delta, err := trust.Delta(outcome)
	if err != nil {
		return p, err
	}
	next := p
	next.TrustScore = trust.Clamp(p.TrustScore+delta, trust.GlobalCap)
	return next, nil
}
