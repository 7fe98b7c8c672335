// Package trust maintains two independent ledgers — per (user, reply type)
// and per (user, contact) — and derives an effective trust score gating
// whether a drafted reply may be sent automatically.
package trust

import (
	"fmt"
)

// ReplyType is the closed, finite set of reply categories the ledger tracks.
// Each has a fixed ceiling above which its score may never rise.
type ReplyType string

const (
	ReplyAcknowledgment ReplyType = "acknowledgment"
	ReplyMeetingConfirm ReplyType = "meeting_confirm"
	ReplyMeetingDecline ReplyType = "meeting_decline"
	ReplyInfoRequest    ReplyType = "info_request"
	ReplyTaskUpdate     ReplyType = "task_update"
	ReplyGeneral        ReplyType = "general"
	ReplyNegotiation    ReplyType = "negotiation"
	ReplySensitive      ReplyType = "sensitive"
)

// GlobalCap is the absolute ceiling no trust score may exceed regardless of
// reply type.
const GlobalCap = 0.95

// ceilings maps each reply type to its fixed ceiling (§4.B).
var ceilings = map[ReplyType]float64{
	ReplyAcknowledgment: 0.95,
	ReplyMeetingConfirm: 0.90,
	ReplyMeetingDecline: 0.80,
	ReplyInfoRequest:    0.75,
	ReplyTaskUpdate:     0.70,
	ReplyGeneral:        0.60,
	ReplyNegotiation:    0.50,
	ReplySensitive:      0.30,
}

// Ceiling returns the fixed ceiling for rt, clamped to GlobalCap. Unknown
// reply types return 0 — they can never accrue trust.
func Ceiling(rt ReplyType) float64 {
	c, ok := ceilings[rt]
	if !ok {
		return 0
	}
	if c > GlobalCap {
		return GlobalCap
	}
	return c
}

// Outcome is the closed set of feedback signals the ledger accepts.
type Outcome string

const (
	OutcomeApproved   Outcome = "approved"
	OutcomeMinorEdit  Outcome = "minor_edit"
	OutcomeMajorEdit  Outcome = "major_edit"
	OutcomeRejected   Outcome = "rejected"
)

// deltas maps each outcome to its fixed score adjustment (§4.B).
var deltas = map[Outcome]float64{
	OutcomeApproved:  +0.05,
	OutcomeMinorEdit: -0.02,
	OutcomeMajorEdit: -0.10,
	OutcomeRejected:  -0.20,
}

// Delta returns the fixed adjustment for outcome, or an error if outcome is
// not one of the closed set of known strings.
func Delta(outcome Outcome) (float64, error) {
	d, ok := deltas[outcome]
	if !ok {
		return 0, fmt.Errorf("trust: unknown outcome %q", outcome)
	}
	return d, nil
}

// Clamp restricts v to [0, ceiling].
func Clamp(v, ceiling float64) float64 {
	if v < 0 {
		return 0
	}
	if v > ceiling {
		return ceiling
	}
	return v
}

// Score is the persisted state of one ledger row: a running trust value plus
// the interaction counters it was derived from.
type Score struct {
	Value             float64
	Approvals         int
	Rejections        int
	Edits             int
	TotalInteractions int
}

// ApprovalRate returns Approvals/TotalInteractions, or 0 when there have been
// no interactions yet (avoids a division by zero).
func (s Score) ApprovalRate() float64 {
	if s.TotalInteractions == 0 {
		return 0
	}
	return float64(s.Approvals) / float64(s.TotalInteractions)
}

// ToMapping renders Score as a JSON-ready map, preserving ApprovalRate as a
// derived field per the spec's round-trip property.
func (s Score) ToMapping() map[string]any {
	return map[string]any{
		"score":              s.Value,
		"approvals":          s.Approvals,
		"rejections":         s.Rejections,
		"edits":              s.Edits,
		"total_interactions": s.TotalInteractions,
		"approval_rate":      s.ApprovalRate(),
	}
}

// ApplyOutcome folds outcome into the counters of s, returning the updated
// Score with Value clamped to [0, ceiling]. It does not persist anything;
// a Store implementation calls this inside its own upsert transaction to
// compute the row it writes.
func ApplyOutcome(s Score, outcome Outcome, ceiling float64) (Score, error) {
	delta, err := Delta(outcome)
	if err != nil {
		return Score{}, err
	}
	return applyOutcome(s, outcome, delta, ceiling), nil
}

// applyOutcome folds outcome into the counters of s, returning the updated
// Score with Value clamped to [0, ceiling]. It does not persist anything;
// callers go through a Store to make the update durable.
func applyOutcome(s Score, outcome Outcome, delta, ceiling float64) Score {
	next := s
	next.Value = Clamp(s.Value+delta, ceiling)
	next.TotalInteractions++
	switch outcome {
	case OutcomeApproved:
		next.Approvals++
	case OutcomeMinorEdit, OutcomeMajorEdit:
		next.Edits++
	case OutcomeRejected:
		next.Rejections++
	}
	return next
}
