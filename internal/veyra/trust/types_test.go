package trust

import (
	"math"
	"testing"
)

func TestScore_ApprovalRate(t *testing.T) {
	s := Score{Approvals: 3, TotalInteractions: 4}
	if math.Abs(s.ApprovalRate()-0.75) > 1e-9 {
		t.Errorf("expected approval rate 0.75, got %v", s.ApprovalRate())
	}

	zero := Score{}
	if zero.ApprovalRate() != 0 {
		t.Errorf("expected approval rate 0 for no interactions, got %v", zero.ApprovalRate())
	}
}

func TestScore_ToMapping_PreservesApprovalRate(t *testing.T) {
	s := Score{Value: 0.4, Approvals: 2, Rejections: 1, Edits: 1, TotalInteractions: 4}
	m := s.ToMapping()

	if m["approval_rate"].(float64) != 0.5 {
		t.Errorf("expected approval_rate 0.5, got %v", m["approval_rate"])
	}
	if m["total_interactions"].(int) != 4 {
		t.Errorf("expected total_interactions 4, got %v", m["total_interactions"])
	}
}

func TestDelta_UnknownOutcome(t *testing.T) {
	if _, err := Delta(Outcome("not_real")); err == nil {
		t.Fatalf("expected an error for an unknown outcome")
	}
}

func TestCeiling_UnknownReplyType(t *testing.T) {
	if got := Ceiling(ReplyType("not_real")); got != 0 {
		t.Errorf("expected ceiling 0 for an unknown reply type, got %v", got)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		v, ceiling, want float64
	}{
		{-1, 0.5, 0},
		{0.9, 0.5, 0.5},
		{0.3, 0.5, 0.3},
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.ceiling); got != c.want {
			t.Errorf("Clamp(%v, %v) = %v, want %v", c.v, c.ceiling, got, c.want)
		}
	}
}
