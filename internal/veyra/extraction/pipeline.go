package extraction

import (
	"context"
	"log/slog"
)

// Pipeline orchestrates all three tiers with escalation, as used by the
// skills that observe conversation events.
type Pipeline struct {
	Tier2Provider LLMProvider
	Tier3Provider LLMProvider
	Logger        *slog.Logger
}

// NewPipeline builds a Pipeline. Either provider may be nil; escalation to a
// missing provider is a no-op, not an error.
func NewPipeline(tier2, tier3 LLMProvider, logger *slog.Logger) *Pipeline {
	return &Pipeline{Tier2Provider: tier2, Tier3Provider: tier3, Logger: logger}
}

// Extract runs tier 1, escalates to tier 2 when tier 1 is uncertain or
// silent on non-trivial content, escalates to tier 3 when tier 2 remains
// uncertain, and merges the results.
func (p *Pipeline) Extract(ctx context.Context, event ObservationEvent) []ExtractedItem {
	tier1 := ExtractTier1(event)

	if !shouldEscalate(tier1, event) {
		return MergeExtractions(tier1, nil, nil)
	}

	tier2 := ExtractTier2(ctx, event, p.Tier2Provider, p.Logger)

	if !NeedsEscalation(tier2) {
		return MergeExtractions(tier1, tier2, nil)
	}

	tier3 := ExtractTier3(ctx, event, p.Tier3Provider, p.Logger)

	return MergeExtractions(tier1, tier2, tier3)
}

// shouldEscalate is true when tier 1 produced uncertain items, or produced
// nothing at all on content substantial enough to be worth an LLM call.
func shouldEscalate(tier1 []ExtractedItem, event ObservationEvent) bool {
	if NeedsEscalation(tier1) {
		return true
	}
	return len(tier1) == 0 && len(event.Content) >= MinContentLengthForLLM
}
