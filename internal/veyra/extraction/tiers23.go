package extraction

import (
	"context"
	"log/slog"
)

// LLMProvider is the dependency-injected interface for tier 2 (local) and
// tier 3 (cloud) extraction. Implementations wrap whatever transport talks
// to the actual model.
type LLMProvider interface {
	Extract(ctx context.Context, text string, conversationHistory []string) ([]RawItem, error)
}

// ExtractTier2 runs the local-LLM tier. Returns an empty slice (not an
// error) on provider failure or overly short content — tier escalation
// degrades gracefully rather than aborting the pipeline.
func ExtractTier2(ctx context.Context, event ObservationEvent, provider LLMProvider, logger *slog.Logger) []ExtractedItem {
	return extractViaLLM(ctx, event, provider, TierLocal, logger, "tier2_extraction_failed")
}

// ExtractTier3 runs the cloud-LLM tier. Symmetric with ExtractTier2 except
// for the tier label attached to produced items.
func ExtractTier3(ctx context.Context, event ObservationEvent, provider LLMProvider, logger *slog.Logger) []ExtractedItem {
	return extractViaLLM(ctx, event, provider, TierCloud, logger, "tier3_extraction_failed")
}

func extractViaLLM(ctx context.Context, event ObservationEvent, provider LLMProvider, tier Tier, logger *slog.Logger, failureEvent string) []ExtractedItem {
	if len(event.Content) < MinContentLengthForLLM {
		return nil
	}
	if provider == nil {
		return nil
	}

	raw, err := provider.Extract(ctx, event.Content, event.ConversationHistory)
	if err != nil {
		if logger != nil {
			logger.Warn(failureEvent, "error", err, "source_id", event.SourceID)
		}
		return nil
	}

	items := make([]ExtractedItem, 0, len(raw))
	for _, r := range raw {
		if r.Confidence < EscalationLow {
			continue
		}
		content := r.Content
		if content == "" {
			content = truncate(event.Content, 100)
		}
		items = append(items, ExtractedItem{
			ItemType: parseItemType(r.ItemType), Content: content, Confidence: r.Confidence,
			Metadata: r.Metadata, SourceEvent: event, ExtractionTier: tier,
		})
	}
	return items
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// NeedsEscalation reports whether any item in items falls in the uncertain
// confidence band [EscalationLow, EscalationHigh).
func NeedsEscalation(items []ExtractedItem) bool {
	for _, item := range items {
		if item.Confidence >= EscalationLow && item.Confidence < EscalationHigh {
			return true
		}
	}
	return false
}
