package extraction_test

import (
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/extraction"
)

func item(itemType extraction.ItemType, content string, tier extraction.Tier) extraction.ExtractedItem {
	return extraction.ExtractedItem{ItemType: itemType, Content: content, ExtractionTier: tier}
}

func TestMergeExtractions_HigherTierWins(t *testing.T) {
	tier1 := []extraction.ExtractedItem{item(extraction.ItemMeeting, "sync about Q3", extraction.TierRegex)}
	tier2 := []extraction.ExtractedItem{item(extraction.ItemMeeting, "sync about Q3", extraction.TierLocal)}

	merged := extraction.MergeExtractions(tier1, tier2, nil)
	if len(merged) != 1 {
		t.Fatalf("expected one merged item, got %+v", merged)
	}
	if merged[0].ExtractionTier != extraction.TierLocal {
		t.Errorf("expected tier2 to win, got tier %d", merged[0].ExtractionTier)
	}
}

func TestMergeExtractions_DifferentTypesBothKept(t *testing.T) {
	tier1 := []extraction.ExtractedItem{
		item(extraction.ItemTask, "send the report", extraction.TierRegex),
		item(extraction.ItemMeeting, "sync about Q3", extraction.TierRegex),
	}
	merged := extraction.MergeExtractions(tier1, nil, nil)
	if len(merged) != 2 {
		t.Fatalf("expected both distinct types kept, got %+v", merged)
	}
}

func TestMergeExtractions_IdempotentOnEmptyNextPass(t *testing.T) {
	tier1 := []extraction.ExtractedItem{item(extraction.ItemTask, "send the report", extraction.TierRegex)}
	tier2 := []extraction.ExtractedItem{item(extraction.ItemMeeting, "sync about Q3", extraction.TierLocal)}

	once := extraction.MergeExtractions(tier1, tier2, nil)
	twice := extraction.MergeExtractions(once, nil, nil)

	if len(once) != len(twice) {
		t.Fatalf("expected merge to be idempotent, got %+v vs %+v", once, twice)
	}
}

func TestMergeExtractions_DropsSameTierDuplicatePrefix(t *testing.T) {
	// Two tier1 items share a 30-char content prefix but diverge before the
	// 50-char grouping cutoff, so they survive the first pass as distinct
	// "best" entries; the second pass then drops the later one as a
	// same-or-lower-tier duplicate of the first.
	tier1 := []extraction.ExtractedItem{
		item(extraction.ItemTask, "a fairly long duplicate content prefix that matches", extraction.TierRegex),
		item(extraction.ItemTask, "a fairly long duplicate content prefix but continues differently", extraction.TierRegex),
	}

	merged := extraction.MergeExtractions(tier1, nil, nil)
	if len(merged) != 1 {
		t.Fatalf("expected the later duplicate to be dropped, got %+v", merged)
	}
	if merged[0].Content != "a fairly long duplicate content prefix that matches" {
		t.Errorf("expected the first-seen item to survive, got %q", merged[0].Content)
	}
}
