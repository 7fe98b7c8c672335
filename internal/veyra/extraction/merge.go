package extraction

func contentKey(item ExtractedItem, n int) string {
	content := item.Content
	if len(content) > n {
		content = content[:n]
	}
	return string(item.ItemType) + ":" + content
}

// MergeExtractions combines tier results, preferring the highest-tier
// version of each (item_type, content-prefix) key and then dropping any
// remaining item whose (item_type, shorter content-prefix) collides with an
// already-kept item of an equal or higher tier. Input order is preserved
// within a type.
func MergeExtractions(tier1, tier2, tier3 []ExtractedItem) []ExtractedItem {
	best := make(map[string]ExtractedItem)
	var order []string

	for _, items := range [][]ExtractedItem{tier1, tier2, tier3} {
		for _, item := range items {
			key := contentKey(item, 50)
			existing, ok := best[key]
			if !ok {
				order = append(order, key)
				best[key] = item
				continue
			}
			if item.ExtractionTier > existing.ExtractionTier {
				best[key] = item
			}
		}
	}

	allItems := make([]ExtractedItem, 0, len(order))
	for _, key := range order {
		allItems = append(allItems, best[key])
	}

	seenByType := make(map[ItemType][]ExtractedItem)
	var deduped []ExtractedItem

	for _, item := range allItems {
		isDup := false
		for _, existing := range seenByType[item.ItemType] {
			if contentKey(item, 30) == contentKey(existing, 30) && item.ExtractionTier <= existing.ExtractionTier {
				isDup = true
				break
			}
		}
		if !isDup {
			seenByType[item.ItemType] = append(seenByType[item.ItemType], item)
			deduped = append(deduped, item)
		}
	}

	return deduped
}
