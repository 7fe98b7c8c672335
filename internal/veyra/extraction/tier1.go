package extraction

import (
	"fmt"
	"regexp"
	"strings"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:by|before|until|due)\s+(tomorrow|today|tonight|(?:next\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\d{4}-\d{2}-\d{2})`),
	regexp.MustCompile(`(?i)\bon\s+(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\s+\d{1,2}|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)`),
}

// taskPatterns is checked in this exact order, stopping at the first match —
// an "I'll handle it" verb phrase, an explicit TODO/TASK/ACTION/FIXME/HACK
// marker, then a "need to"/"must" verb phrase — matching the list order of
// the original implementation's `_TASK_PATTERNS`, so a message containing
// more than one of these extracts identically to it.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:i'?ll|i\s+will|i\s+can|i\s+shall)\s+(?:handle|do|take\s+care\s+of|finish|complete|send|prepare|write|create|build|fix|review|update|check|look\s+into|work\s+on|get\s+back|follow\s+up|set\s+up)`),
	regexp.MustCompile(`(?i)\b(?:TODO|TASK|ACTION|FIXME|HACK):\s*(.+)`),
	regexp.MustCompile(`(?i)\b(?:i\s+)?(?:need\s+to|have\s+to|must|should)\s+(?:handle|do|finish|complete|send|prepare|write|create|build|fix|review|update|check|look\s+into|work\s+on|get\s+back|follow\s+up|set\s+up)`),
}

var meetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:let'?s\s+(?:meet|schedule|sync|catch\s+up|chat)|schedule\s+a\s+(?:meeting|call|sync|chat)|meeting\s+(?:at|on|tomorrow|next))`),
}

var emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`)

var reminderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:remind\s+me|don'?t\s+forget|remember\s+to|note\s+to\s+self)\b`),
}

// ExtractTier1 runs the regex tier on event.Content. At most one item per
// item-type is produced, except contact (every email address matches).
func ExtractTier1(event ObservationEvent) []ExtractedItem {
	var items []ExtractedItem
	text := event.Content

	if item, ok := extractTask(event, text); ok {
		items = append(items, item)
	}
	if item, ok := extractDeadline(event, text); ok {
		items = append(items, item)
	}
	if item, ok := extractMeeting(event, text); ok {
		items = append(items, item)
	}
	items = append(items, extractContacts(event, text)...)
	if item, ok := extractReminder(event, text); ok {
		items = append(items, item)
	}

	return items
}

func hasDateReference(text string) bool {
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func extractTask(event ObservationEvent, text string) (ExtractedItem, bool) {
	for _, p := range taskPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		confidence := 0.55
		if hasDateReference(text) {
			confidence = 0.75
		}
		taskText := strings.TrimSpace(m[0])

		// The marker pattern is the only one with a capture group; an
		// explicit TODO:/TASK:/etc. marker is high confidence regardless of
		// a date reference.
		if len(m) > 1 && m[1] != "" {
			taskText = strings.TrimSpace(m[1])
			confidence = 0.85
		}

		return ExtractedItem{
			ItemType: ItemTask, Content: taskText, Confidence: confidence,
			Metadata: map[string]any{"raw_match": taskText},
			SourceEvent: event, ExtractionTier: TierRegex,
		}, true
	}
	return ExtractedItem{}, false
}

func extractDeadline(event ObservationEvent, text string) (ExtractedItem, bool) {
	for _, p := range datePatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		ref := m[0]
		if len(m) > 1 && m[1] != "" {
			ref = m[1]
		}
		ref = strings.TrimSpace(ref)
		return ExtractedItem{
			ItemType: ItemDeadline, Content: fmt.Sprintf("Deadline reference: %s", ref),
			Confidence: 0.6, Metadata: map[string]any{"date_reference": ref},
			SourceEvent: event, ExtractionTier: TierRegex,
		}, true
	}
	return ExtractedItem{}, false
}

func extractMeeting(event ObservationEvent, text string) (ExtractedItem, bool) {
	for _, p := range meetingPatterns {
		m := p.FindString(text)
		if m == "" {
			continue
		}
		raw := strings.TrimSpace(m)
		return ExtractedItem{
			ItemType: ItemMeeting, Content: fmt.Sprintf("Meeting reference: %s", raw),
			Confidence: 0.55, Metadata: map[string]any{"raw_match": raw},
			SourceEvent: event, ExtractionTier: TierRegex,
		}, true
	}
	return ExtractedItem{}, false
}

func extractContacts(event ObservationEvent, text string) []ExtractedItem {
	matches := emailPattern.FindAllString(text, -1)
	items := make([]ExtractedItem, 0, len(matches))
	for _, email := range matches {
		items = append(items, ExtractedItem{
			ItemType: ItemContact, Content: fmt.Sprintf("Email contact: %s", email),
			Confidence: 0.9, Metadata: map[string]any{"email": email},
			SourceEvent: event, ExtractionTier: TierRegex,
		})
	}
	return items
}

func extractReminder(event ObservationEvent, text string) (ExtractedItem, bool) {
	for _, p := range reminderPatterns {
		m := p.FindString(text)
		if m == "" {
			continue
		}
		return ExtractedItem{
			ItemType: ItemReminder, Content: strings.TrimSpace(text), Confidence: 0.7,
			Metadata: map[string]any{"raw_match": strings.TrimSpace(m)},
			SourceEvent: event, ExtractionTier: TierRegex,
		}, true
	}
	return ExtractedItem{}, false
}
