package analyze

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

// MustPhrases scans the question against the fixed chemical, unit-code and
// equipment-area pattern tables and returns the canonical phrases, first
// occurrence order, deduplicated.
func MustPhrases(question string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(phrase string) {
		if phrase == "" {
			return
		}
		if _, ok := seen[phrase]; ok {
			return
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}

	for _, code := range unitCodePattern.FindAllString(question, -1) {
		add(code)
	}
	for _, rule := range chemicalRules {
		if rule.re.MatchString(question) {
			for _, p := range rule.phrases {
				add(p)
			}
		}
	}
	for _, rule := range areaRules {
		if rule.re.MatchString(question) {
			for _, p := range rule.phrases {
				add(p)
			}
		}
	}
	return out
}

// Keywords tokenizes the question and returns the set of normalized search
// terms: stopwords and short tokens dropped, singular forms added for
// plurals, synonyms expanded.
func Keywords(question string) map[string]struct{} {
	keywords := make(map[string]struct{})
	stops := normalizedStopwords()

	for _, token := range wordPattern.FindAllString(question, -1) {
		norm := Normalize(token)
		if len([]rune(norm)) < 3 {
			continue
		}
		if _, stop := stops[norm]; stop {
			continue
		}

		keywords[norm] = struct{}{}

		if strings.HasSuffix(norm, "s") && len([]rune(norm)) > 3 {
			keywords[strings.TrimSuffix(norm, "s")] = struct{}{}
		}
		for _, syn := range tokenSynonyms[norm] {
			keywords[Normalize(syn)] = struct{}{}
		}
	}
	return keywords
}

var eventIDPattern = regexp.MustCompile(`(?i)(?:event[_\s-]?id\s*[:=]?\s*|event\s+)(\d{2,6})`)

// EventIDs returns explicit numeric incident references ("event 123",
// "event_id: 123") in order of appearance.
func EventIDs(question string) []int64 {
	var ids []int64
	for _, m := range eventIDPattern.FindAllStringSubmatch(question, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// HasRecentHint reports whether the question asks about recent incidents.
func HasRecentHint(question string) bool {
	normalized := Normalize(question)
	for _, hint := range recentHints {
		if strings.Contains(normalized, hint) {
			return true
		}
	}
	return false
}

// Signals runs every extractor once and bundles the result.
func Signals(question string) domain.ExtractedSignals {
	return domain.ExtractedSignals{
		MustPhrases: MustPhrases(question),
		Keywords:    Keywords(question),
		Dates:       Dates(question),
		EventIDs:    EventIDs(question),
		Recent:      HasRecentHint(question),
	}
}

// ActionSentences selects up to max sentences of the description that
// mention a response-measure hint. Sentence splitting is naive: a period,
// exclamation or question mark followed by whitespace.
func ActionSentences(description string, max int) []string {
	var selected []string
	for _, sent := range splitSentences(strings.TrimSpace(description)) {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		lower := strings.ToLower(sent)
		for _, hint := range actionHints {
			if strings.Contains(lower, hint) {
				selected = append(selected, sent)
				break
			}
		}
		if len(selected) >= max {
			break
		}
	}
	return selected
}

func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 < len(runes) && isSpace(runes[i+1]) {
				sentences = append(sentences, string(runes[start:i+1]))
				for i+1 < len(runes) && isSpace(runes[i+1]) {
					i++
				}
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
