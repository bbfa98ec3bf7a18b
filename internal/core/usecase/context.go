package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Blackfireoff/Incident-Factory/internal/core/analyze"
	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

const (
	maxHighlightFragments = 5
	maxActionSentences    = 2
	descriptionPrefixLen  = 400
	recentFetchMinimum    = 10
)

var highlightTagPattern = regexp.MustCompile(`<[^>]+>`)

// assembleContext retrieves candidate records and extracts their fragments
// through an ordered fallback: targeted match, relaxed match, then recent
// records — the last only when no strict filter was requested.
func (uc *AskUseCase) assembleContext(
	ctx context.Context,
	question string,
	signals domain.ExtractedSignals,
	filters domain.SearchFilterSet,
) ([]domain.ContextFragment, error) {
	terms := normalizedTerms(signals)

	size := uc.contextLimit
	if n := len(filters.EventIDs); n > size {
		size = n
	}
	if n := 2 * len(filters.Days); n > size {
		size = n
	}

	// A minimum relevance score only applies to phrase-driven queries with
	// no strict filter, so low-score noise is rejected without starving
	// explicit id/date retrieval.
	var minScore float64
	if len(signals.MustPhrases) > 0 && !filters.Strict {
		minScore = 1.0
	}

	hits, err := uc.search.Search(ctx, domain.SearchQuery{
		Text:        question,
		MustPhrases: signals.MustPhrases,
		Filters:     filters,
		Size:        size,
		MinScore:    minScore,
	})
	if err != nil {
		return nil, fmt.Errorf("search incidents: %w", err)
	}

	fragments := buildContext(hits, terms, true, uc.contextLimit)
	if len(fragments) == 0 {
		fragments = buildContext(hits, terms, false, uc.contextLimit)
	}

	if len(fragments) == 0 && !filters.Strict {
		recentSize := uc.contextLimit
		if recentSize < recentFetchMinimum {
			recentSize = recentFetchMinimum
		}
		recent, err := uc.search.SearchRecent(ctx, recentSize)
		if err != nil {
			return nil, fmt.Errorf("search recent incidents: %w", err)
		}
		fragments = buildContext(recent, terms, len(terms) > 0, uc.contextLimit)
		if len(fragments) == 0 {
			fragments = buildContext(recent, terms, false, uc.contextLimit)
		}
	}

	return fragments, nil
}

func normalizedTerms(signals domain.ExtractedSignals) map[string]struct{} {
	terms := make(map[string]struct{}, len(signals.Keywords)+len(signals.MustPhrases))
	for kw := range signals.Keywords {
		if kw != "" {
			terms[kw] = struct{}{}
		}
	}
	for _, phrase := range signals.MustPhrases {
		if norm := analyze.Normalize(phrase); norm != "" {
			terms[norm] = struct{}{}
		}
	}
	return terms
}

// buildContext extracts fragments per hit. When requireMatch is set, a
// fragment is kept only if it contains one of the extracted terms; records
// whose every strategy yields nothing are dropped.
func buildContext(hits []domain.SearchHit, terms map[string]struct{}, requireMatch bool, maxItems int) []domain.ContextFragment {
	var out []domain.ContextFragment
	for _, hit := range hits {
		fragments := extractFragments(hit, terms, requireMatch)
		if len(fragments) == 0 {
			continue
		}
		out = append(out, domain.ContextFragment{
			EventID:        hit.Event.EventID,
			Type:           hit.Event.Type,
			Classification: hit.Event.Classification,
			Start:          hit.Event.StartDatetime,
			End:            hit.Event.EndDatetime,
			Fragments:      fragments,
		})
		if len(out) >= maxItems {
			break
		}
	}
	return out
}

func extractFragments(hit domain.SearchHit, terms map[string]struct{}, requireMatch bool) []string {
	var fragments []string
	seen := make(map[string]struct{})

	add := func(text string, gated bool) {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return
		}
		if gated && requireMatch && len(terms) > 0 && !containsAnyTerm(trimmed, terms) {
			return
		}
		if _, dup := seen[trimmed]; dup {
			return
		}
		seen[trimmed] = struct{}{}
		fragments = append(fragments, trimmed)
	}

	highlights := hit.Highlights
	if len(highlights) > maxHighlightFragments {
		highlights = highlights[:maxHighlightFragments]
	}
	cleaned := make([]string, 0, len(highlights))
	for _, h := range highlights {
		cleaned = append(cleaned, highlightTagPattern.ReplaceAllString(h, ""))
	}

	for _, frag := range cleaned {
		add(frag, true)
	}

	description := strings.TrimSpace(hit.Event.Description)
	if description != "" {
		for _, sent := range analyze.ActionSentences(description, maxActionSentences) {
			add(sent, true)
		}
	}

	if len(fragments) == 0 {
		for _, frag := range cleaned {
			add(frag, false)
		}
	}
	if len(fragments) == 0 && description != "" {
		add(prefixRunes(description, descriptionPrefixLen), false)
	}

	return fragments
}

func containsAnyTerm(fragment string, terms map[string]struct{}) bool {
	norm := analyze.Normalize(fragment)
	for term := range terms {
		if strings.Contains(norm, term) {
			return true
		}
	}
	return false
}

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
