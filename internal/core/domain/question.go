package domain

// Question is one incoming request: the raw text plus an optional explicit
// organizational-unit hint that overrides heuristic detection.
type Question struct {
	Text        string
	OrgUnitHint string
}

// ExtractedSignals bundles everything the extractors derive from one
// question. All phrase and keyword members are normalized (diacritics
// stripped, lowercased) before they are compared against anything.
type ExtractedSignals struct {
	MustPhrases []string
	Keywords    map[string]struct{}
	Dates       []string
	EventIDs    []int64
	Recent      bool
}

type SortOrder int

const (
	SortRelevance SortOrder = iota
	SortDateAsc
	SortDateDesc
)

// DayRange is the [00:00:00, 23:59:59] window of a single calendar day.
// A record matches when its [start, end] interval overlaps the window or
// either boundary falls inside it.
type DayRange struct {
	Start string
	End   string
}

// SearchFilterSet holds the structured retrieval directives built from one
// question. Strict is set whenever an identifier or date filter is present:
// an explicit miss must be reported as zero results, never papered over by
// the recency fallback.
type SearchFilterSet struct {
	EventIDs []int64
	Days     []DayRange
	Sort     SortOrder
	Strict   bool
}

// SearchQuery is the full request handed to the search engine.
type SearchQuery struct {
	Text        string
	MustPhrases []string
	Filters     SearchFilterSet
	Size        int
	MinScore    float64
}
