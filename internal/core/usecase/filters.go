package usecase

import "github.com/Blackfireoff/Incident-Factory/internal/core/domain"

// BuildFilterSet turns extracted signals into retrieval directives. A day
// filter covers the [00:00:00, 23:59:59] window; strict is set whenever an
// identifier or date filter exists, which disables the recency fallback.
func BuildFilterSet(signals domain.ExtractedSignals) domain.SearchFilterSet {
	filters := domain.SearchFilterSet{
		EventIDs: signals.EventIDs,
	}
	for _, iso := range signals.Dates {
		filters.Days = append(filters.Days, domain.DayRange{
			Start: iso + "T00:00:00",
			End:   iso + "T23:59:59",
		})
	}
	filters.Strict = len(filters.EventIDs) > 0 || len(filters.Days) > 0

	switch {
	case len(signals.Dates) > 0 && len(signals.EventIDs) == 0:
		filters.Sort = domain.SortDateAsc
	case signals.Recent && !filters.Strict:
		filters.Sort = domain.SortDateDesc
	default:
		filters.Sort = domain.SortRelevance
	}
	return filters
}
