package opensearch

import (
	"context"
	"fmt"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

const highlightFragmentCount = 5

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source    domain.EventRecord  `json:"_source"`
			Score     *float64            `json:"_score"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs one filtered relevance query. Must-phrases become exact
// match_phrase clauses on the description, free text becomes a fuzzy
// multi_match over the text fields, and identifier or day filters go into
// the filter context so they never influence scoring.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchHit, error) {
	boolQuery := map[string]any{}

	var musts []any
	for _, phrase := range query.MustPhrases {
		musts = append(musts, map[string]any{
			"match_phrase": map[string]any{"description": phrase},
		})
	}
	if len(musts) > 0 {
		boolQuery["must"] = musts
	}

	if query.Text != "" {
		boolQuery["should"] = []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     query.Text,
					"fields":    []string{"description^3", "full_text_search", "type", "classification"},
					"fuzziness": "AUTO",
				},
			},
		}
		// Without an exact-phrase anchor the free-text clause must match
		// on its own, otherwise every document would qualify.
		if len(musts) == 0 {
			boolQuery["minimum_should_match"] = 1
		}
	}

	var filters []any
	if len(query.Filters.EventIDs) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{"event_id": query.Filters.EventIDs},
		})
	}
	if dayFilter := buildDayFilter(query.Filters.Days); dayFilter != nil {
		filters = append(filters, dayFilter)
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(boolQuery) == 0 {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	}

	body := map[string]any{
		"size":  query.Size,
		"query": map[string]any{"bool": boolQuery},
		"highlight": map[string]any{
			"fields": map[string]any{
				"description": map[string]any{
					"number_of_fragments": highlightFragmentCount,
					"fragment_size":       150,
				},
			},
		},
	}
	if query.MinScore > 0 {
		body["min_score"] = query.MinScore
	}
	if sortClause := buildSort(query.Filters.Sort); sortClause != nil {
		body["sort"] = sortClause
	}

	return c.runSearch(ctx, body)
}

// SearchRecent returns the newest records regardless of relevance.
func (c *Client) SearchRecent(ctx context.Context, size int) ([]domain.SearchHit, error) {
	body := map[string]any{
		"size":  size,
		"query": map[string]any{"match_all": map[string]any{}},
		"sort":  buildSort(domain.SortDateDesc),
		"highlight": map[string]any{
			"fields": map[string]any{
				"description": map[string]any{
					"number_of_fragments": highlightFragmentCount,
					"fragment_size":       150,
				},
			},
		},
	}
	return c.runSearch(ctx, body)
}

func (c *Client) runSearch(ctx context.Context, body map[string]any) ([]domain.SearchHit, error) {
	var resp searchResponse
	if err := c.do(ctx, "POST", fmt.Sprintf("/%s/_search", c.index), body, &resp); err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		hits = append(hits, domain.SearchHit{
			Event:      h.Source,
			Score:      score,
			Highlights: h.Highlight["description"],
		})
	}
	return hits, nil
}

// buildDayFilter matches records whose [start, end] interval touches any of
// the given days: start inside the day, end inside the day, or the interval
// spanning it entirely.
func buildDayFilter(days []domain.DayRange) map[string]any {
	if len(days) == 0 {
		return nil
	}

	var perDay []any
	for _, day := range days {
		perDay = append(perDay, map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"range": map[string]any{
							"start_datetime": map[string]any{"gte": day.Start, "lte": day.End},
						},
					},
					map[string]any{
						"range": map[string]any{
							"end_datetime": map[string]any{"gte": day.Start, "lte": day.End},
						},
					},
					map[string]any{
						"bool": map[string]any{
							"must": []any{
								map[string]any{
									"range": map[string]any{"start_datetime": map[string]any{"lte": day.Start}},
								},
								map[string]any{
									"range": map[string]any{"end_datetime": map[string]any{"gte": day.End}},
								},
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		})
	}

	return map[string]any{
		"bool": map[string]any{
			"should":               perDay,
			"minimum_should_match": 1,
		},
	}
}

func buildSort(order domain.SortOrder) []any {
	var direction string
	switch order {
	case domain.SortDateAsc:
		direction = "asc"
	case domain.SortDateDesc:
		direction = "desc"
	default:
		return nil
	}
	return []any{
		map[string]any{"start_datetime": map[string]any{"order": direction, "missing": "_last"}},
		map[string]any{"event_id": map[string]any{"order": direction}},
	}
}
