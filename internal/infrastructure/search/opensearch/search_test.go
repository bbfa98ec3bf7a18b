package opensearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Index: "incidents"})
}

func TestSearchBuildsStrictFilterQuery(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/incidents/_search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"event_id":5,"type":"SPILL","classification":"MAJOR","description":"Déversement d'acétone"},
			 "_score":3.2,
			 "highlight":{"description":["<em>acétone</em> renversée"]}}
		]}}`))
	})

	hits, err := client.Search(context.Background(), domain.SearchQuery{
		Text:        "deversement acetone",
		MustPhrases: []string{"acetone"},
		Filters: domain.SearchFilterSet{
			EventIDs: []int64{5},
			Days: []domain.DayRange{
				{Start: "2024-03-10T00:00:00", End: "2024-03-10T23:59:59"},
			},
			Sort:   domain.SortDateAsc,
			Strict: true,
		},
		Size: 10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Event.EventID != 5 || hits[0].Score != 3.2 {
		t.Errorf("unexpected hit: %+v", hits[0])
	}
	if len(hits[0].Highlights) != 1 {
		t.Errorf("highlights = %v", hits[0].Highlights)
	}

	boolQuery := captured["query"].(map[string]any)["bool"].(map[string]any)
	if _, ok := boolQuery["must"]; !ok {
		t.Error("must-phrase clause missing")
	}
	if _, ok := boolQuery["minimum_should_match"]; ok {
		t.Error("minimum_should_match must be absent when a must-phrase anchors the query")
	}
	filters, ok := boolQuery["filter"].([]any)
	if !ok || len(filters) != 2 {
		t.Fatalf("filter clauses = %v, want terms + day filter", boolQuery["filter"])
	}
	if _, ok := captured["sort"]; !ok {
		t.Error("sort clause missing for date-ordered query")
	}
	if _, ok := captured["min_score"]; ok {
		t.Error("min_score must be absent when not requested")
	}
}

func TestSearchWithoutMustPhrasesRequiresShouldMatch(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	})

	_, err := client.Search(context.Background(), domain.SearchQuery{
		Text:     "incendie atelier",
		Size:     10,
		MinScore: 1.0,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	boolQuery := captured["query"].(map[string]any)["bool"].(map[string]any)
	if got := boolQuery["minimum_should_match"]; got != float64(1) {
		t.Errorf("minimum_should_match = %v, want 1", got)
	}
	if got := captured["min_score"]; got != float64(1) {
		t.Errorf("min_score = %v, want 1", got)
	}
}

func TestSearchRecentSortsNewestFirst(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"hits":{"hits":[]}}`))
	})

	if _, err := client.SearchRecent(context.Background(), 10); err != nil {
		t.Fatalf("search recent: %v", err)
	}

	sortClauses, ok := captured["sort"].([]any)
	if !ok || len(sortClauses) != 2 {
		t.Fatalf("sort = %v, want start_datetime + event_id", captured["sort"])
	}
	first := sortClauses[0].(map[string]any)["start_datetime"].(map[string]any)
	if first["order"] != "desc" || first["missing"] != "_last" {
		t.Errorf("start_datetime sort = %v", first)
	}
}

func TestRecreateIndexToleratesMissingIndex(t *testing.T) {
	var created bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
			var definition map[string]any
			if err := json.NewDecoder(r.Body).Decode(&definition); err != nil {
				t.Fatalf("decode definition: %v", err)
			}
			if _, ok := definition["mappings"]; !ok {
				t.Error("index definition missing mappings")
			}
			w.Write([]byte(`{"acknowledged":true}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	if err := client.RecreateIndex(context.Background()); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if !created {
		t.Error("index was not created")
	}
}

func TestCountDocuments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/incidents/_count" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"count":37}`))
	})

	n, err := client.CountDocuments(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 37 {
		t.Errorf("count = %d, want 37", n)
	}
}
