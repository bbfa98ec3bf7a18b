package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
	"github.com/Blackfireoff/Incident-Factory/internal/core/usecase"
)

type fakeEventStore struct {
	stats     []domain.StatRow
	groups    []domain.TypeCount
	total     int
	lastType  string
	lastClass []string
	lastOU    []string
}

func (f *fakeEventStore) CountByTypeAndClassification(_ context.Context, typeFilter string, classifications []string, ouPatterns []string) (int, []domain.TypeCount, error) {
	f.lastType = typeFilter
	f.lastClass = classifications
	f.lastOU = ouPatterns
	return f.total, f.groups, nil
}

func (f *fakeEventStore) TopClassifications(_ context.Context, _ int, ouPatterns []string) ([]domain.StatRow, error) {
	f.lastOU = ouPatterns
	return f.stats, nil
}

func (f *fakeEventStore) ListEventDocuments(context.Context) ([]domain.EventDocument, error) {
	return nil, nil
}

type fakeSearchEngine struct {
	hits []domain.SearchHit
}

func (f *fakeSearchEngine) Search(context.Context, domain.SearchQuery) ([]domain.SearchHit, error) {
	return f.hits, nil
}

func (f *fakeSearchEngine) SearchRecent(context.Context, int) ([]domain.SearchHit, error) {
	return nil, nil
}

type fakeCompleter struct {
	answer string
	calls  int
}

func (f *fakeCompleter) Complete(context.Context, string, string, domain.CompletionOptions) (string, error) {
	f.calls++
	return f.answer, nil
}

type fakeIndexer struct {
	count int
}

func (f *fakeIndexer) RecreateIndex(context.Context) error               { return nil }
func (f *fakeIndexer) IndexEvent(context.Context, domain.EventDocument) error { return nil }
func (f *fakeIndexer) Refresh(context.Context) error                     { return nil }
func (f *fakeIndexer) CountDocuments(context.Context) (int, error)       { return f.count, nil }

type fakeQueue struct {
	published int
}

func (f *fakeQueue) PublishReindexRequested(context.Context) error {
	f.published++
	return nil
}

func (f *fakeQueue) SubscribeReindexRequested(context.Context, func(context.Context) error) error {
	return nil
}

func newTestRouter(events *fakeEventStore, search *fakeSearchEngine, llm *fakeCompleter, indexer *fakeIndexer, queue *fakeQueue) http.Handler {
	askUC := usecase.NewAskUseCase(events, search, llm, 10, 400)
	return NewRouter(askUC, events, indexer, queue, nil, nil).Handler()
}

func TestAskRequiresMessage(t *testing.T) {
	handler := newTestRouter(&fakeEventStore{}, &fakeSearchEngine{}, &fakeCompleter{}, &fakeIndexer{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/query", strings.NewReader(`{"ou":"atelier"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "error" {
		t.Errorf("status field = %q", body["status"])
	}
	if body["message"] != "Provide 'message' (or 'question') in the JSON body" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestAskDistributionQuestionSkipsModel(t *testing.T) {
	events := &fakeEventStore{
		stats: []domain.StatRow{
			{Label: "CRITICAL", Count: 6},
			{Label: "MAJOR", Count: 4},
		},
	}
	llm := &fakeCompleter{answer: "should never be used"}
	handler := newTestRouter(events, &fakeSearchEngine{}, llm, &fakeIndexer{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/query",
		strings.NewReader(`{"message":"Quelle est la répartition des incidents ?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result domain.AskResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Source != domain.SourceAnalytics {
		t.Errorf("source = %q, want analytics", result.Source)
	}
	if result.StatsCount == nil || *result.StatsCount != 2 {
		t.Errorf("stats_count = %v, want 2", result.StatsCount)
	}
	if result.ContextCount != nil {
		t.Error("context_count must be absent on the analytics path")
	}
	if !strings.Contains(result.Answer, "CRITICAL (6) - 60%") {
		t.Errorf("answer missing ranked line: %q", result.Answer)
	}
	if llm.calls != 0 {
		t.Errorf("model invoked %d times on the analytics path", llm.calls)
	}
}

func TestAskLookupQuestionAnswersFromContext(t *testing.T) {
	search := &fakeSearchEngine{
		hits: []domain.SearchHit{
			{
				Event: domain.EventRecord{
					EventID:        5,
					Type:           "SPILL",
					Classification: "MAJOR",
					Description:    "Déversement d'acétone dans la zone de stockage.",
					StartDatetime:  "2024-03-10T08:00:00",
				},
				Score:      4.2,
				Highlights: []string{"<em>acétone</em> dans la zone"},
			},
		},
	}
	llm := &fakeCompleter{answer: "- Déversement signalé \"acétone dans la zone\" [event_id:5]\nCitations: [event_id:5]"}
	handler := newTestRouter(&fakeEventStore{}, search, llm, &fakeIndexer{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodPost, "/api/ai/query",
		strings.NewReader(`{"message":"Que s'est-il passé avec l'acétone ?"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result domain.AskResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Source != domain.SourceRAG {
		t.Errorf("source = %q, want rag", result.Source)
	}
	if result.ContextCount == nil || *result.ContextCount != 1 {
		t.Errorf("context_count = %v, want 1", result.ContextCount)
	}
	if !strings.Contains(result.Answer, "event_id:5") {
		t.Errorf("answer lost its citation: %q", result.Answer)
	}
	if llm.calls != 1 {
		t.Errorf("model calls = %d, want 1", llm.calls)
	}
}

func TestRequestReindexPublishes(t *testing.T) {
	queue := &fakeQueue{}
	handler := newTestRouter(&fakeEventStore{}, &fakeSearchEngine{}, &fakeCompleter{}, &fakeIndexer{}, queue)

	req := httptest.NewRequest(http.MethodPost, "/api/index/reindex", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if queue.published != 1 {
		t.Errorf("published = %d, want 1", queue.published)
	}
}

func TestIndexCount(t *testing.T) {
	handler := newTestRouter(&fakeEventStore{}, &fakeSearchEngine{}, &fakeCompleter{}, &fakeIndexer{count: 123}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/index/count", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["count"] != float64(123) {
		t.Errorf("count = %v, want 123", body["count"])
	}
}

func TestClassificationStats(t *testing.T) {
	events := &fakeEventStore{
		stats: []domain.StatRow{{Label: "CRITICAL", Count: 9}},
	}
	handler := newTestRouter(events, &fakeSearchEngine{}, &fakeCompleter{}, &fakeIndexer{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/stats/classification", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"classification":"CRITICAL"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRateLimiterRejectsBursts(t *testing.T) {
	askUC := usecase.NewAskUseCase(&fakeEventStore{}, &fakeSearchEngine{}, &fakeCompleter{}, 10, 400)
	handler := NewRouter(askUC, &fakeEventStore{}, &fakeIndexer{}, &fakeQueue{}, nil, NewIPRateLimiter(1, 1)).Handler()

	first := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	second.RemoteAddr = "10.0.0.1:5001"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("other client status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeEventStore{}, &fakeSearchEngine{}, &fakeCompleter{}, &fakeIndexer{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/api/ai/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
