package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Blackfireoff/Incident-Factory/internal/core/ports"
	"github.com/Blackfireoff/Incident-Factory/internal/core/usecase"
	"github.com/Blackfireoff/Incident-Factory/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	askUC   *usecase.AskUseCase
	events  ports.EventStore
	indexer ports.SearchIndexer
	queue   ports.ReindexQueue
	metrics *metrics.HTTPServerMetrics
	limiter *IPRateLimiter
}

func NewRouter(
	askUC *usecase.AskUseCase,
	events ports.EventStore,
	indexer ports.SearchIndexer,
	queue ports.ReindexQueue,
	httpMetrics *metrics.HTTPServerMetrics,
	limiter *IPRateLimiter,
) *Router {
	return &Router{
		askUC:   askUC,
		events:  events,
		indexer: indexer,
		queue:   queue,
		metrics: httpMetrics,
		limiter: limiter,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/ai/query", rt.askQuestion)
	mux.HandleFunc("/api/stats/classification", rt.classificationStats)
	mux.HandleFunc("/api/index/reindex", rt.requestReindex)
	mux.HandleFunc("/api/index/count", rt.indexCount)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.limiter != nil {
		handler = rt.limiter.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Message  string `json:"message"`
		Question string `json:"question"`
		OU       string `json:"ou"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	question := strings.TrimSpace(req.Message)
	if question == "" {
		question = strings.TrimSpace(req.Question)
	}
	if question == "" {
		writeError(w, http.StatusBadRequest, "Provide 'message' (or 'question') in the JSON body")
		return
	}

	start := time.Now()
	result, err := rt.askUC.Ask(r.Context(), question, req.OU)
	if err != nil {
		slog.Error("ask_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAsk(serviceName, result.Source, time.Since(start))
		if result.ContextCount != nil {
			rt.metrics.RecordContextSize(serviceName, *result.ContextCount)
		}
		if result.PolicyFallback {
			rt.metrics.RecordPolicyFallback(serviceName)
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) classificationStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := rt.events.TopClassifications(r.Context(), 10, nil)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	type statEntry struct {
		Classification string `json:"classification"`
		Count          int    `json:"count"`
	}
	entries := make([]statEntry, 0, len(stats))
	for _, row := range stats {
		entries = append(entries, statEntry{Classification: row.Label, Count: row.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"stats":  entries,
	})
}

func (rt *Router) requestReindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := rt.queue.PublishReindexRequested(r.Context()); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "reindex scheduled",
	})
}

func (rt *Router) indexCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := rt.indexer.CountDocuments(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"count":  count,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
