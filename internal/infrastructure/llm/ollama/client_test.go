package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Blackfireoff/Incident-Factory/internal/core/domain"
	"github.com/Blackfireoff/Incident-Factory/internal/infrastructure/resilience"
)

func TestCompleteSendsDeterministicOptions(t *testing.T) {
	var captured generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"response":"  - Mesure corrective appliquée [event_id:5]\n"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "mistral"}, nil)

	answer, err := client.Complete(context.Background(), "système", "question", domain.CompletionOptions{
		Temperature: 0.0,
		MaxTokens:   400,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if answer != "- Mesure corrective appliquée [event_id:5]" {
		t.Errorf("answer = %q", answer)
	}
	if captured.Model != "mistral" || captured.Stream {
		t.Errorf("request = %+v", captured)
	}
	if captured.System != "système" || captured.Prompt != "question" {
		t.Errorf("prompts = %q / %q", captured.System, captured.Prompt)
	}
	if got := captured.Options["temperature"]; got != float64(0) {
		t.Errorf("temperature = %v, want 0", got)
	}
	if got := captured.Options["num_predict"]; got != float64(400) {
		t.Errorf("num_predict = %v, want 400", got)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1,
		RetryMaxBackoff:     1,
	})
	client := NewClient(Config{BaseURL: srv.URL, Model: "mistral"}, executor)

	answer, err := client.Complete(context.Background(), "", "q", domain.CompletionOptions{MaxTokens: 10})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if answer != "ok" {
		t.Errorf("answer = %q", answer)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1,
		RetryMaxBackoff:     1,
	})
	client := NewClient(Config{BaseURL: srv.URL, Model: "mistral"}, executor)

	if _, err := client.Complete(context.Background(), "", "q", domain.CompletionOptions{}); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
