package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"automata-hq/triton/pkg/rules"
)

// TestHTTPServiceEnrich tests a successful extraction round trip.
func TestHTTPServiceEnrich(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Domain != DomainTask {
			t.Errorf("expected task domain, got %s", req.Domain)
		}

		json.NewEncoder(w).Encode(Result{
			Title:      "Pay electricity bill",
			Priority:   "high",
			Tags:       []string{"finance"},
			Confidence: 0.92,
		})
	}))
	defer server.Close()

	service, err := NewHTTPService(&HTTPConfig{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	defer service.Close()

	result, err := service.Enrich(context.Background(), &Request{
		Domain:      DomainTask,
		Content:     "pay the electricity bill urgently",
		TriggerType: rules.TriggerReaction,
	})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if result.Title != "Pay electricity bill" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if result.Priority != "high" {
		t.Errorf("unexpected priority %q", result.Priority)
	}
	if result.Confidence != 0.92 {
		t.Errorf("unexpected confidence %v", result.Confidence)
	}
}

// TestHTTPServiceRetriesServerErrors tests that 5xx responses are retried.
func TestHTTPServiceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Result{Title: "recovered", Confidence: 0.5})
	}))
	defer server.Close()

	service, err := NewHTTPService(&HTTPConfig{BaseURL: server.URL, MaxRetries: 3})
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	defer service.Close()

	result, err := service.Enrich(context.Background(), &Request{Domain: DomainBill, Content: "x"})
	if err != nil {
		t.Fatalf("Enrich failed after retries: %v", err)
	}
	if result.Title != "recovered" {
		t.Errorf("unexpected title %q", result.Title)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

// TestHTTPServiceClientErrorNotRetried tests that 4xx responses fail fast.
func TestHTTPServiceClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad domain", http.StatusBadRequest)
	}))
	defer server.Close()

	service, err := NewHTTPService(&HTTPConfig{BaseURL: server.URL, MaxRetries: 3})
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	defer service.Close()

	_, err = service.Enrich(context.Background(), &Request{Domain: DomainBill, Content: "x"})
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected status %d", serviceErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call without retries, got %d", calls.Load())
	}
}

// TestHTTPServiceHonorsContext tests that cancellation aborts the call.
func TestHTTPServiceHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	service, err := NewHTTPService(&HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = service.Enrich(ctx, &Request{Domain: DomainTask, Content: "x"})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

// TestHTTPServiceClampsConfidence tests confidence normalization into [0, 1].
func TestHTTPServiceClampsConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Title: "t", Confidence: 3.5})
	}))
	defer server.Close()

	service, err := NewHTTPService(&HTTPConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	defer service.Close()

	result, err := service.Enrich(context.Background(), &Request{Domain: DomainTask, Content: "x"})
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if result.Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %v", result.Confidence)
	}
}
