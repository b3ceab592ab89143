package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"automata-hq/triton/pkg/config"
	"automata-hq/triton/pkg/rules"
)

type captureHandler struct {
	events []*rules.TriggerEvent
	err    error
}

func (h *captureHandler) HandleEvent(ctx context.Context, event *rules.TriggerEvent) error {
	if h.err != nil {
		return h.err
	}
	h.events = append(h.events, event)
	return nil
}

func testServer(handler EventHandler) *Server {
	cfg := config.Default()
	return NewServer(&cfg.Server, handler, nil)
}

// TestHandleEventAccepts tests a valid payload is normalized and accepted.
func TestHandleEventAccepts(t *testing.T) {
	capture := &captureHandler{}
	srv := testServer(capture)

	body := `{
		"instanceId": "inst-1",
		"chatId": "chat-1",
		"messageId": "m1",
		"actorId": "user-a",
		"content": "fix the roof #todo #urgent",
		"triggerType": "hashtag"
	}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/events", strings.NewReader(body)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(capture.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(capture.events))
	}
	event := capture.events[0]
	if event.TriggerType != rules.TriggerHashtag {
		t.Errorf("unexpected trigger type %s", event.TriggerType)
	}
	if !reflect.DeepEqual(event.Hashtags, []string{"todo", "urgent"}) {
		t.Errorf("unexpected hashtags %v", event.Hashtags)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp filled in")
	}
}

// TestTriggerTypeInference tests inference when the payload omits the type.
func TestTriggerTypeInference(t *testing.T) {
	tests := []struct {
		name string
		body string
		want rules.TriggerType
	}{
		{
			name: "emoji implies reaction",
			body: `{"instanceId":"i","messageId":"m","actorId":"a","emoji":"✅"}`,
			want: rules.TriggerReaction,
		},
		{
			name: "hashtag in content implies hashtag",
			body: `{"instanceId":"i","messageId":"m","actorId":"a","content":"see #notes"}`,
			want: rules.TriggerHashtag,
		},
		{
			name: "plain content implies message",
			body: `{"instanceId":"i","messageId":"m","actorId":"a","content":"hello"}`,
			want: rules.TriggerMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureHandler{}
			srv := testServer(capture)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/events", strings.NewReader(tt.body)))

			if rec.Code != http.StatusAccepted {
				t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
			}
			if capture.events[0].TriggerType != tt.want {
				t.Errorf("expected %s, got %s", tt.want, capture.events[0].TriggerType)
			}
		})
	}
}

// TestHandleEventRejectsInvalid tests payload validation failures.
func TestHandleEventRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing instance", `{"messageId":"m","actorId":"a"}`},
		{"missing message", `{"instanceId":"i","actorId":"a"}`},
		{"missing actor", `{"instanceId":"i","messageId":"m"}`},
		{"bad trigger type", `{"instanceId":"i","messageId":"m","actorId":"a","triggerType":"carrier_pigeon"}`},
		{"reaction without emoji", `{"instanceId":"i","messageId":"m","actorId":"a","triggerType":"reaction"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := &captureHandler{}
			srv := testServer(capture)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/events", strings.NewReader(tt.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if len(capture.events) != 0 {
				t.Errorf("expected no events delivered, got %d", len(capture.events))
			}
		})
	}
}

// TestHealthEndpoint tests /healthz.
func TestHealthEndpoint(t *testing.T) {
	srv := testServer(&captureHandler{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// TestExtractHashtags tests the hashtag pattern.
func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"", nil},
		{"no tags here", nil},
		{"#todo fix roof", []string{"todo"}},
		{"mix #Todo and #URGENT_1 plus #x", []string{"Todo", "URGENT_1", "x"}},
		{"not a # tag", nil},
	}

	for _, tt := range tests {
		got := extractHashtags(tt.content)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("extractHashtags(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}
