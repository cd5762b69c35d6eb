package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/quizprep-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) Client {
	t.Helper()
	c, err := NewClientWithConfig(logger.Nop(), Config{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	})
	if err != nil {
		t.Fatalf("NewClientWithConfig: %v", err)
	}
	return c
}

func outputTextBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	})
	return string(b)
}

func TestGenerateText_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(outputTextBody("hello")))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv, 2).GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "hello" {
		t.Fatalf("text: want=hello got=%q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls: want=2 got=%d", n)
	}
}

func TestGenerateText_NoRetryOnBadRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 3).GenerateText(context.Background(), "sys", "user")
	if err == nil {
		t.Fatalf("expected error")
	}
	var he *openAIHTTPError
	if !errors.As(err, &he) || he.HTTPStatusCode() != http.StatusBadRequest {
		t.Fatalf("want 400 http error got=%v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls: want=1 got=%d", n)
	}
}

func TestGenerateJSONWithImages_SendsSchemaAndImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		format, _ := req["text"].(map[string]any)["format"].(map[string]any)
		if format["type"] != "json_schema" || format["name"] != "questions" {
			t.Errorf("unexpected format: %v", format)
		}
		input := req["input"].([]any)
		user := input[1].(map[string]any)["content"].([]any)
		if len(user) != 2 || user[1].(map[string]any)["type"] != "input_image" {
			t.Errorf("unexpected user content: %v", user)
		}
		_, _ = w.Write([]byte(outputTextBody(`{"questions":[]}`)))
	}))
	defer srv.Close()

	obj, err := newTestClient(t, srv, 0).GenerateJSONWithImages(context.Background(), "sys", "user",
		[]ImageInput{{ImageURL: "data:image/png;base64,AAAA", Detail: "high"}},
		"questions", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSONWithImages: %v", err)
	}
	if _, ok := obj["questions"]; !ok {
		t.Fatalf("missing questions key: %v", obj)
	}
}

func TestStreamText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("missing event-stream accept header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range []string{"Good ", "job\n###", "#\nCorrectness:7"} {
			b, _ := json.Marshal(map[string]any{"type": "response.output_text.delta", "delta": d})
			fmt.Fprintf(w, "event: response.output_text.delta\ndata: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var deltas []string
	full, err := newTestClient(t, srv, 0).StreamText(context.Background(), "sys", "user", func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	if full != "Good job\n####\nCorrectness:7" {
		t.Fatalf("full: got=%q", full)
	}
	if len(deltas) != 3 {
		t.Fatalf("deltas: want=3 got=%d", len(deltas))
	}
}

func TestStreamText_ErrorEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"type\":\"error\",\"error\":{\"message\":\"overloaded\"}}\n\n")
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 0).StreamText(context.Background(), "sys", "user", nil)
	if err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("want stream error got=%v", err)
	}
}

func TestStreamSSE_TrailingEventWithoutBlankLine(t *testing.T) {
	var got []string
	err := streamSSE(strings.NewReader(": comment\nevent: a\ndata: one\n\ndata: two"), func(event, data string) error {
		got = append(got, event+"="+data)
		return nil
	})
	if err != nil {
		t.Fatalf("streamSSE: %v", err)
	}
	if len(got) != 2 || got[0] != "a=one" || got[1] != "=two" {
		t.Fatalf("events: got=%v", got)
	}
}

func TestNewClientWithConfig_RequiresKey(t *testing.T) {
	if _, err := NewClientWithConfig(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

