package advice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestGuidance verifies the request shape and extraction of the message
// content.
func TestGuidance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("authorization = %q", got)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", body.Model)
		}
		if len(body.Messages) != 1 || !strings.Contains(body.Messages[0].Content, `"Barbell Bench Press"`) {
			t.Errorf("prompt should name the exercise, got %+v", body.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "## Equipment Required\n\n- Barbell"}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "gpt-4o-mini")
	message, err := c.Guidance(context.Background(), "Barbell Bench Press")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(message, "## Equipment Required") {
		t.Errorf("message = %q, want markdown guidance", message)
	}
}

// TestGuidanceEmptyName verifies the required-name check happens before
// any network call.
func TestGuidanceEmptyName(t *testing.T) {
	c := New("http://unused.invalid", "", "gpt-4o-mini")
	if _, err := c.Guidance(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty exercise name")
	}
}

// TestGuidanceUpstreamError verifies a non-200 upstream response maps to a
// single error.
func TestGuidanceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "key-1", "gpt-4o-mini")
	if _, err := c.Guidance(context.Background(), "Squat"); err == nil {
		t.Fatal("expected error")
	}
}
