package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionsStub(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
	}))
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("http://localhost", "", "gemini-2.5-flash-lite", 5); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestComplete(t *testing.T) {
	srv := completionsStub(t, "positive")
	defer srv.Close()

	c, err := New(srv.URL, "test-key", "gemini-2.5-flash-lite", 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Complete(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "positive" {
		t.Fatalf("out = %q, want %q", out, "positive")
	}
}

func TestComplete_EmptyCompletionIsError(t *testing.T) {
	srv := completionsStub(t, "  ")
	defer srv.Close()

	c, err := New(srv.URL, "test-key", "gemini-2.5-flash-lite", 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Complete(context.Background(), "classify this"); err == nil {
		t.Fatal("expected error for blank completion")
	}
}

func TestComplete_UpstreamErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "test-key", "gemini-2.5-flash-lite", 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Complete(context.Background(), "classify this"); err == nil {
		t.Fatal("expected error from upstream failure")
	}
}
