package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aadit-17/RevEase/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/v1/reviews", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("gemini", "generate", 200, 300*time.Millisecond)
	observability.ObserveCache("redis", "hit")
	observability.ObserveTask("sentiment_persist", nil)
	observability.ObserveTask("reply_persist", errors.New("boom"))

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"revease_http_requests_total",
		"revease_external_requests_total",
		"revease_cache_events_total",
		`revease_background_tasks_total{outcome="ok",task="sentiment_persist"}`,
		`revease_background_tasks_total{outcome="error",task="reply_persist"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}
