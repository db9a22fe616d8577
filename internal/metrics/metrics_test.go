package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func counterValue(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecorderCounts(t *testing.T) {
	rec := NewRecorder()
	rec.RecordParse("Final", 5*time.Millisecond, 1, 0)
	rec.RecordParse("Final", 3*time.Millisecond, 0, 2)
	rec.RecordParse("Upcoming", time.Millisecond, 0, 0)
	rec.RecordFetchFailure("report")
	rec.RecordCacheHit()

	if got := counterValue(t, rec, "hockey_report_games_parsed_total", map[string]string{"status": "Final"}); got != 2 {
		t.Errorf("final games = %v, expected 2", got)
	}
	if got := counterValue(t, rec, "hockey_report_goals_fallback_total", nil); got != 1 {
		t.Errorf("fallback goals = %v, expected 1", got)
	}
	if got := counterValue(t, rec, "hockey_report_goals_excluded_total", nil); got != 2 {
		t.Errorf("excluded goals = %v, expected 2", got)
	}
	if got := counterValue(t, rec, "hockey_report_fetch_failures_total", map[string]string{"source": "report"}); got != 1 {
		t.Errorf("fetch failures = %v, expected 1", got)
	}
	if got := counterValue(t, rec, "hockey_report_report_cache_hits_total", nil); got != 1 {
		t.Errorf("cache hits = %v, expected 1", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordParse("Final", time.Millisecond, 1, 1)
	rec.RecordFetchFailure("feed")
	rec.RecordCacheHit()
	rec.RecordHTTPRequest("/health", "200")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("nil recorder handler status = %d, expected 404", w.Code)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	rec := NewRecorder()
	rec.RecordHTTPRequest("/api/v1/games", "200")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `hockey_report_http_requests_total{code="200",route="/api/v1/games"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", w.Body.String())
	}
}
