package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesRecordedSeries(t *testing.T) {
	c := New("bssaj")
	c.RecordHTTPRequest("GET", "/jobs", 200, 15*time.Millisecond)
	c.RecordUpstream("jobs", "list", 503, time.Millisecond)
	c.RecordUpstream("jobs", "list", 0, time.Millisecond)
	c.RecordCacheLookup("jobs", true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`bssaj_http_requests_total{method="GET",route="/jobs",status_code="200"} 1`,
		`bssaj_upstream_requests_total{collection="jobs",op="list",status_class="5xx"} 1`,
		`bssaj_upstream_requests_total{collection="jobs",op="list",status_class="error"} 1`,
		`bssaj_cache_lookups_total{collection="jobs",result="hit"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordHTTPRequest("GET", "/", 200, 0)
	c.RecordUpstream("x", "get", 200, 0)
	c.RecordCacheLookup("x", false)
}
