package metrics

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware)
	teapot := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}
	r.Get("/", teapot)
	r.Get("/healthz", teapot)
	r.Get("/schema/status", teapot)
	r.Get("/properties/craftWeaponsByClass/{classChar}", teapot)
	r.Get("/raw/schema/{key}", teapot)
	r.Get("/raw/items_game/{key}", teapot)
	return r
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Exact routes keep their path.
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/schema/status", "/schema/status"},

		// Parameterized routes collapse to their pattern.
		{"/properties/craftWeaponsByClass/Scout", "/properties/craftWeaponsByClass/{classChar}"},
		{"/properties/craftWeaponsByClass/spy", "/properties/craftWeaponsByClass/{classChar}"},
		{"/raw/schema/qualities", "/raw/schema/{key}"},
		{"/raw/items_game/war_definitions", "/raw/items_game/{key}"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/.env", "other"},
		{"/raw/schema/a/b", "other"},
	}

	h := newRouter()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			labelled := func() float64 {
				return testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.want, "GET", codeFor(tt.want)))
			}
			before := labelled()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			if got := labelled() - before; got != 1 {
				t.Errorf("GET %s: counter %q delta = %v, want 1", tt.path, tt.want, got)
			}
		})
	}
}

func codeFor(label string) string {
	if label == "other" {
		return "404"
	}
	return "418"
}

// TestMetricsCardinality verifies that 100 unique raw keys produce exactly
// 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	h := newRouter()
	before := testutil.CollectAndCount(httpRequestsTotal)
	for i := 0; i < 100; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw/items_game/key"+strconv.Itoa(i), nil))
	}
	if got := testutil.CollectAndCount(httpRequestsTotal) - before; got > 1 {
		t.Errorf("100 raw keys added %d series, want at most 1", got)
	}
}

func TestMiddlewareOutsideRouterCountsOther(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw/schema/items", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("other", "GET", "418"))
	if after-before != 1 {
		t.Errorf("counter delta = %v, want 1", after-before)
	}
}

func TestRefreshCollectors(t *testing.T) {
	before := testutil.ToFloat64(refreshTotal.WithLabelValues(OutcomeFailed))
	IncRefresh(OutcomeFailed)
	if got := testutil.ToFloat64(refreshTotal.WithLabelValues(OutcomeFailed)); got-before != 1 {
		t.Errorf("failed outcome delta = %v, want 1", got-before)
	}

	at := time.Unix(1700000000, 0)
	SetSnapshot(42, at)
	if got := testutil.ToFloat64(snapshotItems); got != 42 {
		t.Errorf("snapshot items = %v, want 42", got)
	}
	if got := testutil.ToFloat64(snapshotFetchedTimestamp); got != 1700000000 {
		t.Errorf("fetched timestamp = %v", got)
	}
}
