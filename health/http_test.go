package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestLivenessHandler verifies the liveness probe.
func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("expected body OK, got %q", rec.Body.String())
	}
}

// TestReadinessHandler verifies readiness maps status to HTTP codes.
func TestReadinessHandler(t *testing.T) {
	cases := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"degraded", Degraded("slow"), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("down", ErrCheckFailed), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("probe", NewCheckerFunc("probe", func(ctx context.Context) Result {
				return tc.result
			}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

			ReadinessHandler(agg)(rec, req)

			if rec.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if rec.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, rec.Body.String())
			}
		})
	}
}

// TestDetailedHandler verifies the JSON detail endpoint.
func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("probe", NewCheckerFunc("probe", func(ctx context.Context) Result {
		return Degraded("cache warm-up").WithDetails(map[string]any{"utilization": 85})
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	DetailedHandler(agg)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("expected overall degraded, got %q", resp.Status)
	}
	check, ok := resp.Checks["probe"]
	if !ok {
		t.Fatal("expected probe check in response")
	}
	if check.Message != "cache warm-up" {
		t.Errorf("expected check message, got %q", check.Message)
	}
}
