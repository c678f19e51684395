package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

// TestAggregator_RegisterAndCheck verifies registration and single checks.
func TestAggregator_RegisterAndCheck(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", healthyChecker("b"))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}

	result, err := agg.Check(context.Background(), "a")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if result.Status != StatusHealthy {
		t.Errorf("expected healthy, got %v", result.Status)
	}

	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("expected ErrCheckerNotFound, got: %v", err)
	}
}

// TestAggregator_Unregister verifies removal.
func TestAggregator_Unregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", healthyChecker("a"))
	agg.Register("b", healthyChecker("b"))

	agg.Unregister("a")

	names := agg.CheckerNames()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("expected [b], got %v", names)
	}
}

// TestAggregator_CheckAll verifies fan-out and result collection.
func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("ok", healthyChecker("ok"))
	agg.Register("warn", NewCheckerFunc("warn", func(ctx context.Context) Result {
		return Degraded("slow")
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["ok"].Status != StatusHealthy {
		t.Errorf("expected healthy, got %v", results["ok"].Status)
	}
	if results["warn"].Status != StatusDegraded {
		t.Errorf("expected degraded, got %v", results["warn"].Status)
	}
	if results["ok"].Duration <= 0 {
		t.Error("expected check duration to be recorded")
	}
}

// TestAggregator_OverallStatus verifies result folding.
func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	if got := agg.OverallStatus(nil); got != StatusHealthy {
		t.Errorf("empty: expected healthy, got %v", got)
	}

	results := map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusDegraded},
	}
	if got := agg.OverallStatus(results); got != StatusDegraded {
		t.Errorf("expected degraded, got %v", got)
	}

	results["c"] = Result{Status: StatusUnhealthy}
	if got := agg.OverallStatus(results); got != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", got)
	}
}

// TestAggregator_Timeout verifies slow checks are reported as timed out.
func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		select {
		case <-time.After(5 * time.Second):
			return Healthy("too late")
		case <-ctx.Done():
			return Unhealthy("cancelled", ctx.Err())
		}
	}))

	results := agg.CheckAll(context.Background())

	got := results["slow"]
	if got.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", got.Status)
	}
}
