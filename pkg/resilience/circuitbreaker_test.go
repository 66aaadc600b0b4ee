package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failingCalls(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Minute,
	})

	failingCalls(cb, 2)
	if cb.GetState() != StateClosed {
		t.Fatal("circuit opened below the failure threshold")
	}
	failingCalls(cb, 1)
	if cb.GetState() != StateOpen {
		t.Fatal("circuit should open at the failure threshold")
	}

	err := cb.Execute(func() error {
		t.Error("fn must not run while the circuit is open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitHalfOpenProbeRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold:    2,
		ResetTimeout:        10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 2)
	if cb.GetState() != StateOpen {
		t.Fatal("circuit should be open")
	}

	time.Sleep(15 * time.Millisecond)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe after reset timeout should run: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Error("successful probe should close the circuit")
	}
}

func TestCircuitHalfOpenProbeFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold:    2,
		ResetTimeout:        10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	failingCalls(cb, 2)
	time.Sleep(15 * time.Millisecond)
	failingCalls(cb, 1)
	if cb.GetState() != StateOpen {
		t.Error("failed probe should reopen the circuit")
	}
}

func TestCircuitSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Minute,
	})

	failingCalls(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failingCalls(cb, 2)
	if cb.GetState() != StateClosed {
		t.Error("success should reset the consecutive failure count")
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" || StateHalfOpen.String() != "half-open" {
		t.Error("State.String mismatch")
	}
}
