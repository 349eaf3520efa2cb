package resilience

import (
	"errors"
	"testing"
	"time"
)

var errFail = errors.New("downstream failure")

func failCalls(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		cb.Call(func() error { return errFail })
	}
}

func TestCircuitBreaker_StateClosed(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	if cb.GetState() != StateClosed {
		t.Errorf("Expected initial state to be Closed, got %d", cb.GetState())
	}

	if err := cb.Call(func() error { return nil }); err != nil {
		t.Errorf("Expected successful call in Closed state, got %v", err)
	}
}

func TestCircuitBreaker_OpenAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	failCalls(cb, 2)
	if cb.GetState() != StateClosed {
		t.Error("Expected state to still be Closed after 2 failures")
	}

	// Third failure should open circuit
	failCalls(cb, 1)
	if cb.GetState() != StateOpen {
		t.Error("Expected state to be Open after 3 failures")
	}

	// Calls now fail fast without invoking the function
	invoked := false
	err := cb.Call(func() error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if invoked {
		t.Error("Expected function not to be invoked while circuit open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 1*time.Second)

	failCalls(cb, 2)
	cb.Call(func() error { return nil })
	failCalls(cb, 2)

	if cb.GetState() != StateClosed {
		t.Error("Expected circuit to remain Closed; success should reset the failure count")
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 50*time.Millisecond)

	failCalls(cb, 3)
	if cb.GetState() != StateOpen {
		t.Fatal("Expected circuit to be Open")
	}

	// Wait for reset timeout
	time.Sleep(80 * time.Millisecond)

	// Successful probes close the circuit again
	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("Expected probe %d to be allowed, got %v", i, err)
		}
	}

	if cb.GetState() != StateClosed {
		t.Errorf("Expected circuit Closed after successful probes, got %d", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, 50*time.Millisecond)

	failCalls(cb, 3)
	time.Sleep(80 * time.Millisecond)

	// First probe fails; circuit reopens immediately
	failCalls(cb, 1)

	if cb.GetState() != StateOpen {
		t.Errorf("Expected circuit to reopen after failed probe, got %d", cb.GetState())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 1*time.Second)

	failCalls(cb, 2)
	if cb.GetState() != StateOpen {
		t.Fatal("Expected circuit to be Open")
	}

	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Error("Expected circuit Closed after Reset")
	}
}

func TestCircuitBreaker_GetStats(t *testing.T) {
	cb := NewCircuitBreaker("test", 5, 1*time.Second)

	cb.Call(func() error { return nil })
	failCalls(cb, 1)

	state, requests, failures, failureRate := cb.GetStats()
	if state != StateClosed {
		t.Errorf("Expected Closed state, got %d", state)
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
	if failures != 1 {
		t.Errorf("Expected 1 failure, got %d", failures)
	}
	if failureRate != 50.0 {
		t.Errorf("Expected 50%% failure rate, got %f", failureRate)
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 1*time.Second)

	var transitions []CircuitState
	cb.OnStateChange(func(name string, state CircuitState) {
		if name != "test" {
			t.Errorf("Expected breaker name 'test', got %q", name)
		}
		transitions = append(transitions, state)
	})

	failCalls(cb, 2)

	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Errorf("Expected one transition to Open, got %v", transitions)
	}
}
