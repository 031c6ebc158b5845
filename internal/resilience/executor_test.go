package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

func newTestExecutor(cfg Config) *Executor {
	return NewExecutor(cfg, zap.NewNop().Sugar())
}

func TestExecuteCallsOnceWithoutRetry(t *testing.T) {
	exec := newTestExecutor(Config{BreakerEnabled: false})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "classify", func(context.Context) error {
		attempts++
		return errTemp
	}, nil)
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := newTestExecutor(Config{
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errTemp := errors.New("upstream 503")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "classify", func(context.Context) error {
			return errTemp
		}, nil)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected upstream error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "classify", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if !IsCircuitOpen(err) {
		t.Fatalf("IsCircuitOpen should report true for %v", err)
	}
	if got := exec.State("classify"); got != gobreaker.StateOpen.String() {
		t.Fatalf("expected open state, got %s", got)
	}
	if got := exec.State("upload"); got != gobreaker.StateClosed.String() {
		t.Fatalf("unused operation should be closed, got %s", got)
	}
}

func TestExecuteFilteredErrorsDoNotTrip(t *testing.T) {
	exec := newTestExecutor(Config{
		BreakerEnabled:     true,
		BreakerMinRequests: 2,
	})

	errClient := errors.New("bad request")
	ignore := func(err error) bool { return !errors.Is(err, errClient) }

	for i := 0; i < 5; i++ {
		calls := 0
		_ = exec.Execute(context.Background(), "upload", func(context.Context) error {
			calls++
			return errClient
		}, ignore)
		if calls != 1 {
			t.Fatalf("operation should run on iteration %d", i)
		}
	}
}

func TestExecuteCancelledContextSkipsCall(t *testing.T) {
	exec := newTestExecutor(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "classify", func(context.Context) error {
		t.Fatalf("operation must not run with a cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
