package encoder

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunAllStagesSucceed(t *testing.T) {
	var ran [3]bool
	err := Run(context.Background(),
		func(ctx context.Context) error { ran[0] = true; return nil },
		func(ctx context.Context) error { ran[1] = true; return nil },
		func(ctx context.Context) error { ran[2] = true; return nil },
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, r := range ran {
		if !r {
			t.Errorf("Expected stage %d to run", i)
		}
	}
}

func TestRunFirstErrorCancelsOthers(t *testing.T) {
	cause := errors.New("codec crashed")
	var sawCancel bool

	err := Run(context.Background(),
		func(ctx context.Context) error { return cause },
		func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				sawCancel = true
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return errors.New("never cancelled")
			}
		},
	)

	if !errors.Is(err, cause) {
		t.Errorf("Expected first error surfaced, got %v", err)
	}
	if !sawCancel {
		t.Error("Expected remaining stage to observe cancellation")
	}
}

func TestRunAwaitsEveryStage(t *testing.T) {
	done := make(chan struct{})
	err := Run(context.Background(),
		func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			close(done)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	select {
	case <-done:
	default:
		t.Error("Expected Run to wait for the stage before returning")
	}
}
