package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errProcess = errors.New("process failed")

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls >= 3 {
				cancel()
			}

			return nil
		},
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Loop() error = %v, want context.Canceled", err)
	}

	if calls < 3 {
		t.Errorf("Process called %d times, want at least 3", calls)
	}
}

func TestLoopContinuesAfterProcessError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := Loop(ctx, Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			calls++
			if calls >= 2 {
				cancel()
			}

			return errProcess
		},
	})

	// Without OnError the loop logs and keeps going until canceled.
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Loop() error = %v, want context.Canceled", err)
	}

	if calls < 2 {
		t.Errorf("Process called %d times, want at least 2", calls)
	}
}

func TestLoopOnErrorDeclines(t *testing.T) {
	err := Loop(context.Background(), Config{
		Name:         "test",
		PollInterval: time.Millisecond,
		Process: func(context.Context) error {
			return errProcess
		},
		OnError: func(error) bool { return false },
	})

	if !errors.Is(err, errProcess) {
		t.Errorf("Loop() error = %v, want the process error", err)
	}
}

func TestWait(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait(0) error = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() on canceled context error = %v, want context.Canceled", err)
	}
}

func TestRunWithTimeout(t *testing.T) {
	err := RunWithTimeout(context.Background(), time.Minute, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("inner context has no deadline")
		}

		return nil
	})
	if err != nil {
		t.Errorf("RunWithTimeout() error = %v, want nil", err)
	}
}
