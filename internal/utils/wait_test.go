package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	orig := sleep
	t.Cleanup(func() { sleep = orig })

	var slept time.Duration
	sleep = func(d time.Duration) { slept = d }

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected no error for zero duration, got %v", err)
	}
	if slept != 0 {
		t.Fatalf("expected no sleep for zero duration, got %s", slept)
	}

	if err := WaitFor(context.Background(), 500*time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if slept != 500*time.Millisecond {
		t.Fatalf("expected sleep of 500ms, got %s", slept)
	}

	block := make(chan struct{})
	defer close(block)
	sleep = func(time.Duration) { <-block }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
