package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("not found")

	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent errors)", calls)
	}
}

func TestRetryRetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})

	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := errors.New("still down")

	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return Retryable(transient)
	})

	if !errors.Is(err, transient) {
		t.Fatalf("err = %v, want wrapped %v", err, transient)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Minute, func() error {
		return Retryable(errors.New("transient"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported as retryable")
	}
	if !IsRetryable(Retryable(errors.New("transient"))) {
		t.Error("wrapped error not reported as retryable")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
