package common

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), func() error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDo_DefaultIsSingleAttempt(t *testing.T) {
	attempts := 0
	sentinel := errors.New("boom")

	err := Do(context.Background(), func() error {
		attempts++
		return sentinel
	})

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	// 没有重试时原样返回错误
	if err != sentinel {
		t.Errorf("expected original error, got: %v", err)
	}
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	tests := []struct {
		name             string
		failUntilN       int
		maxRetries       int
		expectedAttempts int
		shouldSucceed    bool
	}{
		{name: "success on second attempt", failUntilN: 2, maxRetries: 3, expectedAttempts: 2, shouldSucceed: true},
		{name: "success on last retry", failUntilN: 4, maxRetries: 3, expectedAttempts: 4, shouldSucceed: true},
		{name: "fail all attempts", failUntilN: 10, maxRetries: 3, expectedAttempts: 4, shouldSucceed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Do(context.Background(), func() error {
				attempts++
				if attempts < tt.failUntilN {
					return errors.New("temporary failure")
				}
				return nil
			}, WithMaxRetries(tt.maxRetries), WithInitialDelay(time.Millisecond))

			if tt.shouldSucceed && err != nil {
				t.Errorf("expected success, got error: %v", err)
			}
			if !tt.shouldSucceed && err == nil {
				t.Error("expected error, got nil")
			}
			if attempts != tt.expectedAttempts {
				t.Errorf("expected %d attempts, got %d", tt.expectedAttempts, attempts)
			}
		})
	}
}

func TestDo_Permanent(t *testing.T) {
	attempts := 0
	sentinel := errors.New("404")

	err := Do(context.Background(), func() error {
		attempts++
		return Permanent(sentinel)
	}, WithMaxRetries(5), WithInitialDelay(time.Millisecond))

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if err != sentinel {
		t.Errorf("expected unwrapped permanent error, got: %v", err)
	}
}

func TestDo_RetryIf(t *testing.T) {
	attempts := 0
	retryable := errors.New("503")
	fatal := errors.New("401")

	err := Do(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return retryable
		}
		return fatal
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return err == retryable }),
	)

	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("expected fatal error, got: %v", err)
	}
}

func TestDo_ContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return nil
	})

	if attempts != 0 {
		t.Errorf("expected no attempt, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestDo_ContextTimeoutDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return errors.New("always fails")
	}, WithInitialDelay(30*time.Millisecond), WithMaxRetries(10))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded error, got: %v", err)
	}
	if attempts == 0 {
		t.Error("expected at least one attempt")
	}
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	if err == nil || err.Error() != "retry: function cannot be nil" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDo_ErrorWrapping(t *testing.T) {
	originalErr := errors.New("original error")

	err := Do(context.Background(), func() error {
		return originalErr
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	if !errors.Is(err, originalErr) {
		t.Errorf("expected error to wrap original error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "retry failed after 3 attempts") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name         string
		attempt      int
		initialDelay time.Duration
		maxDelay     time.Duration
		multiplier   float64
		expected     time.Duration
	}{
		{"first retry", 1, 100 * time.Millisecond, time.Second, 2.0, 100 * time.Millisecond},
		{"third retry", 3, 100 * time.Millisecond, time.Second, 2.0, 400 * time.Millisecond},
		{"capped at max delay", 5, 100 * time.Millisecond, 500 * time.Millisecond, 2.0, 500 * time.Millisecond},
		{"multiplier of 1.5", 2, 100 * time.Millisecond, time.Second, 1.5, 150 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateDelay(tt.attempt, tt.initialDelay, tt.maxDelay, tt.multiplier); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
