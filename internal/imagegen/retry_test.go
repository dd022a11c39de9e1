package imagegen

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryPolicyAttemptBudget(t *testing.T) {
	cases := []struct {
		name       string
		maxRetries int
		wantCalls  int
	}{
		{"no retry", 0, 1},
		{"one retry", 1, 2},
		{"three retries", 3, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			policy := RetryPolicy{MaxRetries: tc.maxRetries, Delay: time.Millisecond}
			calls := 0
			boom := fmt.Errorf("%w: upstream down", ErrModelFailure)
			err := policy.Do(context.Background(), func(context.Context) error {
				calls++
				return boom
			})
			if !errors.Is(err, ErrModelFailure) {
				t.Fatalf("err = %v, want ErrModelFailure", err)
			}
			if calls != tc.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tc.wantCalls)
			}
		})
	}
}

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Delay: time.Millisecond}
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: flaky", ErrModelFailure)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyInvalidImageNotRetried(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Delay: time.Millisecond}
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("%w: garbage bytes", ErrInvalidImage)
	})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("err = %v, want ErrInvalidImage", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicyForever(t *testing.T) {
	policy := RetryPolicy{MaxRetries: RetryForever, Delay: time.Microsecond}
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 10 {
			return fmt.Errorf("%w: still failing", ErrModelFailure)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 10 {
		t.Errorf("calls = %d, want 10", calls)
	}
}

func TestRetryPolicyCancelledDuringDelay(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return fmt.Errorf("%w: fail then wait", ErrModelFailure)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
