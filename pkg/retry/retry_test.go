package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func(context.Context) error {
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	wantErr := errors.New("still down")
	attempts := 0
	err := Do(context.Background(), fastConfig(2), func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the last attempt's error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	wantErr := errors.New("bad credentials")
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func(context.Context) error {
		attempts++
		return Permanent(wantErr)
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the permanent error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, &Config{MaxRetries: 10, InitialInterval: time.Minute}, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("expected an error after cancellation")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry after cancel)", attempts)
	}
}

func TestDoNilConfigUsesDefaults(t *testing.T) {
	err := Do(context.Background(), nil, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestIntervalIsCapped(t *testing.T) {
	cfg := &Config{
		InitialInterval: time.Second,
		MaxInterval:     2 * time.Second,
		Multiplier:      10,
	}
	if got := interval(cfg, 5); got > 2*time.Second {
		t.Errorf("interval = %v, want capped at %v", got, cfg.MaxInterval)
	}
}
