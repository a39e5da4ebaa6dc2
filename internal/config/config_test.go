package config_test

import (
	"testing"
	"time"

	"quizlive-backend/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("nosuch.env")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if got, want := cfg.Addr, ":3001"; got != want {
		t.Errorf("addr: got %q, want %q", got, want)
	}
	if got, want := cfg.Room.WebsocketReadLimit, int64(4096); got != want {
		t.Errorf("read limit: got %d, want %d", got, want)
	}
	if got, want := cfg.Room.SweepInterval, 5*time.Minute; got != want {
		t.Errorf("sweep interval: got %v, want %v", got, want)
	}
	if got, want := cfg.Room.MaxAge, 2*time.Hour; got != want {
		t.Errorf("max age: got %v, want %v", got, want)
	}
	if got, want := cfg.Room.EmptyMaxAge, 30*time.Minute; got != want {
		t.Errorf("empty max age: got %v, want %v", got, want)
	}
	if got, want := cfg.Rate.Window, time.Second; got != want {
		t.Errorf("rate window: got %v, want %v", got, want)
	}
	if got, want := cfg.Rate.Limit, 25; got != want {
		t.Errorf("rate limit: got %d, want %d", got, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("ROOM_SWEEP_INTERVAL", "1m")
	t.Setenv("ROOM_EMPTY_MAX_AGE", "10m")
	t.Setenv("RATE_LIMIT", "5")

	cfg, err := config.Load("nosuch.env")
	if err != nil {
		t.Fatalf("%v", err)
	}

	if got, want := cfg.Addr, ":9999"; got != want {
		t.Errorf("addr: got %q, want %q", got, want)
	}
	if got, want := cfg.Room.SweepInterval, time.Minute; got != want {
		t.Errorf("sweep interval: got %v, want %v", got, want)
	}
	if got, want := cfg.Room.EmptyMaxAge, 10*time.Minute; got != want {
		t.Errorf("empty max age: got %v, want %v", got, want)
	}
	if got, want := cfg.Rate.Limit, 5; got != want {
		t.Errorf("rate limit: got %d, want %d", got, want)
	}
}
