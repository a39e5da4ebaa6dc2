package quiz_test

import (
	"context"
	"testing"
	"time"

	"quizlive-backend/internal/quiz"

	"github.com/benbjohnson/clock"
)

func TestRegistryCreate(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})

	room, err := registry.Create(nil, testTime)
	assertNil(t, err)
	assertEqual(t, 6, len(room.Code()))

	for _, c := range room.Code() {
		if c >= 'a' && c <= 'z' {
			t.Errorf("room code %q not case normalized", room.Code())
		}
	}

	got, ok := registry.Get(room.Code())
	assertEqual(t, true, ok)
	assertEqual(t, room, got)
	assertEqual(t, 1, registry.Len())
}

func TestRegistryCodesUnique(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})

	codes := map[string]bool{}
	for range 100 {
		room, err := registry.Create(nil, testTime)
		assertNil(t, err)
		if codes[room.Code()] {
			t.Fatalf("duplicate room code %q", room.Code())
		}
		codes[room.Code()] = true
	}
	assertEqual(t, 100, registry.Len())
}

func TestRegistryDelete(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})

	room, err := registry.Create(nil, testTime)
	assertNil(t, err)

	registry.Delete(room.Code())
	_, ok := registry.Get(room.Code())
	assertEqual(t, false, ok)
	assertEqual(t, 0, registry.Len())

	// Deleting an unknown code is a no-op.
	registry.Delete("NOSUCH")
}

func TestRegistryTotals(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{})

	room1, err := registry.Create(nil, testTime)
	assertNil(t, err)
	room2, err := registry.Create(nil, testTime)
	assertNil(t, err)

	addTestQuestion(t, room1, 0)
	addTestQuestion(t, room1, 1)
	addTestQuestion(t, room2, 0)

	addTestParticipant(t, room1, "p1", "alice")

	assertEqual(t, 3, registry.TotalQuestions())
	assertEqual(t, 1, registry.TotalParticipants())
}

func TestRegistrySweep(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{
		MaxAge:      2 * time.Hour,
		EmptyMaxAge: 30 * time.Minute,
	})

	empty, err := registry.Create(nil, testTime)
	assertNil(t, err)
	occupied, err := registry.Create(nil, testTime)
	assertNil(t, err)
	addTestParticipant(t, occupied, "p1", "alice")

	// Too young for either policy.
	evicted := registry.Sweep(testTime.Add(10 * time.Minute))
	assertEqual(t, 0, len(evicted))
	assertEqual(t, 2, registry.Len())

	// Past the empty-room age: only the empty room goes.
	evicted = registry.Sweep(testTime.Add(31 * time.Minute))
	assertEqual(t, 1, len(evicted))
	assertEqual(t, empty.Code(), evicted[0])
	assertEqual(t, 1, registry.Len())

	_, ok := registry.Get(occupied.Code())
	assertEqual(t, true, ok)
}

func TestRegistrySweepMaxAge(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{
		MaxAge:      2 * time.Hour,
		EmptyMaxAge: 30 * time.Minute,
	})

	if _, err := registry.Create(nil, testTime); err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := registry.Create(nil, testTime); err != nil {
		t.Fatalf("%v", err)
	}

	evicted := registry.Sweep(testTime.Add(2*time.Hour + time.Minute))
	assertEqual(t, 2, len(evicted))
	assertEqual(t, 0, registry.Len())
}

func TestSweeperRun(t *testing.T) {
	registry := quiz.NewRegistry(quiz.RegistryOptions{
		EmptyMaxAge: 30 * time.Minute,
	})

	mock := clock.NewMock()
	mock.Set(testTime)

	if _, err := registry.Create(nil, mock.Now()); err != nil {
		t.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := quiz.NewSweeperWithClock(registry, 5*time.Minute, mock)
	go sweeper.Run(ctx)

	// Let Run reach its ticker before moving the clock.
	time.Sleep(10 * time.Millisecond)

	// Ticks land on 5 minute marks; the 35 minute tick is the first
	// past the empty-room age.
	mock.Add(35 * time.Minute)

	deadline := time.Now().Add(time.Second)
	for registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stale room not evicted, registry len %d", registry.Len())
		}
		time.Sleep(time.Millisecond)
	}
}
