package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/autodealer/showroom/internal/core/ports"
)

func TestDispatcher_PreservesOrderPerKey(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4}, zerolog.Nop())
	d.Start(context.Background())

	var mu sync.Mutex
	got := map[string][]int{}
	for i := 0; i < 50; i++ {
		for _, key := range []string{"chat-a", "chat-b", "notification-c"} {
			key, i := key, i
			if !d.Enqueue(ports.Task{Name: "t", Key: key, Run: func(context.Context) error {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			}}) {
				t.Fatalf("enqueue dropped")
			}
		}
	}
	d.Stop()

	for key, seq := range got {
		if len(seq) != 50 {
			t.Fatalf("%s: expected 50 tasks, got %d", key, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("%s: out of order at %d: %v", key, i, seq)
			}
		}
	}
}

func TestDispatcher_RetriesThenGivesUp(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxAttempts: 3, Backoff: time.Millisecond}, zerolog.Nop())
	d.Start(context.Background())

	var calls int32
	d.Enqueue(ports.Task{Name: "flaky", Key: "k", Run: func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}})

	var okCalls int32
	d.Enqueue(ports.Task{Name: "eventually", Key: "k", Run: func(context.Context) error {
		if atomic.AddInt32(&okCalls, 1) < 2 {
			return errors.New("first attempt fails")
		}
		return nil
	}})
	d.Stop()

	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if okCalls != 2 {
		t.Fatalf("expected success on the second attempt, got %d calls", okCalls)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1}, zerolog.Nop())
	// Not started: the buffer fills and further tasks are dropped.
	accepted := 0
	for i := 0; i < channelBuffer+10; i++ {
		if d.Enqueue(ports.Task{Name: "t", Key: "k", Run: func(context.Context) error { return nil }}) {
			accepted++
		}
	}
	if accepted != channelBuffer {
		t.Fatalf("expected %d accepted, got %d", channelBuffer, accepted)
	}

	d.Start(context.Background())
	d.Stop()
	if d.Enqueue(ports.Task{Name: "t", Key: "k", Run: func(context.Context) error { return nil }}) {
		t.Fatalf("stopped dispatcher must drop tasks")
	}
}

func TestInline(t *testing.T) {
	ran := false
	ok := Inline{Log: zerolog.Nop()}.Enqueue(ports.Task{Name: "t", Run: func(context.Context) error {
		ran = true
		return errors.New("ignored")
	}})
	if !ok || !ran {
		t.Fatalf("inline queue must run the task")
	}
}
