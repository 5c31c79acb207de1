package infra

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ranking-gateway/gateway/domain"
)

func startScheduler(t *testing.T, opts ...SchedulerOption) *Scheduler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := NewScheduler(opts...)
	s.Start(ctx)
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestScheduler_StartsAreSpacedByCooldown(t *testing.T) {
	const cooldown = 40 * time.Millisecond
	s := startScheduler(t, WithCooldown(cooldown), WithMaxPending(10))

	var mu sync.Mutex
	var starts []time.Time

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Schedule(context.Background(), func(context.Context) error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(starts) != 4 {
		t.Fatalf("expected 4 executions, got %d", len(starts))
	}
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < cooldown {
			t.Fatalf("gap between call %d and %d is %s, want >= %s", i-1, i, gap, cooldown)
		}
	}
}

func TestScheduler_RunsInAdmissionOrder(t *testing.T) {
	s := startScheduler(t, WithCooldown(time.Millisecond), WithMaxPending(10))

	gate := make(chan struct{})
	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Schedule(context.Background(), func(context.Context) error {
			<-gate
			return nil
		})
	}()
	waitFor(t, "blocking task admitted", func() bool { return s.Pending() == 1 })

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Schedule(context.Background(), func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		waitFor(t, "task admitted", func() bool { return s.Pending() == i+2 })
	}

	close(gate)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestScheduler_QueueFullRejectsWithoutStateChange(t *testing.T) {
	s := startScheduler(t, WithCooldown(time.Millisecond), WithMaxPending(2))

	gate := make(chan struct{})
	blocking := func(context.Context) error {
		<-gate
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Schedule(context.Background(), blocking)
		}()
	}
	waitFor(t, "two tasks admitted", func() bool { return s.Pending() == 2 })

	called := false
	start := time.Now()
	_, err := s.Schedule(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatalf("expected immediate rejection")
	}
	if got := s.Pending(); got != 2 {
		t.Fatalf("expected pending to stay at 2, got %d", got)
	}

	close(gate)
	wg.Wait()

	if called {
		t.Fatalf("rejected action must never run")
	}
	if got := s.Pending(); got != 0 {
		t.Fatalf("expected pending 0 after drain, got %d", got)
	}
}

func TestScheduler_FailureDoesNotBlockNextTask(t *testing.T) {
	const cooldown = 30 * time.Millisecond
	s := startScheduler(t, WithCooldown(cooldown))

	boom := errors.New("boom")
	var failedAt time.Time
	_, err := s.Schedule(context.Background(), func(context.Context) error {
		failedAt = time.Now()
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected action error to be returned, got %v", err)
	}

	var nextAt time.Time
	_, err = s.Schedule(context.Background(), func(context.Context) error {
		nextAt = time.Now()
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gap := nextAt.Sub(failedAt); gap < cooldown {
		t.Fatalf("cooldown must advance after failures too, gap=%s", gap)
	}
}

func TestScheduler_ReportsQueuedTime(t *testing.T) {
	s := startScheduler(t, WithCooldown(60*time.Millisecond))

	first, err := s.Schedule(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first > 30*time.Millisecond {
		t.Fatalf("first task should not wait, queued=%s", first)
	}

	second, err := s.Schedule(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second < 40*time.Millisecond {
		t.Fatalf("second task should wait for the cooldown, queued=%s", second)
	}
}

func TestScheduler_RecoversFromPanickingAction(t *testing.T) {
	s := startScheduler(t, WithCooldown(time.Millisecond))

	_, err := s.Schedule(context.Background(), func(context.Context) error { panic("kaboom") })
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}

	_, err = s.Schedule(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("expected loop to keep running, got %v", err)
	}
}

func TestScheduler_ActionContextIgnoresCallerCancel(t *testing.T) {
	s := startScheduler(t, WithCooldown(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	gate := make(chan struct{})
	ran := make(chan error, 1)

	go func() {
		_, _ = s.Schedule(ctx, func(actx context.Context) error {
			<-gate
			ran <- actx.Err()
			return nil
		})
	}()
	waitFor(t, "task admitted", func() bool { return s.Pending() == 1 })

	cancel()
	close(gate)

	select {
	case err := <-ran:
		if err != nil {
			t.Fatalf("admitted action must not see caller cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("action did not run")
	}
}

func TestScheduler_StopRejectsNewWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(WithCooldown(time.Millisecond))
	s.Start(ctx)
	cancel()

	_, err := s.Schedule(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, domain.ErrSchedulerStopped) {
		waitFor(t, "scheduler stop", func() bool {
			_, err = s.Schedule(context.Background(), func(context.Context) error { return nil })
			return errors.Is(err, domain.ErrSchedulerStopped)
		})
	}
	if got := s.Pending(); got != 0 {
		t.Fatalf("expected pending 0 after stop, got %d", got)
	}
}

func TestScheduler_RetryAfterHasOneSecondFloor(t *testing.T) {
	s := NewScheduler(WithCooldown(10 * time.Millisecond))
	if got := s.RetryAfter(); got != time.Second {
		t.Fatalf("expected 1s floor, got %s", got)
	}
}
