package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRun_UnboundedRunsEveryTask(t *testing.T) {
	var count int64
	tasks := make([]Task, 50)
	for i := range tasks {
		tasks[i] = func(ctx context.Context, index int) error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}
	s := &Scheduler{}
	if err := s.Run(context.Background(), tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}

func TestRun_BoundedRunsInWaves(t *testing.T) {
	var mu sync.Mutex
	maxConcurrent := 0
	current := 0

	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = func(ctx context.Context, index int) error {
			mu.Lock()
			current++
			if current > maxConcurrent {
				maxConcurrent = current
			}
			mu.Unlock()

			mu.Lock()
			current--
			mu.Unlock()
			return nil
		}
	}
	s := &Scheduler{MaxThreads: 4}
	if err := s.Run(context.Background(), tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if maxConcurrent > 4 {
		t.Errorf("maxConcurrent = %d, want <= 4", maxConcurrent)
	}
}

func TestRun_TaskErrorAbortsAndPropagates(t *testing.T) {
	sentinel := errors.New("worker failed")
	tasks := []Task{
		func(ctx context.Context, index int) error { return nil },
		func(ctx context.Context, index int) error { return sentinel },
		func(ctx context.Context, index int) error { return nil },
	}
	s := &Scheduler{MaxThreads: 3}
	err := s.Run(context.Background(), tasks)
	if !errors.Is(err, sentinel) {
		t.Fatalf("Run() error = %v, want %v", err, sentinel)
	}
}

func TestRun_OnWaveDoneAdvancesByWaveSize(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	tasks := make([]Task, 9)
	for i := range tasks {
		tasks[i] = func(ctx context.Context, index int) error { return nil }
	}
	s := &Scheduler{MaxThreads: 3, OnWaveDone: func(completed, total int) {
		mu.Lock()
		calls = append(calls, completed)
		mu.Unlock()
	}}
	if err := s.Run(context.Background(), tasks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 3 || calls[0] != 3 || calls[1] != 6 || calls[2] != 9 {
		t.Errorf("calls = %v, want [3 6 9]", calls)
	}
}

func TestRun_EmptyTaskListIsNoop(t *testing.T) {
	s := &Scheduler{}
	if err := s.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run(nil) = %v, want nil", err)
	}
}
