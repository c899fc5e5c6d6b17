package cron

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brightpath/academy-backend/pkg/logger"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

type fakeLock struct {
	available bool
	acquires  int
	releases  int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return l.available, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRegistry_SkipsNilJobs(t *testing.T) {
	job := &countingJob{name: "a"}
	registry := NewRegistry(nil, job, nil)
	registry.Register(nil)
	registry.Register(&countingJob{name: "b"})

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "a" || jobs[1].Name() != "b" {
		t.Fatalf("unexpected order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}

func TestService_RunExecutesJobsEachCycle(t *testing.T) {
	job := &countingJob{name: "tick"}
	lock := &fakeLock{available: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run returned %v", err)
	}

	// one immediate cycle plus several ticks
	if got := job.runs.Load(); got < 2 {
		t.Fatalf("expected at least 2 runs, got %d", got)
	}
	if lock.releases != lock.acquires {
		t.Fatalf("lock releases %d != acquires %d", lock.releases, lock.acquires)
	}
}

func TestService_SkipsCycleWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "tick"}
	lock := &fakeLock{available: false}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
		Interval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	if got := job.runs.Load(); got != 0 {
		t.Fatalf("jobs must not run without the lock, got %d runs", got)
	}
	if lock.releases != 0 {
		t.Fatalf("unacquired lock must not be released, got %d", lock.releases)
	}
}

func TestService_FailingJobDoesNotStopOthers(t *testing.T) {
	failing := &countingJob{name: "broken", err: errors.New("boom")}
	healthy := &countingJob{name: "healthy"}
	lock := &fakeLock{available: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Run(ctx)

	if failing.runs.Load() != 1 || healthy.runs.Load() != 1 {
		t.Fatalf("expected both jobs to run once, got %d and %d",
			failing.runs.Load(), healthy.runs.Load())
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error for missing lock")
	}
}
