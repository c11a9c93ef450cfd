package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestRegisterAndRunJob(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int64
	err := s.Register("automation", "@hourly", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := s.RunJob(context.Background(), "automation"); err != nil {
		t.Fatalf("RunJob failed: %v", err)
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("expected 1 run, got %d", got)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := New(zap.NewNop())

	noop := func(ctx context.Context) error { return nil }
	if err := s.Register("cleanup", "@daily", noop); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := s.Register("cleanup", "@hourly", noop); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New(zap.NewNop())

	err := s.Register("automation", "not a schedule", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Error("expected invalid schedule to fail")
	}
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(zap.NewNop())

	err := s.RunJob(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownJob) {
		t.Errorf("expected ErrUnknownJob, got %v", err)
	}
}

func TestRunJobPropagatesError(t *testing.T) {
	s := New(zap.NewNop())

	boom := errors.New("boom")
	if err := s.Register("graduation", "@every 15m", func(ctx context.Context) error { return boom }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := s.RunJob(context.Background(), "graduation"); !errors.Is(err, boom) {
		t.Errorf("expected job error, got %v", err)
	}
}

func TestScheduledRunSurvivesPanic(t *testing.T) {
	s := New(zap.NewNop())

	s.run("automation", func(ctx context.Context) error {
		panic("kaboom")
	})
}

func TestJobNamesSorted(t *testing.T) {
	s := New(zap.NewNop())

	noop := func(ctx context.Context) error { return nil }
	for _, name := range []string{"graduation", "automation", "cleanup"} {
		if err := s.Register(name, "@hourly", noop); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	got := s.JobNames()
	want := []string{"automation", "cleanup", "graduation"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}
