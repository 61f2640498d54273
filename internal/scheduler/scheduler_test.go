package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crownwell/vnscreener/pkg/config"
	"github.com/crownwell/vnscreener/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
	panics   bool
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.panics {
		panic("boom")
	}
	return j.err
}

func testScheduler() *Scheduler {
	s := New(logger.New(&config.Config{Env: "development", LogLevel: "error"}))
	s.maxRetries = 1
	s.retryDelay = time.Millisecond
	return s
}

func waitForHistory(t *testing.T, s *Scheduler, job string) JobResult {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h, err := s.History(job)
		if err == nil && len(h.Results) > 0 {
			return h.Results[len(h.Results)-1]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("No history recorded for %s", job)
	return JobResult{}
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := testScheduler()
	job := &stubJob{name: "scan", schedule: "@daily"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Error("Expected duplicate job to be rejected")
	}
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := testScheduler()

	if err := s.AddJob(&stubJob{name: "bad", schedule: "not a cron expr"}); err == nil {
		t.Error("Expected invalid schedule to be rejected")
	}
}

func TestRunJobRecordsSuccess(t *testing.T) {
	s := testScheduler()
	job := &stubJob{name: "scan", schedule: "@daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := s.RunJob("scan"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := waitForHistory(t, s, "scan")
	if !result.Success {
		t.Errorf("Expected success, got %+v", result)
	}
	if job.runs.Load() != 1 {
		t.Errorf("Expected 1 run, got %d", job.runs.Load())
	}
}

func TestRunJobRetriesAndRecordsFailure(t *testing.T) {
	s := testScheduler()
	job := &stubJob{name: "flaky", schedule: "@daily", err: errors.New("upstream down")}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s.RunJob("flaky")

	result := waitForHistory(t, s, "flaky")
	if result.Success {
		t.Error("Expected recorded failure")
	}
	if result.Error == "" {
		t.Error("Expected error message in result")
	}
	if job.runs.Load() != 2 {
		t.Errorf("Expected initial run plus one retry, got %d", job.runs.Load())
	}
}

func TestRunJobSurvivesPanic(t *testing.T) {
	s := testScheduler()
	job := &stubJob{name: "panicky", schedule: "@daily", panics: true}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	s.RunJob("panicky")

	result := waitForHistory(t, s, "panicky")
	if result.Success {
		t.Error("Expected panicking job recorded as failure")
	}
}

func TestRunJobUnknown(t *testing.T) {
	s := testScheduler()
	if err := s.RunJob("ghost"); err == nil {
		t.Error("Expected error for unknown job")
	}
}

func TestHistoryBounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	if len(h.Results) != historyLimit {
		t.Errorf("Expected history capped at %d, got %d", historyLimit, len(h.Results))
	}
	if rate := h.SuccessRate(); rate <= 0 || rate >= 1 {
		t.Errorf("Expected mixed success rate, got %f", rate)
	}
}
