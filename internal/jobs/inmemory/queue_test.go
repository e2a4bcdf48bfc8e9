package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.GenerateInsightsJob {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", jobID, want)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 2, store)
	defer q.Close()

	var handled int32
	handler := func(ctx context.Context, job jobs.Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.GenerateInsightsJob{UserID: "user-1"}
	if err := q.PublishGenerateInsights(context.Background(), job); err != nil {
		t.Fatalf("PublishGenerateInsights: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("publish should assign a job ID")
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("completed job should have start and completion timestamps")
	}
	if got := atomic.LoadInt32(&handled); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestQueue_RetriesFailedJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, 1, store)
	defer q.Close()

	var attempts int32
	handler := func(ctx context.Context, job jobs.Job) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("record source unavailable")
		}
		return nil
	}
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.GenerateInsightsJob{UserID: "user-1", MaxRetries: 2}
	if err := q.PublishGenerateInsights(context.Background(), job); err != nil {
		t.Fatalf("PublishGenerateInsights: %v", err)
	}

	waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("handler ran %d times, want 2", got)
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := q.PublishGenerateInsights(context.Background(), &jobs.GenerateInsightsJob{UserID: "user-1"}); err == nil {
		t.Fatal("expected error publishing to a closed queue")
	}
}

func TestStore_ListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	seed := []*jobs.GenerateInsightsJob{
		{JobID: "j1", UserID: "user-1", Status: jobs.JobStatusCompleted},
		{JobID: "j2", UserID: "user-1", Status: jobs.JobStatusPending},
		{JobID: "j3", UserID: "user-2", Status: jobs.JobStatusCompleted},
	}
	for _, j := range seed {
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	byUser, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("user-1 has %d jobs, want 2", len(byUser))
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("%d completed jobs, want 2", len(byStatus))
	}
}
