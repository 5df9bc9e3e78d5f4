package jobs

import (
	"testing"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func TestTracker_StartLogComplete(t *testing.T) {
	tr := New()
	id := tr.Start()

	job, ok := tr.Get(id)
	if !ok || job.Status != domain.JobQueued {
		t.Fatalf("Get() after Start = %+v, %v", job, ok)
	}

	ch, unsub := tr.Subscribe(id)
	defer unsub()

	tr.Log(id, domain.LogInfo, "parsing document")

	select {
	case rec := <-ch:
		if rec.Message != "parsing document" || rec.Level != domain.LogInfo {
			t.Errorf("rec = %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for log record")
	}

	job, _ = tr.Get(id)
	if job.Status != domain.JobRunning {
		t.Errorf("Status after first Log = %v, want running", job.Status)
	}

	tr.Complete(id, map[string]string{"schedule_id": "sch-1"})

	job, _ = tr.Get(id)
	if job.Status != domain.JobCompleted {
		t.Errorf("Status after Complete = %v, want completed", job.Status)
	}
	if len(job.Log) != 1 {
		t.Errorf("len(Log) = %d, want 1", len(job.Log))
	}

	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed after job completes")
	}
}

func TestTracker_Fail(t *testing.T) {
	tr := New()
	id := tr.Start()
	tr.Fail(id, "parser: invalid input")

	job, _ := tr.Get(id)
	if job.Status != domain.JobFailed {
		t.Errorf("Status = %v, want failed", job.Status)
	}
	if job.FailureMsg != "parser: invalid input" {
		t.Errorf("FailureMsg = %q", job.FailureMsg)
	}
}

func TestTracker_SlowSubscriberDoesNotBlock(t *testing.T) {
	tr := New()
	id := tr.Start()
	ch, unsub := tr.Subscribe(id)
	defer unsub()

	// Flood past the subscriber buffer without ever draining ch; Log must
	// never block the job.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			tr.Log(id, domain.LogInfo, "tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a slow subscriber")
	}
	_ = ch
}

func TestTracker_SubscribeUnknownJob(t *testing.T) {
	tr := New()
	ch, _ := tr.Subscribe("does-not-exist")
	if _, open := <-ch; open {
		t.Error("subscribing to an unknown job should yield a closed channel")
	}
}
