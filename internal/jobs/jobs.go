// Package jobs tracks long-running ingest/analytics operations and
// broadcasts their append-only log stream to subscribers: one channel per
// subscriber, non-blocking send-or-drop so a slow reader never stalls the
// job.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

// Tracker owns the set of in-flight and completed Jobs and fans out each
// job's log stream to its subscribers.
type Tracker struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.Job
	subs  map[string]map[chan domain.JobLogRecord]struct{}
	now   func() time.Time
	newID func() string
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		jobs:  make(map[string]*domain.Job),
		subs:  make(map[string]map[chan domain.JobLogRecord]struct{}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Start creates a new queued Job and returns its id.
func (t *Tracker) Start() string {
	id := t.newID()
	t.mu.Lock()
	t.jobs[id] = &domain.Job{ID: id, Status: domain.JobQueued}
	t.subs[id] = make(map[chan domain.JobLogRecord]struct{})
	t.mu.Unlock()
	return id
}

// Log appends a log record to jobID's stream and broadcasts it to every
// current subscriber, dropping the message for any subscriber whose
// buffer is full rather than blocking the job.
func (t *Tracker) Log(jobID string, level domain.LogLevel, message string) {
	rec := domain.JobLogRecord{Timestamp: t.now(), Level: level, Message: message}

	t.mu.Lock()
	if job, ok := t.jobs[jobID]; ok {
		if job.Status == domain.JobQueued {
			job.Status = domain.JobRunning
		}
		job.Log = append(job.Log, rec)
	}
	subs := t.subs[jobID]
	chans := make([]chan domain.JobLogRecord, 0, len(subs))
	for ch := range subs {
		chans = append(chans, ch)
	}
	t.mu.Unlock()

	for _, ch := range chans {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Complete marks jobID completed with an optional result payload, and
// closes every subscriber channel. No terminal record is sent on the
// channel; subscribers read the final status and result with Get.
func (t *Tracker) Complete(jobID string, result any) {
	t.finish(jobID, domain.JobCompleted, "", result)
}

// Fail marks jobID failed with the given message — no partial Schedule
// persists when this is reached.
func (t *Tracker) Fail(jobID string, message string) {
	t.finish(jobID, domain.JobFailed, message, nil)
}

func (t *Tracker) finish(jobID string, status domain.JobStatus, failureMsg string, result any) {
	t.mu.Lock()
	if job, ok := t.jobs[jobID]; ok {
		job.Status = status
		job.FailureMsg = failureMsg
		job.Result = result
	}
	subs := t.subs[jobID]
	for ch := range subs {
		close(ch)
	}
	delete(t.subs, jobID)
	t.mu.Unlock()
}

// Get returns a copy of the Job's current state.
func (t *Tracker) Get(jobID string) (domain.Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[jobID]
	if !ok {
		return domain.Job{}, false
	}
	return *job, true
}

// Subscribe registers a new listener on jobID's log stream. The channel is
// closed when the job reaches a terminal state; subscribing to an unknown
// or already-terminal job returns a closed channel immediately.
func (t *Tracker) Subscribe(jobID string) (<-chan domain.JobLogRecord, func()) {
	ch := make(chan domain.JobLogRecord, 32)

	t.mu.Lock()
	subs, ok := t.subs[jobID]
	if !ok {
		t.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	subs[ch] = struct{}{}
	t.mu.Unlock()

	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if subs, ok := t.subs[jobID]; ok {
			if _, present := subs[ch]; present {
				delete(subs, ch)
				close(ch)
			}
		}
	}
	return ch, unsubscribe
}
