// Package service implements the ingest orchestrator: the store_schedule
// workflow (parse, get-or-create store, validate, analytics populate),
// repopulation, and the job/health operations that sit above it, behind a
// concurrency-limited submit/execute lifecycle.
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/analytics"
	"github.com/obscura-observatory/scheduler-analytics/internal/config"
	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/jobs"
	"github.com/obscura-observatory/scheduler-analytics/internal/observability"
	"github.com/obscura-observatory/scheduler-analytics/internal/parser"
	"github.com/obscura-observatory/scheduler-analytics/internal/validate"
)

// Config controls orchestrator concurrency.
type Config struct {
	MaxConcurrentIngests int // default 4
}

// DefaultConfig returns safe orchestrator defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrentIngests: 4}
}

// Orchestrator wires the Parser, Repository, Validator, and Analytics
// Engine into the ingest workflow, with job tracking and
// per-schedule repopulation locking.
type Orchestrator struct {
	repo     domain.Repository
	engine   *analytics.Engine
	jobs     *jobs.Tracker
	tracer   *observability.Tracer
	defaults config.Config

	sem       chan struct{}
	mu        sync.RWMutex
	active    int
	completed int64
	failed    int64

	scheduleLocksMu sync.Mutex
	scheduleLocks   map[string]*sync.Mutex
}

// New creates an Orchestrator over repo, tracking jobs in tracker and
// applying defaults' analytics/feasibility configuration where a caller
// omits explicit options.
func New(repo domain.Repository, tracker *jobs.Tracker, defaults config.Config, cfg Config) *Orchestrator {
	if cfg.MaxConcurrentIngests <= 0 {
		cfg.MaxConcurrentIngests = DefaultConfig().MaxConcurrentIngests
	}
	return &Orchestrator{
		repo:          repo,
		engine:        &analytics.Engine{Repo: repo},
		jobs:          tracker,
		tracer:        observability.NewTracer(observability.DefaultTracerConfig()),
		defaults:      defaults,
		sem:           make(chan struct{}, cfg.MaxConcurrentIngests),
		scheduleLocks: make(map[string]*sync.Mutex),
	}
}

// StoreOptions mirrors store_schedule's options bundle.
type StoreOptions struct {
	PopulateAnalytics bool
	SkipTimeBins      bool
}

// StoreResult is store_schedule's output.
type StoreResult struct {
	ScheduleID string
	JobID      string
	Existed    bool
}

// StoreSchedule runs the full ingest workflow synchronously
// and returns its job id alongside the result, so callers may replay the
// log stream via the Tracker even though Store already returned.
func (o *Orchestrator) StoreSchedule(ctx context.Context, in parser.Input, opts StoreOptions) (StoreResult, error) {
	jobID := o.jobs.Start()
	o.acquire()
	defer o.release()

	span := o.tracer.StartSpan(ctx, "store_schedule", map[string]string{"job_id": jobID})
	start := time.Now()
	result, err := o.runStore(ctx, jobID, in, opts)
	observability.IngestDuration.Observe(time.Since(start).Seconds())
	o.tracer.EndSpan(span, err)

	if err != nil {
		o.mu.Lock()
		o.failed++
		o.mu.Unlock()
		o.jobs.Fail(jobID, err.Error())
		log.Printf("[service] ingest job %s failed: %v", jobID, err)
		return StoreResult{JobID: jobID}, err
	}

	o.mu.Lock()
	o.completed++
	o.mu.Unlock()
	o.jobs.Complete(jobID, result)
	log.Printf("[service] ingest job %s completed schedule=%s existed=%v", jobID, result.ScheduleID, result.Existed)
	return result, nil
}

func (o *Orchestrator) runStore(ctx context.Context, jobID string, in parser.Input, opts StoreOptions) (StoreResult, error) {
	o.jobs.Log(jobID, domain.LogInfo, "parsing schedule document")
	parsed, err := parser.Parse(in)
	if err != nil {
		return StoreResult{}, err
	}
	observability.IngestBlocksTotal.Add(float64(len(parsed.Blocks)))

	o.jobs.Log(jobID, domain.LogInfo, fmt.Sprintf("storing schedule %q (%d blocks)", parsed.Name, len(parsed.Blocks)))
	var scheduleID string
	var existed bool
	err = withRetry(ctx, "store_schedule", func() error {
		var storeErr error
		scheduleID, existed, storeErr = o.repo.StoreSchedule(ctx, parsed)
		return storeErr
	})
	if err != nil {
		return StoreResult{}, err
	}

	if existed {
		o.jobs.Log(jobID, domain.LogInfo, "schedule already stored, reusing existing id")
		return StoreResult{ScheduleID: scheduleID, JobID: jobID, Existed: true}, nil
	}

	o.jobs.Log(jobID, domain.LogInfo, "running validator")
	if err := o.runValidation(ctx, scheduleID); err != nil {
		return StoreResult{}, err
	}

	if opts.PopulateAnalytics {
		o.jobs.Log(jobID, domain.LogInfo, "populating analytics")
		if err := o.populate(ctx, scheduleID, opts.SkipTimeBins); err != nil {
			return StoreResult{}, err
		}
	}

	o.jobs.Log(jobID, domain.LogSuccess, "ingest complete")
	return StoreResult{ScheduleID: scheduleID, JobID: jobID, Existed: false}, nil
}

// runValidation evaluates validate.Block over every block of scheduleID
// and persists the accumulated issues.
func (o *Orchestrator) runValidation(ctx context.Context, scheduleID string) error {
	blocks, err := o.repo.GetBlocks(ctx, scheduleID, domain.BlockFilter{})
	if err != nil {
		return err
	}
	sch, err := o.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}

	var issues []domain.ValidationIssue
	for _, b := range blocks {
		target, err := o.repo.GetTarget(ctx, b.TargetID)
		if err != nil {
			return err
		}
		var cons *domain.Constraints
		if b.ConstraintsID != "" {
			cons, err = o.repo.GetConstraints(ctx, b.ConstraintsID)
			if err != nil {
				return err
			}
		}
		assignment, err := o.repo.GetAssignment(ctx, scheduleID, b.ID)
		if err != nil && domain.AsKind(err) != domain.KindNotFound {
			return err
		}

		issues = append(issues, validate.Block(validate.Context{
			ScheduleID:  scheduleID,
			Block:       b,
			Target:      *target,
			Constraints: cons,
			Assignment:  assignment,
			DarkPeriods: sch.DarkPeriods,
		})...)
	}

	return withRetry(ctx, "store_validation", func() error {
		if err := o.repo.DeleteValidation(ctx, scheduleID); err != nil {
			return err
		}
		if len(issues) == 0 {
			return nil
		}
		return o.repo.StoreValidation(ctx, issues)
	})
}

func (o *Orchestrator) populate(ctx context.Context, scheduleID string, skipTimeBins bool) error {
	start := time.Now()
	err := withRetry(ctx, "populate_analytics", func() error {
		return o.engine.Populate(ctx, scheduleID, analytics.PopulateOptions{SkipTimeBins: skipTimeBins})
	})
	observability.AnalyticsDuration.WithLabelValues(fmt.Sprint(skipTimeBins)).Observe(time.Since(start).Seconds())
	return err
}

// RepopulateAnalytics re-runs validation and analytics population for an
// already-stored schedule, excluding concurrent
// repopulations of the same schedule via a per-schedule lock.
func (o *Orchestrator) RepopulateAnalytics(ctx context.Context, scheduleID string, skipTimeBins bool) (string, error) {
	jobID := o.jobs.Start()
	lock := o.scheduleLock(scheduleID)
	lock.Lock()
	defer lock.Unlock()

	span := o.tracer.StartSpan(ctx, "repopulate_analytics", map[string]string{"schedule_id": scheduleID})

	o.jobs.Log(jobID, domain.LogInfo, "re-running validator")
	if err := o.runValidation(ctx, scheduleID); err != nil {
		o.jobs.Fail(jobID, err.Error())
		o.tracer.EndSpan(span, err)
		return jobID, err
	}

	o.jobs.Log(jobID, domain.LogInfo, "repopulating analytics")
	if err := o.populate(ctx, scheduleID, skipTimeBins); err != nil {
		o.jobs.Fail(jobID, err.Error())
		o.tracer.EndSpan(span, err)
		return jobID, err
	}

	o.jobs.Log(jobID, domain.LogSuccess, "repopulation complete")
	o.jobs.Complete(jobID, nil)
	o.tracer.EndSpan(span, nil)
	return jobID, nil
}

func (o *Orchestrator) scheduleLock(scheduleID string) *sync.Mutex {
	o.scheduleLocksMu.Lock()
	defer o.scheduleLocksMu.Unlock()
	l, ok := o.scheduleLocks[scheduleID]
	if !ok {
		l = &sync.Mutex{}
		o.scheduleLocks[scheduleID] = l
	}
	return l
}

func (o *Orchestrator) acquire() {
	o.sem <- struct{}{}
	o.mu.Lock()
	o.active++
	observability.JobsActive.Set(float64(o.active))
	o.mu.Unlock()
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.active--
	observability.JobsActive.Set(float64(o.active))
	o.mu.Unlock()
	<-o.sem
}

// Stats is a point-in-time snapshot of ingest activity.
type Stats struct {
	Active    int
	Completed int64
	Failed    int64
}

// Stats returns the orchestrator's current ingest counters.
func (o *Orchestrator) Stats() Stats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Stats{Active: o.active, Completed: o.completed, Failed: o.failed}
}

// HealthStatus is the health operation's output.
type HealthStatus struct {
	Repository   bool
	WorkersAlive int
}

// Health reports repository reachability and the ingest concurrency slots
// currently in use.
func (o *Orchestrator) Health(ctx context.Context) HealthStatus {
	return HealthStatus{
		Repository:   o.repo.HealthCheck(ctx),
		WorkersAlive: o.Stats().Active,
	}
}

// Jobs exposes the underlying Tracker so API handlers can subscribe to a
// job's log stream.
func (o *Orchestrator) Jobs() *jobs.Tracker { return o.jobs }

// Tracer exposes the span recorder for diagnostics.
func (o *Orchestrator) Tracer() *observability.Tracer { return o.tracer }

// Engine exposes the underlying Analytics Engine for read-only operations
// (sky map, distributions, insights, trends) that don't need the full
// ingest workflow.
func (o *Orchestrator) Engine() *analytics.Engine { return o.engine }

// Repo exposes the underlying Repository for read-only operations.
func (o *Orchestrator) Repo() domain.Repository { return o.repo }

// Defaults exposes the configuration defaults this orchestrator was built
// with, so API handlers can fall back to them when a request omits an
// option.
func (o *Orchestrator) Defaults() config.Config { return o.defaults }
