// Package memstore implements domain.Repository entirely in memory — the
// backing store used by tests and by short-lived CLI invocations that don't
// need durability across process restarts.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// normalizePeriods sorts, deduplicates, and merges an interval sequence.
// Every sequence the store holds has passed through this.
func normalizePeriods(in []domain.Interval) []domain.Interval {
	ivs := make([]interval.Interval, len(in))
	for i, v := range in {
		ivs[i] = interval.Interval{Start: v.Start, Stop: v.Stop}
	}
	norm := interval.Normalize(ivs)
	out := make([]domain.Interval, len(norm))
	for i, v := range norm {
		out[i] = domain.Interval{Start: v.Start, Stop: v.Stop}
	}
	return out
}

// Store is a sync.RWMutex-guarded in-memory implementation of
// domain.Repository. The zero value is not usable; construct with New.
type Store struct {
	mu sync.RWMutex

	schedules     map[string]*domain.Schedule
	checksumIndex map[string]string // checksum -> scheduleID

	targets      map[string]*domain.Target
	targetByKey  map[[5]float64]string

	constraints     map[string]*domain.Constraints
	constraintByKey map[domain.ConstraintsKey]string

	blocks           map[string]*domain.SchedulingBlock   // blockID -> block
	blocksBySchedule map[string][]string                  // scheduleID -> []blockID
	assignments      map[string]map[string]*domain.ScheduleAssignment // scheduleID -> blockID -> assignment

	analytics map[string][]domain.AnalyticsRow
	summaries map[string]*domain.SummaryStats
	bins      map[string][]domain.VisibilityBin
	issues    map[string][]domain.ValidationIssue

	now func() time.Time
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		schedules:        make(map[string]*domain.Schedule),
		checksumIndex:    make(map[string]string),
		targets:          make(map[string]*domain.Target),
		targetByKey:      make(map[[5]float64]string),
		constraints:      make(map[string]*domain.Constraints),
		constraintByKey:  make(map[domain.ConstraintsKey]string),
		blocks:           make(map[string]*domain.SchedulingBlock),
		blocksBySchedule: make(map[string][]string),
		assignments:      make(map[string]map[string]*domain.ScheduleAssignment),
		analytics:        make(map[string][]domain.AnalyticsRow),
		summaries:        make(map[string]*domain.SummaryStats),
		bins:             make(map[string][]domain.VisibilityBin),
		issues:           make(map[string][]domain.ValidationIssue),
		now:              time.Now,
	}
}

var _ domain.Repository = (*Store)(nil)

// ─── Schedules ──────────────────────────────────────────────────────────────

func (s *Store) StoreSchedule(ctx context.Context, parsed domain.ParsedSchedule) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.checksumIndex[parsed.Checksum]; ok {
		return id, true, nil
	}

	scheduleID := uuid.NewString()
	s.schedules[scheduleID] = &domain.Schedule{
		ID:              scheduleID,
		Name:            parsed.Name,
		UploadTimestamp: s.now(),
		Checksum:        parsed.Checksum,
		DarkPeriods:     normalizePeriods(parsed.DarkPeriods),
	}
	s.checksumIndex[parsed.Checksum] = scheduleID

	blockIDs := make([]string, 0, len(parsed.Blocks))
	for _, pb := range parsed.Blocks {
		targetID := s.getOrCreateTarget(pb.Target)

		var constraintsID string
		if pb.Constraints != nil {
			constraintsID = s.getOrCreateConstraints(*pb.Constraints)
		}

		blockID := uuid.NewString()
		s.blocks[blockID] = &domain.SchedulingBlock{
			ID:                   blockID,
			OriginalBlockID:      pb.OriginalBlockID,
			TargetID:             targetID,
			ConstraintsID:        constraintsID,
			Priority:             pb.Priority,
			MinObservationSec:    pb.MinObservationSec,
			RequestedDurationSec: pb.RequestedDurationSec,
			VisibilityPeriods:    normalizePeriods(pb.VisibilityPeriods),
		}
		blockIDs = append(blockIDs, blockID)

		if s.assignments[scheduleID] == nil {
			s.assignments[scheduleID] = make(map[string]*domain.ScheduleAssignment)
		}
		s.assignments[scheduleID][blockID] = &domain.ScheduleAssignment{
			ScheduleID: scheduleID,
			BlockID:    blockID,
			Window:     pb.Assignment,
		}
	}
	s.blocksBySchedule[scheduleID] = blockIDs

	return scheduleID, false, nil
}

func (s *Store) getOrCreateTarget(t domain.Target) string {
	key := t.NaturalKey()
	if id, ok := s.targetByKey[key]; ok {
		return id
	}
	id := uuid.NewString()
	cp := t
	cp.ID = id
	s.targets[id] = &cp
	s.targetByKey[key] = id
	return id
}

func (s *Store) getOrCreateConstraints(c domain.Constraints) string {
	key := c.Key()
	if id, ok := s.constraintByKey[key]; ok {
		return id
	}
	id := uuid.NewString()
	cp := c
	cp.ID = id
	s.constraints[id] = &cp
	s.constraintByKey[key] = id
	return id
}

func (s *Store) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sch, ok := s.schedules[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", id)
	}
	cp := *sch
	return &cp, nil
}

func (s *Store) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		out = append(out, *sch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadTimestamp.Before(out[j].UploadTimestamp) })
	return out, nil
}

func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sch, ok := s.schedules[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", id)
	}
	for _, blockID := range s.blocksBySchedule[id] {
		delete(s.blocks, blockID)
	}
	delete(s.blocksBySchedule, id)
	delete(s.assignments, id)
	delete(s.analytics, id)
	delete(s.summaries, id)
	delete(s.bins, id)
	delete(s.issues, id)
	delete(s.checksumIndex, sch.Checksum)
	delete(s.schedules, id)
	return nil
}

// ─── Blocks / targets / constraints / assignments ──────────────────────────

func (s *Store) GetBlocks(ctx context.Context, scheduleID string, filter domain.BlockFilter) ([]domain.SchedulingBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, ok := s.blocksBySchedule[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", scheduleID)
	}

	out := make([]domain.SchedulingBlock, 0, len(ids))
	for _, blockID := range ids {
		if filter.BlockIDs != nil {
			if _, want := filter.BlockIDs[blockID]; !want {
				continue
			}
		}
		b := s.blocks[blockID]
		if filter.PriorityRange != nil && (b.Priority < filter.PriorityRange.Min || b.Priority > filter.PriorityRange.Max) {
			continue
		}
		if filter.Scheduled != nil {
			assignment := s.assignments[scheduleID][blockID]
			scheduled := assignment != nil && assignment.Scheduled()
			if scheduled != *filter.Scheduled {
				continue
			}
		}
		out = append(out, *b)
	}
	return out, nil
}

func (s *Store) GetTarget(ctx context.Context, id string) (*domain.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "target not found", nil).WithContext("id", id)
	}
	cp := *t
	return &cp, nil
}

func (s *Store) GetConstraints(ctx context.Context, id string) (*domain.Constraints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.constraints[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "constraints not found", nil).WithContext("id", id)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetAssignment(ctx context.Context, scheduleID, blockID string) (*domain.ScheduleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[scheduleID][blockID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "assignment not found", nil).WithContext("block_id", blockID)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) ListAssignments(ctx context.Context, scheduleID string) ([]domain.ScheduleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.blocksBySchedule[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", scheduleID)
	}
	out := make([]domain.ScheduleAssignment, 0, len(ids))
	for _, blockID := range ids {
		out = append(out, *s.assignments[scheduleID][blockID])
	}
	return out, nil
}

// ─── Analytics ──────────────────────────────────────────────────────────────

func (s *Store) StoreAnalytics(ctx context.Context, rows []domain.AnalyticsRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}
	scheduleID := rows[0].ScheduleID
	s.analytics[scheduleID] = append([]domain.AnalyticsRow(nil), rows...)
	return nil
}

func (s *Store) HasAnalytics(ctx context.Context, scheduleID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.analytics[scheduleID]
	return ok, nil
}

func (s *Store) DeleteAnalytics(ctx context.Context, scheduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analytics, scheduleID)
	return nil
}

func (s *Store) FetchAnalytics(ctx context.Context, scheduleID string) ([]domain.AnalyticsRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.analytics[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "analytics not found", nil).WithContext("id", scheduleID)
	}
	return append([]domain.AnalyticsRow(nil), rows...), nil
}

func (s *Store) StoreSummary(ctx context.Context, stats domain.SummaryStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := stats
	s.summaries[stats.ScheduleID] = &cp
	return nil
}

func (s *Store) FetchSummary(ctx context.Context, scheduleID string) (*domain.SummaryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.summaries[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "summary not found", nil).WithContext("id", scheduleID)
	}
	cp := *st
	return &cp, nil
}

func (s *Store) StoreVisibilityBins(ctx context.Context, bins []domain.VisibilityBin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(bins) == 0 {
		return nil
	}
	scheduleID := bins[0].ScheduleID
	s.bins[scheduleID] = append([]domain.VisibilityBin(nil), bins...)
	return nil
}

func (s *Store) FetchBins(ctx context.Context, scheduleID string, t0, t1 float64, priorityFilter *domain.Range) ([]domain.VisibilityBin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all, ok := s.bins[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "visibility bins not found", nil).WithContext("id", scheduleID)
	}
	out := make([]domain.VisibilityBin, 0, len(all))
	for _, b := range all {
		if b.BinStart+b.BinWidth <= t0 || b.BinStart >= t1 {
			continue
		}
		if priorityFilter == nil {
			out = append(out, b)
			continue
		}
		filtered := domain.VisibilityBin{
			ScheduleID: b.ScheduleID, BinIndex: b.BinIndex, BinStart: b.BinStart, BinWidth: b.BinWidth,
			ByPriorityBin: make(map[int]int),
			PriorityMin:   b.PriorityMin, PriorityBinWidth: b.PriorityBinWidth,
		}
		for bin, count := range b.ByPriorityBin {
			// Keep a priority bin when the priority range it covers
			// overlaps the filter, not when its raw index happens to.
			lo, hi := b.PriorityBinRange(bin)
			if hi < priorityFilter.Min || lo > priorityFilter.Max {
				continue
			}
			filtered.Count += count
			filtered.ByPriorityBin[bin] = count
		}
		out = append(out, filtered)
	}
	return out, nil
}

func (s *Store) HasVisibilityBins(ctx context.Context, scheduleID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bins[scheduleID]
	return ok, nil
}

func (s *Store) DeleteVisibilityBins(ctx context.Context, scheduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bins, scheduleID)
	return nil
}

func (s *Store) StoreValidation(ctx context.Context, issues []domain.ValidationIssue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(issues) == 0 {
		return nil
	}
	scheduleID := issues[0].ScheduleID
	s.issues[scheduleID] = append(s.issues[scheduleID], issues...)
	return nil
}

func (s *Store) FetchValidation(ctx context.Context, scheduleID string) ([]domain.ValidationIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ValidationIssue(nil), s.issues[scheduleID]...), nil
}

func (s *Store) DeleteValidation(ctx context.Context, scheduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.issues, scheduleID)
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) bool {
	return true
}
