package domain

import "context"

// ─── Repository ─────────────────────────────────────────────────────────────
// Repository abstracts the engine's logical storage contract. The
// backing store is swappable: an in-memory map for tests
// (internal/infra/memstore) or a relational store (internal/infra/sqlite).
// Infrastructure implements this; the application layer depends on it.
type Repository interface {
	// StoreSchedule is idempotent on checksum: re-storing identical content
	// returns the existing ScheduleID. All writes are one logical transaction.
	StoreSchedule(ctx context.Context, parsed ParsedSchedule) (scheduleID string, existed bool, err error)

	GetSchedule(ctx context.Context, id string) (*Schedule, error)
	ListSchedules(ctx context.Context) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	GetBlocks(ctx context.Context, scheduleID string, filter BlockFilter) ([]SchedulingBlock, error)
	GetTarget(ctx context.Context, id string) (*Target, error)
	GetConstraints(ctx context.Context, id string) (*Constraints, error)
	GetAssignment(ctx context.Context, scheduleID, blockID string) (*ScheduleAssignment, error)
	ListAssignments(ctx context.Context, scheduleID string) ([]ScheduleAssignment, error)

	StoreAnalytics(ctx context.Context, rows []AnalyticsRow) error
	HasAnalytics(ctx context.Context, scheduleID string) (bool, error)
	DeleteAnalytics(ctx context.Context, scheduleID string) error
	FetchAnalytics(ctx context.Context, scheduleID string) ([]AnalyticsRow, error)

	StoreSummary(ctx context.Context, s SummaryStats) error
	FetchSummary(ctx context.Context, scheduleID string) (*SummaryStats, error)

	StoreVisibilityBins(ctx context.Context, bins []VisibilityBin) error
	FetchBins(ctx context.Context, scheduleID string, t0, t1 float64, priorityFilter *Range) ([]VisibilityBin, error)
	HasVisibilityBins(ctx context.Context, scheduleID string) (bool, error)
	DeleteVisibilityBins(ctx context.Context, scheduleID string) error

	StoreValidation(ctx context.Context, issues []ValidationIssue) error
	FetchValidation(ctx context.Context, scheduleID string) ([]ValidationIssue, error)
	DeleteValidation(ctx context.Context, scheduleID string) error

	HealthCheck(ctx context.Context) bool
}

// BlockFilter restricts GetBlocks results.
type BlockFilter struct {
	PriorityRange *Range
	Scheduled     *bool
	BlockIDs      map[string]struct{} // nil => no restriction
}

// ParsedSchedule is the normalized output of the Parser — the input
// contract to Repository.StoreSchedule.
type ParsedSchedule struct {
	Name        string
	Checksum    string
	DarkPeriods []Interval
	Blocks      []ParsedBlock
}

// ParsedBlock bundles a SchedulingBlock with its denormalized Target,
// optional Constraints, and optional pre-assigned execution window —
// the shape the parser produces before the Repository assigns surrogate ids.
type ParsedBlock struct {
	OriginalBlockID      string
	Target               Target
	Constraints          *Constraints
	Priority             float64
	MinObservationSec    float64
	RequestedDurationSec float64
	VisibilityPeriods    []Interval
	Assignment           *Interval // pre-assigned execution window, if any
}
