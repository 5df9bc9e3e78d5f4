// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Schedule ───────────────────────────────────────────────────────────────

// Schedule is a top-level ingest group: one uploaded document set.
type Schedule struct {
	ID              string
	Name            string
	UploadTimestamp time.Time
	Checksum        string
	DarkPeriods     []Interval
}

// Interval is an MJD interval [Start, Stop). Start < Stop after normalization.
type Interval struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// ─── Target ─────────────────────────────────────────────────────────────────

// Target is a sky position. Natural key: (RA, Dec, PMRa, PMDec, Equinox).
type Target struct {
	ID       string
	Name     string
	RADeg    float64
	DecDeg   float64
	PMRaMas  float64
	PMDecMas float64
	Equinox  float64
}

// NaturalKey returns the dedup key for a Target.
func (t Target) NaturalKey() [5]float64 {
	return [5]float64{t.RADeg, t.DecDeg, t.PMRaMas, t.PMDecMas, t.Equinox}
}

// ─── Constraints ────────────────────────────────────────────────────────────

// Constraints is a composite observing constraint. At least one of
// Altitude, Azimuth, FixedWindow must be set.
type Constraints struct {
	ID          string
	Altitude    *Range
	Azimuth     *Range
	FixedWindow *Interval
}

// Range is an inclusive numeric range [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// HasAny reports whether at least one constraint component is present.
func (c Constraints) HasAny() bool {
	return c.Altitude != nil || c.Azimuth != nil || c.FixedWindow != nil
}

// ConstraintsKey is the deduplication key for a Constraints value.
type ConstraintsKey struct {
	HasAlt, HasAz, HasWin bool
	AltMin, AltMax        float64
	AzMin, AzMax          float64
	WinStart, WinStop     float64
}

// Key returns the deduplication key for this Constraints value.
func (c Constraints) Key() ConstraintsKey {
	k := ConstraintsKey{}
	if c.Altitude != nil {
		k.HasAlt = true
		k.AltMin, k.AltMax = c.Altitude.Min, c.Altitude.Max
	}
	if c.Azimuth != nil {
		k.HasAz = true
		k.AzMin, k.AzMax = c.Azimuth.Min, c.Azimuth.Max
	}
	if c.FixedWindow != nil {
		k.HasWin = true
		k.WinStart, k.WinStop = c.FixedWindow.Start, c.FixedWindow.Stop
	}
	return k
}

// ─── SchedulingBlock ─────────────────────────────────────────────────────────

// SchedulingBlock is an atomic observing request.
type SchedulingBlock struct {
	ID                   string
	OriginalBlockID      string
	TargetID             string
	ConstraintsID        string // empty when no Constraints row
	Priority             float64
	MinObservationSec    float64
	RequestedDurationSec float64
	VisibilityPeriods    []Interval // normalized: sorted, disjoint
}

// ─── ScheduleAssignment ──────────────────────────────────────────────────────

// ScheduleAssignment records a block's membership in a schedule and its
// (optional) chosen execution window.
type ScheduleAssignment struct {
	ScheduleID string
	BlockID    string
	Window     *Interval // nil or empty => not scheduled
}

// Scheduled reports whether the assignment has a non-empty window.
func (a ScheduleAssignment) Scheduled() bool {
	return a.Window != nil && a.Window.Stop > a.Window.Start
}

// ─── AnalyticsRow ────────────────────────────────────────────────────────────

// AnalyticsRow is a derived, per-(schedule,block) analytics record.
type AnalyticsRow struct {
	ScheduleID      string
	BlockID         string
	Scheduled       bool
	DurationHours   float64
	VisibilityHours float64
	PriorityBin     int
	RADeg           float64
	DecDeg          float64
	Priority        float64
	RequestedHours  float64
	ElevationRange  float64 // max_alt - min_alt, 0 if no altitude constraint
	Impossible      bool    // true when a critical ValidationIssue exists
}

// ─── VisibilityBin ───────────────────────────────────────────────────────────

// VisibilityBin is the count of blocks whose visibility union overlaps
// bin [BinStart, BinStart+BinWidth), optionally broken down by priority.
// ByPriorityBin is keyed by priority-bin index; PriorityMin and
// PriorityBinWidth record the equi-width grid those indices discretize, so
// readers can map an index back to the priority range it covers.
type VisibilityBin struct {
	ScheduleID       string
	BinIndex         int
	BinStart         float64
	BinWidth         float64
	Count            int
	ByPriorityBin    map[int]int
	PriorityMin      float64
	PriorityBinWidth float64 // 0 when every block shares one priority value
}

// PriorityBinRange returns the priority sub-range that ByPriorityBin index
// k represents. A zero width collapses the range to the single shared
// priority value.
func (b VisibilityBin) PriorityBinRange(k int) (lo, hi float64) {
	lo = b.PriorityMin + float64(k)*b.PriorityBinWidth
	return lo, lo + b.PriorityBinWidth
}

// ─── SummaryStats ────────────────────────────────────────────────────────────

// SummaryStats is the per-schedule derived summary.
type SummaryStats struct {
	ScheduleID           string
	TotalCount           int
	ScheduledCount       int
	UnscheduledCount     int
	SchedulingRate       float64
	UniqueTargetCount    int
	TotalScheduledHours  float64
	TotalRequestedHours  float64
	TotalVisibilityHours float64
	PriorityHistogram    []HistogramBin
	PerBinSchedulingRate []float64
}

// HistogramBin is one bin of a numeric histogram.
type HistogramBin struct {
	Min   float64
	Max   float64
	Count int
}

// ─── ValidationIssue ─────────────────────────────────────────────────────────

// Criticality classifies a ValidationIssue's severity.
type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityHigh     Criticality = "high"
	CriticalityMedium   Criticality = "medium"
	CriticalityLow      Criticality = "low"
)

// IssueCategory classifies the kind of validation failure.
type IssueCategory string

const (
	IssueZeroVisibility             IssueCategory = "zero_visibility"
	IssueInsufficientVisibility     IssueCategory = "insufficient_visibility"
	IssueNegativePriority           IssueCategory = "negative_priority"
	IssueInvalidDuration            IssueCategory = "invalid_duration"
	IssueMinGtRequested             IssueCategory = "min_gt_requested"
	IssueOutOfRangeRa               IssueCategory = "out_of_range_ra"
	IssueOutOfRangeDec              IssueCategory = "out_of_range_dec"
	IssueAltitudeInverted           IssueCategory = "altitude_inverted"
	IssueAzimuthInverted            IssueCategory = "azimuth_inverted"
	IssueScheduledOutsideVisibility IssueCategory = "scheduled_outside_visibility"
	IssueScheduledOutsideFixedTime  IssueCategory = "scheduled_outside_fixed_time"
	IssueVisibilityOutsideDark      IssueCategory = "visibility_outside_dark"
)

// ValidationIssue is one failing predicate for one block.
type ValidationIssue struct {
	ScheduleID  string
	BlockID     string
	Category    IssueCategory
	Criticality Criticality
	Message     string
}

// ─── Job ─────────────────────────────────────────────────────────────────────

// JobStatus is the lifecycle state of a tracked async operation.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// LogLevel classifies a JobLogRecord.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogError   LogLevel = "error"
)

// JobLogRecord is one append-only log line in a Job's stream.
type JobLogRecord struct {
	Timestamp time.Time `json:"timestamp_rfc3339"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// Job is a tracked async operation (upload/populate).
type Job struct {
	ID         string
	Status     JobStatus
	Log        []JobLogRecord
	Result     any
	FailureMsg string
}
