package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/interval"
)

// normalizePeriods sorts, deduplicates, and merges an interval sequence.
// Every sequence the store persists has passed through this.
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

var _ domain.Repository = (*DB)(nil)

func marshalIntervals(ivs []domain.Interval) string {
	if ivs == nil {
		ivs = []domain.Interval{}
	}
	b, _ := json.Marshal(ivs)
	return string(b)
}

func unmarshalIntervals(raw string) []domain.Interval {
	var ivs []domain.Interval
	_ = json.Unmarshal([]byte(raw), &ivs)
	return ivs
}

// ─── Schedules ──────────────────────────────────────────────────────────────

func (db *DB) StoreSchedule(ctx context.Context, parsed domain.ParsedSchedule) (string, bool, error) {
	// The filter has no false negatives, so a miss proves the checksum is
	// new and the dedup query can be skipped.
	if db.seen.MightContain(parsed.Checksum) {
		var existingID string
		err := db.db.QueryRowContext(ctx, `SELECT id FROM schedules WHERE checksum = ?`, parsed.Checksum).Scan(&existingID)
		if err == nil {
			return existingID, true, nil
		}
		if err != sql.ErrNoRows {
			return "", false, domain.NewError(domain.KindInternal, "query schedule by checksum", err)
		}
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, domain.NewError(domain.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback()

	scheduleID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedules (id, name, checksum, dark_periods_json, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
	`, scheduleID, parsed.Name, parsed.Checksum, marshalIntervals(normalizePeriods(parsed.DarkPeriods)), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		// A concurrent store of identical content won the race between our
		// dedup check and this insert; resolve to the existing id.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: schedules.checksum") {
			tx.Rollback()
			var existingID string
			if qerr := db.db.QueryRowContext(ctx, `SELECT id FROM schedules WHERE checksum = ?`, parsed.Checksum).Scan(&existingID); qerr == nil {
				return existingID, true, nil
			}
		}
		return "", false, domain.NewError(domain.KindInternal, "insert schedule", err)
	}

	for _, pb := range parsed.Blocks {
		targetID, err := getOrCreateTarget(ctx, tx, pb.Target)
		if err != nil {
			return "", false, err
		}
		var constraintsID string
		if pb.Constraints != nil {
			constraintsID, err = getOrCreateConstraints(ctx, tx, *pb.Constraints)
			if err != nil {
				return "", false, err
			}
		}

		blockID := uuid.NewString()
		var constraintsArg any
		if constraintsID != "" {
			constraintsArg = constraintsID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO blocks (id, schedule_id, original_block_id, target_id, constraints_id,
				priority, min_observation_sec, requested_duration_sec, visibility_periods_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, blockID, scheduleID, pb.OriginalBlockID, targetID, constraintsArg,
			pb.Priority, pb.MinObservationSec, pb.RequestedDurationSec, marshalIntervals(normalizePeriods(pb.VisibilityPeriods)))
		if err != nil {
			return "", false, domain.NewError(domain.KindInternal, "insert block", err)
		}

		var winStart, winStop any
		if pb.Assignment != nil {
			winStart, winStop = pb.Assignment.Start, pb.Assignment.Stop
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO assignments (schedule_id, block_id, window_start, window_stop)
			VALUES (?, ?, ?, ?)
		`, scheduleID, blockID, winStart, winStop)
		if err != nil {
			return "", false, domain.NewError(domain.KindInternal, "insert assignment", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, domain.NewError(domain.KindInternal, "commit transaction", err)
	}
	db.seen.Add(parsed.Checksum)
	return scheduleID, false, nil
}

func getOrCreateTarget(ctx context.Context, tx *sql.Tx, t domain.Target) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM targets WHERE ra_deg = ? AND dec_deg = ? AND pm_ra_mas = ? AND pm_dec_mas = ? AND equinox = ?
	`, t.RADeg, t.DecDeg, t.PMRaMas, t.PMDecMas, t.Equinox).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", domain.NewError(domain.KindInternal, "query target", err)
	}
	id = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO targets (id, name, ra_deg, dec_deg, pm_ra_mas, pm_dec_mas, equinox)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ra_deg, dec_deg, pm_ra_mas, pm_dec_mas, equinox) DO NOTHING
	`, id, t.Name, t.RADeg, t.DecDeg, t.PMRaMas, t.PMDecMas, t.Equinox)
	if err != nil {
		return "", domain.NewError(domain.KindInternal, "insert target", err)
	}
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM targets WHERE ra_deg = ? AND dec_deg = ? AND pm_ra_mas = ? AND pm_dec_mas = ? AND equinox = ?
	`, t.RADeg, t.DecDeg, t.PMRaMas, t.PMDecMas, t.Equinox).Scan(&id); err != nil {
		return "", domain.NewError(domain.KindInternal, "query target after insert", err)
	}
	return id, nil
}

func getOrCreateConstraints(ctx context.Context, tx *sql.Tx, c domain.Constraints) (string, error) {
	k := c.Key()
	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM constraints
		WHERE has_altitude = ? AND altitude_min = ? AND altitude_max = ?
		  AND has_azimuth = ? AND azimuth_min = ? AND azimuth_max = ?
		  AND has_window = ? AND window_start = ? AND window_stop = ?
	`, boolInt(k.HasAlt), k.AltMin, k.AltMax, boolInt(k.HasAz), k.AzMin, k.AzMax, boolInt(k.HasWin), k.WinStart, k.WinStop).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", domain.NewError(domain.KindInternal, "query constraints", err)
	}
	id = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO constraints (id, has_altitude, altitude_min, altitude_max, has_azimuth, azimuth_min, azimuth_max, has_window, window_start, window_stop)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(has_altitude, altitude_min, altitude_max, has_azimuth, azimuth_min, azimuth_max, has_window, window_start, window_stop) DO NOTHING
	`, id, boolInt(k.HasAlt), k.AltMin, k.AltMax, boolInt(k.HasAz), k.AzMin, k.AzMax, boolInt(k.HasWin), k.WinStart, k.WinStop)
	if err != nil {
		return "", domain.NewError(domain.KindInternal, "insert constraints", err)
	}
	if err := tx.QueryRowContext(ctx, `
		SELECT id FROM constraints
		WHERE has_altitude = ? AND altitude_min = ? AND altitude_max = ?
		  AND has_azimuth = ? AND azimuth_min = ? AND azimuth_max = ?
		  AND has_window = ? AND window_start = ? AND window_stop = ?
	`, boolInt(k.HasAlt), k.AltMin, k.AltMax, boolInt(k.HasAz), k.AzMin, k.AzMax, boolInt(k.HasWin), k.WinStart, k.WinStop).Scan(&id); err != nil {
		return "", domain.NewError(domain.KindInternal, "query constraints after insert", err)
	}
	return id, nil
}

func (db *DB) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	var s domain.Schedule
	var darkJSON, uploadedStr string
	err := db.db.QueryRowContext(ctx, `
		SELECT id, name, checksum, dark_periods_json, uploaded_at FROM schedules WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.Checksum, &darkJSON, &uploadedStr)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", id)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "get schedule", err)
	}
	s.DarkPeriods = unmarshalIntervals(darkJSON)
	s.UploadTimestamp, _ = time.Parse(time.RFC3339, uploadedStr)
	return &s, nil
}

func (db *DB) ListSchedules(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT id, name, checksum, dark_periods_json, uploaded_at FROM schedules ORDER BY uploaded_at`)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "list schedules", err)
	}
	defer rows.Close()

	var out []domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		var darkJSON, uploadedStr string
		if err := rows.Scan(&s.ID, &s.Name, &s.Checksum, &darkJSON, &uploadedStr); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan schedule", err)
		}
		s.DarkPeriods = unmarshalIntervals(darkJSON)
		s.UploadTimestamp, _ = time.Parse(time.RFC3339, uploadedStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) DeleteSchedule(ctx context.Context, id string) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return domain.NewError(domain.KindInternal, "delete schedule", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.NewError(domain.KindNotFound, "schedule not found", nil).WithContext("id", id)
	}
	return nil
}

// ─── Blocks / targets / constraints / assignments ──────────────────────────

func (db *DB) GetBlocks(ctx context.Context, scheduleID string, filter domain.BlockFilter) ([]domain.SchedulingBlock, error) {
	if _, err := db.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}

	query := `SELECT b.id, b.original_block_id, b.target_id, COALESCE(b.constraints_id, ''),
		b.priority, b.min_observation_sec, b.requested_duration_sec, b.visibility_periods_json,
		a.window_start, a.window_stop
		FROM blocks b
		LEFT JOIN assignments a ON a.schedule_id = b.schedule_id AND a.block_id = b.id
		WHERE b.schedule_id = ?`
	args := []any{scheduleID}
	if filter.PriorityRange != nil {
		query += ` AND b.priority >= ? AND b.priority <= ?`
		args = append(args, filter.PriorityRange.Min, filter.PriorityRange.Max)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "get blocks", err)
	}
	defer rows.Close()

	var out []domain.SchedulingBlock
	for rows.Next() {
		var b domain.SchedulingBlock
		var visJSON string
		var winStart, winStop sql.NullFloat64
		if err := rows.Scan(&b.ID, &b.OriginalBlockID, &b.TargetID, &b.ConstraintsID,
			&b.Priority, &b.MinObservationSec, &b.RequestedDurationSec, &visJSON, &winStart, &winStop); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan block", err)
		}
		b.VisibilityPeriods = unmarshalIntervals(visJSON)

		if filter.BlockIDs != nil {
			if _, want := filter.BlockIDs[b.ID]; !want {
				continue
			}
		}
		if filter.Scheduled != nil {
			scheduled := winStart.Valid && winStop.Valid && winStop.Float64 > winStart.Float64
			if scheduled != *filter.Scheduled {
				continue
			}
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) GetTarget(ctx context.Context, id string) (*domain.Target, error) {
	var t domain.Target
	err := db.db.QueryRowContext(ctx, `
		SELECT id, name, ra_deg, dec_deg, pm_ra_mas, pm_dec_mas, equinox FROM targets WHERE id = ?
	`, id).Scan(&t.ID, &t.Name, &t.RADeg, &t.DecDeg, &t.PMRaMas, &t.PMDecMas, &t.Equinox)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.KindNotFound, "target not found", nil).WithContext("id", id)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "get target", err)
	}
	return &t, nil
}

func (db *DB) GetConstraints(ctx context.Context, id string) (*domain.Constraints, error) {
	var c domain.Constraints
	var hasAlt, hasAz, hasWin int
	var altMin, altMax, azMin, azMax, winStart, winStop float64
	err := db.db.QueryRowContext(ctx, `
		SELECT id, has_altitude, altitude_min, altitude_max, has_azimuth, azimuth_min, azimuth_max, has_window, window_start, window_stop
		FROM constraints WHERE id = ?
	`, id).Scan(&c.ID, &hasAlt, &altMin, &altMax, &hasAz, &azMin, &azMax, &hasWin, &winStart, &winStop)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.KindNotFound, "constraints not found", nil).WithContext("id", id)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "get constraints", err)
	}
	if hasAlt == 1 {
		c.Altitude = &domain.Range{Min: altMin, Max: altMax}
	}
	if hasAz == 1 {
		c.Azimuth = &domain.Range{Min: azMin, Max: azMax}
	}
	if hasWin == 1 {
		c.FixedWindow = &domain.Interval{Start: winStart, Stop: winStop}
	}
	return &c, nil
}

func (db *DB) GetAssignment(ctx context.Context, scheduleID, blockID string) (*domain.ScheduleAssignment, error) {
	var winStart, winStop sql.NullFloat64
	err := db.db.QueryRowContext(ctx, `
		SELECT window_start, window_stop FROM assignments WHERE schedule_id = ? AND block_id = ?
	`, scheduleID, blockID).Scan(&winStart, &winStop)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.KindNotFound, "assignment not found", nil).WithContext("block_id", blockID)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "get assignment", err)
	}
	a := &domain.ScheduleAssignment{ScheduleID: scheduleID, BlockID: blockID}
	if winStart.Valid && winStop.Valid {
		a.Window = &domain.Interval{Start: winStart.Float64, Stop: winStop.Float64}
	}
	return a, nil
}

func (db *DB) ListAssignments(ctx context.Context, scheduleID string) ([]domain.ScheduleAssignment, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT block_id, window_start, window_stop FROM assignments WHERE schedule_id = ?
	`, scheduleID)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "list assignments", err)
	}
	defer rows.Close()

	var out []domain.ScheduleAssignment
	for rows.Next() {
		var a domain.ScheduleAssignment
		a.ScheduleID = scheduleID
		var winStart, winStop sql.NullFloat64
		if err := rows.Scan(&a.BlockID, &winStart, &winStop); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan assignment", err)
		}
		if winStart.Valid && winStop.Valid {
			a.Window = &domain.Interval{Start: winStart.Float64, Stop: winStop.Float64}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ─── Analytics ──────────────────────────────────────────────────────────────

func (db *DB) StoreAnalytics(ctx context.Context, rows []domain.AnalyticsRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewError(domain.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO analytics_rows (schedule_id, block_id, scheduled, duration_hours, visibility_hours,
				priority_bin, ra_deg, dec_deg, priority, requested_hours, elevation_range, impossible)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(schedule_id, block_id) DO UPDATE SET
				scheduled = excluded.scheduled, duration_hours = excluded.duration_hours,
				visibility_hours = excluded.visibility_hours, priority_bin = excluded.priority_bin,
				ra_deg = excluded.ra_deg, dec_deg = excluded.dec_deg, priority = excluded.priority,
				requested_hours = excluded.requested_hours, elevation_range = excluded.elevation_range,
				impossible = excluded.impossible
		`, r.ScheduleID, r.BlockID, boolToInt(r.Scheduled), r.DurationHours, r.VisibilityHours,
			r.PriorityBin, r.RADeg, r.DecDeg, r.Priority, r.RequestedHours, r.ElevationRange, boolToInt(r.Impossible))
		if err != nil {
			return domain.NewError(domain.KindInternal, "upsert analytics row", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.NewError(domain.KindInternal, "commit transaction", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (db *DB) HasAnalytics(ctx context.Context, scheduleID string) (bool, error) {
	var n int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analytics_rows WHERE schedule_id = ?`, scheduleID).Scan(&n)
	if err != nil {
		return false, domain.NewError(domain.KindInternal, "count analytics", err)
	}
	return n > 0, nil
}

func (db *DB) DeleteAnalytics(ctx context.Context, scheduleID string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM analytics_rows WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return domain.NewError(domain.KindInternal, "delete analytics", err)
	}
	return nil
}

func (db *DB) FetchAnalytics(ctx context.Context, scheduleID string) ([]domain.AnalyticsRow, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT schedule_id, block_id, scheduled, duration_hours, visibility_hours, priority_bin,
			ra_deg, dec_deg, priority, requested_hours, elevation_range, impossible
		FROM analytics_rows WHERE schedule_id = ?
	`, scheduleID)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "fetch analytics", err)
	}
	defer rows.Close()

	var out []domain.AnalyticsRow
	for rows.Next() {
		var r domain.AnalyticsRow
		var scheduled, impossible int
		if err := rows.Scan(&r.ScheduleID, &r.BlockID, &scheduled, &r.DurationHours, &r.VisibilityHours,
			&r.PriorityBin, &r.RADeg, &r.DecDeg, &r.Priority, &r.RequestedHours, &r.ElevationRange, &impossible); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan analytics row", err)
		}
		r.Scheduled = scheduled == 1
		r.Impossible = impossible == 1
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, domain.NewError(domain.KindNotFound, "analytics not found", nil).WithContext("id", scheduleID)
	}
	return out, rows.Err()
}

func (db *DB) StoreSummary(ctx context.Context, s domain.SummaryStats) error {
	histJSON, _ := json.Marshal(s.PriorityHistogram)
	rateJSON, _ := json.Marshal(s.PerBinSchedulingRate)
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO summary_stats (schedule_id, total_count, scheduled_count, unscheduled_count, scheduling_rate,
			unique_target_count, total_scheduled_hours, total_requested_hours, total_visibility_hours,
			priority_histogram_json, per_bin_scheduling_rate_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(schedule_id) DO UPDATE SET
			total_count = excluded.total_count, scheduled_count = excluded.scheduled_count,
			unscheduled_count = excluded.unscheduled_count, scheduling_rate = excluded.scheduling_rate,
			unique_target_count = excluded.unique_target_count, total_scheduled_hours = excluded.total_scheduled_hours,
			total_requested_hours = excluded.total_requested_hours, total_visibility_hours = excluded.total_visibility_hours,
			priority_histogram_json = excluded.priority_histogram_json,
			per_bin_scheduling_rate_json = excluded.per_bin_scheduling_rate_json
	`, s.ScheduleID, s.TotalCount, s.ScheduledCount, s.UnscheduledCount, s.SchedulingRate,
		s.UniqueTargetCount, s.TotalScheduledHours, s.TotalRequestedHours, s.TotalVisibilityHours,
		string(histJSON), string(rateJSON))
	if err != nil {
		return domain.NewError(domain.KindInternal, "upsert summary", err)
	}
	return nil
}

func (db *DB) FetchSummary(ctx context.Context, scheduleID string) (*domain.SummaryStats, error) {
	var s domain.SummaryStats
	var histJSON, rateJSON string
	s.ScheduleID = scheduleID
	err := db.db.QueryRowContext(ctx, `
		SELECT total_count, scheduled_count, unscheduled_count, scheduling_rate, unique_target_count,
			total_scheduled_hours, total_requested_hours, total_visibility_hours,
			priority_histogram_json, per_bin_scheduling_rate_json
		FROM summary_stats WHERE schedule_id = ?
	`, scheduleID).Scan(&s.TotalCount, &s.ScheduledCount, &s.UnscheduledCount, &s.SchedulingRate, &s.UniqueTargetCount,
		&s.TotalScheduledHours, &s.TotalRequestedHours, &s.TotalVisibilityHours, &histJSON, &rateJSON)
	if err == sql.ErrNoRows {
		return nil, domain.NewError(domain.KindNotFound, "summary not found", nil).WithContext("id", scheduleID)
	}
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "fetch summary", err)
	}
	_ = json.Unmarshal([]byte(histJSON), &s.PriorityHistogram)
	_ = json.Unmarshal([]byte(rateJSON), &s.PerBinSchedulingRate)
	return &s, nil
}

func (db *DB) StoreVisibilityBins(ctx context.Context, bins []domain.VisibilityBin) error {
	if len(bins) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewError(domain.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback()

	for _, b := range bins {
		byPriorityJSON, _ := json.Marshal(b.ByPriorityBin)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO visibility_bins (schedule_id, bin_index, bin_start, bin_width, count,
				by_priority_bin_json, priority_min, priority_bin_width)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(schedule_id, bin_index) DO UPDATE SET
				bin_start = excluded.bin_start, bin_width = excluded.bin_width,
				count = excluded.count, by_priority_bin_json = excluded.by_priority_bin_json,
				priority_min = excluded.priority_min, priority_bin_width = excluded.priority_bin_width
		`, b.ScheduleID, b.BinIndex, b.BinStart, b.BinWidth, b.Count, string(byPriorityJSON), b.PriorityMin, b.PriorityBinWidth)
		if err != nil {
			return domain.NewError(domain.KindInternal, "upsert visibility bin", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.NewError(domain.KindInternal, "commit transaction", err)
	}
	return nil
}

func (db *DB) FetchBins(ctx context.Context, scheduleID string, t0, t1 float64, priorityFilter *domain.Range) ([]domain.VisibilityBin, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT bin_index, bin_start, bin_width, count, by_priority_bin_json, priority_min, priority_bin_width
		FROM visibility_bins WHERE schedule_id = ? AND bin_start + bin_width > ? AND bin_start < ?
		ORDER BY bin_index
	`, scheduleID, t0, t1)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "fetch visibility bins", err)
	}
	defer rows.Close()

	var out []domain.VisibilityBin
	for rows.Next() {
		var b domain.VisibilityBin
		b.ScheduleID = scheduleID
		var byPriorityJSON string
		if err := rows.Scan(&b.BinIndex, &b.BinStart, &b.BinWidth, &b.Count, &byPriorityJSON, &b.PriorityMin, &b.PriorityBinWidth); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan visibility bin", err)
		}
		var byPriority map[int]int
		_ = json.Unmarshal([]byte(byPriorityJSON), &byPriority)
		if priorityFilter != nil {
			filtered := make(map[int]int)
			count := 0
			for bin, c := range byPriority {
				// Keep a priority bin when the priority range it covers
				// overlaps the filter, not when its raw index happens to.
				lo, hi := b.PriorityBinRange(bin)
				if hi < priorityFilter.Min || lo > priorityFilter.Max {
					continue
				}
				filtered[bin] = c
				count += c
			}
			b.ByPriorityBin, b.Count = filtered, count
		} else {
			b.ByPriorityBin = byPriority
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		if has, _ := db.HasVisibilityBins(ctx, scheduleID); !has {
			return nil, domain.NewError(domain.KindNotFound, "visibility bins not found", nil).WithContext("id", scheduleID)
		}
	}
	return out, rows.Err()
}

func (db *DB) HasVisibilityBins(ctx context.Context, scheduleID string) (bool, error) {
	var n int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visibility_bins WHERE schedule_id = ?`, scheduleID).Scan(&n)
	if err != nil {
		return false, domain.NewError(domain.KindInternal, "count visibility bins", err)
	}
	return n > 0, nil
}

func (db *DB) DeleteVisibilityBins(ctx context.Context, scheduleID string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM visibility_bins WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return domain.NewError(domain.KindInternal, "delete visibility bins", err)
	}
	return nil
}

func (db *DB) StoreValidation(ctx context.Context, issues []domain.ValidationIssue) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewError(domain.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback()

	for _, is := range issues {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO validation_issues (schedule_id, block_id, category, criticality, message)
			VALUES (?, ?, ?, ?, ?)
		`, is.ScheduleID, is.BlockID, string(is.Category), string(is.Criticality), is.Message)
		if err != nil {
			return domain.NewError(domain.KindInternal, "insert validation issue", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.NewError(domain.KindInternal, "commit transaction", err)
	}
	return nil
}

func (db *DB) FetchValidation(ctx context.Context, scheduleID string) ([]domain.ValidationIssue, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT block_id, category, criticality, message FROM validation_issues WHERE schedule_id = ?
	`, scheduleID)
	if err != nil {
		return nil, domain.NewError(domain.KindInternal, "fetch validation issues", err)
	}
	defer rows.Close()

	var out []domain.ValidationIssue
	for rows.Next() {
		is := domain.ValidationIssue{ScheduleID: scheduleID}
		var cat, crit string
		if err := rows.Scan(&is.BlockID, &cat, &crit, &is.Message); err != nil {
			return nil, domain.NewError(domain.KindInternal, "scan validation issue", err)
		}
		is.Category, is.Criticality = domain.IssueCategory(cat), domain.Criticality(crit)
		out = append(out, is)
	}
	return out, rows.Err()
}

func (db *DB) DeleteValidation(ctx context.Context, scheduleID string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM validation_issues WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return domain.NewError(domain.KindInternal, "delete validation issues", err)
	}
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) bool {
	return db.db.PingContext(ctx) == nil
}
