package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/obscura-observatory/scheduler-analytics/internal/analytics"
	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
)

func (s *Server) handleSkyMap(w http.ResponseWriter, r *http.Request) {
	rows, err := s.orch.Repo().FetchAnalytics(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.SkyMap(rows))
}

func (s *Server) handleDistributions(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	rows, err := s.orch.Repo().FetchAnalytics(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("filter_impossible") == "true" {
		filtered := rows[:0]
		for _, row := range rows {
			if !row.Impossible {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	numBins, _ := strconv.Atoi(r.URL.Query().Get("num_bins"))

	priorities := make([]float64, len(rows))
	durations := make([]float64, len(rows))
	visibility := make([]float64, len(rows))
	elevation := make([]float64, len(rows))
	for i, row := range rows {
		priorities[i] = row.Priority
		durations[i] = row.RequestedHours
		visibility[i] = row.VisibilityHours
		elevation[i] = row.ElevationRange
	}
	writeJSON(w, http.StatusOK, map[string]analytics.Distribution{
		"priority":         analytics.Summarize(priorities, numBins),
		"requested_hours":  analytics.Summarize(durations, numBins),
		"visibility_hours": analytics.Summarize(visibility, numBins),
		"elevation_range":  analytics.Summarize(elevation, numBins),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	sch, err := s.orch.Repo().GetSchedule(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	assignments, err := s.orch.Repo().ListAssignments(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := s.orch.Repo().FetchAnalytics(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	priorityOf := make(map[string]float64, len(rows))
	for _, row := range rows {
		priorityOf[row.BlockID] = row.Priority
	}
	writeJSON(w, http.StatusOK, analytics.BuildTimeline(assignments, priorityOf, sch.DarkPeriods))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	rows, err := s.orch.Repo().FetchAnalytics(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.ComputeInsights(rows, analytics.InsightsParams{}))
}

// handleTrends computes trends across every stored schedule; scheduleID
// only anchors the NotFound check, since trends are inherently a
// cross-schedule view.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	if _, err := s.orch.Repo().GetSchedule(r.Context(), scheduleID); err != nil {
		writeError(w, err)
		return
	}
	schedules, err := s.orch.Repo().ListSchedules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	summaries := make(map[string]domain.SummaryStats, len(schedules))
	for _, sch := range schedules {
		sum, err := s.orch.Repo().FetchSummary(r.Context(), sch.ID)
		if err != nil {
			continue
		}
		summaries[sch.ID] = *sum
	}
	writeJSON(w, http.StatusOK, analytics.Trends(schedules, summaries))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	left := r.URL.Query().Get("left")
	right := r.URL.Query().Get("right")
	if left == "" || right == "" {
		writeError(w, domain.InvalidInput("query", "left and right schedule_id query params are required"))
		return
	}
	leftSummary, err := s.orch.Repo().FetchSummary(r.Context(), left)
	if err != nil {
		writeError(w, err)
		return
	}
	rightSummary, err := s.orch.Repo().FetchSummary(r.Context(), right)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Compare(*leftSummary, *rightSummary))
}

func (s *Server) handleVisibilityMap(w http.ResponseWriter, r *http.Request) {
	blocks, err := s.orch.Repo().GetBlocks(r.Context(), chi.URLParam(r, "scheduleID"), domain.BlockFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	type entry struct {
		BlockID    string            `json:"block_id"`
		Visibility []domain.Interval `json:"visibility_periods"`
	}
	out := make([]entry, len(blocks))
	for i, b := range blocks {
		out[i] = entry{BlockID: b.ID, Visibility: b.VisibilityPeriods}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVisibilityHistogram(w http.ResponseWriter, r *http.Request) {
	scheduleID := chi.URLParam(r, "scheduleID")
	sch, err := s.orch.Repo().GetSchedule(r.Context(), scheduleID)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := s.orch.Repo().GetBlocks(r.Context(), scheduleID, domain.BlockFilter{})
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	params := analytics.VisibilityHistogramParams{}
	if v := q.Get("num_bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, domain.InvalidInput("num_bins", "must be an integer"))
			return
		}
		params.NumBins = n
	}
	if v := q.Get("bin_duration_min"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, domain.InvalidInput("bin_duration_min", "must be a number"))
			return
		}
		params.BinDurationMinutes = d
	}
	params.T0, params.T1 = rangeOrDarkSpan(q, sch.DarkPeriods, blocks)
	if v := q.Get("priority_min"); v != "" {
		min, _ := strconv.ParseFloat(v, 64)
		max, _ := strconv.ParseFloat(q.Get("priority_max"), 64)
		params.PriorityFilter = &domain.Range{Min: min, Max: max}
	}

	writeJSON(w, http.StatusOK, analytics.VisibilityHistogram(blocks, params))
}

func rangeOrDarkSpan(q url.Values, dark []domain.Interval, blocks []domain.SchedulingBlock) (t0, t1 float64) {
	if v := q.Get("range_start"); v != "" {
		t0, _ = strconv.ParseFloat(v, 64)
	}
	if v := q.Get("range_stop"); v != "" {
		t1, _ = strconv.ParseFloat(v, 64)
	}
	if t1 > t0 {
		return t0, t1
	}
	first := true
	for _, b := range blocks {
		for _, v := range b.VisibilityPeriods {
			if first || v.Start < t0 {
				t0 = v.Start
			}
			if first || v.Stop > t1 {
				t1 = v.Stop
			}
			first = false
		}
	}
	if first {
		for _, d := range dark {
			if first || d.Start < t0 {
				t0 = d.Start
			}
			if first || d.Stop > t1 {
				t1 = d.Stop
			}
			first = false
		}
	}
	return t0, t1
}
