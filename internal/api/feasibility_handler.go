package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/feasibility"
	"github.com/obscura-observatory/scheduler-analytics/internal/observability"
)

// checkFeasibilityRequest mirrors check_feasibility's input:
// block_set is selected by schedule + filter rather than shipped inline,
// since the blocks already live in the Repository.
type checkFeasibilityRequest struct {
	ScheduleID         string   `json:"schedule_id"`
	BlockIDs           []string `json:"block_ids"`
	Seed               int64    `json:"seed"`
	TimeLimitS         int      `json:"time_limit_s"`
	MaxIterations      int      `json:"max_iterations"`
	RespectDarkPeriods bool     `json:"respect_dark_periods"`
}

func (s *Server) handleCheckFeasibility(w http.ResponseWriter, r *http.Request) {
	var req checkFeasibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.InvalidInput("body", "request body is not valid JSON"))
		return
	}
	if req.ScheduleID == "" {
		writeError(w, domain.InvalidInput("schedule_id", "schedule_id is required"))
		return
	}

	defaults := s.orch.Defaults().Feasibility
	timeLimit := req.TimeLimitS
	if timeLimit <= 0 {
		timeLimit = defaults.DefaultTimeLimitS
	}
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaults.DefaultMaxIterations
	}

	var filter domain.BlockFilter
	if len(req.BlockIDs) > 0 {
		filter.BlockIDs = make(map[string]struct{}, len(req.BlockIDs))
		for _, id := range req.BlockIDs {
			filter.BlockIDs[id] = struct{}{}
		}
	}
	blocks, err := s.orch.Repo().GetBlocks(r.Context(), req.ScheduleID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	sch, err := s.orch.Repo().GetSchedule(r.Context(), req.ScheduleID)
	if err != nil {
		writeError(w, err)
		return
	}

	fblocks := make([]feasibility.Block, len(blocks))
	for i, b := range blocks {
		fblocks[i] = feasibility.Block{
			ID:                b.ID,
			Priority:          b.Priority,
			RequestedDuration: b.RequestedDurationSec,
			Visibility:        b.VisibilityPeriods,
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeLimit)*time.Second)
	defer cancel()

	start := time.Now()
	result := feasibility.Check(ctx, fblocks, feasibility.Options{
		Seed:               req.Seed,
		MaxIterations:      maxIterations,
		RespectDarkPeriods: req.RespectDarkPeriods,
		DarkPeriods:        sch.DarkPeriods,
	})
	observability.FeasibilitySolveDuration.Observe(time.Since(start).Seconds())
	observability.FeasibilityOutcomeTotal.WithLabelValues(string(result.Status)).Inc()

	writeJSON(w, http.StatusOK, result)
}
