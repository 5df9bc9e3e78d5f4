package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/parser"
	"github.com/obscura-observatory/scheduler-analytics/internal/service"
)

// storeScheduleRequest mirrors store_schedule's input bundle.
type storeScheduleRequest struct {
	Name                    string          `json:"name"`
	ScheduleDocument        json.RawMessage `json:"schedule_document"`
	DarkDocument            json.RawMessage `json:"dark_document"`
	PossiblePeriodsDocument json.RawMessage `json:"possible_periods_document"`
	PopulateAnalytics       bool            `json:"populate_analytics"`
	SkipTimeBins            bool            `json:"skip_time_bins"`
}

func (s *Server) handleStoreSchedule(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, domain.InvalidInput("body", "cannot read request body"))
		return
	}
	var req storeScheduleRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, domain.InvalidInput("body", "request body is not valid JSON"))
		return
	}

	in := parser.Input{
		ScheduleBytes:        []byte(req.ScheduleDocument),
		DarkBytes:            []byte(req.DarkDocument),
		PossiblePeriodsBytes: []byte(req.PossiblePeriodsDocument),
	}
	result, err := s.orch.StoreSchedule(r.Context(), in, service.StoreOptions{
		PopulateAnalytics: req.PopulateAnalytics,
		SkipTimeBins:      req.SkipTimeBins,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schedule_id": result.ScheduleID,
		"job_id":      result.JobID,
		"existed":     result.Existed,
	})
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.orch.Repo().ListSchedules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	type entry struct {
		ScheduleID      string `json:"schedule_id"`
		Name            string `json:"name"`
		UploadTimestamp string `json:"upload_timestamp"`
		Checksum        string `json:"checksum"`
	}
	out := make([]entry, len(schedules))
	for i, sch := range schedules {
		out[i] = entry{
			ScheduleID:      sch.ID,
			Name:            sch.Name,
			UploadTimestamp: sch.UploadTimestamp.Format("2006-01-02T15:04:05Z07:00"),
			Checksum:        sch.Checksum,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scheduleID")
	sch, err := s.orch.Repo().GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	blocks, err := s.orch.Repo().GetBlocks(r.Context(), id, domain.BlockFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"schedule": sch,
		"blocks":   blocks,
	})
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scheduleID")
	if err := s.orch.Repo().DeleteSchedule(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRepopulateAnalytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scheduleID")
	var req struct {
		SkipTimeBins bool `json:"skip_time_bins"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body => defaults

	jobID, err := s.orch.RepopulateAnalytics(r.Context(), id, req.SkipTimeBins)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID})
}

func (s *Server) handleValidationReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scheduleID")
	issues, err := s.orch.Repo().FetchValidation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	grouped := make(map[domain.IssueCategory][]domain.ValidationIssue)
	for _, is := range issues {
		grouped[is.Category] = append(grouped[is.Category], is)
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, ok := s.orch.Jobs().Get(id)
	if !ok {
		writeError(w, domain.NewError(domain.KindNotFound, "job not found", nil))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.orch.Health(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"repository":    h.Repository,
		"workers_alive": h.WorkersAlive,
	})
}
