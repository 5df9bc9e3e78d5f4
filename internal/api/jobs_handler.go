package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleJobLogStream serves a job's log stream via Server-Sent Events:
// one subscription per job id, a select-on-ctx-done loop, and the stream
// terminates when the job reaches a terminal state.
func (s *Server) handleJobLogStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	jobID := chi.URLParam(r, "jobID")
	ch, unsub := s.orch.Jobs().Subscribe(jobID)
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case rec, open := <-ch:
			if !open {
				job, ok := s.orch.Jobs().Get(jobID)
				if ok {
					writeSSE(w, map[string]any{"status": job.Status, "result": job.Result})
				}
				flusher.Flush()
				return
			}
			writeSSE(w, rec)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	w.Write([]byte("data: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
}
