package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"queue_depth":  s.orchestrator.QueueDepth(),
		"tracked_jobs": s.orchestrator.TrackedJobs(),
	}
	if st := s.orchestrator.Stats(); st != nil {
		resp["processing"] = st.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}
