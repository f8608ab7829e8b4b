package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/netclock/internal/audit"
)

// HistorySource lists recorded commands, surveys and link transitions.
type HistorySource interface {
	List(ctx context.Context, filter audit.Filter) (*audit.ListResult, error)
}

// handleListAudit returns paginated history entries.
//
// Query parameters:
//   - action: command, survey or link
//   - subject: e.g. UTCOFFSET or session_up
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:  q.Get("action"),
		Subject: q.Get("subject"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.history.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		writeInternalError(w, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
