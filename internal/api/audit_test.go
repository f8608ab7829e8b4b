package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/nerrad567/netclock/internal/audit"
)

type fakeHistory struct {
	filter audit.Filter
	result *audit.ListResult
	err    error
}

func (f *fakeHistory) List(_ context.Context, filter audit.Filter) (*audit.ListResult, error) {
	f.filter = filter
	return f.result, f.err
}

func TestListAudit(t *testing.T) {
	srv := testServer(t, nil)
	history := &fakeHistory{result: &audit.ListResult{
		Entries: []audit.Entry{{
			ID:        "aud-1234abcd",
			Action:    audit.ActionCommand,
			Subject:   "UTCOFFSET",
			Outcome:   audit.OutcomeApplied,
			Source:    audit.SourceMQTT,
			CreatedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		}},
		Total: 1,
		Limit: 10,
	}}
	srv.history = history

	w := get(t, srv, "/api/v1/audit?action=command&subject=UTCOFFSET&limit=10&offset=bad")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if history.filter.Action != "command" || history.filter.Subject != "UTCOFFSET" {
		t.Errorf("filter = %+v", history.filter)
	}
	if history.filter.Limit != 10 || history.filter.Offset != 0 {
		t.Errorf("filter limit/offset = %d/%d, want 10/0", history.filter.Limit, history.filter.Offset)
	}

	var body struct {
		Entries []audit.Entry `json:"entries"`
		Total   int           `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Total != 1 || len(body.Entries) != 1 || body.Entries[0].Subject != "UTCOFFSET" {
		t.Errorf("body = %+v", body)
	}
}

func TestListAudit_NotConfigured(t *testing.T) {
	srv := testServer(t, nil)

	w := get(t, srv, "/api/v1/audit")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListAudit_RepositoryError(t *testing.T) {
	srv := testServer(t, nil)
	srv.history = &fakeHistory{err: errors.New("database is locked")}

	w := get(t, srv, "/api/v1/audit")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
