package controller

import (
	"time"

	"github.com/nerrad567/netclock/internal/command"
	"github.com/nerrad567/netclock/internal/display"
	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/settings"
	"github.com/nerrad567/netclock/internal/timesync"
)

// Snapshot is a point-in-time copy of the loop's state.
type Snapshot struct {
	Link            link.State        `json:"link"`
	IP              string            `json:"ip,omitempty"`
	TimeSyncStarted bool              `json:"time_sync_started"`
	Sample          timesync.Sample   `json:"sample"`
	Commands        []command.Command `json:"commands"`
	Frame           display.Frame     `json:"frame"`
	Surveying       bool              `json:"surveying"`
	DroppedEvents   uint64            `json:"dropped_events"`
	SchemaVersion   int               `json:"schema_version"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Snapshot returns the state as of the last handled event or tick.
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.RLock()
	snap := c.snap
	c.snapMu.RUnlock()

	snap.Commands = append([]command.Command(nil), snap.Commands...)
	snap.DroppedEvents = c.dropped.Load()
	return snap
}

// publishSnapshot must be called from the loop goroutine.
func (c *Controller) publishSnapshot() {
	snap := Snapshot{
		Link:            c.orch.CurrentState(),
		TimeSyncStarted: c.orch.TimeSyncStarted(),
		Sample:          c.lastSample,
		Commands:        c.table.Snapshot(),
		Frame:           c.lastFrame,
		Surveying:       c.surveying,
		SchemaVersion:   settings.SchemaVersion,
		UpdatedAt:       c.now(),
	}
	if ip := c.orch.IP(); ip != nil {
		snap.IP = ip.String()
	}

	c.snapMu.Lock()
	c.snap = snap
	c.snapMu.Unlock()
}
