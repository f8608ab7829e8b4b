package radio

import (
	"context"
	"net"
	"time"

	"github.com/nerrad567/netclock/internal/link"
)

// StatusFunc receives station status changes. ip is set only with
// link.StatusGotIP. It returns false when the status was not accepted;
// the watcher then reports it again on the next poll.
type StatusFunc func(status link.RadioStatus, ip net.IP) bool

// ifaceState is one observation of the interface.
type ifaceState struct {
	exists bool
	up     bool
	ip     net.IP
}

// Watcher polls an interface and reports when its station status changes.
type Watcher struct {
	iface    string
	interval time.Duration
	onStatus StatusFunc
	logger   Logger
	observe  func(name string) (ifaceState, error)
}

// NewWatcher creates a watcher for iface polling every interval.
func NewWatcher(iface string, interval time.Duration, onStatus StatusFunc, logger Logger) *Watcher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Watcher{
		iface:    iface,
		interval: interval,
		onStatus: onStatus,
		logger:   logger,
		observe:  observeInterface,
	}
}

// Run polls until ctx is cancelled. The first observation is always
// reported.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		last     link.RadioStatus
		lastIP   net.IP
		reported bool
	)
	for {
		st, err := w.observe(w.iface)
		if err != nil {
			w.logger.Debug("interface poll failed", "interface", w.iface, "error", err)
		}
		status := classify(st)
		if !reported || status != last || !st.ip.Equal(lastIP) {
			w.logger.Debug("radio status", "interface", w.iface, "status", status, "ip", st.ip)
			if w.onStatus(status, st.ip) {
				last, lastIP, reported = status, st.ip, true
			} else {
				w.logger.Warn("radio status not delivered, will retry", "interface", w.iface, "status", status)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// classify maps an observation onto a station status code.
func classify(st ifaceState) link.RadioStatus {
	switch {
	case !st.exists:
		return link.StatusNoAPFound
	case !st.up:
		return link.StatusIdle
	case st.ip == nil:
		return link.StatusConnecting
	default:
		return link.StatusGotIP
	}
}

// observeInterface reads the first global IPv4 address of name.
func observeInterface(name string) (ifaceState, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return ifaceState{}, err
	}
	st := ifaceState{exists: true, up: ifi.Flags&net.FlagUp != 0}
	addrs, err := ifi.Addrs()
	if err != nil {
		return st, err
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil && v4.IsGlobalUnicast() {
			st.ip = v4
			return st, nil
		}
	}
	return st, nil
}
