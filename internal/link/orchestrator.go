package link

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Logger is the logging interface used by the Orchestrator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session is the messaging layer. Connect starts an asynchronous connection;
// completion is reported back through HandleSessionUp.
type Session interface {
	Connect() error
	Publish(topic string, payload []byte) error
	Subscribe(topic string) error
}

// TimeSync is the time-sync client started on first association.
type TimeSync interface {
	Init(servers []string, pollInterval time.Duration) error
}

// Config holds the values the orchestrator needs from the field table.
type Config struct {
	DevicePath   string
	CommandTopic string
	SNTPServers  []string
	SNTPPoll     time.Duration
}

// Orchestrator reacts to radio and session events.
type Orchestrator struct {
	cfg      Config
	session  Session
	timeSync TimeSync
	logger   Logger

	state       State
	ip          net.IP
	syncStarted bool
}

// New creates an orchestrator in the Disconnected state.
func New(cfg Config, session Session, timeSync TimeSync, logger Logger) *Orchestrator {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Orchestrator{
		cfg:      cfg,
		session:  session,
		timeSync: timeSync,
		logger:   logger,
	}
}

// CurrentState returns the current link state.
func (o *Orchestrator) CurrentState() State {
	return o.state
}

// IP returns the address acquired on association, or nil.
func (o *Orchestrator) IP() net.IP {
	return o.ip
}

// TimeSyncStarted reports whether time sync has been initialised.
func (o *Orchestrator) TimeSyncStarted() bool {
	return o.syncStarted
}

// HandleRadio applies a radio status report. Only StatusGotIP counts as
// association; every other code means the link is down.
//
// On the transition into Associated the session is asked to connect and,
// the first time in the process lifetime, time sync is started. A repeat
// got-IP while already associated only refreshes the address.
func (o *Orchestrator) HandleRadio(status RadioStatus, ip net.IP) error {
	if status != StatusGotIP {
		if o.state != Disconnected {
			o.logger.Info("link lost", "from", o.state, "radio_status", status)
		}
		o.state = Disconnected
		o.ip = nil
		return nil
	}

	if o.state != Disconnected {
		if !ip.Equal(o.ip) {
			o.logger.Info("address changed", "ip", ip.String())
			o.ip = ip
		}
		return nil
	}

	o.state = Associated
	o.ip = ip
	o.logger.Info("associated", "ip", ip.String())

	var errs []error
	if err := o.session.Connect(); err != nil {
		o.logger.Error("session connect failed", "error", err)
		errs = append(errs, fmt.Errorf("connecting session: %w", err))
	}

	if !o.syncStarted {
		o.syncStarted = true
		if err := o.timeSync.Init(o.cfg.SNTPServers, o.cfg.SNTPPoll); err != nil {
			o.logger.Error("time sync init failed", "error", err)
			errs = append(errs, fmt.Errorf("starting time sync: %w", err))
		} else {
			o.logger.Info("time sync started", "servers", o.cfg.SNTPServers, "poll", o.cfg.SNTPPoll)
		}
	}
	return errors.Join(errs...)
}

// HandleSessionUp applies a session-connected event: presence is announced
// and the command topic subscribed. The event is ignored unless the state
// is Associated.
func (o *Orchestrator) HandleSessionUp() error {
	switch o.state {
	case Disconnected:
		o.logger.Warn("session up while disconnected, ignoring")
		return nil
	case SessionUp:
		return nil
	}

	o.state = SessionUp
	o.logger.Info("session up")

	var errs []error
	payload := OnlinePayload(o.cfg.DevicePath, o.ip)
	if err := o.session.Publish(InfoTopic, []byte(payload)); err != nil {
		o.logger.Error("presence publish failed", "error", err)
		errs = append(errs, fmt.Errorf("publishing presence: %w", err))
	}
	if err := o.session.Subscribe(o.cfg.CommandTopic); err != nil {
		o.logger.Error("command subscribe failed", "topic", o.cfg.CommandTopic, "error", err)
		errs = append(errs, fmt.Errorf("subscribing %s: %w", o.cfg.CommandTopic, err))
	}
	return errors.Join(errs...)
}

// HandleSessionDown returns SessionUp to Associated. No teardown is issued;
// the session layer reconnects on its own.
func (o *Orchestrator) HandleSessionDown() {
	if o.state == SessionUp {
		o.state = Associated
		o.logger.Info("session down")
	}
}
