package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/netclock/internal/audit"
	"github.com/nerrad567/netclock/internal/command"
	"github.com/nerrad567/netclock/internal/display"
	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/radio"
	"github.com/nerrad567/netclock/internal/timesync"
)

const (
	defaultQueueSize    = 32
	defaultTickInterval = time.Second
	defaultScanTimeout  = 30 * time.Second
)

// Logger is the logging interface used by the controller.
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

// Clock supplies the current time sample.
type Clock interface {
	Sample() timesync.Sample
}

// Scanner runs a wireless survey.
type Scanner interface {
	Scan(ctx context.Context) ([]radio.BSS, error)
}

// Telemetry records state changes. Optional.
type Telemetry interface {
	WriteLinkState(state string)
	WriteSync(healthy bool, epochSeconds uint64)
	WriteCommand(name string, value int)
}

// History records commands, surveys and link transitions. Optional.
type History interface {
	Record(ctx context.Context, e *audit.Entry) error
}

// Config holds the controller's settings.
type Config struct {
	Link         link.Config
	StatusTopic  string
	QoS          byte
	TickInterval time.Duration
	QueueSize    int
}

// Deps are the collaborators. Scanner, Telemetry and History may be nil.
type Deps struct {
	Broker    Broker
	TimeSync  link.TimeSync
	Clock     Clock
	Table     *command.Table
	Store     command.Persister
	Scanner   Scanner
	Display   display.Transport
	Telemetry Telemetry
	History   History
	Logger    Logger
}

// Controller is the single-consumer event loop.
type Controller struct {
	cfg    Config
	queue  *eventQueue

	orch       *link.Orchestrator
	session    *session
	dispatcher *command.Dispatcher
	renderer   *display.Renderer
	table      *command.Table
	clock      Clock
	scanner    Scanner
	display    display.Transport
	telemetry  Telemetry
	history    History
	logger     Logger
	now        func() time.Time

	// Loop-owned.
	surveying   bool
	lastSample  timesync.Sample
	lastFrame   display.Frame
	lastHealthy *bool
	displayErr  bool

	dropped atomic.Uint64
	snapMu  sync.RWMutex
	snap    Snapshot
}

// New wires the core components around deps.
func New(cfg Config, deps Deps) *Controller {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	c := &Controller{
		cfg:       cfg,
		queue:     newEventQueue(cfg.QueueSize),
		table:     deps.Table,
		clock:     deps.Clock,
		scanner:   deps.Scanner,
		display:   deps.Display,
		telemetry: deps.Telemetry,
		history:   deps.History,
		logger:    logger,
		renderer:  display.NewRenderer(logger),
		lastFrame: display.NoTimeFrame(),
		now:       time.Now,
	}
	c.session = newSession(deps.Broker, cfg.QoS, c.Post, logger)
	c.orch = link.New(cfg.Link, c.session, deps.TimeSync, logger)
	c.dispatcher = command.NewDispatcher(deps.Table, deps.Store, logger)
	c.dispatcher.OnAction(command.NameSurvey, c.startSurvey)
	c.publishSnapshot()
	return c
}

// Post queues ev for the loop without blocking. It reports false when ev
// was dropped, which only happens to Published and MessageReceived once
// QueueSize of them are waiting.
func (c *Controller) Post(ev Event) bool {
	if c.queue.push(ev) {
		return true
	}
	c.dropped.Add(1)
	c.logger.Warn("event queue full, dropping event", "event", fmt.Sprintf("%T", ev))
	return false
}

// Run consumes events and ticks the display until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	go c.session.run(ctx)

	c.logger.Info("controller started", "tick", c.cfg.TickInterval)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopped")
			return nil
		case <-c.queue.ready:
			for {
				ev, ok := c.queue.pop()
				if !ok {
					break
				}
				c.handle(ctx, ev)
				c.publishSnapshot()
			}
		case <-ticker.C:
			c.tick()
			c.publishSnapshot()
		}
	}
}

func (c *Controller) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case RadioStatus:
		before := c.orch.CurrentState()
		if err := c.orch.HandleRadio(ev.Status, ev.IP); err != nil {
			c.logger.Warn("radio event partially applied", "status", ev.Status, "error", err)
		}
		c.noteLinkChange(ctx, before)

	case SessionConnected:
		before := c.orch.CurrentState()
		if err := c.orch.HandleSessionUp(); err != nil {
			c.logger.Warn("session bring-up incomplete", "error", err)
		}
		c.noteLinkChange(ctx, before)

	case SessionDisconnected:
		before := c.orch.CurrentState()
		c.orch.HandleSessionDown()
		if ev.Err != nil {
			c.logger.Warn("session lost", "error", ev.Err)
		}
		c.noteLinkChange(ctx, before)

	case Published:
		c.logger.Debug("published", "topic", ev.Topic)

	case MessageReceived:
		c.handleMessage(ctx, ev)

	case SurveyComplete:
		c.finishSurvey(ctx, ev)

	default:
		c.logger.Warn("unknown event", "event", fmt.Sprintf("%T", ev))
	}
}

func (c *Controller) noteLinkChange(ctx context.Context, before link.State) {
	after := c.orch.CurrentState()
	if after == before {
		return
	}
	c.logger.Debug("link state", "from", before, "to", after)
	if c.telemetry != nil {
		c.telemetry.WriteLinkState(after.String())
	}
	c.record(ctx, &audit.Entry{
		Action:  audit.ActionLink,
		Subject: after.String(),
		Outcome: audit.OutcomeChanged,
		Details: map[string]any{"from": before.String()},
	})
}

func (c *Controller) record(ctx context.Context, e *audit.Entry) {
	if c.history == nil {
		return
	}
	if err := c.history.Record(ctx, e); err != nil {
		c.logger.Warn("history write failed", "action", e.Action, "error", err)
	}
}

func (c *Controller) handleMessage(ctx context.Context, msg MessageReceived) {
	if msg.Topic != c.cfg.Link.CommandTopic {
		c.logger.Warn("message on unexpected topic ignored", "topic", msg.Topic)
		return
	}

	res, err := c.dispatcher.Dispatch(ctx, string(msg.Payload))
	outcome := audit.OutcomeApplied
	switch {
	case errors.Is(err, command.ErrNoMatchingCommand):
		return
	case errors.Is(err, command.ErrStorePersist):
		outcome = audit.OutcomePersistFailed
	case err != nil:
		c.logger.Error("command failed", "error", err)
		return
	}

	details := map[string]any{"topic": msg.Topic}
	if res.Kind != command.KindAction {
		details["value"] = res.Value
		if c.telemetry != nil {
			c.telemetry.WriteCommand(res.Name, res.Value)
		}
	}
	c.record(ctx, &audit.Entry{
		Action:  audit.ActionCommand,
		Subject: res.Name,
		Outcome: outcome,
		Source:  audit.SourceMQTT,
		Details: details,
	})
}

// startSurvey runs the scan off the loop. Only one scan runs at a time.
func (c *Controller) startSurvey(ctx context.Context) {
	if c.scanner == nil {
		c.logger.Warn("survey requested but no scanner configured")
		return
	}
	if c.surveying {
		c.logger.Info("survey already running")
		return
	}
	c.surveying = true

	go func() {
		scanCtx, cancel := context.WithTimeout(ctx, defaultScanTimeout)
		defer cancel()
		list, err := c.scanner.Scan(scanCtx)
		c.Post(SurveyComplete{Networks: list, Err: err})
	}()
}

func (c *Controller) finishSurvey(ctx context.Context, res SurveyComplete) {
	c.surveying = false
	if res.Err != nil {
		c.logger.Error("survey failed", "error", res.Err)
		c.record(ctx, &audit.Entry{
			Action:  audit.ActionSurvey,
			Subject: command.NameSurvey,
			Outcome: audit.OutcomeFailed,
			Details: map[string]any{"error": res.Err.Error()},
		})
		return
	}
	c.logger.Info("survey complete", "networks", len(res.Networks))
	c.record(ctx, &audit.Entry{
		Action:  audit.ActionSurvey,
		Subject: command.NameSurvey,
		Outcome: audit.OutcomeCompleted,
		Details: map[string]any{"networks": len(res.Networks)},
	})
	if len(res.Networks) == 0 {
		return
	}
	if err := c.session.Publish(c.cfg.StatusTopic, []byte(radio.FormatSurvey(res.Networks))); err != nil {
		c.logger.Error("survey publish failed", "topic", c.cfg.StatusTopic, "error", err)
	}
}

// tick renders one frame and pushes it to the display.
func (c *Controller) tick() {
	sample := c.clock.Sample()
	utcOffset, _ := c.table.Value(command.NameUTCOffset)
	time24, _ := c.table.Value(command.NameTime24)

	frame := c.renderer.Render(display.Input{
		Sample:    sample,
		Link:      c.orch.CurrentState(),
		UTCOffset: utcOffset,
		Time24:    time24 != 0,
	})
	c.lastSample = sample
	c.lastFrame = frame

	if c.display != nil {
		err := c.display.Write(frame)
		switch {
		case err != nil && !c.displayErr:
			c.logger.Error("display write failed", "error", err)
			c.displayErr = true
		case err == nil && c.displayErr:
			c.logger.Info("display write recovered")
			c.displayErr = false
		}
	}

	if c.telemetry != nil && (c.lastHealthy == nil || *c.lastHealthy != sample.SessionHealthy) {
		healthy := sample.SessionHealthy
		c.lastHealthy = &healthy
		c.telemetry.WriteSync(healthy, sample.EpochSeconds)
	}
}
