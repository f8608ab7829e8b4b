package timesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beevik/ntp"
)

var (
	// ErrAlreadyStarted is returned by a second call to Init.
	ErrAlreadyStarted = errors.New("timesync: already started")

	// ErrNoServers is returned by Init with an empty server list.
	ErrNoServers = errors.New("timesync: no servers configured")

	// ErrInvalidInterval is returned by Init with a non-positive poll interval.
	ErrInvalidInterval = errors.New("timesync: poll interval must be positive")
)

// maxRetryInterval caps the wait after a failed poll round.
const maxRetryInterval = 30 * time.Second

// Sample is a point-in-time read of the synchronised clock.
type Sample struct {
	// EpochSeconds is UTC seconds since 1970, or 0 when no time is known.
	EpochSeconds uint64 `json:"epoch_seconds"`

	// SessionHealthy is true when the most recent poll succeeded.
	SessionHealthy bool `json:"session_healthy"`
}

// Result describes one poll round, for observers.
type Result struct {
	Server string
	Offset time.Duration
	RTT    time.Duration
	Err    error
}

// Logger is the logging interface used by the Client.
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

// queryFunc asks one server for the local clock's offset.
type queryFunc func(host string, timeout time.Duration) (offset, rtt time.Duration, err error)

// queryNTP is the production queryFunc.
func queryNTP(host string, timeout time.Duration) (time.Duration, time.Duration, error) {
	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, 0, fmt.Errorf("invalid response from %s: %w", host, err)
	}
	return resp.ClockOffset, resp.RTT, nil
}

// Client is an SNTP poller. All methods are safe for concurrent use.
type Client struct {
	timeout time.Duration
	query   queryFunc
	now     func() time.Time
	logger  Logger

	mu       sync.RWMutex
	started  bool
	synced   bool
	healthy  bool
	offset   time.Duration
	observer func(Result)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient creates a client that waits at most timeout per server query.
func NewClient(timeout time.Duration, logger Logger) *Client {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Client{
		timeout: timeout,
		query:   queryNTP,
		now:     time.Now,
		logger:  logger,
	}
}

// SetObserver registers fn to receive every poll result. fn runs on the
// polling goroutine and must not block.
func (c *Client) SetObserver(fn func(Result)) {
	c.mu.Lock()
	c.observer = fn
	c.mu.Unlock()
}

// Init starts background polling. It may be called once.
//
// Parameters:
//   - servers: Hosts to try in order each round
//   - pollInterval: Time between successful rounds
func (c *Client) Init(servers []string, pollInterval time.Duration) error {
	if len(servers) == 0 {
		return ErrNoServers
	}
	if pollInterval <= 0 {
		return ErrInvalidInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	hosts := append([]string(nil), servers...)
	go c.run(ctx, hosts, pollInterval)
	return nil
}

// Close stops polling and waits for the poller to exit.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sample returns the current corrected time.
func (c *Client) Sample() Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.synced {
		return Sample{}
	}
	secs := c.now().Add(c.offset).Unix()
	if secs <= 0 {
		return Sample{SessionHealthy: c.healthy}
	}
	return Sample{EpochSeconds: uint64(secs), SessionHealthy: c.healthy}
}

// SessionHealthy reports whether the most recent poll succeeded.
func (c *Client) SessionHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

func (c *Client) run(ctx context.Context, servers []string, pollInterval time.Duration) {
	defer close(c.done)

	retry := min(pollInterval, maxRetryInterval)
	for {
		wait := pollInterval
		if !c.poll(servers) {
			wait = retry
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// poll tries each server in order and records the first answer.
func (c *Client) poll(servers []string) bool {
	var lastErr error
	for _, host := range servers {
		offset, rtt, err := c.query(host, c.timeout)
		if err != nil {
			c.logger.Debug("sntp query failed", "server", host, "error", err)
			lastErr = err
			continue
		}

		c.mu.Lock()
		c.synced = true
		c.healthy = true
		c.offset = offset
		observer := c.observer
		c.mu.Unlock()

		c.logger.Debug("sntp sync", "server", host, "offset", offset, "rtt", rtt)
		if observer != nil {
			observer(Result{Server: host, Offset: offset, RTT: rtt})
		}
		return true
	}

	c.mu.Lock()
	c.healthy = false
	observer := c.observer
	c.mu.Unlock()

	c.logger.Warn("sntp poll failed on all servers", "servers", servers, "error", lastErr)
	if observer != nil {
		observer(Result{Err: lastErr})
	}
	return false
}
