package radio

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// ErrInvalidCredentials is returned when the SSID or passphrase cannot be
// expressed in a wpa_supplicant network block.
var ErrInvalidCredentials = errors.New("radio: invalid credentials")

// SupervisorStatus is the state of the supervised process.
type SupervisorStatus string

const (
	SupervisorStopped SupervisorStatus = "stopped"
	SupervisorRunning SupervisorStatus = "running"
	SupervisorFailed  SupervisorStatus = "failed"
)

// SupervisorConfig configures the wpa_supplicant supervisor.
type SupervisorConfig struct {
	Binary     string
	ConfigPath string
	Interface  string

	// RestartDelay is the pause before restarting after an unexpected exit.
	// It doubles on each consecutive failure up to MaxRestartDelay.
	RestartDelay    time.Duration
	MaxRestartDelay time.Duration

	// GracefulTimeout is how long Stop waits after SIGTERM before SIGKILL.
	GracefulTimeout time.Duration
}

// Supervisor keeps wpa_supplicant running.
type Supervisor struct {
	cfg    SupervisorConfig
	logger Logger

	mu            sync.Mutex
	cmd           *exec.Cmd
	status        SupervisorStatus
	restarts      int
	stopRequested bool
	done          chan struct{}
}

// NewSupervisor creates a stopped supervisor, filling zero durations
// with defaults.
func NewSupervisor(cfg SupervisorConfig, logger Logger) *Supervisor {
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = 2 * time.Second
	}
	if cfg.MaxRestartDelay == 0 {
		cfg.MaxRestartDelay = time.Minute
	}
	if cfg.GracefulTimeout == 0 {
		cfg.GracefulTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Supervisor{cfg: cfg, logger: logger, status: SupervisorStopped}
}

// WriteNetworkConfig writes a single-network wpa_supplicant config for
// ssid/passphrase to path, readable only by the owner. The SSID is
// hex-encoded so any bytes are accepted; the passphrase must be 8-63
// printable characters without quotes.
func WriteNetworkConfig(path, ssid, passphrase string) error {
	if ssid == "" || len(ssid) > 32 {
		return fmt.Errorf("%w: ssid must be 1-32 bytes", ErrInvalidCredentials)
	}
	if len(passphrase) < 8 || len(passphrase) > 63 || strings.ContainsAny(passphrase, "\"\n\r") {
		return fmt.Errorf("%w: passphrase must be 8-63 characters without quotes", ErrInvalidCredentials)
	}

	body := fmt.Sprintf("ctrl_interface=/run/wpa_supplicant\nupdate_config=0\n\nnetwork={\n\tssid=%s\n\tpsk=\"%s\"\n}\n",
		hex.EncodeToString([]byte(ssid)), passphrase)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating supplicant config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		return fmt.Errorf("writing supplicant config: %w", err)
	}
	return nil
}

// Start launches wpa_supplicant and monitors it until ctx ends or Stop
// is called.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status == SupervisorRunning {
		s.mu.Unlock()
		return fmt.Errorf("wpa_supplicant already running on %s", s.cfg.Interface)
	}
	s.stopRequested = false
	s.done = make(chan struct{})
	s.mu.Unlock()

	if err := s.launch(ctx); err != nil {
		s.setStatus(SupervisorFailed)
		close(s.done)
		return err
	}
	go s.monitor(ctx)
	return nil
}

func (s *Supervisor) args() []string {
	return []string{"-i", s.cfg.Interface, "-c", s.cfg.ConfigPath}
}

func (s *Supervisor) launch(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, s.cfg.Binary, s.args()...) //nolint:gosec // Binary comes from validated config
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting wpa_supplicant: %w", err)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.status = SupervisorRunning
	s.mu.Unlock()

	go s.logOutput(out)
	s.logger.Info("wpa_supplicant started", "interface", s.cfg.Interface, "pid", cmd.Process.Pid)
	return nil
}

func (s *Supervisor) logOutput(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.logger.Debug("wpa_supplicant", "line", sc.Text())
	}
}

func (s *Supervisor) monitor(ctx context.Context) {
	defer close(s.done)

	delay := s.cfg.RestartDelay
	for {
		s.mu.Lock()
		cmd := s.cmd
		s.mu.Unlock()

		err := cmd.Wait()

		s.mu.Lock()
		stopping := s.stopRequested
		s.mu.Unlock()
		if stopping || ctx.Err() != nil {
			s.setStatus(SupervisorStopped)
			return
		}

		s.setStatus(SupervisorFailed)
		s.logger.Warn("wpa_supplicant exited, restarting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			s.setStatus(SupervisorStopped)
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, s.cfg.MaxRestartDelay)

		s.mu.Lock()
		s.restarts++
		s.mu.Unlock()

		// Keep trying until a launch succeeds or we are told to stop.
		for {
			err := s.launch(ctx)
			if err == nil {
				break
			}
			s.logger.Error("wpa_supplicant restart failed", "error", err)
			select {
			case <-ctx.Done():
				s.setStatus(SupervisorStopped)
				return
			case <-time.After(delay):
			}
		}
	}
}

// Stop terminates wpa_supplicant, escalating to SIGKILL after the
// graceful timeout.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	s.stopRequested = true
	cmd, done := s.cmd, s.done
	running := s.status == SupervisorRunning
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	if running && cmd != nil && cmd.Process != nil {
		pid := cmd.Process.Pid
		if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
			s.logger.Warn("SIGTERM failed", "pid", pid, "error", err)
		}
		select {
		case <-done:
			return nil
		case <-time.After(s.cfg.GracefulTimeout):
		}
		if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("killing wpa_supplicant: %w", err)
		}
	}
	<-done
	return nil
}

// Status returns the current process state.
func (s *Supervisor) Status() SupervisorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Restarts returns how many times the process has been restarted.
func (s *Supervisor) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

func (s *Supervisor) setStatus(st SupervisorStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}
