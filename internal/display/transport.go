package display

import (
	"errors"
	"fmt"
	"sync"

	"go.bug.st/serial"
)

// Transport accepts rendered frames.
type Transport interface {
	Write(f Frame) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(f Frame) error

// Write calls fn(f).
func (fn TransportFunc) Write(f Frame) error { return fn(f) }

// Tee writes every frame to each transport, continuing past failures.
func Tee(transports ...Transport) Transport {
	return TransportFunc(func(f Frame) error {
		var errs []error
		for _, t := range transports {
			if err := t.Write(f); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// SerialTransport writes frames to a UART. If the device disappears it is
// reopened on the next write.
type SerialTransport struct {
	name string
	mode *serial.Mode

	mu   sync.Mutex
	port serial.Port
	open func(name string, mode *serial.Mode) (serial.Port, error)
}

// OpenSerial opens the display UART at baud, 8N1.
func OpenSerial(name string, baud int) (*SerialTransport, error) {
	t := &SerialTransport{
		name: name,
		mode: &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		open: serial.Open,
	}
	if err := t.reopen(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *SerialTransport) reopen() error {
	port, err := t.open(t.name, t.mode)
	if err != nil {
		return fmt.Errorf("opening display port %s: %w", t.name, err)
	}
	t.port = port
	return nil
}

// Write sends one frame.
func (t *SerialTransport) Write(f Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		if err := t.reopen(); err != nil {
			return err
		}
	}
	if _, err := t.port.Write(f[:]); err != nil {
		if isGone(err) {
			_ = t.port.Close() //nolint:errcheck // Port is already unusable
			t.port = nil
		}
		return fmt.Errorf("writing display frame: %w", err)
	}
	return nil
}

// Close releases the port.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// isGone reports whether err means the device was unplugged or closed.
func isGone(err error) bool {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return false
	}
	switch portErr.Code() {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	default:
		return false
	}
}
