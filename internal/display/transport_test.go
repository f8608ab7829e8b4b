package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

// fakePort implements the parts of serial.Port the transport uses.
type fakePort struct {
	serial.Port
	written  [][]byte
	writeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, append([]byte(nil), b...))
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newFakeSerial(t *testing.T, port *fakePort) (*SerialTransport, *serial.Mode) {
	t.Helper()
	var gotMode *serial.Mode
	tr := &SerialTransport{
		name: "/dev/ttyTEST",
		mode: &serial.Mode{BaudRate: 9600},
		open: func(_ string, mode *serial.Mode) (serial.Port, error) {
			gotMode = mode
			return port, nil
		},
	}
	require.NoError(t, tr.reopen())
	return tr, gotMode
}

func TestSerialTransport_WritesWholeFrame(t *testing.T) {
	port := &fakePort{}
	tr, mode := newFakeSerial(t, port)
	assert.Equal(t, 9600, mode.BaudRate)

	require.NoError(t, tr.Write(NoTimeFrame()))
	require.Len(t, port.written, 1)
	assert.Equal(t, []byte{0x77, 0x00, 0x79, 0x00, '-', '-', '-', '-'}, port.written[0])
}

func TestSerialTransport_WriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("input/output error")}
	tr, _ := newFakeSerial(t, port)

	assert.Error(t, tr.Write(NoTimeFrame()))
	assert.False(t, port.closed, "ordinary errors keep the port open")
}

func TestSerialTransport_Close(t *testing.T) {
	port := &fakePort{}
	tr, _ := newFakeSerial(t, port)

	require.NoError(t, tr.Close())
	assert.True(t, port.closed)
	require.NoError(t, tr.Close())
}

func TestTee(t *testing.T) {
	var a, b []Frame
	boom := errors.New("boom")
	tee := Tee(
		TransportFunc(func(f Frame) error { a = append(a, f); return boom }),
		TransportFunc(func(f Frame) error { b = append(b, f); return nil }),
	)

	err := tee.Write(NoTimeFrame())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a, 1)
	assert.Len(t, b, 1, "later transports still receive the frame")
}
