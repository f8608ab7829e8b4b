package radio

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/netclock/internal/link"
)

type statusEvent struct {
	status link.RadioStatus
	ip     net.IP
}

func TestClassify(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 5)
	tests := []struct {
		name string
		st   ifaceState
		want link.RadioStatus
	}{
		{"missing interface", ifaceState{}, link.StatusNoAPFound},
		{"down", ifaceState{exists: true}, link.StatusIdle},
		{"up without address", ifaceState{exists: true, up: true}, link.StatusConnecting},
		{"addressed", ifaceState{exists: true, up: true, ip: ip}, link.StatusGotIP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.st))
		})
	}
}

func TestWatcher_ReportsOnlyChanges(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 5)
	script := []ifaceState{
		{exists: true, up: true},
		{exists: true, up: true},
		{exists: true, up: true, ip: ip},
		{exists: true, up: true, ip: ip},
		{exists: true},
	}

	var (
		mu     sync.Mutex
		events []statusEvent
		polls  int
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWatcher("wlan0", time.Millisecond, func(s link.RadioStatus, ip net.IP) bool {
		mu.Lock()
		events = append(events, statusEvent{s, ip})
		mu.Unlock()
		return true
	}, nil)
	w.observe = func(string) (ifaceState, error) {
		mu.Lock()
		defer mu.Unlock()
		i := min(polls, len(script)-1)
		polls++
		if polls > len(script) {
			cancel()
		}
		return script[i], nil
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 3)
	assert.Equal(t, link.StatusConnecting, events[0].status)
	assert.Equal(t, link.StatusGotIP, events[1].status)
	assert.True(t, ip.Equal(events[1].ip))
	assert.Equal(t, link.StatusIdle, events[2].status)
}

func TestWatcher_ObserveErrorTreatedAsMissing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var got []link.RadioStatus
	w := NewWatcher("wlan9", time.Millisecond, func(s link.RadioStatus, _ net.IP) bool {
		got = append(got, s)
		cancel()
		return true
	}, nil)
	w.observe = func(string) (ifaceState, error) {
		return ifaceState{}, errors.New("no such network interface")
	}

	require.NoError(t, w.Run(ctx))
	assert.Equal(t, []link.RadioStatus{link.StatusNoAPFound}, got)
}

func TestWatcher_RetriesUndeliveredStatus(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 5)
	ctx, cancel := context.WithCancel(context.Background())

	var events []statusEvent
	w := NewWatcher("wlan0", time.Millisecond, func(s link.RadioStatus, ip net.IP) bool {
		events = append(events, statusEvent{s, ip})
		if len(events) == 1 {
			return false
		}
		cancel()
		return true
	}, nil)
	w.observe = func(string) (ifaceState, error) {
		return ifaceState{exists: true, up: true, ip: ip}, nil
	}

	require.NoError(t, w.Run(ctx))
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, link.StatusGotIP, ev.status)
		assert.True(t, ip.Equal(ev.ip))
	}
}
