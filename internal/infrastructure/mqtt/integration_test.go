//go:build integration

package mqtt

import (
	"testing"
	"time"
)

// Integration tests against a real broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationOptions(clientID string) Options {
	return Options{
		Host:             "127.0.0.1",
		Port:             1883,
		ClientID:         clientID,
		ReconnectInitial: time.Second,
		ReconnectMax:     5 * time.Second,
		Will:             &Will{Topic: "/node/info", Payload: "connstate:offline;device:/netclock/int"},
	}
}

func waitConnected(t *testing.T, c *Client) {
	t.Helper()
	up := make(chan struct{}, 1)
	c.SetOnConnect(func() {
		select {
		case up <- struct{}{}:
		default:
		}
	})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	select {
	case <-up:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for broker connection")
	}
}

func TestIntegration_CommandRoundTrip(t *testing.T) {
	clock := New(integrationOptions("netclock-int-clock"))
	waitConnected(t, clock)
	defer clock.Close()

	received := make(chan string, 1)
	if err := clock.Subscribe("/netclock/int/command", 0, func(_ string, payload []byte) error {
		received <- string(payload)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	operator := New(integrationOptions("netclock-int-operator"))
	waitConnected(t, operator)
	defer operator.Close()

	if err := operator.Publish("/netclock/int/command", []byte("UTCOFFSET -18000"), 0, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got != "UTCOFFSET -18000" {
			t.Errorf("received %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("command not delivered")
	}
}

func TestIntegration_OfflineNoticeOnClose(t *testing.T) {
	watcher := New(integrationOptions("netclock-int-watcher"))
	waitConnected(t, watcher)
	defer watcher.Close()

	notices := make(chan string, 4)
	if err := watcher.Subscribe("/node/info", 0, func(_ string, payload []byte) error {
		notices <- string(payload)
		return nil
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	clock := New(integrationOptions("netclock-int-closing"))
	waitConnected(t, clock)
	if err := clock.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case got := <-notices:
		if got != "connstate:offline;device:/netclock/int" {
			t.Errorf("offline notice = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("offline notice not delivered")
	}
}
