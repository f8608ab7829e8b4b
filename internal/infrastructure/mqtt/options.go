package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 1000 // milliseconds
	defaultKeepAlive         = 120 * time.Second

	maxQoS        = 2
	tlsMinVersion = tls.VersionTLS12
)

// Will is the last-will message the broker publishes if the session dies.
type Will struct {
	Topic   string
	Payload string
}

// Options describes one broker session.
type Options struct {
	Host     string
	Port     int
	TLS      bool
	ClientID string
	Username string
	Password string

	// KeepAlive is the ping interval. Zero uses 120 s.
	KeepAlive time.Duration

	// QoS is used for the will and graceful offline messages.
	QoS byte

	// Reconnect backoff bounds.
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration

	Will *Will
}

// clientID returns the configured ID, or a random one so two unprovisioned
// clocks do not evict each other from the broker.
func (o Options) clientID() string {
	if o.ClientID != "" {
		return o.ClientID
	}
	return "netclock-" + uuid.NewString()[:8]
}

// buildClientOptions translates Options into paho options.
//
// The session is clean, retries the initial connect in the background and
// reconnects automatically, so Connect never blocks the caller.
func buildClientOptions(o Options) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if o.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, o.Host, o.Port))
	opts.SetClientID(o.clientID())

	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	keepAlive := o.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	opts.SetKeepAlive(keepAlive)

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	if o.ReconnectInitial > 0 {
		opts.SetConnectRetryInterval(o.ReconnectInitial)
	}
	if o.ReconnectMax > 0 {
		opts.SetMaxReconnectInterval(o.ReconnectMax)
	}
	opts.SetConnectTimeout(defaultConnectTimeout)

	if o.Will != nil && o.Will.Topic != "" {
		opts.SetWill(o.Will.Topic, o.Will.Payload, o.QoS, false)
	}
	return opts
}
