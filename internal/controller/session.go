package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/netclock/internal/infrastructure/mqtt"
)

// sessionQueueSize bounds broker calls waiting for the worker.
const sessionQueueSize = 16

var errSessionBusy = errors.New("controller: broker queue full")

// Broker is the subset of *mqtt.Client the controller drives.
type Broker interface {
	Connect() error
	IsConnected() bool
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// session adapts a Broker to link.Session. Publish and Subscribe wait on
// broker acknowledgements, so they are handed to a worker goroutine and
// run there in the order issued; the loop only enqueues them. Inbound
// messages are posted back to the loop rather than handled on the
// broker's goroutine.
type session struct {
	broker Broker
	qos    byte
	post   func(Event) bool
	logger Logger
	ops    chan func()
}

func newSession(broker Broker, qos byte, post func(Event) bool, logger Logger) *session {
	return &session{
		broker: broker,
		qos:    qos,
		post:   post,
		logger: logger,
		ops:    make(chan func(), sessionQueueSize),
	}
}

// run executes queued broker calls until ctx is cancelled.
func (s *session) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-s.ops:
			op()
		}
	}
}

// Connect asks the broker to connect. A session that survived a radio
// drop gets no fresh connect callback, so it is reported here instead.
func (s *session) Connect() error {
	if s.broker.IsConnected() {
		s.logger.Info("session still up after reassociation")
		s.post(SessionConnected{})
		return nil
	}
	return s.broker.Connect()
}

func (s *session) Publish(topic string, payload []byte) error {
	return s.enqueue("publish", topic, func() error {
		return s.broker.Publish(topic, payload, s.qos, false)
	})
}

func (s *session) Subscribe(topic string) error {
	return s.enqueue("subscribe", topic, func() error {
		return s.broker.Subscribe(topic, s.qos, func(topic string, payload []byte) error {
			s.post(MessageReceived{Topic: topic, Payload: append([]byte(nil), payload...)})
			return nil
		})
	})
}

func (s *session) enqueue(op, topic string, fn func() error) error {
	select {
	case s.ops <- func() {
		if err := fn(); err != nil {
			s.logger.Error("broker "+op+" failed", "topic", topic, "error", err)
		}
	}:
		return nil
	default:
		return fmt.Errorf("%w: %s %s", errSessionBusy, op, topic)
	}
}
