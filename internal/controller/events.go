package controller

import (
	"net"

	"github.com/nerrad567/netclock/internal/link"
	"github.com/nerrad567/netclock/internal/radio"
)

// Event is anything the loop consumes.
type Event interface {
	event()
}

// RadioStatus reports a change in the wireless interface.
type RadioStatus struct {
	Status link.RadioStatus
	IP     net.IP
}

// SessionConnected reports that the broker session came up.
type SessionConnected struct{}

// SessionDisconnected reports that the broker session was lost.
type SessionDisconnected struct {
	Err error
}

// Published reports a message acknowledged by the broker.
type Published struct {
	Topic string
}

// MessageReceived carries an inbound MQTT message.
type MessageReceived struct {
	Topic   string
	Payload []byte
}

// SurveyComplete carries the result of a wireless scan.
type SurveyComplete struct {
	Networks []radio.BSS
	Err      error
}

func (RadioStatus) event()         {}
func (SessionConnected) event()    {}
func (SessionDisconnected) event() {}
func (Published) event()           {}
func (MessageReceived) event()     {}
func (SurveyComplete) event()      {}
