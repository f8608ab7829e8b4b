package link

import "fmt"

// State is the orchestrator's view of network readiness.
type State int

const (
	Disconnected State = iota
	Associated
	SessionUp
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Associated:
		return "associated"
	case SessionUp:
		return "session_up"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RadioStatus is a station status code reported by the radio.
type RadioStatus int

const (
	StatusIdle RadioStatus = iota
	StatusConnecting
	StatusWrongPassword
	StatusNoAPFound
	StatusConnectFail
	StatusGotIP
)

// String returns the status name.
func (r RadioStatus) String() string {
	switch r {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusWrongPassword:
		return "wrong_password"
	case StatusNoAPFound:
		return "no_ap_found"
	case StatusConnectFail:
		return "connect_fail"
	case StatusGotIP:
		return "got_ip"
	default:
		return fmt.Sprintf("status(%d)", int(r))
	}
}
