// Package session implements the connection state machine: Handshake ->
// Status/Login -> Configuration -> Play, including the login encryption/
// authentication handshake and the configuration registry/resource-pack
// exchange.
package session

// State names one phase of the connection state machine.
type State int

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}
