package live

import "fmt"

// ConnectionState is the lifecycle state of the live channel.
// Exactly one value is active at a time; owned by the Channel.
type ConnectionState int

const (
	// StateDisconnected - no transport; initial state.
	StateDisconnected ConnectionState = iota
	// StateConnecting - dial in progress.
	StateConnecting
	// StateConnected - transport open, not recognizing.
	StateConnected
	// StateRecognizing - sampler armed, frames streaming.
	StateRecognizing
	// StateError - transport failed mid-session; caller may reconnect.
	StateError
	// StateFallback - degraded mode: recognition verbs work, no real
	// predictions are produced.
	StateFallback
)

// String returns the string representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateRecognizing:
		return "RECOGNIZING"
	case StateError:
		return "ERROR"
	case StateFallback:
		return "FALLBACK"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// CanStartRecognition returns true if StartRecognition is valid from s.
func (s ConnectionState) CanStartRecognition() bool {
	return s == StateConnected || s == StateFallback
}

// FallbackReason says why the channel is in fallback mode.
type FallbackReason int

const (
	// FallbackNone - not in fallback mode.
	FallbackNone FallbackReason = iota
	// FallbackServiceUnreachable - dialing the recognition service failed.
	FallbackServiceUnreachable
	// FallbackLiveDisabled - live transport disabled by configuration.
	FallbackLiveDisabled
)

// String returns the string representation of the reason.
func (r FallbackReason) String() string {
	switch r {
	case FallbackNone:
		return "NONE"
	case FallbackServiceUnreachable:
		return "SERVICE_UNREACHABLE"
	case FallbackLiveDisabled:
		return "LIVE_DISABLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", r)
	}
}
