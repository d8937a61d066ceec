package log

import "time"

// Event is a protocol capture event. Exactly one of the payload pointers is
// set. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the data, if any.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole is the endpoint that captured the event.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (host:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	Record      *RecordEvent      `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Application *ApplicationEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates incoming data.
	DirectionIn Direction = 0
	// DirectionOut indicates outgoing data.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where an event was captured.
type Layer uint8

const (
	// LayerTransport is the ciphertext byte stream.
	LayerTransport Layer = 0
	// LayerSession is the TLS session state machine.
	LayerSession Layer = 1
	// LayerApplication is the decrypted payload.
	LayerApplication Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerSession:
		return "SESSION"
	case LayerApplication:
		return "APPLICATION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRecord indicates ciphertext moved by the handshake pump.
	CategoryRecord Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryApplication indicates application data.
	CategoryApplication Category = 2
	// CategoryError indicates an error.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRecord:
		return "RECORD"
	case CategoryState:
		return "STATE"
	case CategoryApplication:
		return "APPLICATION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which endpoint captured the event.
type Role uint8

const (
	// RoleServer indicates the echo server.
	RoleServer Role = 0
	// RoleClient indicates the echo client.
	RoleClient Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "SERVER"
	case RoleClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// RecordEvent captures ciphertext moved between session and transport.
type RecordEvent struct {
	// Size is the number of bytes read or written.
	Size int `cbor:"1,keyasint"`

	// Iteration is the pump iteration (1-based) that moved the bytes.
	Iteration int `cbor:"2,keyasint"`

	// ContentTypes lists the TLS record types whose headers were seen.
	ContentTypes []string `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures connection and session lifecycle changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`

	// Iterations is the number of pump iterations used, for session
	// transitions to ESTABLISHED.
	Iterations int `cbor:"5,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a TCP connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a TLS session state change.
	StateEntitySession StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ApplicationEvent captures a decrypted application message.
type ApplicationEvent struct {
	// Size is the payload length in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the payload (may be truncated).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MaxCapturedPayload is the number of payload bytes kept in an
// ApplicationEvent.
const MaxCapturedPayload = 256

// NewApplicationEvent builds an ApplicationEvent for p, truncating the
// captured copy to MaxCapturedPayload bytes.
func NewApplicationEvent(p []byte) *ApplicationEvent {
	ev := &ApplicationEvent{Size: len(p)}
	if len(p) > MaxCapturedPayload {
		ev.Data = append([]byte(nil), p[:MaxCapturedPayload]...)
		ev.Truncated = true
	} else {
		ev.Data = append([]byte(nil), p...)
	}
	return ev
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
