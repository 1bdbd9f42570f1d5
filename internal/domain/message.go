package domain

import (
	"encoding/json"
	"fmt"
)

type MessageType string

const (
	TypeRegister     MessageType = "register"
	TypeCameraSetup  MessageType = "camera-setup"
	TypeOffer        MessageType = "offer"
	TypeAnswer       MessageType = "answer"
	TypeICECandidate MessageType = "ice-candidate"

	TypeCameraRegisterAck MessageType = "camera-register-ack"
	TypeProbeSuccess      MessageType = "probe-success"
	TypeProbeError        MessageType = "probe-error"
	TypeCloseWebRTC       MessageType = "close-webrtc"
	TypeError             MessageType = "error"
)

// Kind is the closed set of client-originated messages. Anything else decodes
// to KindUnknown.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegister
	KindCameraSetup
	KindOffer
	KindAnswer
	KindICECandidate
)

func (t MessageType) Kind() Kind {
	switch t {
	case TypeRegister:
		return KindRegister
	case TypeCameraSetup:
		return KindCameraSetup
	case TypeOffer:
		return KindOffer
	case TypeAnswer:
		return KindAnswer
	case TypeICECandidate:
		return KindICECandidate
	default:
		return KindUnknown
	}
}

// Envelope is the unit exchanged over every signaling connection.
type Envelope struct {
	Type       MessageType     `json:"type"`
	Sender     ClientID        `json:"sender"`
	Target     ClientID        `json:"target,omitempty"`
	ClientType string          `json:"clientType,omitempty"`
	Role       string          `json:"role,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ClaimedRole is the role the sender declares; clientType wins over role.
func (e *Envelope) ClaimedRole() (Role, bool) {
	if e.ClientType != "" {
		return ParseRole(e.ClientType)
	}
	return ParseRole(e.Role)
}

// DecodeEnvelope parses a raw frame. Malformed JSON is a protocol violation.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: bad envelope: %v", ErrProtocol, err)
	}
	return &env, nil
}

// DecodeData unmarshals the payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: %s without data", ErrProtocol, e.Type)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: bad %s data: %v", ErrProtocol, e.Type, err)
	}
	return nil
}

type ViewerRegistration struct {
	Token                 string     `json:"token"`
	InRegistrationProcess bool       `json:"inRegistrationProcess"`
	RegisteredCameras     []ClientID `json:"registeredCameras"`
}

type CameraRegistration struct {
	Token string `json:"token"`
}

type CameraProbe struct {
	CameraID ClientID `json:"cameraId"`
	Token    string   `json:"token"`
}

// Reply builds a server-originated message addressed to target.
func Reply(t MessageType, target ClientID) Envelope {
	return Envelope{Type: t, Sender: ServerID, Target: target}
}

// ErrorReply is the structured error sent back on a missing target.
func ErrorReply(target ClientID, msg string) Envelope {
	return Envelope{Type: TypeError, Sender: ServerID, Target: target, Error: msg}
}
