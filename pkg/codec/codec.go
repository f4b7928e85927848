package codec

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/rig"
)

// Op identifies a semantic rig operation
type Op string

const (
	OpGetFrequency Op = "get_frequency"
	OpSetFrequency Op = "set_frequency"
	OpGetMode      Op = "get_mode"
	OpSetMode      Op = "set_mode"
	OpSetVFO       Op = "set_vfo"
	OpSetSplit     Op = "set_split"
	OpSetPower     Op = "set_power"
	OpGetPTT       Op = "get_ptt"
	OpSetPTT       Op = "set_ptt"
	OpGetSignal    Op = "get_signal"
	OpSetRIT       Op = "set_rit"
	OpSetXIT       Op = "set_xit"
)

// Command represents one outbound request before wire encoding.
// Constructed fresh per call and not retained.
type Command struct {
	Op        Op
	VFO       rig.VFO
	Frequency int64
	Mode      rig.Mode
	PTT       bool
	Split     bool
	Power     float64 // watts
	Offset    int     // RIT/XIT offset in Hz, signed
}

// Response represents one decoded inbound unit
type Response struct {
	Ack       bool // bare acknowledgment, no payload
	Frequency int64
	Mode      rig.Mode
	PTT       bool
	Signal    int // family-native raw meter value
}

// Codec encodes semantic commands into one manufacturer's wire format
// and decodes the replies. The controller is written entirely against
// this interface; the concrete implementation is bound once at connect
// time from the model's declared protocol family.
type Codec interface {
	// Encode builds the wire bytes for a command
	Encode(cmd Command) ([]byte, error)

	// Decode parses the device's reply to the given command
	Decode(cmd Command, data []byte) (*Response, error)

	// Terminator returns the frame-end byte the transport should read until
	Terminator() byte

	// WantsResponse reports whether the device replies to this command.
	// CI-V acknowledges every write; the CAT families answer queries only.
	WantsResponse(cmd Command) bool
}

// New binds the codec implementation for the model's protocol family
func New(caps *rig.Capabilities) (Codec, error) {
	switch caps.Family {
	case rig.FamilyCIV:
		return NewCIVCodec(caps), nil
	case rig.FamilyYaesu:
		return NewYaesuCodec(caps), nil
	case rig.FamilyKenwood:
		return NewKenwoodCodec(caps), nil
	case rig.FamilyElecraft:
		return NewElecraftCodec(caps), nil
	default:
		return nil, fmt.Errorf("unknown protocol family %q for model %s", caps.Family, caps.ModelID)
	}
}
