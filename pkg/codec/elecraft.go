package codec

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/rig"
)

// Elecraft CAT (K3/KX3 command set) uses 11-digit frequency fields like
// Kenwood but its own mode table: RTTY operation is carried in DATA mode
const elecraftFreqDigits = 11

var elecraftModeToWire = map[rig.Mode]byte{
	rig.ModeLSB:  '1',
	rig.ModeUSB:  '2',
	rig.ModeCW:   '3',
	rig.ModeFM:   '4',
	rig.ModeAM:   '5',
	rig.ModeData: '6',
	rig.ModeCWR:  '7',
}

var elecraftWireToMode = catReverse(elecraftModeToWire)

// ElecraftCodec implements the Elecraft ASCII CAT dialect
type ElecraftCodec struct {
	model string
}

// NewElecraftCodec creates an Elecraft CAT codec
func NewElecraftCodec(caps *rig.Capabilities) *ElecraftCodec {
	return &ElecraftCodec{model: caps.ModelID}
}

// Terminator returns the CAT command terminator
func (c *ElecraftCodec) Terminator() byte { return catTerminator }

// WantsResponse reports whether the command is answered by the radio
func (c *ElecraftCodec) WantsResponse(cmd Command) bool { return catWantsResponse(cmd.Op) }

// Encode builds the ASCII command for the operation
func (c *ElecraftCodec) Encode(cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpGetFrequency:
		if cmd.VFO == rig.VFOB {
			return []byte("FB;"), nil
		}
		return []byte("FA;"), nil

	case OpSetFrequency:
		if cmd.Frequency >= 1e11 {
			return nil, &rig.CapabilityError{Model: c.model, Op: "frequency",
				Reason: fmt.Sprintf("%d Hz exceeds %d-digit field", cmd.Frequency, elecraftFreqDigits)}
		}
		verb := "FA"
		if cmd.VFO == rig.VFOB {
			verb = "FB"
		}
		return []byte(fmt.Sprintf("%s%011d;", verb, cmd.Frequency)), nil

	case OpGetMode:
		return []byte("MD;"), nil

	case OpSetMode:
		wire, ok := elecraftModeToWire[cmd.Mode]
		if !ok {
			return nil, &rig.CapabilityError{Model: c.model, Op: "mode",
				Reason: fmt.Sprintf("mode %s has no Elecraft encoding", cmd.Mode)}
		}
		return []byte(fmt.Sprintf("MD%c;", wire)), nil

	case OpSetVFO:
		if cmd.VFO == rig.VFOB {
			return []byte("FR1;"), nil
		}
		return []byte("FR0;"), nil

	case OpSetSplit:
		if cmd.Split {
			return []byte("FT1;"), nil
		}
		return []byte("FT0;"), nil

	case OpSetPower:
		return []byte(fmt.Sprintf("PC%03d;", int(cmd.Power))), nil

	case OpGetPTT:
		return []byte("TQ;"), nil

	case OpSetPTT:
		if cmd.PTT {
			return []byte("TX;"), nil
		}
		return []byte("RX;"), nil

	case OpGetSignal:
		return []byte("SM;"), nil

	case OpSetRIT:
		if cmd.Offset == 0 {
			return []byte("RT0;"), nil
		}
		if cmd.Offset > 9999 || cmd.Offset < -9999 {
			return nil, &rig.CapabilityError{Model: c.model, Op: "rit",
				Reason: fmt.Sprintf("offset %d Hz exceeds RO field", cmd.Offset)}
		}
		return []byte(fmt.Sprintf("RO%+05d;", cmd.Offset)), nil

	case OpSetXIT:
		if cmd.Offset != 0 {
			return []byte("XT1;"), nil
		}
		return []byte("XT0;"), nil
	}

	return nil, fmt.Errorf("operation %s not supported by Elecraft codec", cmd.Op)
}

// Decode parses an Elecraft reply
func (c *ElecraftCodec) Decode(cmd Command, data []byte) (*Response, error) {
	if catIsError(data) {
		return nil, &rig.NakError{Op: string(cmd.Op)}
	}
	body := catBody(data)

	switch cmd.Op {
	case OpGetFrequency:
		if len(body) < 2 || (body[:2] != "FA" && body[:2] != "FB") {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad frequency reply " + body}
		}
		hz, ok := catDigits(body[2:], elecraftFreqDigits)
		if !ok {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad frequency field " + body}
		}
		return &Response{Frequency: hz}, nil

	case OpGetMode:
		if len(body) != 3 || body[:2] != "MD" {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad mode reply " + body}
		}
		mode, ok := elecraftWireToMode[body[2]]
		if !ok {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "unknown mode code " + body[2:]}
		}
		return &Response{Mode: mode}, nil

	case OpGetPTT:
		if len(body) != 3 || body[:2] != "TQ" {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad TQ reply " + body}
		}
		return &Response{PTT: body[2] == '1'}, nil

	case OpGetSignal:
		if len(body) != 6 || body[:2] != "SM" {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad S-meter reply " + body}
		}
		v, ok := catDigits(body[2:], 4)
		if !ok {
			return nil, &rig.FramingError{Family: "elecraft-cat", Detail: "bad S-meter field " + body}
		}
		return &Response{Signal: int(v)}, nil
	}

	return nil, &rig.FramingError{Family: "elecraft-cat",
		Detail: fmt.Sprintf("unexpected reply for %s", cmd.Op)}
}
