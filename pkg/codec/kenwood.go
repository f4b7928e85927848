package codec

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/rig"
)

// Kenwood CAT uses 11-digit frequency fields and single-digit mode
// codes (TS-480/TS-590 command set)
const kenwoodFreqDigits = 11

var kenwoodModeToWire = map[rig.Mode]byte{
	rig.ModeLSB:   '1',
	rig.ModeUSB:   '2',
	rig.ModeCW:    '3',
	rig.ModeFM:    '4',
	rig.ModeAM:    '5',
	rig.ModeRTTY:  '6',
	rig.ModeCWR:   '7',
	rig.ModeRTTYR: '9',
}

var kenwoodWireToMode = catReverse(kenwoodModeToWire)

// KenwoodCodec implements the Kenwood ASCII CAT dialect
type KenwoodCodec struct {
	model string
}

// NewKenwoodCodec creates a Kenwood CAT codec
func NewKenwoodCodec(caps *rig.Capabilities) *KenwoodCodec {
	return &KenwoodCodec{model: caps.ModelID}
}

// Terminator returns the CAT command terminator
func (c *KenwoodCodec) Terminator() byte { return catTerminator }

// WantsResponse reports whether the command is answered by the radio
func (c *KenwoodCodec) WantsResponse(cmd Command) bool { return catWantsResponse(cmd.Op) }

// Encode builds the ASCII command for the operation
func (c *KenwoodCodec) Encode(cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpGetFrequency:
		if cmd.VFO == rig.VFOB {
			return []byte("FB;"), nil
		}
		return []byte("FA;"), nil

	case OpSetFrequency:
		if cmd.Frequency >= 1e11 {
			return nil, &rig.CapabilityError{Model: c.model, Op: "frequency",
				Reason: fmt.Sprintf("%d Hz exceeds %d-digit field", cmd.Frequency, kenwoodFreqDigits)}
		}
		verb := "FA"
		if cmd.VFO == rig.VFOB {
			verb = "FB"
		}
		return []byte(fmt.Sprintf("%s%011d;", verb, cmd.Frequency)), nil

	case OpGetMode:
		return []byte("MD;"), nil

	case OpSetMode:
		wire, ok := kenwoodModeToWire[cmd.Mode]
		if !ok {
			return nil, &rig.CapabilityError{Model: c.model, Op: "mode",
				Reason: fmt.Sprintf("mode %s has no Kenwood encoding", cmd.Mode)}
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
		// no dedicated query verb; transmit state is P8 of the IF report
		return []byte("IF;"), nil

	case OpSetPTT:
		if cmd.PTT {
			return []byte("TX;"), nil
		}
		return []byte("RX;"), nil

	case OpGetSignal:
		return []byte("SM0;"), nil

	case OpSetRIT:
		switch {
		case cmd.Offset == 0:
			return []byte("RT0;"), nil
		case cmd.Offset > 0:
			return []byte(fmt.Sprintf("RU%05d;", cmd.Offset)), nil
		default:
			return []byte(fmt.Sprintf("RD%05d;", -cmd.Offset)), nil
		}

	case OpSetXIT:
		if cmd.Offset != 0 {
			return []byte("XT1;"), nil
		}
		return []byte("XT0;"), nil
	}

	return nil, fmt.Errorf("operation %s not supported by Kenwood codec", cmd.Op)
}

// Decode parses a Kenwood reply
func (c *KenwoodCodec) Decode(cmd Command, data []byte) (*Response, error) {
	if catIsError(data) {
		return nil, &rig.NakError{Op: string(cmd.Op)}
	}
	body := catBody(data)

	switch cmd.Op {
	case OpGetFrequency:
		if len(body) < 2 || (body[:2] != "FA" && body[:2] != "FB") {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad frequency reply " + body}
		}
		hz, ok := catDigits(body[2:], kenwoodFreqDigits)
		if !ok {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad frequency field " + body}
		}
		return &Response{Frequency: hz}, nil

	case OpGetMode:
		if len(body) != 3 || body[:2] != "MD" {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad mode reply " + body}
		}
		mode, ok := kenwoodWireToMode[body[2]]
		if !ok {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "unknown mode code " + body[2:]}
		}
		return &Response{Mode: mode}, nil

	case OpGetPTT:
		// IF response: P8 at offset 28 is 0 for RX, 1 for TX
		if len(body) < 29 || body[:2] != "IF" {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad IF reply"}
		}
		return &Response{PTT: body[28] == '1'}, nil

	case OpGetSignal:
		if len(body) != 7 || body[:3] != "SM0" {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad S-meter reply " + body}
		}
		v, ok := catDigits(body[3:], 4)
		if !ok {
			return nil, &rig.FramingError{Family: "kenwood-cat", Detail: "bad S-meter field " + body}
		}
		return &Response{Signal: int(v)}, nil
	}

	return nil, &rig.FramingError{Family: "kenwood-cat",
		Detail: fmt.Sprintf("unexpected reply for %s", cmd.Op)}
}
