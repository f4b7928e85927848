package codec

import (
	"fmt"

	"github.com/dougsko/rigd/pkg/rig"
)

// Yaesu CAT (FT-891/FT-991 command set) uses 9-digit frequency fields
// and hexadecimal mode codes behind the MD0 verb
const yaesuFreqDigits = 9

var yaesuModeToWire = map[rig.Mode]byte{
	rig.ModeLSB:   '1',
	rig.ModeUSB:   '2',
	rig.ModeCW:    '3',
	rig.ModeFM:    '4',
	rig.ModeAM:    '5',
	rig.ModeRTTY:  '6',
	rig.ModeCWR:   '7',
	rig.ModeRTTYR: '9',
	rig.ModeData:  'C',
}

var yaesuWireToMode = catReverse(yaesuModeToWire)

// YaesuCodec implements the Yaesu ASCII CAT dialect
type YaesuCodec struct {
	model string
}

// NewYaesuCodec creates a Yaesu CAT codec
func NewYaesuCodec(caps *rig.Capabilities) *YaesuCodec {
	return &YaesuCodec{model: caps.ModelID}
}

// Terminator returns the CAT command terminator
func (c *YaesuCodec) Terminator() byte { return catTerminator }

// WantsResponse reports whether the command is answered by the radio
func (c *YaesuCodec) WantsResponse(cmd Command) bool { return catWantsResponse(cmd.Op) }

// Encode builds the ASCII command for the operation
func (c *YaesuCodec) Encode(cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpGetFrequency:
		if cmd.VFO == rig.VFOB {
			return []byte("FB;"), nil
		}
		return []byte("FA;"), nil

	case OpSetFrequency:
		if cmd.Frequency >= 1e9 {
			return nil, &rig.CapabilityError{Model: c.model, Op: "frequency",
				Reason: fmt.Sprintf("%d Hz exceeds %d-digit field", cmd.Frequency, yaesuFreqDigits)}
		}
		verb := "FA"
		if cmd.VFO == rig.VFOB {
			verb = "FB"
		}
		return []byte(fmt.Sprintf("%s%09d;", verb, cmd.Frequency)), nil

	case OpGetMode:
		return []byte("MD0;"), nil

	case OpSetMode:
		wire, ok := yaesuModeToWire[cmd.Mode]
		if !ok {
			return nil, &rig.CapabilityError{Model: c.model, Op: "mode",
				Reason: fmt.Sprintf("mode %s has no Yaesu encoding", cmd.Mode)}
		}
		return []byte(fmt.Sprintf("MD0%c;", wire)), nil

	case OpSetVFO:
		if cmd.VFO == rig.VFOB {
			return []byte("VS1;"), nil
		}
		return []byte("VS0;"), nil

	case OpSetSplit:
		if cmd.Split {
			return []byte("ST1;"), nil
		}
		return []byte("ST0;"), nil

	case OpSetPower:
		return []byte(fmt.Sprintf("PC%03d;", int(cmd.Power))), nil

	case OpGetPTT:
		return []byte("TX;"), nil

	case OpSetPTT:
		if cmd.PTT {
			return []byte("TX1;"), nil
		}
		return []byte("TX0;"), nil

	case OpGetSignal:
		return []byte("SM0;"), nil

	case OpSetRIT:
		// clarifier: RC clears, RU/RD apply a 4-digit offset
		switch {
		case cmd.Offset == 0:
			return []byte("RC;"), nil
		case cmd.Offset > 0:
			return []byte(fmt.Sprintf("RU%04d;", cmd.Offset)), nil
		default:
			return []byte(fmt.Sprintf("RD%04d;", -cmd.Offset)), nil
		}

	case OpSetXIT:
		if cmd.Offset != 0 {
			return []byte("XT1;"), nil
		}
		return []byte("XT0;"), nil
	}

	return nil, fmt.Errorf("operation %s not supported by Yaesu codec", cmd.Op)
}

// Decode parses a Yaesu reply
func (c *YaesuCodec) Decode(cmd Command, data []byte) (*Response, error) {
	if catIsError(data) {
		return nil, &rig.NakError{Op: string(cmd.Op)}
	}
	body := catBody(data)

	switch cmd.Op {
	case OpGetFrequency:
		if len(body) < 2 || (body[:2] != "FA" && body[:2] != "FB") {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad frequency reply " + body}
		}
		hz, ok := catDigits(body[2:], yaesuFreqDigits)
		if !ok {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad frequency field " + body}
		}
		return &Response{Frequency: hz}, nil

	case OpGetMode:
		if len(body) != 4 || body[:3] != "MD0" {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad mode reply " + body}
		}
		mode, ok := yaesuWireToMode[body[3]]
		if !ok {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "unknown mode code " + body[3:]}
		}
		return &Response{Mode: mode}, nil

	case OpGetPTT:
		// TX0 = receiving, TX1 = CAT transmit, TX2 = mic transmit
		if len(body) != 3 || body[:2] != "TX" {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad TX reply " + body}
		}
		return &Response{PTT: body[2] != '0'}, nil

	case OpGetSignal:
		if len(body) != 6 || body[:3] != "SM0" {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad S-meter reply " + body}
		}
		v, ok := catDigits(body[3:], 3)
		if !ok {
			return nil, &rig.FramingError{Family: "yaesu-cat", Detail: "bad S-meter field " + body}
		}
		return &Response{Signal: int(v)}, nil
	}

	return nil, &rig.FramingError{Family: "yaesu-cat",
		Detail: fmt.Sprintf("unexpected reply for %s", cmd.Op)}
}
