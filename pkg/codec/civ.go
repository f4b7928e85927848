package codec

import (
	"fmt"
	"math"

	"github.com/dougsko/rigd/pkg/rig"
)

// CI-V framing constants. Frame layout is fixed by Icom's published
// protocol: FE FE <dst> <src> <cmd> [sub] [data...] FD. There is no
// checksum; integrity relies on the start/end markers.
const (
	civPreamble   = 0xFE
	civTerminator = 0xFD
	civCtrlAddr   = 0xE0 // controller (PC) address
	civAck        = 0xFB
	civNak        = 0xFA
)

// CI-V command bytes
const (
	civCmdGetFreq = 0x03
	civCmdGetMode = 0x04
	civCmdSetFreq = 0x05
	civCmdSetMode = 0x06
	civCmdSetVFO  = 0x07
	civCmdSplit   = 0x0F
	civCmdLevel   = 0x14
	civCmdMeter   = 0x15
	civCmdPTT     = 0x1C
	civCmdRIT     = 0x21
)

// Level/meter sub-commands. These form 2-byte extended commands; the
// parser must peek the sub byte to know where the payload starts.
const (
	civSubRFPower = 0x0A
	civSubSMeter  = 0x02
	civSubPTT     = 0x00
	civSubRITFreq = 0x00
	civSubXIT     = 0x02
)

var civModeToWire = map[rig.Mode]byte{
	rig.ModeLSB:   0x00,
	rig.ModeUSB:   0x01,
	rig.ModeAM:    0x02,
	rig.ModeCW:    0x03,
	rig.ModeRTTY:  0x04,
	rig.ModeFM:    0x05,
	rig.ModeCWR:   0x07,
	rig.ModeRTTYR: 0x08,
	rig.ModeDV:    0x17,
}

var civWireToMode = func() map[byte]rig.Mode {
	m := make(map[byte]rig.Mode, len(civModeToWire))
	for mode, b := range civModeToWire {
		m[b] = mode
	}
	return m
}()

// CIVCodec implements the Icom/Xiegu binary CI-V protocol
type CIVCodec struct {
	addr      byte // device address, model-specific (e.g. 0xA4 for Xiegu)
	freqBytes int  // BCD frequency width: 4 for legacy models, 5 otherwise
	maxPower  float64
	model     string
}

// NewCIVCodec creates a CI-V codec bound to the model's device address
// and BCD frequency width
func NewCIVCodec(caps *rig.Capabilities) *CIVCodec {
	width := caps.CIVFreqBytes
	if width == 0 {
		width = 5
	}
	return &CIVCodec{
		addr:      caps.CIVAddress,
		freqBytes: width,
		maxPower:  caps.MaxPower,
		model:     caps.ModelID,
	}
}

// Terminator returns the CI-V end-of-message byte
func (c *CIVCodec) Terminator() byte { return civTerminator }

// WantsResponse always reports true: CI-V acknowledges every command
// with either a data frame or an explicit OK/NG byte.
func (c *CIVCodec) WantsResponse(Command) bool { return true }

// Encode builds a CI-V frame for the command
func (c *CIVCodec) Encode(cmd Command) ([]byte, error) {
	switch cmd.Op {
	case OpGetFrequency:
		return c.frame(civCmdGetFreq, nil), nil

	case OpSetFrequency:
		payload, err := bcdEncodeLE(cmd.Frequency, c.freqBytes)
		if err != nil {
			return nil, &rig.CapabilityError{
				Model:  c.model,
				Op:     "frequency",
				Reason: fmt.Sprintf("%d Hz exceeds %d-byte BCD width", cmd.Frequency, c.freqBytes),
			}
		}
		return c.frame(civCmdSetFreq, payload), nil

	case OpGetMode:
		return c.frame(civCmdGetMode, nil), nil

	case OpSetMode:
		wire, ok := civModeToWire[cmd.Mode]
		if !ok {
			return nil, &rig.CapabilityError{Model: c.model, Op: "mode",
				Reason: fmt.Sprintf("mode %s has no CI-V encoding", cmd.Mode)}
		}
		// default filter selection
		return c.frame(civCmdSetMode, []byte{wire, 0x01}), nil

	case OpSetVFO:
		sel := byte(0x00)
		if cmd.VFO == rig.VFOB {
			sel = 0x01
		}
		return c.frame(civCmdSetVFO, []byte{sel}), nil

	case OpSetSplit:
		on := byte(0x00)
		if cmd.Split {
			on = 0x01
		}
		return c.frame(civCmdSplit, []byte{on}), nil

	case OpSetPower:
		raw := 0
		if c.maxPower > 0 {
			raw = int(math.Round(cmd.Power / c.maxPower * 255))
		}
		if raw > 255 {
			raw = 255
		}
		return c.frame(civCmdLevel, append([]byte{civSubRFPower}, bcdEncodeBE2(raw)...)), nil

	case OpGetPTT:
		return c.frame(civCmdPTT, []byte{civSubPTT}), nil

	case OpSetPTT:
		on := byte(0x00)
		if cmd.PTT {
			on = 0x01
		}
		return c.frame(civCmdPTT, []byte{civSubPTT, on}), nil

	case OpGetSignal:
		return c.frame(civCmdMeter, []byte{civSubSMeter}), nil

	case OpSetRIT:
		mag := cmd.Offset
		sign := byte(0x00)
		if mag < 0 {
			mag = -mag
			sign = 0x01
		}
		if mag > 9999 {
			return nil, &rig.CapabilityError{Model: c.model, Op: "rit",
				Reason: fmt.Sprintf("offset %d Hz exceeds CI-V range", cmd.Offset)}
		}
		off := bcdEncodeBE2(mag)
		// offset is little-endian on the wire, sign byte last
		return c.frame(civCmdRIT, []byte{civSubRITFreq, off[1], off[0], sign}), nil

	case OpSetXIT:
		on := byte(0x00)
		if cmd.Offset != 0 {
			on = 0x01
		}
		return c.frame(civCmdRIT, []byte{civSubXIT, on}), nil
	}

	return nil, fmt.Errorf("operation %s not supported by CI-V codec", cmd.Op)
}

// frame assembles preamble, addresses, command, payload and terminator
func (c *CIVCodec) frame(cmd byte, payload []byte) []byte {
	f := make([]byte, 0, 6+len(payload))
	f = append(f, civPreamble, civPreamble, c.addr, civCtrlAddr, cmd)
	f = append(f, payload...)
	return append(f, civTerminator)
}

// Decode parses a CI-V reply. The radio may echo our own frame back on
// the shared bus, so frames addressed to the radio are skipped until one
// addressed to the controller is found.
func (c *CIVCodec) Decode(cmd Command, data []byte) (*Response, error) {
	body, err := c.extract(data)
	if err != nil {
		return nil, err
	}

	// OK/NG acknowledgments are one byte where the command would be
	switch body[0] {
	case civAck:
		return &Response{Ack: true}, nil
	case civNak:
		return nil, &rig.NakError{Op: string(cmd.Op)}
	}

	switch cmd.Op {
	case OpGetFrequency:
		payload := body[1:]
		if len(payload) < c.freqBytes {
			return nil, &rig.FramingError{Family: "ci-v",
				Detail: fmt.Sprintf("frequency payload %d bytes, want %d", len(payload), c.freqBytes)}
		}
		return &Response{Frequency: bcdDecodeLE(payload[:c.freqBytes])}, nil

	case OpGetMode:
		if len(body) < 2 {
			return nil, &rig.FramingError{Family: "ci-v", Detail: "mode payload missing"}
		}
		mode, ok := civWireToMode[body[1]]
		if !ok {
			return nil, &rig.FramingError{Family: "ci-v",
				Detail: fmt.Sprintf("unknown mode byte 0x%02X", body[1])}
		}
		return &Response{Mode: mode}, nil

	case OpGetPTT:
		if len(body) < 3 || body[1] != civSubPTT {
			return nil, &rig.FramingError{Family: "ci-v", Detail: "malformed PTT reply"}
		}
		return &Response{PTT: body[2] == 0x01}, nil

	case OpGetSignal:
		// extended command: sub byte precedes the 2-byte BCD level
		if len(body) < 4 || body[1] != civSubSMeter {
			return nil, &rig.FramingError{Family: "ci-v", Detail: "malformed S-meter reply"}
		}
		return &Response{Signal: bcdDecodeBE2(body[2:4])}, nil
	}

	return nil, &rig.FramingError{Family: "ci-v",
		Detail: fmt.Sprintf("unexpected data frame for %s", cmd.Op)}
}

// extract locates the first complete frame addressed to the controller
// and returns its body starting at the command byte
func (c *CIVCodec) extract(data []byte) ([]byte, error) {
	for i := 0; i+5 < len(data); i++ {
		if data[i] != civPreamble || data[i+1] != civPreamble {
			continue
		}
		end := i + 2
		for end < len(data) && data[end] != civTerminator {
			end++
		}
		if end >= len(data) {
			return nil, &rig.FramingError{Family: "ci-v", Detail: "missing terminator"}
		}
		dst := data[i+2]
		if dst != civCtrlAddr {
			// our own command echoed back on the half-duplex bus
			i = end
			continue
		}
		if end-i < 5 {
			return nil, &rig.FramingError{Family: "ci-v", Detail: "truncated frame"}
		}
		return data[i+4 : end], nil
	}
	return nil, &rig.FramingError{Family: "ci-v", Detail: "no frame found"}
}
