package controller

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dougsko/rigd/pkg/codec"
	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

// State represents the session lifecycle state
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateTransacting  State = "transacting"
	StateFaulted      State = "faulted"
)

// DefaultTimeout bounds each read on the serial channel
const DefaultTimeout = 1 * time.Second

// Session owns one transport and one capability descriptor for its
// lifetime and serializes all traffic on the channel. Concurrent
// callers queue on the transaction lock; two requests never interleave
// bytes on the wire.
type Session struct {
	mutex sync.Mutex

	state     State
	caps      *rig.Capabilities
	cdc       codec.Codec
	tr        transport.Transport
	cache     *stateCache
	timeout   time.Duration
	activeVFO rig.VFO
}

// Connect opens a session: binds the codec for the model's protocol
// family and performs the handshake (first frequency read). The
// transport is closed if the handshake fails. A zero timeout selects
// DefaultTimeout.
func Connect(caps *rig.Capabilities, tr transport.Transport, timeout time.Duration) (*Session, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	cdc, err := codec.New(caps)
	if err != nil {
		tr.Close()
		return nil, err
	}

	s := &Session{
		state:     StateConnecting,
		caps:      caps,
		cdc:       cdc,
		tr:        tr,
		cache:     newStateCache(),
		timeout:   timeout,
		activeVFO: rig.VFOA,
	}

	resp, err := s.exchange(codec.Command{Op: codec.OpGetFrequency, VFO: rig.VFOA})
	if err != nil {
		tr.Close()
		s.state = StateFaulted
		return nil, fmt.Errorf("handshake with %s failed: %w", caps.ModelID, err)
	}

	s.cache.put(keyFreqA, resp.Frequency)
	s.state = StateConnected
	return s, nil
}

// Reconnect re-enters Connecting from a faulted or disconnected
// session with a fresh transport
func (s *Session) Reconnect(tr transport.Transport) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateFaulted && s.state != StateDisconnected {
		return fmt.Errorf("cannot reconnect from state %s", s.state)
	}

	s.tr = tr
	s.state = StateConnecting
	s.cache.clear()

	resp, err := s.exchange(codec.Command{Op: codec.OpGetFrequency, VFO: rig.VFOA})
	if err != nil {
		tr.Close()
		s.state = StateFaulted
		return fmt.Errorf("handshake with %s failed: %w", s.caps.ModelID, err)
	}

	s.cache.put(keyFreqA, resp.Frequency)
	s.activeVFO = rig.VFOA
	s.state = StateConnected
	return nil
}

// Disconnect closes the transport and invalidates all cached state
func (s *Session) Disconnect() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state == StateDisconnected {
		return nil
	}
	err := s.tr.Close()
	s.cache.clear()
	s.state = StateDisconnected
	return err
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Capabilities returns the model descriptor bound at connect time
func (s *Session) Capabilities() *rig.Capabilities { return s.caps }

// ActiveVFO returns the VFO the session believes is selected
func (s *Session) ActiveVFO() rig.VFO {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.activeVFO
}

// exchange performs one encode/write/read/decode round trip. Callers
// hold the session lock.
func (s *Session) exchange(cmd codec.Command) (*codec.Response, error) {
	data, err := s.cdc.Encode(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.tr.Write(data); err != nil {
		return nil, err
	}
	if !s.cdc.WantsResponse(cmd) {
		// CAT writes are not acknowledged; a successful write commits
		return &codec.Response{Ack: true}, nil
	}
	reply, err := s.tr.ReadUntil(s.cdc.Terminator(), s.timeout)
	if err != nil {
		return nil, err
	}
	return s.cdc.Decode(cmd, reply)
}

// transact brackets one exchange in the Transacting state and
// classifies failures: timeouts and transport errors fault the session
// so later calls fail fast, framing and NAK errors leave it connected.
// Nothing is retried automatically; a silently repeated transmit
// command is unsafe.
func (s *Session) transact(cmd codec.Command) (*codec.Response, error) {
	if s.state != StateConnected {
		return nil, fmt.Errorf("session not connected (state %s)", s.state)
	}
	s.state = StateTransacting

	resp, err := s.exchange(cmd)
	if err != nil {
		if errors.Is(err, rig.ErrTimeout) || errors.Is(err, rig.ErrTransport) {
			s.state = StateFaulted
			s.cache.clear()
		} else {
			s.state = StateConnected
		}
		return nil, err
	}

	s.state = StateConnected
	return resp, nil
}

// resolveVFO maps the VFOCurrent alias onto the VFO the session
// believes is selected. Callers hold the session lock.
func (s *Session) resolveVFO(vfo rig.VFO) rig.VFO {
	if vfo == rig.VFOCurrent {
		return s.activeVFO
	}
	return vfo
}

// ensureVFO selects the target VFO first on CI-V models, whose
// frequency commands address whichever VFO is active
func (s *Session) ensureVFO(vfo rig.VFO) error {
	if s.caps.Family != rig.FamilyCIV {
		return nil
	}
	if vfo == rig.VFOCurrent || vfo == s.activeVFO {
		return nil
	}
	if _, err := s.transact(codec.Command{Op: codec.OpSetVFO, VFO: vfo}); err != nil {
		return err
	}
	s.activeVFO = vfo
	s.cache.invalidate(keyMode)
	return nil
}

// GetFrequency reads a VFO's frequency in Hz, serving fresh cached
// values without a transport round trip
func (s *Session) GetFrequency(vfo rig.VFO) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	vfo = s.resolveVFO(vfo)
	if v, ok := s.cache.get(freqKey(vfo)); ok {
		return v.(int64), nil
	}
	if err := s.ensureVFO(vfo); err != nil {
		return 0, err
	}
	resp, err := s.transact(codec.Command{Op: codec.OpGetFrequency, VFO: vfo})
	if err != nil {
		return 0, err
	}
	s.cache.put(freqKey(vfo), resp.Frequency)
	return resp.Frequency, nil
}

// SetFrequency tunes a VFO. The frequency is validated against the
// model's declared ranges before any bytes are constructed.
func (s *Session) SetFrequency(vfo rig.VFO, hz int64) error {
	if err := s.caps.ValidateFrequency(hz); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	vfo = s.resolveVFO(vfo)
	if err := s.ensureVFO(vfo); err != nil {
		return err
	}
	if _, err := s.transact(codec.Command{Op: codec.OpSetFrequency, VFO: vfo, Frequency: hz}); err != nil {
		s.cache.invalidate(freqKey(vfo))
		return err
	}
	// the device confirmed the commanded value
	s.cache.put(freqKey(vfo), hz)
	return nil
}

// GetMode reads the active operating mode
func (s *Session) GetMode() (rig.Mode, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if v, ok := s.cache.get(keyMode); ok {
		return v.(rig.Mode), nil
	}
	resp, err := s.transact(codec.Command{Op: codec.OpGetMode})
	if err != nil {
		return "", err
	}
	s.cache.put(keyMode, resp.Mode)
	return resp.Mode, nil
}

// SetMode changes the operating mode
func (s *Session) SetMode(mode rig.Mode) error {
	if err := s.caps.ValidateMode(mode); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.transact(codec.Command{Op: codec.OpSetMode, Mode: mode}); err != nil {
		s.cache.invalidate(keyMode)
		return err
	}
	s.cache.put(keyMode, mode)
	return nil
}

// SetVFO selects the active VFO
func (s *Session) SetVFO(vfo rig.VFO) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.transact(codec.Command{Op: codec.OpSetVFO, VFO: vfo}); err != nil {
		return err
	}
	s.activeVFO = vfo
	s.cache.invalidate(keyMode)
	return nil
}

// SetSplit enables or disables split operation
func (s *Session) SetSplit(on bool) error {
	if err := s.caps.ValidateFeature("split", s.caps.Features.Split); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.transact(codec.Command{Op: codec.OpSetSplit, Split: on}); err != nil {
		s.cache.invalidate(keySplit)
		return err
	}
	s.cache.put(keySplit, on)
	return nil
}

// SetPower sets the transmit power in watts
func (s *Session) SetPower(watts float64) error {
	if err := s.caps.ValidatePower(watts); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := s.transact(codec.Command{Op: codec.OpSetPower, Power: watts})
	return err
}

// GetPTT reads the transmit state
func (s *Session) GetPTT() (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.getPTT(false)
}

// getPTT reads PTT, optionally bypassing the cache. Callers hold the
// session lock.
func (s *Session) getPTT(forceLive bool) (bool, error) {
	if !forceLive {
		if v, ok := s.cache.get(keyPTT); ok {
			return v.(bool), nil
		}
	}
	resp, err := s.transact(codec.Command{Op: codec.OpGetPTT})
	if err != nil {
		return false, err
	}
	s.cache.put(keyPTT, resp.PTT)
	return resp.PTT, nil
}

// SetPTT keys or unkeys the transmitter. Keying always performs a live
// PTT query first; cached transmit state is never trusted for a
// safety-relevant decision.
func (s *Session) SetPTT(on bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if on {
		current, err := s.getPTT(true)
		if err != nil {
			return err
		}
		if current {
			return nil // already transmitting
		}
	}

	if _, err := s.transact(codec.Command{Op: codec.OpSetPTT, PTT: on}); err != nil {
		s.cache.invalidate(keyPTT)
		return err
	}
	s.cache.put(keyPTT, on)
	return nil
}

// GetSignalStrength reads the S-meter, normalized to dB relative to S9
// (about -54 for S0, 0 for S9, +60 at full scale)
func (s *Session) GetSignalStrength() (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if v, ok := s.cache.get(keySignal); ok {
		return v.(int), nil
	}
	resp, err := s.transact(codec.Command{Op: codec.OpGetSignal})
	if err != nil {
		return 0, err
	}
	db := normalizeSignal(s.caps.Family, resp.Signal)
	s.cache.put(keySignal, db)
	return db, nil
}

// Full-scale raw meter readings per family
var signalFullScale = map[rig.ProtocolFamily]int{
	rig.FamilyCIV:      255,
	rig.FamilyYaesu:    255,
	rig.FamilyKenwood:  30,
	rig.FamilyElecraft: 21,
}

func normalizeSignal(family rig.ProtocolFamily, raw int) int {
	full := signalFullScale[family]
	if full == 0 {
		full = 255
	}
	if raw > full {
		raw = full
	}
	// map 0..full onto -54..+60 dB relative S9
	return int(math.Round(float64(raw)/float64(full)*114)) - 54
}

// SetRIT applies a receive incremental tuning offset in Hz; zero
// disables RIT
func (s *Session) SetRIT(offset int) error {
	if err := s.caps.ValidateFeature("rit", s.caps.Features.RIT); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.transact(codec.Command{Op: codec.OpSetRIT, Offset: offset}); err != nil {
		s.cache.invalidate(keyRIT)
		return err
	}
	s.cache.put(keyRIT, offset)
	return nil
}

// SetXIT applies a transmit incremental tuning offset in Hz; zero
// disables XIT. All four families share one offset register between
// RIT and XIT, so a nonzero offset writes that register first and then
// enables the transmit side.
func (s *Session) SetXIT(offset int) error {
	if err := s.caps.ValidateFeature("xit", s.caps.Features.XIT); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if offset != 0 {
		if _, err := s.transact(codec.Command{Op: codec.OpSetRIT, Offset: offset}); err != nil {
			s.cache.invalidate(keyRIT)
			return err
		}
		// the shared register moved under any cached RIT value
		s.cache.invalidate(keyRIT)
	}

	_, err := s.transact(codec.Command{Op: codec.OpSetXIT, Offset: offset})
	return err
}
