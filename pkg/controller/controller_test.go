package controller

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dougsko/rigd/pkg/rig"
	"github.com/dougsko/rigd/pkg/transport"
)

func kenwoodCaps() *rig.Capabilities {
	return &rig.Capabilities{
		ModelID:      "ts-480sat",
		Manufacturer: "Kenwood",
		Family:       rig.FamilyKenwood,
		Ranges: []rig.FreqRange{
			{Band: "40m", Low: 7000000, High: 7300000},
			{Band: "20m", Low: 14000000, High: 14350000},
		},
		Modes:    []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW},
		MinPower: 5,
		MaxPower: 100,
		Features: rig.Features{Split: true, RIT: true},
	}
}

func civCaps() *rig.Capabilities {
	return &rig.Capabilities{
		ModelID:      "ic-7300",
		Manufacturer: "Icom",
		Family:       rig.FamilyCIV,
		Ranges: []rig.FreqRange{
			{Band: "20m", Low: 14000000, High: 14350000},
		},
		Modes:        []rig.Mode{rig.ModeLSB, rig.ModeUSB, rig.ModeCW},
		MinPower:     1,
		MaxPower:     100,
		Features:     rig.Features{Split: true, RIT: true},
		CIVAddress:   0x94,
		CIVFreqBytes: 5,
	}
}

// connectKenwood builds a connected session over a mock transport with
// the handshake reply already consumed
func connectKenwood(t *testing.T) (*Session, *transport.MockTransport) {
	t.Helper()
	tr := transport.NewMockTransport()
	tr.QueueReply([]byte("FA00014074000;"))

	s, err := Connect(kenwoodCaps(), tr, 0)
	if err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	return s, tr
}

// 14.074 MHz frequency reply frame addressed to the controller
var civFreqReply = []byte{0xFE, 0xFE, 0xE0, 0x94, 0x03, 0x00, 0x40, 0x07, 0x14, 0x00, 0xFD}
var civAckReply = []byte{0xFE, 0xFE, 0xE0, 0x94, 0xFB, 0xFD}

func connectCIV(t *testing.T) (*Session, *transport.MockTransport) {
	t.Helper()
	tr := transport.NewMockTransport()
	tr.QueueReply(civFreqReply)

	s, err := Connect(civCaps(), tr, 0)
	if err != nil {
		t.Fatalf("Expected connect to succeed, got: %v", err)
	}
	return s, tr
}

func TestConnect(t *testing.T) {
	t.Run("Handshake Reads Frequency", func(t *testing.T) {
		s, tr := connectKenwood(t)

		if s.State() != StateConnected {
			t.Errorf("Expected connected, got %s", s.State())
		}
		writes := tr.Writes()
		if len(writes) != 1 || string(writes[0]) != "FA;" {
			t.Errorf("Expected single FA; handshake write, got %q", writes)
		}
	})

	t.Run("Handshake Failure Closes Transport", func(t *testing.T) {
		tr := transport.NewMockTransport()
		// no reply queued, the handshake read times out

		_, err := Connect(kenwoodCaps(), tr, 0)
		if err == nil {
			t.Fatal("Expected connect to fail")
		}
		if !errors.Is(err, rig.ErrTimeout) {
			t.Errorf("Expected timeout error, got: %v", err)
		}
		if err := tr.Write([]byte("x")); !errors.Is(err, rig.ErrTransport) {
			t.Error("Expected transport closed after failed handshake")
		}
	})

	t.Run("Unknown Family Rejected", func(t *testing.T) {
		caps := kenwoodCaps()
		caps.Family = "flex-cat"
		if _, err := Connect(caps, transport.NewMockTransport(), 0); err == nil {
			t.Fatal("Expected error for unknown family")
		}
	})
}

func TestFrequency(t *testing.T) {
	t.Run("Handshake Value Served From Cache", func(t *testing.T) {
		s, tr := connectKenwood(t)

		hz, err := s.GetFrequency(rig.VFOA)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if hz != 14074000 {
			t.Errorf("Expected 14074000 Hz, got %d", hz)
		}
		if len(tr.Writes()) != 1 {
			t.Errorf("Expected no extra writes for a cache hit, got %d", len(tr.Writes()))
		}
	})

	t.Run("Set Commits Commanded Value", func(t *testing.T) {
		s, tr := connectKenwood(t)

		if err := s.SetFrequency(rig.VFOA, 7074000); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if string(writes[len(writes)-1]) != "FA00007074000;" {
			t.Errorf("Expected frequency write, got %q", writes[len(writes)-1])
		}

		// the write confirmed the new value; the next read must not
		// touch the transport
		before := len(tr.Writes())
		hz, err := s.GetFrequency(rig.VFOA)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if hz != 7074000 {
			t.Errorf("Expected 7074000 Hz, got %d", hz)
		}
		if len(tr.Writes()) != before {
			t.Error("Expected cache hit after confirmed write")
		}
	})

	t.Run("Out Of Range Rejected Before Transmission", func(t *testing.T) {
		s, tr := connectKenwood(t)
		before := len(tr.Writes())

		err := s.SetFrequency(rig.VFOA, 15000000)
		if !errors.Is(err, rig.ErrCapability) {
			t.Fatalf("Expected capability error, got: %v", err)
		}
		if len(tr.Writes()) != before {
			t.Error("Expected no bytes on the wire for a rejected command")
		}
		if s.State() != StateConnected {
			t.Errorf("Expected session still connected, got %s", s.State())
		}

		// prior cached state survives the rejection
		hz, err := s.GetFrequency(rig.VFOA)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if hz != 14074000 {
			t.Errorf("Expected cached 14074000 Hz, got %d", hz)
		}
		if len(tr.Writes()) != before {
			t.Error("Expected cache hit after rejected command")
		}
	})

	t.Run("VFO B Read Goes To The Wire", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply([]byte("FB00007100000;"))

		hz, err := s.GetFrequency(rig.VFOB)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if hz != 7100000 {
			t.Errorf("Expected 7100000 Hz, got %d", hz)
		}
		writes := tr.Writes()
		if string(writes[len(writes)-1]) != "FB;" {
			t.Errorf("Expected FB; query, got %q", writes[len(writes)-1])
		}
	})
}

func TestFaultHandling(t *testing.T) {
	t.Run("Timeout Faults The Session", func(t *testing.T) {
		s, _ := connectKenwood(t)

		_, err := s.GetMode()
		if !errors.Is(err, rig.ErrTimeout) {
			t.Fatalf("Expected timeout error, got: %v", err)
		}
		if s.State() != StateFaulted {
			t.Errorf("Expected faulted, got %s", s.State())
		}

		// the fault cleared the cache; no stale reads
		if _, err := s.GetFrequency(rig.VFOA); err == nil {
			t.Error("Expected error from a faulted session")
		}
	})

	t.Run("Nak Leaves Session Connected", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply([]byte("?;"))

		_, err := s.GetMode()
		if !errors.Is(err, rig.ErrNak) {
			t.Fatalf("Expected NAK error, got: %v", err)
		}
		if s.State() != StateConnected {
			t.Errorf("Expected connected after NAK, got %s", s.State())
		}
	})

	t.Run("Framing Error Leaves Session Connected", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply([]byte("MDX;"))

		_, err := s.GetMode()
		if !errors.Is(err, rig.ErrFraming) {
			t.Fatalf("Expected framing error, got: %v", err)
		}
		if s.State() != StateConnected {
			t.Errorf("Expected connected after framing error, got %s", s.State())
		}
	})

	t.Run("Write Failure Faults The Session", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.FailWrites()

		err := s.SetMode(rig.ModeUSB)
		if !errors.Is(err, rig.ErrTransport) {
			t.Fatalf("Expected transport error, got: %v", err)
		}
		if s.State() != StateFaulted {
			t.Errorf("Expected faulted, got %s", s.State())
		}
	})

	t.Run("Reconnect From Fault", func(t *testing.T) {
		s, _ := connectKenwood(t)
		s.GetMode() // times out, faults

		fresh := transport.NewMockTransport()
		fresh.QueueReply([]byte("FA00014074000;"))
		if err := s.Reconnect(fresh); err != nil {
			t.Fatalf("Expected reconnect to succeed, got: %v", err)
		}
		if s.State() != StateConnected {
			t.Errorf("Expected connected, got %s", s.State())
		}
	})

	t.Run("Reconnect Rejected While Connected", func(t *testing.T) {
		s, _ := connectKenwood(t)
		if err := s.Reconnect(transport.NewMockTransport()); err == nil {
			t.Error("Expected error reconnecting a live session")
		}
	})
}

func TestPTT(t *testing.T) {
	ifReport := func(tx byte) []byte {
		return []byte("IF" + strings.Repeat("0", 26) + string(tx) + "000;")
	}

	t.Run("Keying Queries Live State First", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply(ifReport('0'))

		if err := s.SetPTT(true); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if len(writes) != 3 {
			t.Fatalf("Expected handshake, IF query and TX, got %d writes", len(writes))
		}
		if string(writes[1]) != "IF;" || string(writes[2]) != "TX;" {
			t.Errorf("Expected IF; then TX;, got %q %q", writes[1], writes[2])
		}
	})

	t.Run("Already Transmitting Is A No Op", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply(ifReport('1'))

		if err := s.SetPTT(true); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if len(writes) != 2 {
			t.Fatalf("Expected no TX write when already keyed, got %d writes", len(writes))
		}
	})

	t.Run("Unkey Skips The Live Query", func(t *testing.T) {
		s, tr := connectKenwood(t)

		if err := s.SetPTT(false); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if string(writes[len(writes)-1]) != "RX;" {
			t.Errorf("Expected RX; write, got %q", writes[len(writes)-1])
		}
	})
}

func TestSignalStrength(t *testing.T) {
	t.Run("Kenwood Scale Normalized To dB", func(t *testing.T) {
		s, tr := connectKenwood(t)
		tr.QueueReply([]byte("SM00015;"))

		db, err := s.GetSignalStrength()
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		// half of the 30-step Kenwood scale is 3 dB over S9
		if db != 3 {
			t.Errorf("Expected 3 dB, got %d", db)
		}
	})

	t.Run("Normalization Bounds", func(t *testing.T) {
		if db := normalizeSignal(rig.FamilyCIV, 0); db != -54 {
			t.Errorf("Expected -54 dB at zero, got %d", db)
		}
		if db := normalizeSignal(rig.FamilyCIV, 255); db != 60 {
			t.Errorf("Expected 60 dB at full scale, got %d", db)
		}
		if db := normalizeSignal(rig.FamilyElecraft, 21); db != 60 {
			t.Errorf("Expected 60 dB at Elecraft full scale, got %d", db)
		}
		// clamp readings above the documented scale
		if db := normalizeSignal(rig.FamilyKenwood, 99); db != 60 {
			t.Errorf("Expected clamp to 60 dB, got %d", db)
		}
	})
}

func TestFeatureGating(t *testing.T) {
	t.Run("Split Unsupported", func(t *testing.T) {
		caps := kenwoodCaps()
		caps.Features.Split = false
		tr := transport.NewMockTransport()
		tr.QueueReply([]byte("FA00014074000;"))
		s, err := Connect(caps, tr, 0)
		if err != nil {
			t.Fatalf("Expected connect to succeed, got: %v", err)
		}

		before := len(tr.Writes())
		if err := s.SetSplit(true); !errors.Is(err, rig.ErrCapability) {
			t.Fatalf("Expected capability error, got: %v", err)
		}
		if len(tr.Writes()) != before {
			t.Error("Expected no bytes on the wire for a gated feature")
		}
	})

	t.Run("RIT Supported", func(t *testing.T) {
		s, tr := connectKenwood(t)
		if err := s.SetRIT(200); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if string(writes[len(writes)-1]) != "RU00200;" {
			t.Errorf("Expected RU00200;, got %q", writes[len(writes)-1])
		}
	})
}

func TestXIT(t *testing.T) {
	xitCaps := func() *rig.Capabilities {
		caps := kenwoodCaps()
		caps.Features.XIT = true
		return caps
	}
	connect := func(t *testing.T) (*Session, *transport.MockTransport) {
		t.Helper()
		tr := transport.NewMockTransport()
		tr.QueueReply([]byte("FA00014074000;"))
		s, err := Connect(xitCaps(), tr, 0)
		if err != nil {
			t.Fatalf("Expected connect to succeed, got: %v", err)
		}
		return s, tr
	}

	t.Run("Offset Written Before Enable", func(t *testing.T) {
		s, tr := connect(t)

		if err := s.SetXIT(300); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if len(writes) != 3 {
			t.Fatalf("Expected offset write and enable, got %d writes", len(writes))
		}
		if string(writes[1]) != "RU00300;" || string(writes[2]) != "XT1;" {
			t.Errorf("Expected RU00300; then XT1;, got %q %q", writes[1], writes[2])
		}
	})

	t.Run("Zero Offset Only Disables", func(t *testing.T) {
		s, tr := connect(t)

		if err := s.SetXIT(0); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if len(writes) != 2 || string(writes[1]) != "XT0;" {
			t.Errorf("Expected single XT0; write, got %q", writes[1:])
		}
	})

	t.Run("Gated When Unsupported", func(t *testing.T) {
		s, tr := connectKenwood(t) // kenwoodCaps has no XIT flag
		before := len(tr.Writes())
		if err := s.SetXIT(300); !errors.Is(err, rig.ErrCapability) {
			t.Fatalf("Expected capability error, got: %v", err)
		}
		if len(tr.Writes()) != before {
			t.Error("Expected no bytes on the wire for a gated feature")
		}
	})
}

func TestCurrentVFOAlias(t *testing.T) {
	s, tr := connectKenwood(t)

	// make VFO B active, then tune it
	if err := s.SetVFO(rig.VFOB); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := s.SetFrequency(rig.VFOB, 7100000); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// the alias must resolve to B, not fall back to the A slot
	hz, err := s.GetFrequency(rig.VFOCurrent)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if hz != 7100000 {
		t.Errorf("Expected VFO B's 7100000 Hz, got %d", hz)
	}
	writes := tr.Writes()
	if string(writes[len(writes)-1]) != "FB00007100000;" {
		t.Errorf("Expected the alias read served from cache, last write %q", writes[len(writes)-1])
	}

	// A's handshake value is untouched
	hz, err = s.GetFrequency(rig.VFOA)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if hz != 14074000 {
		t.Errorf("Expected VFO A's 14074000 Hz, got %d", hz)
	}
}

func TestCIVVFOTargeting(t *testing.T) {
	t.Run("Reading VFO B Selects It First", func(t *testing.T) {
		s, tr := connectCIV(t)
		tr.QueueReply(civAckReply)  // VFO selection
		tr.QueueReply(civFreqReply) // frequency read

		if _, err := s.GetFrequency(rig.VFOB); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		writes := tr.Writes()
		if len(writes) != 3 {
			t.Fatalf("Expected 3 writes, got %d", len(writes))
		}
		wantVFO := []byte{0xFE, 0xFE, 0x94, 0xE0, 0x07, 0x01, 0xFD}
		if string(writes[1]) != string(wantVFO) {
			t.Errorf("Expected VFO select frame % X, got % X", wantVFO, writes[1])
		}
		if s.ActiveVFO() != rig.VFOB {
			t.Errorf("Expected active VFO B, got %s", s.ActiveVFO())
		}
	})

	t.Run("Current VFO Needs No Selection", func(t *testing.T) {
		s, tr := connectCIV(t)
		tr.QueueReply(civFreqReply)

		// VFO A is already active and cached from the handshake
		if _, err := s.GetFrequency(rig.VFOA); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(tr.Writes()) != 1 {
			t.Errorf("Expected cache hit without VFO selection, got %d writes", len(tr.Writes()))
		}
	})
}

func TestDisconnect(t *testing.T) {
	s, _ := connectKenwood(t)

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if s.State() != StateDisconnected {
		t.Errorf("Expected disconnected, got %s", s.State())
	}
	if _, err := s.GetMode(); err == nil {
		t.Error("Expected error from a disconnected session")
	}

	// idempotent
	if err := s.Disconnect(); err != nil {
		t.Errorf("Expected second disconnect to be a no-op, got: %v", err)
	}
}

func TestSingleFlight(t *testing.T) {
	s, tr := connectKenwood(t)

	// concurrent readers serialize on the session lock; the cached
	// handshake value satisfies all of them
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hz, err := s.GetFrequency(rig.VFOA)
			if err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			if hz != 14074000 {
				t.Errorf("Expected 14074000 Hz, got %d", hz)
			}
		}()
	}
	wg.Wait()

	if len(tr.Writes()) != 1 {
		t.Errorf("Expected no interleaved wire traffic, got %d writes", len(tr.Writes()))
	}
}
