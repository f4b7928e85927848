package rigctld

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dougsko/rigd/pkg/rig"
)

// stubRig records calls and returns canned values
type stubRig struct {
	freq   int64
	mode   rig.Mode
	vfo    rig.VFO
	ptt    bool
	split  bool
	power  float64
	signal int
	err    error
}

func (r *stubRig) GetFrequency(vfo rig.VFO) (int64, error) { return r.freq, r.err }
func (r *stubRig) SetFrequency(vfo rig.VFO, hz int64) error {
	if r.err != nil {
		return r.err
	}
	r.freq = hz
	return nil
}
func (r *stubRig) GetMode() (rig.Mode, error) { return r.mode, r.err }
func (r *stubRig) SetMode(mode rig.Mode) error {
	r.mode = mode
	return r.err
}
func (r *stubRig) SetVFO(vfo rig.VFO) error {
	r.vfo = vfo
	return r.err
}
func (r *stubRig) SetSplit(on bool) error {
	r.split = on
	return r.err
}
func (r *stubRig) SetPower(watts float64) error {
	r.power = watts
	return r.err
}
func (r *stubRig) GetPTT() (bool, error) { return r.ptt, r.err }
func (r *stubRig) SetPTT(on bool) error {
	r.ptt = on
	return r.err
}
func (r *stubRig) GetSignalStrength() (int, error) { return r.signal, r.err }
func (r *stubRig) ActiveVFO() rig.VFO              { return r.vfo }
func (r *stubRig) Capabilities() *rig.Capabilities {
	return &rig.Capabilities{ModelID: "stub", MaxPower: 100}
}

func startServer(t *testing.T, stub *stubRig) (*Server, net.Conn) {
	t.Helper()
	srv := NewServer(stub)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func exchange(t *testing.T, conn net.Conn, reader *bufio.Reader, cmd string, lines int) []string {
	t.Helper()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
		t.Fatalf("Failed to send %q: %v", cmd, err)
	}
	var out []string
	for i := 0; i < lines; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed to read reply to %q: %v", cmd, err)
		}
		out = append(out, strings.TrimRight(line, "\n"))
	}
	return out
}

func TestServerDispatch(t *testing.T) {
	stub := &stubRig{freq: 14074000, mode: rig.ModeUSB, vfo: rig.VFOA, signal: 3}
	_, conn := startServer(t, stub)
	reader := bufio.NewReader(conn)

	t.Run("Get Frequency", func(t *testing.T) {
		lines := exchange(t, conn, reader, "f", 1)
		if lines[0] != "14074000" {
			t.Errorf("Expected 14074000, got %q", lines[0])
		}
	})

	t.Run("Set Frequency", func(t *testing.T) {
		lines := exchange(t, conn, reader, "F 7074000", 1)
		if lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines[0])
		}
		if stub.freq != 7074000 {
			t.Errorf("Expected frequency forwarded, got %d", stub.freq)
		}
	})

	t.Run("Get Mode With Passband", func(t *testing.T) {
		lines := exchange(t, conn, reader, "m", 2)
		if lines[0] != "USB" || lines[1] != "0" {
			t.Errorf("Expected USB and 0, got %q", lines)
		}
	})

	t.Run("Set Mode", func(t *testing.T) {
		lines := exchange(t, conn, reader, "M CW", 1)
		if lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines[0])
		}
		if stub.mode != rig.ModeCW {
			t.Errorf("Expected CW forwarded, got %s", stub.mode)
		}
	})

	t.Run("VFO", func(t *testing.T) {
		lines := exchange(t, conn, reader, "V VFOB", 1)
		if lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines[0])
		}
		lines = exchange(t, conn, reader, "v", 1)
		if lines[0] != "VFOB" {
			t.Errorf("Expected VFOB, got %q", lines[0])
		}
	})

	t.Run("PTT", func(t *testing.T) {
		lines := exchange(t, conn, reader, "T 1", 1)
		if lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines[0])
		}
		lines = exchange(t, conn, reader, "t", 1)
		if lines[0] != "1" {
			t.Errorf("Expected 1, got %q", lines[0])
		}
	})

	t.Run("Power Level As Fraction", func(t *testing.T) {
		lines := exchange(t, conn, reader, "L RFPOWER 0.5", 1)
		if lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines[0])
		}
		if stub.power != 50 {
			t.Errorf("Expected 50 W from 0.5 of 100, got %.1f", stub.power)
		}
	})

	t.Run("Signal Strength", func(t *testing.T) {
		lines := exchange(t, conn, reader, "l STRENGTH", 1)
		if lines[0] != "3" {
			t.Errorf("Expected 3, got %q", lines[0])
		}
	})

	t.Run("Unknown Command", func(t *testing.T) {
		lines := exchange(t, conn, reader, "Z", 1)
		if lines[0] != "RPRT -11" {
			t.Errorf("Expected RPRT -11, got %q", lines[0])
		}
	})

	t.Run("Unknown Level", func(t *testing.T) {
		lines := exchange(t, conn, reader, "l SWR", 1)
		if lines[0] != "RPRT -11" {
			t.Errorf("Expected RPRT -11, got %q", lines[0])
		}
	})

	t.Run("Bad Arguments", func(t *testing.T) {
		lines := exchange(t, conn, reader, "F banana", 1)
		if lines[0] != "RPRT -1" {
			t.Errorf("Expected RPRT -1, got %q", lines[0])
		}
		lines = exchange(t, conn, reader, "L RFPOWER 1.5", 1)
		if lines[0] != "RPRT -1" {
			t.Errorf("Expected RPRT -1 above full scale, got %q", lines[0])
		}
	})
}

func TestServerErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"Capability", &rig.CapabilityError{Model: "m", Op: "o", Reason: "r"}, "RPRT -1"},
		{"Timeout", &rig.TimeoutError{Op: "read"}, "RPRT -5"},
		{"Transport", &rig.TransportError{Op: "write"}, "RPRT -6"},
		{"Framing", &rig.FramingError{Family: "ci-v", Detail: "d"}, "RPRT -8"},
		{"Nak", &rig.NakError{Op: "set_frequency"}, "RPRT -9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRig{vfo: rig.VFOA, err: tc.err}
			_, conn := startServer(t, stub)
			reader := bufio.NewReader(conn)

			lines := exchange(t, conn, reader, "F 14074000", 1)
			if lines[0] != tc.want {
				t.Errorf("Expected %s, got %q", tc.want, lines[0])
			}
		})
	}
}

func TestServerQuit(t *testing.T) {
	stub := &stubRig{vfo: rig.VFOA}
	_, conn := startServer(t, stub)

	fmt.Fprintf(conn, "q\n")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Error("Expected connection closed after quit")
	}
}
