// Package rigctld emulates the de facto standard rig-control network
// protocol over TCP, translating the text command grammar onto the
// controller API. It is a consumer of the controller, not part of the
// protocol engine.
package rigctld

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/dougsko/rigd/pkg/logging"
	"github.com/dougsko/rigd/pkg/rig"
)

// Rig is the slice of the controller API the server drives
type Rig interface {
	GetFrequency(vfo rig.VFO) (int64, error)
	SetFrequency(vfo rig.VFO, hz int64) error
	GetMode() (rig.Mode, error)
	SetMode(mode rig.Mode) error
	SetVFO(vfo rig.VFO) error
	SetSplit(on bool) error
	SetPower(watts float64) error
	GetPTT() (bool, error)
	SetPTT(on bool) error
	GetSignalStrength() (int, error)
	ActiveVFO() rig.VFO
	Capabilities() *rig.Capabilities
}

// Server accepts rigctld-style clients and forwards their commands to
// one rig session
type Server struct {
	rig      Rig
	listener net.Listener
	wg       sync.WaitGroup
	mutex    sync.Mutex
	closed   bool
}

// NewServer creates a server bound to the given rig
func NewServer(r Rig) *Server {
	return &Server{rig: r}
}

// Listen starts accepting connections on addr (e.g. "127.0.0.1:4532")
func (s *Server) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rigctld listen failed: %w", err)
	}
	s.mutex.Lock()
	s.listener = l
	s.mutex.Unlock()

	logging.Infof("rigctld", "listening on %s", addr)

	s.wg.Add(1)
	go s.acceptLoop(l)
	return nil
}

// Addr returns the bound listener address
func (s *Server) Addr() net.Addr {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops the listener and waits for open connections to finish
func (s *Server) Close() error {
	s.mutex.Lock()
	s.closed = true
	l := s.listener
	s.mutex.Unlock()

	var err error
	if l != nil {
		err = l.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(l net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			s.mutex.Lock()
			closed := s.closed
			s.mutex.Unlock()
			if !closed {
				logging.Errorf("rigctld", "accept failed: %v", err)
			}
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			return
		}
		reply := s.dispatch(line)
		writer.WriteString(reply)
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

// dispatch executes one protocol line and formats the reply
func (s *Server) dispatch(line string) string {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "F", "set_freq":
		if len(args) < 1 {
			return rprt(-1)
		}
		hz, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return rprt(-1)
		}
		return status(s.rig.SetFrequency(s.rig.ActiveVFO(), hz))

	case "f", "get_freq":
		hz, err := s.rig.GetFrequency(s.rig.ActiveVFO())
		if err != nil {
			return status(err)
		}
		return fmt.Sprintf("%d\n", hz)

	case "M", "set_mode":
		if len(args) < 1 {
			return rprt(-1)
		}
		return status(s.rig.SetMode(rig.Mode(args[0])))

	case "m", "get_mode":
		mode, err := s.rig.GetMode()
		if err != nil {
			return status(err)
		}
		// passband reporting is not modeled; 0 means unchanged
		return fmt.Sprintf("%s\n0\n", mode)

	case "V", "set_vfo":
		if len(args) < 1 {
			return rprt(-1)
		}
		vfo, ok := parseVFO(args[0])
		if !ok {
			return rprt(-1)
		}
		return status(s.rig.SetVFO(vfo))

	case "v", "get_vfo":
		return fmt.Sprintf("VFO%s\n", s.rig.ActiveVFO())

	case "T", "set_ptt":
		if len(args) < 1 {
			return rprt(-1)
		}
		return status(s.rig.SetPTT(args[0] == "1"))

	case "t", "get_ptt":
		ptt, err := s.rig.GetPTT()
		if err != nil {
			return status(err)
		}
		if ptt {
			return "1\n"
		}
		return "0\n"

	case "S", "set_split_vfo":
		if len(args) < 1 {
			return rprt(-1)
		}
		return status(s.rig.SetSplit(args[0] == "1"))

	case "L", "set_level":
		if len(args) < 2 {
			return rprt(-1)
		}
		if args[0] != "RFPOWER" {
			return rprt(-11)
		}
		frac, err := strconv.ParseFloat(args[1], 64)
		if err != nil || frac < 0 || frac > 1 {
			return rprt(-1)
		}
		watts := frac * s.rig.Capabilities().MaxPower
		return status(s.rig.SetPower(watts))

	case "l", "get_level":
		if len(args) < 1 || args[0] != "STRENGTH" {
			return rprt(-11)
		}
		db, err := s.rig.GetSignalStrength()
		if err != nil {
			return status(err)
		}
		return fmt.Sprintf("%d\n", db)
	}

	return rprt(-11) // function not available
}

func parseVFO(s string) (rig.VFO, bool) {
	switch strings.ToUpper(s) {
	case "VFOA", "A":
		return rig.VFOA, true
	case "VFOB", "B":
		return rig.VFOB, true
	case "CURR", "VFOCURR":
		return rig.VFOCurrent, true
	}
	return "", false
}

func rprt(code int) string {
	return fmt.Sprintf("RPRT %d\n", code)
}

// status maps controller errors onto hamlib-compatible report codes
func status(err error) string {
	switch {
	case err == nil:
		return rprt(0)
	case errors.Is(err, rig.ErrCapability):
		return rprt(-1) // invalid parameter
	case errors.Is(err, rig.ErrTimeout):
		return rprt(-5) // communication timed out
	case errors.Is(err, rig.ErrFraming):
		return rprt(-8) // protocol error
	case errors.Is(err, rig.ErrNak):
		return rprt(-9) // command rejected by the rig
	case errors.Is(err, rig.ErrTransport):
		return rprt(-6) // communication error
	default:
		return rprt(-7)
	}
}
