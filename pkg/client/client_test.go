package client

import (
	"bufio"
	"net"
	"strings"
	"testing"
)

// fakeServer answers each command line with scripted replies
func fakeServer(t *testing.T, replies map[string]string) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					if reply, ok := replies[scanner.Text()]; ok {
						conn.Write([]byte(reply))
					}
				}
			}(conn)
		}
	}()
	return l.Addr().String()
}

func TestSend(t *testing.T) {
	addr := fakeServer(t, map[string]string{
		"f":          "14074000\n",
		"m":          "USB\n0\n",
		"F 7074000":  "RPRT 0\n",
		"F 99999999": "RPRT -1\n",
	})
	c := NewClient(addr)

	t.Run("Single Line Query", func(t *testing.T) {
		lines, err := c.Send("f")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(lines) != 1 || lines[0] != "14074000" {
			t.Errorf("Expected single frequency line, got %q", lines)
		}
	})

	t.Run("Mode Query Reads Both Lines", func(t *testing.T) {
		lines, err := c.Send("m")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(lines) != 2 || lines[0] != "USB" || lines[1] != "0" {
			t.Errorf("Expected mode and passband, got %q", lines)
		}
	})

	t.Run("Set Command Reads Report", func(t *testing.T) {
		lines, err := c.Send("F 7074000")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if len(lines) != 1 || lines[0] != "RPRT 0" {
			t.Errorf("Expected RPRT 0, got %q", lines)
		}
	})

	t.Run("Error Report Is Returned Not Wrapped", func(t *testing.T) {
		lines, err := c.Send("F 99999999")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if lines[0] != "RPRT -1" {
			t.Errorf("Expected RPRT -1, got %q", lines[0])
		}
	})

	t.Run("Unreachable Server", func(t *testing.T) {
		bad := NewClient("127.0.0.1:1")
		if _, err := bad.Send("f"); err == nil {
			t.Error("Expected connection error")
		}
		if _, err := bad.Send("f"); err != nil && !strings.Contains(err.Error(), "connect") {
			t.Errorf("Expected connect failure message, got: %v", err)
		}
	})
}
