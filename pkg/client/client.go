// Package client provides a small TCP client for the rigctld-style
// network interface exposed by rigd
package client

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client connects to a rigctld-compatible server and exchanges text
// commands. A connection is opened per command, matching how most
// rigctld tooling behaves.
type Client struct {
	addr    string
	timeout time.Duration
}

// NewClient creates a client for the given server address
func NewClient(addr string) *Client {
	return &Client{
		addr:    addr,
		timeout: 5 * time.Second,
	}
}

// Send transmits one command line and returns the reply lines. Replies
// are terminated either by an RPRT line or by the expected number of
// value lines for the command verb.
func (c *Client) Send(command string) ([]string, error) {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := fmt.Fprintf(conn, "%s\n", command); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	want := replyLines(command)
	var lines []string
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "RPRT") || len(lines) >= want {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no reply from server")
	}
	return lines, nil
}

// replyLines returns how many value lines a query verb answers with.
// Set commands always answer with a single RPRT line.
func replyLines(command string) int {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return 1
	}
	switch fields[0] {
	case "m", "get_mode":
		return 2
	default:
		return 1
	}
}
