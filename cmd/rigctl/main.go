package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dougsko/rigd/pkg/client"
)

var (
	server  = flag.String("server", "127.0.0.1:4532", "rigd server address")
	command = flag.String("cmd", "", "Command to send (e.g., 'f', 'F 14074000')")
)

func main() {
	flag.Parse()

	if *command == "" {
		if len(flag.Args()) > 0 {
			*command = strings.Join(flag.Args(), " ")
		} else {
			showHelp()
			return
		}
	}

	c := client.NewClient(*server)

	lines, err := c.Send(*command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	if last := lines[len(lines)-1]; strings.HasPrefix(last, "RPRT ") && last != "RPRT 0" {
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("rigctl - rigd network control tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] <command>\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -server <addr>    rigd server address (default: 127.0.0.1:4532)")
	fmt.Println("  -cmd <command>    Command to send")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  f                         Get frequency in Hz")
	fmt.Println("  F <hz>                    Set frequency")
	fmt.Println("  m                         Get operating mode")
	fmt.Println("  M <mode>                  Set operating mode (USB, LSB, CW, ...)")
	fmt.Println("  v                         Get active VFO")
	fmt.Println("  V <vfo>                   Set active VFO (VFOA, VFOB)")
	fmt.Println("  t                         Get PTT state")
	fmt.Println("  T <0|1>                   Set PTT")
	fmt.Println("  S <0|1>                   Set split operation")
	fmt.Println("  L RFPOWER <0..1>          Set RF power as a fraction of maximum")
	fmt.Println("  l STRENGTH                Get signal strength in dB relative to S9")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s f\n", os.Args[0])
	fmt.Printf("  %s F 14074000\n", os.Args[0])
	fmt.Printf("  %s M USB\n", os.Args[0])
	fmt.Printf("  echo 'f' | nc 127.0.0.1 4532\n")
}
