package codec

import (
	"strconv"
	"strings"

	"github.com/dougsko/rigd/pkg/rig"
)

// All three CAT families terminate commands and replies with a
// semicolon and signal rejection with a bare "?;" reply. Verbs, field
// widths and enumeration codes differ per manufacturer.
const catTerminator = ';'

// catWantsResponse reports whether a CAT operation produces a reply.
// Unlike CI-V there is no write acknowledgment; only queries answer.
func catWantsResponse(op Op) bool {
	switch op {
	case OpGetFrequency, OpGetMode, OpGetPTT, OpGetSignal:
		return true
	}
	return false
}

// catIsError reports whether a reply is the family error marker
func catIsError(data []byte) bool {
	return strings.TrimSpace(string(data)) == "?;"
}

// catBody strips the terminator and surrounding noise from a reply
func catBody(data []byte) string {
	s := strings.TrimSpace(string(data))
	return strings.TrimSuffix(s, ";")
}

// catDigits parses an exact-width decimal field
func catDigits(s string, width int) (int64, bool) {
	if len(s) != width {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// catReverse builds the wire-to-canonical direction of a mode table
func catReverse(m map[rig.Mode]byte) map[byte]rig.Mode {
	r := make(map[byte]rig.Mode, len(m))
	for mode, b := range m {
		r[b] = mode
	}
	return r
}
