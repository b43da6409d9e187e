package realtime

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// STOMP commands used by the document session and the broker.
const (
	CmdConnect    = "CONNECT"
	CmdConnected  = "CONNECTED"
	CmdSubscribe  = "SUBSCRIBE"
	CmdSend       = "SEND"
	CmdMessage    = "MESSAGE"
	CmdError      = "ERROR"
	CmdDisconnect = "DISCONNECT"
)

// Frame is one STOMP frame: a command line, header lines, a blank line and
// a NUL-terminated body.
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

// NewFrame builds a frame from alternating header key/value pairs.
func NewFrame(command string, headers ...string) *Frame {
	f := &Frame{Command: command, Headers: map[string]string{}}
	for i := 0; i+1 < len(headers); i += 2 {
		f.Headers[headers[i]] = headers[i+1]
	}
	return f
}

// Marshal renders the frame to its wire form.
func (f *Frame) Marshal() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString(f.Command)
	buf.WriteByte('\n')
	// Deterministic header order keeps frames comparable in tests.
	keys := make([]string, 0, len(f.Headers))
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(f.Headers[k])
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// ParseFrame decodes one wire frame.
func ParseFrame(data []byte) (*Frame, error) {
	data = bytes.TrimSuffix(data, []byte{0})
	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		return nil, fmt.Errorf("malformed frame: missing header terminator")
	}
	lines := strings.Split(string(head), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("malformed frame: missing command")
	}
	f := &Frame{
		Command: strings.TrimRight(lines[0], "\r"),
		Headers: make(map[string]string, len(lines)-1),
		Body:    body,
	}
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		f.Headers[k] = v
	}
	return f, nil
}
