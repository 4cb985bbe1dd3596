// Package event defines the execution record captured at every
// interception point and its length-prefixed JSON wire encoding.
package event

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// Execution is an immutable record of one intercepted process.
type Execution struct {
	Executable  string            `json:"executable"`
	Arguments   []string          `json:"arguments"`
	WorkingDir  string            `json:"working_dir"`
	Environment map[string]string `json:"environment"`
}

// Clone returns a deep copy of the Execution.
func (e Execution) Clone() Execution {
	args := make([]string, len(e.Arguments))
	copy(args, e.Arguments)
	env := make(map[string]string, len(e.Environment))
	for k, v := range e.Environment {
		env[k] = v
	}
	return Execution{
		Executable:  e.Executable,
		Arguments:   args,
		WorkingDir:  e.WorkingDir,
		Environment: env,
	}
}

// Event pairs the process id with the Execution observed at an
// interception point. Events are never mutated after creation.
type Event struct {
	Pid       int       `json:"pid"`
	Execution Execution `json:"execution"`
}

// maxFrameSize bounds a single event's JSON payload so a corrupt or
// malicious length prefix can't force an unbounded allocation.
const maxFrameSize = 64 << 20 // 64 MiB

// ReadFrom reads one length-prefixed JSON event from r.
//
// The frame is a 4-byte big-endian length followed by that many bytes
// of UTF-8 JSON. An EOF before the length, or before the full payload
// has been read, is reported as an error rather than treated as a
// clean end of stream: frame boundaries are never ambiguous, so a
// partial frame always means the stream broke mid-record.
func ReadFrom(r io.Reader) (Event, error) {
	var lengthBytes [4]byte
	if _, err := io.ReadFull(r, lengthBytes[:]); err != nil {
		return Event{}, fmt.Errorf("read event frame length: %w", err)
	}
	length := binary.BigEndian.Uint32(lengthBytes[:])
	if length > maxFrameSize {
		return Event{}, fmt.Errorf("event frame too large: %d bytes", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Event{}, fmt.Errorf("read event frame payload: %w", err)
	}

	var e Event
	if err := json.Unmarshal(buf, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return e, nil
}

// WriteInto serializes e to JSON, frames it with a 4-byte big-endian
// length prefix, and writes the frame to w. It returns the number of
// payload bytes written (not counting the 4-byte prefix).
func WriteInto(w io.Writer, e Event) (int, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}
	if len(payload) > maxFrameSize {
		return 0, fmt.Errorf("event frame too large: %d bytes", len(payload))
	}

	var lengthBytes [4]byte
	binary.BigEndian.PutUint32(lengthBytes[:], uint32(len(payload)))

	if _, err := w.Write(lengthBytes[:]); err != nil {
		return 0, fmt.Errorf("write event frame length: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return 0, fmt.Errorf("write event frame payload: %w", err)
	}
	return len(payload), nil
}

// PreloadState is the control block serialized into a child process's
// environment so that the preload shim can find the collector and reassert the interception invariants across
// nested exec/fork.
type PreloadState struct {
	// Destination is "host:port" of the loopback collector.
	Destination string `json:"destination"`
	// LibraryPath is the absolute path of the preload shared library,
	// re-asserted as the first LD_PRELOAD/DYLD_INSERT_LIBRARIES entry
	// of every child's environment.
	LibraryPath string `json:"library_path"`
}

// Encode serializes the PreloadState for storage in an environment
// variable.
func (s PreloadState) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal preload state: %w", err)
	}
	return string(b), nil
}

// DecodePreloadState parses a PreloadState previously produced by Encode.
func DecodePreloadState(s string) (PreloadState, error) {
	var state PreloadState
	if err := json.Unmarshal([]byte(s), &state); err != nil {
		return PreloadState{}, fmt.Errorf("unmarshal preload state: %w", err)
	}
	return state, nil
}
