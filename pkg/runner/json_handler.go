package runner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// JSONHandler reads events and writes results as JSON Lines.
type JSONHandler struct {
	reader *bufio.Reader

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO. Nil arguments default to stdin and stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

// Input reads the next non-blank line as an Event.
// It returns io.EOF when the input is exhausted and an error wrapping
// ErrInvalidEvent for lines that are not valid JSON.
func (h *JSONHandler) Input() (Event, error) {
	for {
		line, err := h.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return Event{}, err
			}
			continue
		}
		var ev Event
		if derr := json.Unmarshal([]byte(line), &ev); derr != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, derr)
		}
		return ev, nil
	}
}

// Output writes one result line.
func (h *JSONHandler) Output(res Result) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(res)
}

// OutputError writes one {"error": "..."} line.
func (h *JSONHandler) OutputError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(map[string]string{"error": err.Error()})
}
