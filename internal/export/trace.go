package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/bubblesim/internal/dynamo"
)

// Trace writes every frame it observes as one JSON line. Writing stops at
// the first error, which Err reports.
type Trace struct {
	enc    *json.Encoder
	frames int
	err    error
}

func NewTrace(w io.Writer) *Trace {
	return &Trace{enc: json.NewEncoder(w)}
}

func (t *Trace) OnFrame(f dynamo.Frame) {
	if t.err != nil {
		return
	}
	if t.err = t.enc.Encode(f); t.err == nil {
		t.frames++
	}
}

func (t *Trace) Frames() int { return t.frames }
func (t *Trace) Err() error  { return t.err }
