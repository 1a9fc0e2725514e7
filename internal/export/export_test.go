package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/sim"
)

func TestFrameSVG(t *testing.T) {
	frame := dynamo.Frame{Bodies: []dynamo.BodyView{
		{X: 10, Y: 20, Radius: 5, Tag: dynamo.Gain},
		{X: 30, Y: 40, Radius: 6, Tag: dynamo.Loss},
	}}
	svg := FrameSVG(frame, dynamo.Arena{Width: 100, Height: 200})

	if !strings.Contains(svg, `viewBox="0 0 100 200"`) {
		t.Error("viewBox should match the arena")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	if !strings.Contains(svg, `cx="10.0" cy="20.0" r="5.0" fill="#00ff88"`) {
		t.Error("gain body not drawn in gain color")
	}
	if !strings.Contains(svg, `fill="#ff4444"`) {
		t.Error("loss body not drawn in loss color")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("svg not closed")
	}
}

func TestSeriesSVG(t *testing.T) {
	if SeriesSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("a single sample has no line")
	}

	svg := SeriesSVG([]float64{0, 1, 0}, 100, 50, "#00ff88")
	if !strings.Contains(svg, "M0.0,50.0 L50.0,0.0 L100.0,50.0") {
		t.Errorf("unexpected path in %s", svg)
	}

	flat := SeriesSVG([]float64{2, 2}, 10, 10, "#fff")
	if !strings.Contains(flat, "M0.0,10.0 L10.0,10.0") {
		t.Errorf("flat series should sit on the baseline: %s", flat)
	}
}

func TestWriteJSON(t *testing.T) {
	cfg := config.GetPreset("single")
	cfg.Duration = 160

	field, err := sim.NewField(cfg.FieldConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := field.Load([]float64{42}, cfg.Arena); err != nil {
		t.Fatal(err)
	}
	result, err := field.Run(context.Background(), nil, cfg.RunConfig())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewExportData(cfg, result)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded.Steps != 10 {
		t.Errorf("expected 10 steps, got %d", decoded.Steps)
	}
	if len(decoded.Final.Bodies) != 1 || decoded.Final.Bodies[0].Tag != dynamo.Gain {
		t.Errorf("unexpected final frame %+v", decoded.Final)
	}
	if decoded.Arena != cfg.Arena {
		t.Errorf("arena %+v, want %+v", decoded.Arena, cfg.Arena)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.svg")
	if err := WriteFile(path, "<svg/>"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestTrace(t *testing.T) {
	field, err := sim.NewField(sim.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := field.Load([]float64{1, -1}, dynamo.Arena{Width: 350, Height: 622}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	trace := NewTrace(&buf)
	field.AddObserver(trace)
	for i := 0; i < 3; i++ {
		field.Tick(16)
	}

	if trace.Err() != nil || trace.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d (err %v)", trace.Frames(), trace.Err())
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var last dynamo.Frame
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatal(err)
	}
	if last.Time != 48 || len(last.Bodies) != 2 {
		t.Errorf("unexpected last frame %+v", last)
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, os.ErrClosed
}

func TestTraceStopsOnError(t *testing.T) {
	w := &failingWriter{}
	trace := NewTrace(w)
	trace.OnFrame(dynamo.Frame{})
	trace.OnFrame(dynamo.Frame{})

	if !errors.Is(trace.Err(), os.ErrClosed) {
		t.Errorf("expected write error, got %v", trace.Err())
	}
	if w.writes != 1 || trace.Frames() != 0 {
		t.Errorf("expected one failed write, got %d writes and %d frames", w.writes, trace.Frames())
	}
}
