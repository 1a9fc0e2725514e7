package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bubblesim/internal/dynamo"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != blank|0x1 {
		t.Errorf("expected dot 1 in cell 0, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank|0x80 {
		t.Errorf("expected dot 8 in cell 1, got %U", c.Grid[0][1])
	}

	c.Clear()
	if c.String() != string([]rune{blank, blank})+"\n" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8, dynamo.Gain)

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		col, row := p[0]/2, p[1]/4
		if c.Grid[row][col]&rune(pixelMap[p[1]%4][p[0]%2]) == 0 {
			t.Errorf("expected dot at %v", p)
		}
		if c.Tags[row][col] != int(dynamo.Gain) {
			t.Errorf("expected gain tag at %v, got %d", p, c.Tags[row][col])
		}
	}
	if c.Grid[5][10] != blank {
		t.Error("circle center should stay empty")
	}
}

func TestRenderGroupsTags(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawCircle(0, 0, 0, dynamo.Loss)
	c.DrawCircle(6, 0, 0, dynamo.Gain)

	calls := map[int]int{}
	out := c.Render(func(tag int) lipgloss.Style {
		calls[tag]++
		return lipgloss.NewStyle()
	})

	if calls[int(dynamo.Loss)] != 1 || calls[int(dynamo.Gain)] != 1 {
		t.Errorf("expected one styled run per tag, got %v", calls)
	}
	if !strings.HasSuffix(out, "\n") || len([]rune(strings.TrimSuffix(out, "\n"))) != 4 {
		t.Errorf("unexpected render %q", out)
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
	if got := SparklineChart([]float64{1, 2, 3}, 10); !strings.Contains(got, "█") {
		t.Errorf("expected a full bar for the max, got %q", got)
	}
}
