package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/bubblesim/internal/config"
	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/sim"
)

type ExportData struct {
	Arena      dynamo.Arena         `json:"arena"`
	Seed       int64                `json:"seed"`
	Dt         float64              `json:"dt"`
	Duration   float64              `json:"duration"`
	Steps      int                  `json:"steps"`
	Times      []float64            `json:"times"`
	Series     map[string][]float64 `json:"series"`
	Metrics    map[string]float64   `json:"metrics"`
	Selections []dynamo.Selection   `json:"selections"`
	Cascades   int                  `json:"cascades"`
	MaxReach   int                  `json:"max_reach"`
	Final      dynamo.Frame         `json:"final"`
}

func NewExportData(cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Arena:      cfg.Arena,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      result.StepsTaken,
		Times:      result.Times,
		Series:     result.Series,
		Metrics:    result.Metrics,
		Selections: result.Selections,
		Cascades:   result.Cascades,
		MaxReach:   result.MaxReach,
		Final:      result.Final,
	}
}

func WriteJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func WriteFile(path string, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
