package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/popsim/internal/sim"
)

type ExportData struct {
	Model       string             `json:"model"`
	Seed        int64              `json:"seed"`
	Generations int                `json:"generations"`
	Params      map[string]float64 `json:"params,omitempty"`
	Replicates  []ReplicateData    `json:"replicates"`
}

type ReplicateData struct {
	Generations []int              `json:"generations"`
	States      [][]float64        `json:"states"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Absorbed    bool               `json:"absorbed"`
	AbsorbedAt  int                `json:"absorbed_at"`
}

func NewExportData(meta *RunMetadata, results []*sim.Result) ExportData {
	data := ExportData{
		Model:       meta.Model,
		Seed:        meta.Seed,
		Generations: meta.Generations,
		Params:      meta.Params,
		Replicates:  make([]ReplicateData, len(results)),
	}

	for i, res := range results {
		states := make([][]float64, len(res.States))
		for j, s := range res.States {
			states[j] = s
		}
		data.Replicates[i] = ReplicateData{
			Generations: res.Generations,
			States:      states,
			Metrics:     res.Metrics,
			Absorbed:    res.Absorbed,
			AbsorbedAt:  res.AbsorbedAt,
		}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}
