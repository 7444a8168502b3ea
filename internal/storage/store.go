package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/popsim/internal/metrics"
	"github.com/san-kum/popsim/internal/sim"
)

var (
	ErrNoResults = errors.New("popsim/storage: no results to save")
	ErrReplicate = errors.New("popsim/storage: replicate out of order")
)

// ReplicateError reports a states.csv row whose replicate index is negative
// or skips ahead of the replicates read so far.
type ReplicateError struct {
	Replicate int
	Loaded    int
}

func (e *ReplicateError) Error() string {
	return fmt.Sprintf("replicate %d after %d replicates", e.Replicate, e.Loaded)
}

func (e *ReplicateError) Unwrap() error { return ErrReplicate }

// Store keeps one directory per run holding metadata.json and states.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Generations int                `json:"generations"`
	Replicates  int                `json:"replicates"`
	Params      map[string]float64 `json:"params"`

	// Metrics are averaged across replicates.
	Metrics map[string]float64 `json:"metrics"`
}

func (s *Store) Save(model string, seed int64, params map[string]float64, results []*sim.Result) (*RunMetadata, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, err
	}

	summary, err := metrics.Summarise(results)
	if err != nil {
		return nil, err
	}
	meta := &RunMetadata{
		ID:          runID,
		Model:       model,
		Timestamp:   now,
		Seed:        seed,
		Generations: horizon(results),
		Replicates:  len(results),
		Params:      params,
		Metrics:     summary,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return nil, err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), results); err != nil {
		return nil, err
	}
	return meta, nil
}

// horizon is the last generation reached by any replicate. Lines stopped
// at absorption end earlier than the others.
func horizon(results []*sim.Result) int {
	last := 0
	for _, res := range results {
		if n := len(res.Generations); n > 0 && res.Generations[n-1] > last {
			last = res.Generations[n-1]
		}
	}
	return last
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, results []*sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"replicate", "gen"}
	for i := range results[0].States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for r, res := range results {
		for i, x := range res.States {
			row := []string{strconv.Itoa(r), strconv.Itoa(res.Generations[i])}
			for _, v := range x {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadResults reads states.csv back into one result per replicate.
func (s *Store) LoadResults(runID string) ([]*sim.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var results []*sim.Result
	for line, record := range records {
		if line == 0 || len(record) < 3 {
			continue
		}

		rep, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("states.csv line %d: %w", line+1, err)
		}
		gen, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("states.csv line %d: %w", line+1, err)
		}

		x := make(sim.State, 0, len(record)-2)
		for _, field := range record[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("states.csv line %d: %w", line+1, err)
			}
			x = append(x, v)
		}

		if rep < 0 || rep > len(results) {
			return nil, fmt.Errorf("states.csv line %d: %w", line+1, &ReplicateError{Replicate: rep, Loaded: len(results)})
		}
		if rep == len(results) {
			results = append(results, &sim.Result{Metrics: make(map[string]float64), AbsorbedAt: -1})
		}
		res := results[rep]
		res.States = append(res.States, x)
		res.Generations = append(res.Generations, gen)
	}

	return results, nil
}
