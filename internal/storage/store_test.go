package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/popsim/internal/sim"
)

func sampleResults() []*sim.Result {
	return []*sim.Result{
		{
			States:      []sim.State{{0.5}, {0.55}, {0.6}},
			Generations: []int{0, 1, 2},
			Metrics:     map[string]float64{"heterozygosity": 0.48},
			AbsorbedAt:  -1,
		},
		{
			States:      []sim.State{{0.5}, {0.4}, {0.3}},
			Generations: []int{0, 1, 2},
			Metrics:     map[string]float64{"heterozygosity": 0.44},
			AbsorbedAt:  -1,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	params := map[string]float64{"N": 20, "p0": 0.5}
	meta, err := st.Save("drift", 42, params, sampleResults())
	require.NoError(t, err)
	require.NotEmpty(t, meta.ID)

	loaded, err := st.Load(meta.ID)
	require.NoError(t, err)

	assert.Equal(t, "drift", loaded.Model)
	assert.Equal(t, int64(42), loaded.Seed)
	assert.Equal(t, 2, loaded.Generations)
	assert.Equal(t, 2, loaded.Replicates)
	assert.Equal(t, params, loaded.Params)
	assert.InDelta(t, 0.46, loaded.Metrics["heterozygosity"], 1e-12)

	results, err := st.LoadResults(meta.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{0, 1, 2}, results[1].Generations)
	assert.Equal(t, []float64{0.5, 0.4, 0.3}, results[1].Series(0))
}

func TestStoreSave_NoResults(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save("drift", 1, nil, nil)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := New(filepath.Join(dir, "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save("drift", 1, nil, sampleResults())
	require.NoError(t, err)
	second, err := st.Save("full_sib", 1, nil, sampleResults()[:1])
	require.NoError(t, err)

	// stray directories without metadata are skipped
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	meta, err := st.Save("drift", 7, map[string]float64{"N": 10}, sampleResults())
	require.NoError(t, err)

	results, err := st.LoadResults(meta.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewExportData(meta, results)))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "drift", data.Model)
	assert.Equal(t, int64(7), data.Seed)
	require.Len(t, data.Replicates, 2)
	assert.Equal(t, [][]float64{{0.5}, {0.55}, {0.6}}, data.Replicates[0].States)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))
	assert.FileExists(t, path)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cat, err := OpenCatalog(ctx, filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer cat.Close()

	st := New(filepath.Join(dir, "runs"))
	require.NoError(t, st.Init())

	drift, err := st.Save("drift", 1, map[string]float64{"N": 10}, sampleResults())
	require.NoError(t, err)
	require.NoError(t, cat.Add(ctx, drift))

	_, err = st.Save("selfing", 1, nil, sampleResults()[:1])
	require.NoError(t, err)

	added, err := cat.Sync(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 1, added, "only the unindexed run should be added")

	all, err := cat.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, drift.ID, all[0].ID)
	assert.Equal(t, 10.0, all[0].Params["N"])
	assert.InDelta(t, 0.46, all[0].Metrics["heterozygosity"], 1e-12)
	assert.True(t, all[0].Timestamp.Equal(drift.Timestamp))

	selfing, err := cat.List(ctx, "selfing")
	require.NoError(t, err)
	require.Len(t, selfing, 1)
	assert.Equal(t, 1, selfing[0].Replicates)

	require.NoError(t, cat.Remove(ctx, drift.ID))
	all, err = cat.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStoreSave_EarlyAbsorption(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	results := []*sim.Result{
		{
			States:      []sim.State{{0.5}, {1}},
			Generations: []int{0, 1},
			Metrics:     map[string]float64{"fixation_time": 1},
			Absorbed:    true,
			AbsorbedAt:  1,
		},
		{
			States:      []sim.State{{0.5}, {0.6}, {0.7}, {0.8}},
			Generations: []int{0, 1, 2, 3},
			Metrics:     map[string]float64{"fixation_time": -1},
			AbsorbedAt:  -1,
		},
		{
			States:      []sim.State{{0.5}, {0.2}, {0}},
			Generations: []int{0, 1, 2},
			Metrics:     map[string]float64{"fixation_time": 2},
			Absorbed:    true,
			AbsorbedAt:  2,
		},
	}

	meta, err := st.Save("drift", 1, nil, results)
	require.NoError(t, err)

	assert.Equal(t, 3, meta.Generations, "horizon is the longest line")
	assert.InDelta(t, 1.5, meta.Metrics["fixation_time"], 1e-12, "segregating lines are not averaged")
	assert.InDelta(t, 2.0/3, meta.Metrics["fraction_absorbed"], 1e-12)
}

func writeStatesFile(t *testing.T, st *Store, id, body string) {
	t.Helper()
	dir := filepath.Join(st.Dir(), id)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "states.csv"), []byte(body), 0644))
}

func TestLoadResults_BadReplicate(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	writeStatesFile(t, st, "negative", "replicate,gen,x0\n-1,0,0.5\n")
	_, err := st.LoadResults("negative")
	assert.ErrorIs(t, err, ErrReplicate)

	writeStatesFile(t, st, "skip", "replicate,gen,x0\n0,0,0.5\n1000000000,0,0.5\n")
	_, err = st.LoadResults("skip")
	assert.ErrorIs(t, err, ErrReplicate)

	writeStatesFile(t, st, "ok", "replicate,gen,x0\n0,0,0.5\n0,1,0.6\n1,0,0.5\n")
	results, err := st.LoadResults("ok")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{0, 1}, results[0].Generations)
}
