package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDigests() []DigestRecord {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []DigestRecord{
		{Seq: 1, Index: 0, Time: at, Hex: "541b3e9daa09b20bf85fa273e5cbd3e80185aa4ec298e765db87742b70138a53"},
		{Seq: 2, Index: 1, Time: at.Add(time.Second), Hex: "00ff"},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	runID, err := st.Save(RunMetadata{
		Source:  "synthetic",
		Hash:    "sha256",
		Bias:    0.3,
		Seed:    42,
		Metrics: map[string]float64{"monobit": 0.5},
	}, data, sampleDigests())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "synthetic", meta.Source)
	assert.Equal(t, uint64(42), meta.Seed)
	assert.Equal(t, 4, meta.Size)
	assert.Equal(t, "5f78c33274e43fa9de5659265c1d917e25c03722dcb0b8d27db8d5feaa813953", meta.SHA256)
	assert.Equal(t, 0.5, meta.Metrics["monobit"])

	got, err := st.LoadBytes(runID)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	digests, err := st.LoadDigests(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleDigests(), digests)
}

func TestStoreList(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		st.now = func() time.Time { return at }
		_, err := st.Save(RunMetadata{Source: "file", Note: at.Format(time.Kitchen)}, []byte{byte(i)}, nil)
		require.NoError(t, err)
	}
	// Stray files and broken runs are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), "README"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(st.Dir(), "broken"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].Timestamp.After(runs[1].Timestamp))
	assert.True(t, runs[1].Timestamp.After(runs[2].Timestamp))
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Source: "portaudio"}, []byte("pool"), sampleDigests())
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "entropy.bin", "digests.csv"} {
		_, err := os.Stat(filepath.Join(st.Dir(), runID, name))
		assert.NoError(t, err, name)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.LoadBytes("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.LoadDigests("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete("nope"), ErrNotFound)
}

func TestStoreDelete(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{}, []byte{1}, nil)
	require.NoError(t, err)

	require.NoError(t, st.Delete(runID))
	_, err = st.Load(runID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDeleteStaysInsideStore(t *testing.T) {
	base := t.TempDir()
	st := New(filepath.Join(base, "runs"))
	runID, err := st.Save(RunMetadata{}, []byte{1}, nil)
	require.NoError(t, err)

	// A sibling of the store that shares the run's name.
	sibling := filepath.Join(base, runID)
	require.NoError(t, os.MkdirAll(sibling, 0o755))

	require.NoError(t, st.Delete("../"+runID))
	_, err = st.Load(runID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.DirExists(t, sibling)
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Source: "synthetic"}, []byte{0x0a, 0xff}, sampleDigests())
	require.NoError(t, err)

	exp, err := st.Export(runID)
	require.NoError(t, err)
	assert.Equal(t, "0aff", exp.Hex)
	require.Len(t, exp.Digests, 2)
	assert.Equal(t, uint64(1), exp.Digests[1].Index)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exp))
	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, runID, decoded.Metadata.ID)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, exp))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
