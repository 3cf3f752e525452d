package storage

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	metadataFile = "metadata.json"
	dataFile     = "entropy.bin"
	digestsFile  = "digests.csv"
)

// ErrNotFound is returned for unknown run IDs.
var ErrNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunMetadata describes one collected pool dump.
type RunMetadata struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Source       string             `json:"source"`
	Hash         string             `json:"hash"`
	Bias         float64            `json:"bias,omitempty"`
	Seed         uint64             `json:"seed,omitempty"`
	Size         int                `json:"size"`
	SHA256       string             `json:"sha256"`
	Generation   uint64             `json:"generation"`
	RawBits      uint64             `json:"raw_bits"`
	DebiasedBits uint64             `json:"debiased_bits"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Note         string             `json:"note,omitempty"`
}

// DigestRecord is one whitening digest as written to digests.csv.
type DigestRecord struct {
	Seq   uint64
	Index uint64
	Time  time.Time
	Hex   string
}

// Save writes a new run directory and returns its ID. ID, Timestamp,
// Size and SHA256 are filled in from data.
func (s *Store) Save(meta RunMetadata, data []byte, digests []DigestRecord) (string, error) {
	meta.ID = uuid.NewString()
	meta.Timestamp = s.now().UTC()
	meta.Size = len(data)
	sum := sha256.Sum256(data)
	meta.SHA256 = hex.EncodeToString(sum[:])

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(runDir, dataFile), data, 0600); err != nil {
		return "", err
	}

	if err := writeDigests(filepath.Join(runDir, digestsFile), digests); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeDigests(path string, digests []DigestRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"seq", "index", "time", "digest"}); err != nil {
		return err
	}
	for _, d := range digests {
		row := []string{
			strconv.FormatUint(d.Seq, 10),
			strconv.FormatUint(d.Index, 10),
			d.Time.UTC().Format(time.RFC3339Nano),
			d.Hex,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadBytes returns the collected pool bytes of a run.
func (s *Store) LoadBytes(runID string) ([]byte, error) {
	return s.read(runID, dataFile)
}

func (s *Store) LoadDigests(runID string) ([]DigestRecord, error) {
	f, err := os.Open(s.path(runID, digestsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: read %s digests: %w", runID, err)
	}
	if len(records) < 2 {
		return []DigestRecord{}, nil
	}

	out := make([]DigestRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		seq, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			continue
		}
		idx, err := strconv.ParseUint(rec[1], 10, 64)
		if err != nil {
			continue
		}
		at, err := time.Parse(time.RFC3339Nano, rec[2])
		if err != nil {
			continue
		}
		out = append(out, DigestRecord{Seq: seq, Index: idx, Time: at, Hex: rec[3]})
	}
	return out, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(s.path(runID, ""))
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), name)
}

func (s *Store) read(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	return data, nil
}
