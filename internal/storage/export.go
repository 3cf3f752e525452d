package storage

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
)

// ExportData is the self-contained JSON form of a run.
type ExportData struct {
	Metadata RunMetadata    `json:"metadata"`
	Hex      string         `json:"hex"`
	Digests  []ExportDigest `json:"digests"`
}

type ExportDigest struct {
	Seq   uint64 `json:"seq"`
	Index uint64 `json:"index"`
	Hex   string `json:"hex"`
}

// Export gathers a stored run into ExportData.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data, err := s.LoadBytes(runID)
	if err != nil {
		return nil, err
	}
	digests, err := s.LoadDigests(runID)
	if err != nil {
		return nil, err
	}

	out := &ExportData{
		Metadata: *meta,
		Hex:      hex.EncodeToString(data),
		Digests:  make([]ExportDigest, len(digests)),
	}
	for i, d := range digests {
		out.Digests[i] = ExportDigest{Seq: d.Seq, Index: d.Index, Hex: d.Hex}
	}
	return out, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
