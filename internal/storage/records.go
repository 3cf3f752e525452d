package storage

import "github.com/DM41131/RNG-password-generator/internal/engine"

// RecordsFromEntries converts engine history into digest records.
func RecordsFromEntries(entries []engine.Entry) []DigestRecord {
	out := make([]DigestRecord, len(entries))
	for i, e := range entries {
		out[i] = DigestRecord{
			Seq:   e.Seq,
			Index: e.Digest.Index,
			Time:  e.Time,
			Hex:   e.Digest.Hex(),
		}
	}
	return out
}

// SaveCollection saves a completed engine collection. meta supplies the
// capture description; counters and metrics come from the collection.
func (s *Store) SaveCollection(meta RunMetadata, c *engine.Collection) (string, error) {
	meta.Generation = c.Generation
	meta.RawBits = c.Stats.RawBits
	meta.DebiasedBits = c.Stats.DebiasedBits
	if len(c.Stats.Metrics) > 0 {
		meta.Metrics = c.Stats.Metrics
	}
	return s.Save(meta, c.Data, RecordsFromEntries(c.Digests))
}
