package extract

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashFunc constructs a whitening hash with a DigestSize output.
type HashFunc func() hash.Hash

const DefaultHashName = "sha256"

var DefaultHash HashFunc = sha256.New

var hashes = map[string]HashFunc{
	"sha256": sha256.New,
	"blake2b-256": func() hash.Hash {
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	},
	"sha3-256": sha3.New256,
}

// LookupHash returns the constructor registered under name.
func LookupHash(name string) (HashFunc, error) {
	fn, ok := hashes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownHash, name, HashNames())
	}
	return fn, nil
}

func HashNames() []string {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
