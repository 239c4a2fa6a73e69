package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"

	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// CacheVersion is incremented when the cache format changes. Entries written
// under another version are treated as misses.
const CacheVersion = 1

// KeySeparator separates the fields of a cache key.
const KeySeparator = '\x00'

// Kind distinguishes what a cached entry holds.
type Kind string

const (
	KindExtract Kind = "extract"
	KindAnalyze Kind = "analyze"
)

// Key identifies one cached result. Digest is the archive content hash, so
// renaming or re-uploading the same bytes still hits.
type Key struct {
	Kind     Kind
	Digest   string
	Filename string
	// Scope is any further request detail, such as the resolved date range
	// and anchor pattern.
	Scope string
}

// Bytes renders the key as <kind>\x00<digest>\x00<filename>\x00<scope>.
func (k Key) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(string(k.Kind))
	b.WriteByte(KeySeparator)
	b.WriteString(k.Digest)
	b.WriteByte(KeySeparator)
	b.WriteString(k.Filename)
	b.WriteByte(KeySeparator)
	b.WriteString(k.Scope)
	return b.Bytes()
}

// KindPrefix returns the prefix shared by every key of kind.
func KindPrefix(kind Kind) []byte {
	return append([]byte(kind), KeySeparator)
}

// Digest returns the hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CachedEntry is the stored value. Exactly one of Records or Analysis is
// set, according to the key kind.
type CachedEntry struct {
	Version  int
	Created  int64 // UnixNano
	Records  []types.LogRecord
	Analysis *types.ArchiveAnalysis
}

// Encode serializes the entry to bytes using gob.
func (e *CachedEntry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *CachedEntry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}
