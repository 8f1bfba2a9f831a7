package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/civicgraph/schemematch/core"
)

// Key prefixes for different data types
const (
	schemeDocPrefix    = "schdoc"
	schemeSourcePrefix = "schsrc"
	indexInfoKeyName   = "schidx"
)

// makeSchemeDocKey generates a key for a scheme document by ID.
func makeSchemeDocKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", schemeDocPrefix, id))
}

// makeSourceKey generates a composite key for the source-file index.
// Format: prefix:sourceFile:id
func makeSourceKey(sourceFile string, id core.ID) []byte {
	prefix := schemeSourcePrefix + ":" + sourceFile + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialSourceKey generates a partial key for source-file scans.
func makePartialSourceKey(sourceFile string) []byte {
	return []byte(schemeSourcePrefix + ":" + sourceFile + ":")
}

// makeIndexInfoKey generates the key for the index metadata record.
func makeIndexInfoKey() []byte {
	return []byte(indexInfoKeyName)
}
