package badger

import (
	"encoding/binary"

	"github.com/poiesic/podmap/core"
)

// Key prefixes for different data types
const (
	episodePrefix       = "eprec"
	episodeIDSeq        = "eprecseq"
	entityPrefix        = "entrec"
	entityNamePrefix    = "entname"
	sourcePrefix        = "srcrec"
	episodeSourcePrefix = "epsrc"
	sourceEntityPrefix  = "srcent"
	relationshipPrefix  = "relrec"
	sourceRelPrefix     = "srcrel"
	detailPrefix        = "detrec"
	sourceDetailPrefix  = "srcdet"
	entityDetailPrefix  = "entdet"
)

// makeIDKey generates a key of the form prefix:id.
// IDs are written BigEndian so prefix scans return records in ID order.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePairKey generates a composite index key.
// Format: prefix:owner:member
func makePairKey(prefix string, owner, member core.ID) []byte {
	buf := make([]byte, len(prefix)+1+16)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(owner))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(member))
	return buf
}

// pairMember extracts the member ID from a key built by makePairKey.
func pairMember(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeScanPrefix generates the prefix for scanning all keys of a type.
func makeScanPrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

func makeEpisodeKey(id core.ID) []byte {
	return makeIDKey(episodePrefix, id)
}

func makeEntityKey(id core.ID) []byte {
	return makeIDKey(entityPrefix, id)
}

// makeEntityNameKey generates the uniqueness index key for an entity name.
// Format: prefix:canonical name
func makeEntityNameKey(name string) []byte {
	return []byte(entityNamePrefix + ":" + core.CanonicalName(name))
}

func makeSourceKey(id core.ID) []byte {
	return makeIDKey(sourcePrefix, id)
}

func makeRelationshipKey(id core.ID) []byte {
	return makeIDKey(relationshipPrefix, id)
}

func makeDetailKey(id core.ID) []byte {
	return makeIDKey(detailPrefix, id)
}
