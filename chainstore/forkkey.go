package chainstore

import (
	"encoding/binary"
)

// The external content store is shared by every fork of the chain. Records
// are keyed by (fork key, node position) where the fork key is the hash of
// the parent of the block whose state transition created the node. Forks
// have distinct parent hashes from their first divergent block onward, so
// records created after that block never collide across forks. Competing
// children of the same parent do share a key for the nodes they create; the
// record content is identical whenever the competing blocks append the same
// leaf, and otherwise the canonical block's execution must write last.

const indexKeyPrefix = "v1/mmrchain/nodes/"

// IndexKey returns the external store key for the node at position i under
// the given fork key.
func IndexKey(forkKey []byte, i uint64) []byte {
	key := make([]byte, 0, len(indexKeyPrefix)+len(forkKey)+8)
	key = append(key, indexKeyPrefix...)
	key = append(key, forkKey...)
	key = binary.BigEndian.AppendUint64(key, i)
	return key
}

// IndexWriter accepts the write-behind node records emitted during a state
// transition. Writes are keyed for the fork being extended and must be
// durable by the time the transition's block is final.
type IndexWriter interface {
	Set(key []byte, value []byte) error
}

// IndexReader retrieves node records previously emitted through an
// IndexWriter. A missing record is (nil, nil), never an error: history the
// host has forgotten is unavailable, not corrupt.
type IndexReader interface {
	Get(key []byte) ([]byte, error)
}
