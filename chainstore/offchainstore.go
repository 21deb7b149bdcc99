package chainstore

import (
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/datatrails/go-datatrails-mmrchain/mmr"
)

// OffchainStore reconstructs the full mmr, pruned interior included, from
// the external content store. It is strictly read only: it serves proof
// building off the critical path and must never influence durable state.
type OffchainStore struct {
	log    logger.Logger
	chain  Chain
	state  *State
	reader IndexReader
}

func NewOffchainStore(log logger.Logger, chain Chain, state *State, reader IndexReader) *OffchainStore {
	return &OffchainStore{log: log, chain: chain, state: state, reader: reader}
}

// AncestorForkKey derives the fork key under which the node at position i
// was written. With one leaf appended per block, the leaf index of i fixes
// the height of the block whose transition created the node, and the key is
// that block's parent hash.
//
// The derivation holds on every fork: walking back from the current head
// always lands on the ancestor that wrote the node on *this* fork. A nil
// return (with nil error) means the node cannot exist yet, or the host has
// pruned the ancestor hash; either way the record is unavailable.
func (s *OffchainStore) AncestorForkKey(i uint64) ([]byte, error) {
	leaves, err := s.state.LeafCount()
	if err != nil {
		return nil, err
	}
	leafIndex := mmr.LeafIndex(i)
	if leafIndex >= leaves {
		return nil, nil
	}

	number := s.chain.BlockNumber()
	if number+leafIndex < leaves {
		// the head is too young to have appended that many leaves
		return nil, nil
	}
	ancestor := number - leaves + leafIndex

	forkKey, ok := s.chain.BlockHash(ancestor)
	if !ok {
		s.log.Debugf("ancestor %d of node %d is beyond retained history", ancestor, i)
		return nil, nil
	}
	return forkKey, nil
}

// Get reconstructs the node at position i from the external content store.
// Unavailable history reads as (nil, nil).
func (s *OffchainStore) Get(i uint64) (*Node, error) {
	forkKey, err := s.AncestorForkKey(i)
	if err != nil || forkKey == nil {
		return nil, err
	}

	value, err := s.reader.Get(IndexKey(forkKey, i))
	if err != nil {
		return nil, err
	}
	if value == nil {
		s.log.Debugf("no record for node %d under fork key %x", i, forkKey)
		return nil, nil
	}

	node, err := NodeFromCBOR(value)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// Append panics unconditionally. The mmr must not be altered in the read
// only context; all growth happens through the RuntimeStore during state
// transitions.
func (s *OffchainStore) Append(i uint64, nodes []Node) error {
	panic("mmr must not be altered in the read only context")
}

// InclusionProof builds the sibling path proving the node at position i is
// included under its local peak, for the current size of the mmr. The local
// peak index is returned alongside so callers can locate it within the
// accumulator.
func (s *OffchainStore) InclusionProof(i uint64) ([][]byte, uint64, error) {
	leaves, err := s.state.LeafCount()
	if err != nil {
		return nil, 0, err
	}
	size := mmr.SizeForLeafCount(leaves)
	if i >= size {
		return nil, 0, fmt.Errorf("%w: node %d, size %d", ErrMissingNode, i, size)
	}
	proof, iLocalPeak, _, err := mmr.IndexProofPath(size, nodeDigests{s}, i)
	if err != nil {
		return nil, 0, err
	}
	return proof, iLocalPeak, nil
}
