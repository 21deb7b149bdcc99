package chainstore

import (
	"errors"
	"fmt"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/datatrails/go-datatrails-mmrchain/mmr"
)

var (
	// ErrInconsistentStore is returned when an append does not start at the
	// current mmr size. The durable state is left untouched.
	ErrInconsistentStore = errors.New("inconsistent store: append position does not match the mmr size")

	// ErrLeafPerBlock is returned when a non empty append does not contain
	// exactly one full leaf. Fork keyed reads rely on each block appending
	// exactly one leaf.
	ErrLeafPerBlock = errors.New("a non empty append must carry exactly one leaf")
)

// NodeStore is the node access surface shared by the append capable runtime
// store and the read only reconstruction store. Get returns (nil, nil) for
// nodes that are not available, it never invents an error for absence.
type NodeStore interface {
	Get(i uint64) (*Node, error)
	Append(i uint64, nodes []Node) error
}

// RuntimeStore is the append capable store used during state transitions.
//
// Durable chain state holds only the leaf count and the current peaks.
// Every appended node, peak or not, is additionally emitted to the external
// content store keyed for the fork being extended, which is what makes the
// pruned interior reconstructable later.
type RuntimeStore struct {
	log   logger.Logger
	chain Chain
	state *State
	index IndexWriter
}

func NewRuntimeStore(log logger.Logger, chain Chain, state *State, index IndexWriter) *RuntimeStore {
	return &RuntimeStore{log: log, chain: chain, state: state, index: index}
}

// Get returns the node at position i if it is a recorded peak. Positions
// below the peaks were pruned from durable state and read as (nil, nil);
// use the read only store to reconstruct those.
func (s *RuntimeStore) Get(i uint64) (*Node, error) {
	digest, err := s.state.PeakHash(i)
	if err != nil {
		return nil, err
	}
	if digest == nil {
		return nil, nil
	}
	node := NewHashNode(digest)
	return &node, nil
}

// Append commits the nodes produced by a single leaf push: the leaf itself
// followed by any interior nodes its arrival completed, positioned
// contiguously from i.
//
// All of the nodes are emitted to the external content store under the
// current fork key. Only the new peaks enter durable state, and the peaks
// they subsume are pruned in the same transition. An empty batch is a no-op.
func (s *RuntimeStore) Append(i uint64, nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}

	leaves, err := s.state.LeafCount()
	if err != nil {
		return err
	}
	size := mmr.SizeForLeafCount(leaves)
	if i != size {
		return fmt.Errorf("%w: append at %d, size is %d", ErrInconsistentStore, i, size)
	}

	var leafNodes int
	for _, node := range nodes {
		if node.IsLeaf() {
			leafNodes++
		}
	}
	if leafNodes != 1 {
		return fmt.Errorf("%w: batch carries %d", ErrLeafPerBlock, leafNodes)
	}

	newSize := size + uint64(len(nodes))
	toPrune, toStore := mmr.PeaksDiff(size, newSize)

	// the fork key for nodes created by the current block is simply the
	// parent hash, the ancestor derivation on read recovers exactly this.
	forkKey := s.chain.ParentHash()

	storeCursor := 0
	for offset, node := range nodes {
		pos := size + uint64(offset)

		encoded, err := node.MarshalCBOR()
		if err != nil {
			return err
		}
		if err = s.index.Set(IndexKey(forkKey, pos), encoded); err != nil {
			return err
		}

		// the new peaks always lie within the appended batch
		if storeCursor < len(toStore) && toStore[storeCursor] == pos {
			if err = s.state.setPeak(pos, node.Digest()); err != nil {
				return err
			}
			storeCursor++
		}
	}

	if err = s.state.setLeafCount(leaves + 1); err != nil {
		return err
	}

	for _, pos := range toPrune {
		if err = s.state.removePeak(pos); err != nil {
			return err
		}
	}

	s.log.Debugf(
		"append: size %d -> %d, stored peaks %v, pruned peaks %v",
		size, newSize, toStore, toPrune)

	return nil
}
