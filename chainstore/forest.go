package chainstore

import (
	"errors"
	"fmt"
	"hash"

	"github.com/datatrails/go-datatrails-mmrchain/mmr"
)

var (
	// ErrMissingNode is returned when a node required to complete an
	// operation is unavailable from the backing store.
	ErrMissingNode = errors.New("a required node is unavailable")

	// ErrEmptyForest is returned when the root of an empty mmr is requested.
	ErrEmptyForest = errors.New("the mmr is empty")
)

// nodeDigests adapts a NodeStore to the digest-only read interface used by
// the proof and accumulator walks. Absence is promoted to ErrMissingNode:
// those walks only ever ask for nodes the mmr size says must exist.
type nodeDigests struct {
	store NodeStore
}

func (g nodeDigests) Get(i uint64) ([]byte, error) {
	node, err := g.store.Get(i)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: node %d", ErrMissingNode, i)
	}
	return node.Digest(), nil
}

// Forest grows an mmr one leaf at a time over a NodeStore. It owns the
// position arithmetic: a push produces the leaf plus every interior node the
// leaf completes, handed to the store as one contiguous batch.
//
// Backed by a RuntimeStore, a Forest is the block production path: the store
// only ever needs to answer for current peaks, which is exactly what merges
// consume.
type Forest struct {
	store  NodeStore
	hasher hash.Hash
	size   uint64
}

// NewForest resumes a forest of leafCount leaves over the given store.
func NewForest(leafCount uint64, store NodeStore, hasher hash.Hash) *Forest {
	return &Forest{store: store, hasher: hasher, size: mmr.SizeForLeafCount(leafCount)}
}

// Size returns the current mmr size in nodes.
func (f *Forest) Size() uint64 { return f.size }

// Push appends one leaf, returning its node position. Interior nodes are
// created bottom up: each time the new node at the cursor completes a
// perfect sub tree, its parent is hashed in over the 1-based parent
// position.
func (f *Forest) Push(content []byte) (uint64, error) {
	start := f.size
	nodes := []Node{NewLeafNode(f.hasher, content)}

	// i is at 'next' each time we check the height
	i := start + 1
	height := uint64(0)
	for mmr.IndexHeight(i) > height {
		iLeft := i - (2 << height)
		left, err := f.digest(iLeft, nodes, start)
		if err != nil {
			return 0, err
		}
		right := nodes[len(nodes)-1].Digest()

		nodes = append(nodes, NewHashNode(mmr.HashPosPair64(f.hasher, i+1, left, right)))
		i++
		height++
	}

	if err := f.store.Append(start, nodes); err != nil {
		return 0, err
	}
	f.size = i
	return start, nil
}

// digest resolves the node at i from the pending batch when it is new this
// push, falling back to the store for established nodes. The only
// established nodes a push consumes are current peaks.
func (f *Forest) digest(i uint64, pending []Node, start uint64) ([]byte, error) {
	if i >= start {
		return pending[i-start].Digest(), nil
	}
	return nodeDigests{f.store}.Get(i)
}

// Root returns the bagged root of the forest: the peaks folded right to
// left, committing to the mmr size at each fold.
func (f *Forest) Root() ([]byte, error) {
	if f.size == 0 {
		return nil, ErrEmptyForest
	}
	peaks, err := mmr.PeakHashes(nodeDigests{f.store}, f.size)
	if err != nil {
		return nil, err
	}
	root := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		root = mmr.HashPosPair64(f.hasher, f.size, peaks[i], root)
	}
	return root, nil
}
