package mmrtesting

import (
	"crypto/sha256"
	"encoding/binary"
)

// ChainSim is a minimal block chain simulation: a monotonically advancing
// block number and the hashes of all sealed blocks. It exists so that the
// fork keyed storage paths can be exercised without a real host, including
// re-orgs (via Fork) and deep history loss (via PruneBlocksBelow).
//
// The hash of a block commits to the simulation salt, the block number and
// the parent hash. Two sims forked with different salts therefore diverge at
// the first block sealed after the fork, exactly like competing chain forks.
type ChainSim struct {
	salt        []byte
	number      uint64
	hashes      map[uint64][]byte
	prunedBelow uint64
}

// NewChainSim starts a chain at block 1 with a sealed genesis (block 0).
func NewChainSim(salt string) *ChainSim {
	c := &ChainSim{salt: []byte(salt), number: 1, hashes: map[uint64][]byte{}}
	c.hashes[0] = c.seal(0, nil)
	return c
}

func (c *ChainSim) seal(number uint64, parent []byte) []byte {
	h := sha256.New()
	h.Write(c.salt)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], number)
	h.Write(b[:])
	h.Write(parent)
	return h.Sum(nil)
}

func (c *ChainSim) BlockNumber() uint64 { return c.number }

func (c *ChainSim) ParentHash() []byte {
	h := c.hashes[c.number-1]
	out := make([]byte, len(h))
	copy(out, h)
	return out
}

func (c *ChainSim) BlockHash(number uint64) ([]byte, bool) {
	if number < c.prunedBelow {
		return nil, false
	}
	h, ok := c.hashes[number]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(h))
	copy(out, h)
	return out, true
}

// NextBlock seals the current block and advances the head.
func (c *ChainSim) NextBlock() {
	c.hashes[c.number] = c.seal(c.number, c.hashes[c.number-1])
	c.number++
}

// Fork returns a competing chain sharing all history sealed so far. The new
// salt makes every block sealed after the fork differ from the original.
func (c *ChainSim) Fork(salt string) *ChainSim {
	hashes := make(map[uint64][]byte, len(c.hashes))
	for number, h := range c.hashes {
		out := make([]byte, len(h))
		copy(out, h)
		hashes[number] = out
	}
	return &ChainSim{
		salt:        []byte(salt),
		number:      c.number,
		hashes:      hashes,
		prunedBelow: c.prunedBelow,
	}
}

// PruneBlocksBelow forgets the hashes of all blocks before number,
// simulating a host that only retains recent history.
func (c *ChainSim) PruneBlocksBelow(number uint64) {
	for n := c.prunedBelow; n < number; n++ {
		delete(c.hashes, n)
	}
	c.prunedBelow = number
}
