package chainstore

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-mmrchain/kvstore"
	"github.com/datatrails/go-datatrails-mmrchain/mmr"
	"github.com/datatrails/go-datatrails-mmrchain/mmrtesting"
)

// testEnv wires a runtime store over in memory state and index stores,
// driven by a simulated chain. The forest is the block production surface:
// one Push per simulated block.
type testEnv struct {
	tc      *mmrtesting.TestContext
	chain   *mmrtesting.ChainSim
	state   *State
	index   kvstore.Store
	store   *RuntimeStore
	forest  *Forest
	leaves  *mmrtesting.LeafGenerator
	started bool
}

func newTestEnv(t *testing.T, label string) *testEnv {
	tc := mmrtesting.NewTestContext(t, mmrtesting.TestConfig{TestLabelPrefix: label})
	chain := mmrtesting.NewChainSim(label)
	state := NewState(kvstore.NewMemoryStore())
	index := kvstore.NewMemoryStore()
	store := NewRuntimeStore(tc.Log, chain, state, KVIndex{KV: index})
	return &testEnv{
		tc:     tc,
		chain:  chain,
		state:  state,
		index:  index,
		store:  store,
		forest: NewForest(0, store, sha256.New()),
		leaves: mmrtesting.NewLeafGenerator(label),
	}
}

// pushBlocks appends one generated leaf per block for n blocks. The head is
// left on the last block that appended, which is the stance reads are
// specified against.
func (e *testEnv) pushBlocks(t *testing.T, n int) {
	for i := 0; i < n; i++ {
		if e.started {
			e.chain.NextBlock()
		}
		e.started = true
		_, err := e.forest.Push(e.leaves.Next())
		require.NoError(t, err)
	}
}

func (e *testEnv) mustLeafCount(t *testing.T) uint64 {
	leaves, err := e.state.LeafCount()
	require.NoError(t, err)
	return leaves
}

func (e *testEnv) mustPeakPositions(t *testing.T) []uint64 {
	positions, err := e.state.PeakPositions()
	require.NoError(t, err)
	return positions
}

func TestAppendFirstLeaf(t *testing.T) {
	e := newTestEnv(t, "TestAppendFirstLeaf")

	content := []byte("leaf-0")
	parentHash := e.chain.ParentHash()

	pos, err := e.forest.Push(content)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pos)
	assert.Equal(t, uint64(1), e.forest.Size())

	d0 := sha256.Sum256(content)

	// durable state is exactly {0: digest(leaf)} with one leaf counted
	assert.Equal(t, uint64(1), e.mustLeafCount(t))
	assert.Equal(t, []uint64{0}, e.mustPeakPositions(t))
	digest, err := e.state.PeakHash(0)
	require.NoError(t, err)
	assert.Equal(t, d0[:], digest)

	// the full leaf went to the external index under the parent hash
	value, err := e.index.Get(IndexKey(parentHash, 0))
	require.NoError(t, err)
	require.NotNil(t, value)
	node, err := NodeFromCBOR(value)
	require.NoError(t, err)
	leaf, ok := node.LeafContent()
	require.True(t, ok)
	assert.Equal(t, content, leaf)
}

func TestAppendSecondLeafMerges(t *testing.T) {
	e := newTestEnv(t, "TestAppendSecondLeafMerges")
	hasher := sha256.New()

	c0, c1 := []byte("leaf-0"), []byte("leaf-1")
	fork0 := e.chain.ParentHash()

	_, err := e.forest.Push(c0)
	require.NoError(t, err)

	e.chain.NextBlock()
	fork1 := e.chain.ParentHash()
	pos, err := e.forest.Push(c1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), pos)
	assert.Equal(t, uint64(3), e.forest.Size())

	d0 := sha256.Sum256(c0)
	d1 := sha256.Sum256(c1)
	merged := mmr.HashPosPair64(hasher, 3, d0[:], d1[:])

	// peak 0 was pruned, the merge at 2 is the only durable entry
	assert.Equal(t, uint64(2), e.mustLeafCount(t))
	assert.Equal(t, []uint64{2}, e.mustPeakPositions(t))
	digest, err := e.state.PeakHash(2)
	require.NoError(t, err)
	assert.Equal(t, merged, digest)

	// pruning durable state never touches the external records
	for _, probe := range []struct {
		forkKey []byte
		pos     uint64
	}{{fork0, 0}, {fork1, 1}, {fork1, 2}} {
		value, err := e.index.Get(IndexKey(probe.forkKey, probe.pos))
		require.NoError(t, err)
		assert.NotNil(t, value, "external record for position %d must survive pruning", probe.pos)
	}
}

func TestAppendContiguityViolation(t *testing.T) {
	e := newTestEnv(t, "TestAppendContiguityViolation")
	e.pushBlocks(t, 2)

	hasher := sha256.New()
	err := e.store.Append(7, []Node{NewLeafNode(hasher, []byte("gap"))})
	require.ErrorIs(t, err, ErrInconsistentStore)

	// the failed append must leave durable state untouched
	assert.Equal(t, uint64(2), e.mustLeafCount(t))
	assert.Equal(t, []uint64{2}, e.mustPeakPositions(t))
}

func TestAppendEmptyIsNoop(t *testing.T) {
	e := newTestEnv(t, "TestAppendEmptyIsNoop")
	e.pushBlocks(t, 1)

	require.NoError(t, e.store.Append(99, nil))

	assert.Equal(t, uint64(1), e.mustLeafCount(t))
	assert.Equal(t, []uint64{0}, e.mustPeakPositions(t))
	keys, err := e.index.Keys(nil)
	require.NoError(t, err)
	assert.Len(t, keys, 1, "an empty append must not write external records")
}

func TestAppendRequiresExactlyOneLeaf(t *testing.T) {
	e := newTestEnv(t, "TestAppendRequiresExactlyOneLeaf")
	hasher := sha256.New()

	// two full leaves in one batch
	err := e.store.Append(0, []Node{
		NewLeafNode(hasher, []byte("a")),
		NewLeafNode(hasher, []byte("b")),
	})
	require.ErrorIs(t, err, ErrLeafPerBlock)

	// a batch of only interior hashes is equally wrong
	d := sha256.Sum256([]byte("x"))
	err = e.store.Append(0, []Node{NewHashNode(d[:])})
	require.ErrorIs(t, err, ErrLeafPerBlock)

	assert.Equal(t, uint64(0), e.mustLeafCount(t))
	assert.Empty(t, e.mustPeakPositions(t))
}

func TestDurablePeaksMatchAccumulator(t *testing.T) {
	e := newTestEnv(t, "TestDurablePeaksMatchAccumulator")

	for i := 0; i < 64; i++ {
		e.pushBlocks(t, 1)
		require.Equal(t, mmr.Peaks(e.forest.Size()), e.mustPeakPositions(t),
			"after %d leaves the durable keys must be exactly the peaks", i+1)
	}
}

func TestRuntimeStoreGet(t *testing.T) {
	e := newTestEnv(t, "TestRuntimeStoreGet")
	e.pushBlocks(t, 3) // size 4, peaks 2 and 3

	node, err := e.store.Get(2)
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, NodeHash, node.Kind())
	_, ok := node.LeafContent()
	assert.False(t, ok)

	// position 0 was absorbed into the peak at 2 and pruned
	node, err = e.store.Get(0)
	require.NoError(t, err)
	assert.Nil(t, node)
}
