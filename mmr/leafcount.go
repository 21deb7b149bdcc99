package mmr

import "math/bits"

// LeafCount returns the number of leaves in the largest mmr whose size is <=
// the supplied size. See also [PeaksBitmap]. It is only safe to treat the
// result as 'the' leaf count when size is known to be a valid mmr size; if
// in any doubt use FirstMMRSize to normalize first.
func LeafCount(mmrSize uint64) uint64 {
	return PeaksBitmap(mmrSize)
}

// FirstMMRSize returns the first complete mmr size containing the provided
// mmr index. Because adding a leaf back fills the interior nodes it
// completes, the range of valid sizes is not contiguous: the outputs for
// indices 0 through 10 are
//
//	[1, 3, 3, 4, 7, 7, 7, 8, 10, 10, 11]
//
//	2        6
//	       /   \
//	1     2     5      9
//	     / \   / \    / \
//	0   0   1 3   4  7   8 10
func FirstMMRSize(mmrIndex uint64) uint64 {
	i := mmrIndex
	h0 := IndexHeight(i)
	h1 := IndexHeight(i + 1)
	for h0 < h1 {
		i++
		h0 = h1
		h1 = IndexHeight(i + 1)
	}
	return i + 1
}

// LeafIndex returns the index of the leaf whose addition created the node at
// mmrIndex. For a leaf node that is its own leaf index. For an interior node
// it is the index of the leaf whose append back filled it.
func LeafIndex(mmrIndex uint64) uint64 {
	return LeafCount(FirstMMRSize(mmrIndex)) - 1
}

// SizeForLeafCount returns the mmr size resulting from appending leafCount
// leaves. Each leaf adds exactly one node per mountain merge it completes,
// and the mountains correspond to the set bits of the leaf count, so:
//
//	size = leafCount + (leafCount - number of mountains)
func SizeForLeafCount(leafCount uint64) uint64 {
	return 2*leafCount - uint64(bits.OnesCount64(leafCount))
}
