package mmr

// The height encoding tricks in this file all rest on the same observation:
// counting positions from 1, the left most node at any height has 'all ones'
// in its binary representation, and the number of ones is the height plus one.

// JumpLeftPerfect moves pos left by the size of the largest perfect tree that
// precedes it. Iterating this discovers the left most node at the same height
// as pos, without ever materializing the tree.
//
//	3            15
//	           /    \
//	          /      \
//	         /        \
//	2       7          14
//	      /   \       /   \
//	1    3     6    10     13      18
//	    / \  /  \   / \   /  \    /  \
//	0  1   2 4   5 8   9 11   12 16   17
//
// JumpLeftPerfect(13) is 6, because the perfect tree preceding 13 has size 7.
// JumpLeftPerfect(6) is then 3, which is 'all ones', and its bit length less
// one is the height.
//
// Note that pos is the *one based* position, not the zero based index.
func JumpLeftPerfect(pos uint64) uint64 {
	mostSignificantBit := uint64(1) << (BitLength64(pos) - 1)
	return pos - (mostSignificantBit - 1)
}

// PosHeight returns the tree height of the *one based* position pos.
func PosHeight(pos uint64) uint64 {
	for !AllOnes(pos) {
		pos = JumpLeftPerfect(pos)
	}
	return BitLength64(pos) - 1
}

// IndexHeight returns the tree height of the mmr index i.
func IndexHeight(i uint64) uint64 {
	// convert to the 1 based position, the encoding doesn't work out otherwise
	return PosHeight(i + 1)
}

// SiblingOffset returns the distance to the sibling node at the given height
// index. The 0 based height means we start the shift at 2 rather than 1.
func SiblingOffset(heightIndex uint64) uint64 {
	return (2 << heightIndex) - 1
}
