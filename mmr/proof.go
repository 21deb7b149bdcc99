package mmr

// IndexStoreGetter provides read access to the hash of the node at index i.
type IndexStoreGetter interface {
	Get(i uint64) ([]byte, error)
}

// IndexProofPath collects the sibling path proving inclusion of node i under
// its local peak, for the mmr of the provided size. It also returns the
// index of that local peak and the height index of node i, which callers
// need to locate the peak within the accumulator.
//
// For i=15 with mmrSize 26 the path is [H(16), H(20)]: the local peak is 21,
// and given the value at 15 only the hashes at 16 and then 20 are needed to
// reproduce it.
//
//	3              14
//	             /    \
//	            /      \
//	           /        \
//	          /          \
//	2        6            13           21
//	       /   \        /    \
//	1     2     5      9     12     17     20     24
//	     / \   / \    / \   /  \   /  \
//	0   0   1 3   4  7   8 10  11 15  16 18  19 22  23   25
func IndexProofPath(mmrSize uint64, store IndexStoreGetter, i uint64) ([][]byte, uint64, uint64, error) {

	var iSibling uint64
	var iLocalPeak uint64

	var proof [][]byte
	// starting at the node's own height allows proofs of interior nodes
	heightIndex := IndexHeight(i)

	for { // iSibling reaching past the size is guaranteed to break the loop

		iLocalPeak = i

		if IndexHeight(i+1) > heightIndex {
			// i is a right sibling, its parent is the next node
			iSibling = i - SiblingOffset(heightIndex)
			i += 1
		} else {
			iSibling = i + SiblingOffset(heightIndex)
			i += 2 << heightIndex
		}

		if iSibling >= mmrSize {
			return proof, iLocalPeak, heightIndex, nil
		}

		value, err := store.Get(iSibling)
		if err != nil {
			return nil, 0, heightIndex, err
		}
		proof = append(proof, value)

		heightIndex += 1
	}
}

// IndexProof is a convenience for IndexProofPath when the local peak details
// are not required by the caller.
func IndexProof(mmrSize uint64, store IndexStoreGetter, i uint64) ([][]byte, error) {
	proof, _, _, err := IndexProofPath(mmrSize, store, i)
	return proof, err
}
