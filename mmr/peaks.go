package mmr

import (
	"math/bits"
)

// Peaks returns the mmr indices of the mountain peaks for the mmr of the
// provided size. The peaks are completely determined by the size, and the
// returned indices are strictly ascending. The highest mountain has the
// lowest index, because the smaller 'down range' mountains can only form to
// the right of the first perfect peak, and so on recursively.
//
// A nil return indicates the size is 0 or is not a valid mmr size. Sizes
// which would leave a pair of siblings without their parent are invalid: a
// leaf append always back fills the nodes that complete the mountains it
// closes, so such sizes can never be observed on a well formed mmr.
//
// For the mmr with size 19 the peaks are [14, 17, 18]
//
//	          14
//	       /       \
//	     6          13
//	   /   \       /   \
//	  2     5     9     12     17
//	 / \   /  \  / \   /  \   /  \
//	0   1 3   4 7   8 10  11 15  16 18
func Peaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 {
		return nil
	}

	// sizes where a sibling exists without its parent are invalid
	if PosHeight(mmrSize+1) > PosHeight(mmrSize) {
		return nil
	}

	var peaks []uint64
	sum := uint64(0)
	for mmrSize != 0 {
		// TopPeak finds the ^2 floor of the remaining size, which is the
		// size (and also the relative position) of the largest remaining
		// mountain. Accumulating the sizes as we go recovers the position in
		// the original mmr, and subtracting one converts it to an index.
		peakSize := TopPeak(mmrSize)
		sum += peakSize
		peaks = append(peaks, sum-1)
		mmrSize -= peakSize
	}
	return peaks
}

// PeakHashes returns a copy of the current accumulator: the hashes of the
// peaks of the mmr of the provided size, in the same ascending position
// order returned by Peaks.
func PeakHashes(store IndexStoreGetter, mmrSize uint64) ([][]byte, error) {
	var peaks [][]byte
	for _, i := range Peaks(mmrSize) {
		stored, err := store.Get(i)
		if err != nil {
			return nil, err
		}

		// copy so the caller can't be broken by subsequent store mutation
		value := make([]byte, len(stored))
		copy(value, stored)
		peaks = append(peaks, value)
	}
	return peaks, nil
}

// TopPeak returns the size of the largest perfect mountain contained in, or
// exactly equal to, s. It is a ^2 floor over the 'all ones' position values:
//
//	TopPeak(1) = TopPeak(2) = 1
//	TopPeak(3) = TopPeak(4) = TopPeak(5) = TopPeak(6) = 3
//	TopPeak(7) = 7
func TopPeak(s uint64) uint64 {
	return 1<<(BitLength64(s+1)-1) - 1
}

// PeaksBitmap returns a mask in which each set bit corresponds to a peak,
// and the bit position is the height of that peak. Due to the binary nature
// of the tree, the resulting value is also the leaf count.
//
// PeaksBitmap(19) is 0b1011: reading from the low bit, there is a peak at
// height 0, a peak at height 1, and the final peak at height 3. If the size
// is not a valid mmr size, the map is for the largest valid size less than
// the provided size.
func PeaksBitmap(mmrSize uint64) uint64 {
	if mmrSize == 0 {
		return 0
	}
	pos := mmrSize
	peakSize := (uint64(1) << bits.Len64(mmrSize)) - 1
	peakMap := uint64(0)
	for peakSize > 0 {
		peakMap <<= 1
		if pos >= peakSize {
			pos -= peakSize
			peakMap |= 1
		}
		peakSize >>= 1
	}
	return peakMap
}
