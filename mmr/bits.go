package mmr

import "math/bits"

func BitLength64(num uint64) uint64 {
	return uint64(bits.Len64(num))
}

// AllOnes is true when every bit below the most significant set bit is also
// set. Positions with this property are the left most (and highest) peaks.
func AllOnes(num uint64) bool {
	return (1<<bits.OnesCount64(num) - 1) == num
}
