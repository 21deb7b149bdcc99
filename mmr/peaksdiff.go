package mmr

// PeaksDiff computes the minimal storage changes implied by growing an mmr
// from oldSize to newSize: the previously recorded peaks that are now
// subsumed under a larger mountain (and can be pruned), and the new peaks
// that must be recorded.
//
// Both peak lists are ascending, and growth can only replace a *suffix* of
// the old accumulator: the large mountains at the front are untouched until
// enough leaves accumulate to merge them. So the diff is obtained by
// dropping the common ascending prefix from both lists.
//
// oldSize 0 yields no peaks to prune, which deals with the very first
// append. Both returned slices share backing arrays with freshly computed
// peak lists and are safe to consume destructively.
func PeaksDiff(oldSize, newSize uint64) ([]uint64, []uint64) {
	before := Peaks(oldSize)
	after := Peaks(newSize)

	i := 0
	for i < len(before) && i < len(after) && before[i] == after[i] {
		i++
	}
	return before[i:], after[i:]
}
