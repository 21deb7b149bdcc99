package mmr

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeaksDiff(t *testing.T) {
	type args struct {
		oldSize uint64
		newSize uint64
	}
	tests := []struct {
		name      string
		args      args
		wantPrune []uint64
		wantStore []uint64
	}{
		{"first append has nothing to prune", args{0, 1}, nil, []uint64{0}},
		{"second leaf merges the first two mountains", args{1, 3}, []uint64{0}, []uint64{2}},
		{"third leaf leaves the big mountain alone", args{3, 4}, []uint64{}, []uint64{3}},
		{"fourth leaf subsumes two mountains", args{4, 7}, []uint64{2, 3}, []uint64{6}},
		{"fifth leaf opens a new mountain", args{7, 8}, []uint64{}, []uint64{7}},
		{"eighth leaf collapses everything into one peak", args{11, 15}, []uint64{6, 9, 10}, []uint64{14}},
		{"no growth, no change", args{15, 15}, []uint64{}, []uint64{}},
		{"batch growth over several leaves", args{3, 11}, []uint64{2}, []uint64{6, 9, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPrune, gotStore := PeaksDiff(tt.args.oldSize, tt.args.newSize)
			// nil and empty both mean 'no change', don't distinguish them
			assert.ElementsMatch(t, tt.wantPrune, gotPrune, "prune")
			assert.ElementsMatch(t, tt.wantStore, gotStore, "store")
			assert.True(t, sort.SliceIsSorted(gotPrune, func(i, j int) bool { return gotPrune[i] < gotPrune[j] }))
			assert.True(t, sort.SliceIsSorted(gotStore, func(i, j int) bool { return gotStore[i] < gotStore[j] }))
		})
	}
}

// Replaying the diff over a map seeded with the old peaks must produce
// exactly the new peaks, and the prune and store sets must be disjoint.
func TestPeaksDiffReplay(t *testing.T) {
	for leafCount := uint64(0); leafCount < 128; leafCount++ {
		oldSize := SizeForLeafCount(leafCount)
		newSize := SizeForLeafCount(leafCount + 1)

		prune, store := PeaksDiff(oldSize, newSize)

		seen := map[uint64]bool{}
		for _, pos := range prune {
			seen[pos] = true
		}
		for _, pos := range store {
			require.False(t, seen[pos], "leafCount %d: %d in both sets", leafCount, pos)
		}

		m := map[uint64]bool{}
		for _, pos := range Peaks(oldSize) {
			m[pos] = true
		}
		for _, pos := range store {
			m[pos] = true
		}
		for _, pos := range prune {
			delete(m, pos)
		}

		want := map[uint64]bool{}
		for _, pos := range Peaks(newSize) {
			want[pos] = true
		}
		require.Equal(t, want, m, "leafCount %d", leafCount)
	}
}

func TestPeaksDiffBatches(t *testing.T) {
	// diffs for multi leaf batches must replay identically to stepwise diffs
	for _, step := range []uint64{2, 3, 5, 8} {
		for leafCount := uint64(0); leafCount < 64; leafCount += step {
			oldSize := SizeForLeafCount(leafCount)
			newSize := SizeForLeafCount(leafCount + step)
			prune, store := PeaksDiff(oldSize, newSize)

			m := map[uint64]bool{}
			for _, pos := range Peaks(oldSize) {
				m[pos] = true
			}
			for _, pos := range store {
				m[pos] = true
			}
			for _, pos := range prune {
				delete(m, pos)
			}
			want := map[uint64]bool{}
			for _, pos := range Peaks(newSize) {
				want[pos] = true
			}
			require.Equal(t, want, m, fmt.Sprintf("step %d leafCount %d", step, leafCount))
		}
	}
}
