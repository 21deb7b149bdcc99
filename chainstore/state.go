package chainstore

import (
	"encoding/binary"
	"fmt"

	"github.com/datatrails/go-datatrails-mmrchain/kvstore"
)

const (
	statePeakPrefix   = "v1/mmrchain/peaks/"
	stateLeafCountKey = "v1/mmrchain/leafcount"
)

var (
	errStateCorrupt = fmt.Errorf("the durable mmr state is corrupt")
)

// State is the durable, consensus critical portion of the mmr: the leaf
// count and the digests of the current peaks, nothing else. Everything
// beneath the peaks lives only in the external content store.
//
// Peak entries are keyed by big endian position so that an ordered key scan
// recovers the peaks in ascending position order.
type State struct {
	kv kvstore.Store
}

func NewState(kv kvstore.Store) *State {
	return &State{kv: kv}
}

func peakKey(i uint64) []byte {
	key := make([]byte, 0, len(statePeakPrefix)+8)
	key = append(key, statePeakPrefix...)
	return binary.BigEndian.AppendUint64(key, i)
}

// LeafCount returns the number of leaves appended so far. A store with no
// recorded count is an empty mmr.
func (s *State) LeafCount() (uint64, error) {
	value, err := s.kv.Get([]byte(stateLeafCountKey))
	if err != nil {
		return 0, err
	}
	if value == nil {
		return 0, nil
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("%w: leaf count is %d bytes", errStateCorrupt, len(value))
	}
	return binary.BigEndian.Uint64(value), nil
}

func (s *State) setLeafCount(count uint64) error {
	return s.kv.Put([]byte(stateLeafCountKey), binary.BigEndian.AppendUint64(nil, count))
}

// PeakHash returns the digest recorded for the peak at position i, or nil if
// no peak is recorded there.
func (s *State) PeakHash(i uint64) ([]byte, error) {
	return s.kv.Get(peakKey(i))
}

func (s *State) setPeak(i uint64, digest []byte) error {
	return s.kv.Put(peakKey(i), digest)
}

func (s *State) removePeak(i uint64) error {
	return s.kv.Delete(peakKey(i))
}

// PeakPositions returns the positions of all recorded peaks in ascending
// order.
func (s *State) PeakPositions() ([]uint64, error) {
	keys, err := s.kv.Keys([]byte(statePeakPrefix))
	if err != nil {
		return nil, err
	}
	var positions []uint64
	for _, key := range keys {
		if len(key) != len(statePeakPrefix)+8 {
			return nil, fmt.Errorf("%w: malformed peak key %x", errStateCorrupt, key)
		}
		positions = append(positions, binary.BigEndian.Uint64(key[len(statePeakPrefix):]))
	}
	return positions, nil
}
