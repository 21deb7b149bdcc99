package mmr

import (
	"encoding/binary"
	"hash"
)

// HashPosPair64 returns H(pos || a || b), resetting the hasher first.
//
// Interior nodes commit to their position so that proofs of inclusion are
// non equivocal: the same pair of child hashes under a different position
// produces a different parent.
func HashPosPair64(hasher hash.Hash, pos uint64, a []byte, b []byte) []byte {
	hasher.Reset()
	hashWriteUint64(hasher, pos)
	hasher.Write(a)
	hasher.Write(b)
	return hasher.Sum(nil)
}

// hashWriteUint64 writes value to the hasher big endian, most significant
// byte first.
func hashWriteUint64(hasher hash.Hash, value uint64) {
	b := [8]byte{}
	binary.BigEndian.PutUint64(b[:], value)
	hasher.Write(b[:])
}
