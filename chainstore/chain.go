package chainstore

// Chain provides the host chain details the engine depends on. The engine
// never walks headers itself; it relies on the host for the current height
// and for the retained history of block hashes.
//
// Implementations are assumed correct per the host's own contract. The only
// permitted failure is an unretained historical hash, reported through the
// boolean return of BlockHash.
type Chain interface {
	// BlockNumber returns the height of the block currently being
	// processed (or, for read only contexts, the height the state being
	// read was produced at).
	BlockNumber() uint64

	// ParentHash returns the hash of the parent of the current block.
	ParentHash() []byte

	// BlockHash returns the hash of the block at the given height. The
	// second return is false when the host has pruned that deep history;
	// callers must treat that as 'unavailable', never as corruption.
	BlockHash(number uint64) ([]byte, bool)
}
