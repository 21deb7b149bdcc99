package chainstore

import (
	"github.com/datatrails/go-datatrails-mmrchain/kvstore"
)

// KVIndex serves the external node index from a local key value store. Used
// for hosts that keep the index alongside the chain database, and by tests.
type KVIndex struct {
	KV kvstore.Store
}

func (x KVIndex) Set(key []byte, value []byte) error {
	return x.KV.Put(key, value)
}

func (x KVIndex) Get(key []byte) ([]byte, error) {
	return x.KV.Get(key)
}
