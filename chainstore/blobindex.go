package chainstore

import (
	"context"
	"fmt"
	"io"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

// indexBlobStore is the narrow view of azblob.Storer the index needs.
type indexBlobStore interface {
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)
	Put(
		ctx context.Context,
		identity string,
		source io.ReadSeekCloser,
		opts ...azblob.Option,
	) (*azblob.WriteResponse, error)
}

// BlobIndexStore keeps the external node index in blob storage, one blob per
// record. Record keys already commit to the fork and node position, so blobs
// are written once and never updated; last-writer-wins on a re-execution of
// the same block is harmless because the content is identical.
type BlobIndexStore struct {
	log    logger.Logger
	store  indexBlobStore
	prefix string
}

func NewBlobIndexStore(log logger.Logger, store indexBlobStore, prefix string) *BlobIndexStore {
	return &BlobIndexStore{log: log, store: store, prefix: prefix}
}

// blobPath renders a record key as a blob identity. Keys carry raw hash
// bytes so they are hex encoded into the path.
func (s *BlobIndexStore) blobPath(key []byte) string {
	return fmt.Sprintf("%s%x", s.prefix, key)
}

func (s *BlobIndexStore) Set(ctx context.Context, key []byte, value []byte) error {
	blobPath := s.blobPath(key)
	_, err := s.store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(value))
	if err != nil {
		return err
	}
	s.log.Debugf("stored %d byte record at %s", len(value), blobPath)
	return nil
}

// Get reads the record for key. An absent blob is (nil, nil).
func (s *BlobIndexStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	rr, err := s.store.Reader(ctx, s.blobPath(key))
	if err != nil {
		if IsBlobNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rr.Reader.Close()
	return io.ReadAll(rr.Reader)
}

// Bind fixes a context for use behind the context free IndexWriter and
// IndexReader interfaces the engine consumes.
func (s *BlobIndexStore) Bind(ctx context.Context) BoundBlobIndex {
	return BoundBlobIndex{ctx: ctx, store: s}
}

// BoundBlobIndex adapts a BlobIndexStore to IndexWriter and IndexReader for
// the duration of one context.
type BoundBlobIndex struct {
	ctx   context.Context
	store *BlobIndexStore
}

func (b BoundBlobIndex) Set(key []byte, value []byte) error {
	return b.store.Set(b.ctx, key, value)
}

func (b BoundBlobIndex) Get(key []byte) ([]byte, error) {
	return b.store.Get(b.ctx, key)
}
