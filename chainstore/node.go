package chainstore

import (
	"errors"
	"hash"

	"github.com/fxamacker/cbor/v2"
)

var (
	ErrNodeRecordInvalid = errors.New("the node record encoding is invalid")
)

// NodeKind tags the two representations a stored node can take. The tag is
// explicit in the wire encoding, there is no implicit coercion between the
// two.
type NodeKind uint8

const (
	// NodeLeaf carries the full application content of a leaf.
	NodeLeaf NodeKind = iota + 1
	// NodeHash carries only the digest, used for interior nodes and for
	// nodes read back from the durable peak map.
	NodeHash
)

// Node is a single mmr node: either a full leaf or an already hashed value.
//
// The digest is computed exactly once, when the node is created, and is
// immutable from then on. Nothing in this package ever re-hashes a node it
// did not create.
type Node struct {
	kind   NodeKind
	leaf   []byte
	digest []byte
}

// NewLeafNode creates a Leaf node for the provided content. The digest is
// taken over the content using the provided hasher, which is reset first.
func NewLeafNode(hasher hash.Hash, content []byte) Node {
	hasher.Reset()
	hasher.Write(content)

	leaf := make([]byte, len(content))
	copy(leaf, content)
	return Node{kind: NodeLeaf, leaf: leaf, digest: hasher.Sum(nil)}
}

// NewHashNode creates a Hash node for an already computed digest.
func NewHashNode(digest []byte) Node {
	d := make([]byte, len(digest))
	copy(d, digest)
	return Node{kind: NodeHash, digest: d}
}

func (n Node) Kind() NodeKind { return n.kind }

func (n Node) IsLeaf() bool { return n.kind == NodeLeaf }

// LeafContent returns the full leaf content. The second return is false for
// Hash nodes, whose content is not retained.
func (n Node) LeafContent() ([]byte, bool) {
	if n.kind != NodeLeaf {
		return nil, false
	}
	return n.leaf, true
}

// Digest returns the canonical digest of the node.
func (n Node) Digest() []byte { return n.digest }

// nodeRecord is the CBOR wire form of a Node. Key-as-int keeps the records
// compact; positions in the external store are written once per node over
// the life of the chain so encoded size matters.
type nodeRecord struct {
	Kind   uint8  `cbor:"1,keyasint"`
	Leaf   []byte `cbor:"2,keyasint,omitempty"`
	Digest []byte `cbor:"3,keyasint"`
}

// MarshalCBOR encodes the node for the external content store.
func (n Node) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(nodeRecord{Kind: uint8(n.kind), Leaf: n.leaf, Digest: n.digest})
}

// NodeFromCBOR decodes a node previously written by MarshalCBOR.
func NodeFromCBOR(data []byte) (Node, error) {
	var rec nodeRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return Node{}, err
	}
	kind := NodeKind(rec.Kind)
	if kind != NodeLeaf && kind != NodeHash {
		return Node{}, ErrNodeRecordInvalid
	}
	if len(rec.Digest) == 0 {
		return Node{}, ErrNodeRecordInvalid
	}
	if kind == NodeHash && rec.Leaf != nil {
		return Node{}, ErrNodeRecordInvalid
	}
	return Node{kind: kind, leaf: rec.Leaf, digest: rec.Digest}, nil
}
