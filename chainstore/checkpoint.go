package chainstore

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/ldclabs/cose/go/cwt"
	"github.com/veraison/go-cose"
)

var (
	ErrCurveNotSupported = errors.New("curve not supported")
)

// Checkpoint commits to the state of the mmr at a specific size. Note that
// all subsequent states whose size is *greater* can efficiently reproduce
// this root, so a signed checkpoint stays verifiable as the mmr grows.
type Checkpoint struct {
	MMRSize uint64 `cbor:"1,keyasint"`
	Root    []byte `cbor:"2,keyasint"`
	// Timestamp is the unix time read at the time the root was signed.
	// Including it allows for the same root to be re-signed.
	Timestamp int64 `cbor:"3,keyasint"`
}

type CheckpointSigner struct {
	cborCodec   dtcbor.CBORCodec
	coseHeaders cose.Headers
	coseSigner  cose.Signer
}

type CheckpointSignerConfig struct {
	Issuer        string
	Subject       string
	KeyIdentifier string
}

func NewCheckpointSignerForECPrivateKey(
	cfg CheckpointSignerConfig, key ecdsa.PrivateKey) (CheckpointSigner, error) {

	alg, err := CoseAlgForEC(key.PublicKey)
	if err != nil {
		return CheckpointSigner{}, err
	}

	cnfClaim := newCNFClaim(cfg.Issuer, cfg.Subject, cfg.KeyIdentifier, alg, key.PublicKey)

	codec, err := NewCheckpointCodec()
	if err != nil {
		return CheckpointSigner{}, err
	}

	signer, err := cose.NewSigner(alg, &key)
	if err != nil {
		return CheckpointSigner{}, err
	}

	cs := CheckpointSigner{
		cborCodec: codec,
		coseHeaders: cose.Headers{
			Protected: cose.ProtectedHeader{
				dtcose.HeaderLabelCWTClaims: cnfClaim,
			},
		},
		coseSigner: signer,
	}
	return cs, nil
}

// Sign1 signs the checkpoint as a COSE Sign1 message. The root is detached
// after signing so that verifiers are forced to recover it from the mmr at
// the checkpointed size.
func (cs CheckpointSigner) Sign1(state Checkpoint, external []byte) ([]byte, error) {
	payload, err := cs.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cs.coseHeaders,
		Payload: payload,
	}
	err = msg.Sign(rand.Reader, external, cs.coseSigner)
	if err != nil {
		return nil, err
	}

	state.Root = nil
	payload, err = cs.cborCodec.MarshalCBOR(state)
	if err != nil {
		return nil, err
	}
	msg.Payload = payload

	return msg.MarshalCBOR()
}

// CoseAlgForEC returns the appropriate algorithm for the provided public
// key curve or an error if the curve is not supported.
//
// Noting that: "In order to promote interoperability, it is suggested that
// SHA-256 be used only with curve P-256, SHA-384 be used only with curve P-384,
// and SHA-512 be used with curve P-521." -- rfc 8152 & sec 4, 5480
func CoseAlgForEC(pub ecdsa.PublicKey) (cose.Algorithm, error) {

	switch pub.Curve.Params().Name {
	case "P-256":
		return cose.AlgorithmES256, nil
	case "P-384":
		return cose.AlgorithmES384, nil
	case "P-521":
		return cose.AlgorithmES512, nil
	default:
		return 0, fmt.Errorf("%s: %w", pub.Curve.Params().Name, ErrCurveNotSupported)
	}
}

func newCNFClaim(
	issuer string, subject string, kid string, alg cose.Algorithm,
	pub ecdsa.PublicKey) map[int64]interface{} {

	claim := map[int64]interface{}{
		dtcose.CoseKeyLabel: map[int64]interface{}{
			dtcose.KeyIDLabel:     kid,
			dtcose.KeyTypeLabel:   "EC",
			dtcose.AlgorithmLabel: alg,
			dtcose.ECCurveLabel:   pub.Curve.Params().Name,
			dtcose.ECXLabel:       pub.X.Bytes(),
			dtcose.ECYLabel:       pub.Y.Bytes(),
		},
	}
	return map[int64]interface{}{
		int64(cwt.KeyIss): issuer,
		int64(cwt.KeySub): subject,
		dtcose.CNFLabel:   claim,
	}
}

func NewCheckpointCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

func newCheckpointDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}

type publicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// DecodeSignedCheckpoint decodes the Checkpoint values from the signed
// message. See VerifySignedCheckpoint for how to verify the result.
func DecodeSignedCheckpoint(
	codec dtcbor.CBORCodec, msg []byte,
) (*dtcose.CoseSign1Message, Checkpoint, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg, newCheckpointDecOptions()...)
	if err != nil {
		return nil, Checkpoint{}, err
	}

	var unverified Checkpoint
	err = codec.UnmarshalInto(signed.Payload, &unverified)
	if err != nil {
		return nil, Checkpoint{}, err
	}
	return signed, unverified, nil
}

// VerifySignedCheckpoint applies the provided state to the signed message
// and verifies the result.
//
// The root is detached from the message before publication, so verification
// is a 3 step process:
//  1. DecodeSignedCheckpoint to obtain the Checkpoint. This state will not
//     verify as the root was removed after signing.
//  2. Recover the root of the mmr at Checkpoint.MMRSize.
//  3. Set the recovered root on the Checkpoint and call this function.
func VerifySignedCheckpoint(
	codec dtcbor.CBORCodec, keyProvider publicKeyProvider,
	signed *dtcose.CoseSign1Message, unverified Checkpoint, external []byte) error {

	var err error
	signed.Payload, err = codec.MarshalCBOR(unverified)
	if err != nil {
		return err
	}
	return signed.VerifyWithProvider(keyProvider, external)
}
