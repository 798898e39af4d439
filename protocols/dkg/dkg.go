// Package dkg implements distributed key generation between the
// centralized party and the decentralized committee (spec.md §4.7 DKG):
// each side samples its own additive share of the joint ECDSA key, the
// centralized party's share is bound to a commit/decommit exchange
// proving knowledge of its discrete log, and the committee's share is
// bound by the aggregation sub-protocol (pkg/maurer/aggregation) to a
// proof of knowledge of an encryption-of-discrete-log statement over its
// Paillier-encrypted share. Neither side ever learns the other's secret
// share; both converge on the same joint public key.
package dkg

import (
	"errors"

	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
)

// ErrWrongDecommitment is returned when the centralized party's revealed
// public key share and commit randomness do not match its earlier
// commitment.
var ErrWrongDecommitment = errors.New("dkg: centralized decommitment does not match commitment")

// CentralizedCommitment is the first message the centralized party sends:
// a binding digest over its (still-hidden) public key share.
type CentralizedCommitment struct {
	Digest []byte
}

// CentralizedDecommitment reveals the centralized party's public key
// share together with a proof of knowledge of its discrete log, plus the
// randomness needed to recompute the earlier commitment digest.
type CentralizedDecommitment struct {
	PublicKeyShare   []byte
	CommitRandomness []byte
	ProofCommitments [][]byte
	ProofResponses   [][]byte
}

// centralizedCommitValue is the value absorbed into the transcript commitment
// the centralized party's first message commits to.
type centralizedCommitValue struct {
	PublicKeyShare []byte
	Randomness     []byte
}

// CommitteeOutput is what the decentralized committee hands to the
// centralized party once its internal aggregation finishes: the
// aggregated encryption-of-discrete-log statement and proof.
type CommitteeOutput struct {
	Statement        []byte
	ProofCommitments [][]byte
	ProofResponses   [][]byte
}

// Output is the centralized party's final view of a completed DKG run.
type Output struct {
	SecretKeyShare                    *curve.Scalar
	PublicKeyShare                    *curve.Point
	EncryptedDecentralizedSecretShare group.Element
	PublicKey                         *curve.Point
}

// DecentralizedOutput is the committee's final view of a completed DKG
// run: every member shares the same joint public key and the aggregated
// ciphertext of the committee's summed share, but no member alone ever
// sees the plaintext decentralized share -- SecretKeyShare is only this
// member's own additive contribution. CentralizedPublicKeyShare and
// EncryptedSecretKeyShare are carried forward because presign and sign
// verify against them (spec.md §4.7).
type DecentralizedOutput struct {
	SecretKeyShare            *curve.Scalar
	PublicKey                 *curve.Point
	CentralizedPublicKeyShare *curve.Point
	EncryptedSecretKeyShare   group.Element
}
