// Package presign implements message-independent presignature generation
// (spec.md §4.7 Presign): the centralized party commits to a batch of
// nonce shares, the committee proves its own batch of masks and nonces
// are correctly related to the committee's encrypted key share, and both
// sides end up holding a row of `Presign` material per batch entry that
// Sign later consumes.
package presign

import (
	"errors"

	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
)

// ErrBatchSizeMismatch is returned by the centralized party's proof
// verification round when the committee's batch does not match the size
// committed to in the commitment round.
var ErrBatchSizeMismatch = errors.New("presign: batch size mismatch between centralized and decentralized output")

// decommitLabel domain-separates the Pedersen setup the centralized
// party's nonce commitments and batched knowledge-of-decommitment proof
// run over.
const decommitLabel = "presign nonce commitment"

// NonceCommitmentScheme is the shared base-generator Pedersen setup the
// centralized party commits its nonce shares under. Sign reuses the same
// setup: its committment-of-discrete-log and ratio proofs must reopen
// these exact commitments, and its consistency check relates them to the
// coefficient commitments by point arithmetic (spec.md §4.7 Sign step 2),
// which only works when all of them share one generator pair.
func NonceCommitmentScheme() *commitment.PedersenPublicParameters {
	return commitment.NewPedersenWithBaseGenerator(decommitLabel)
}

// CentralizedCommitment is the batched first message: one Pedersen
// commitment per row plus a single aggregated knowledge-of-decommitment
// proof spanning the whole batch.
type CentralizedCommitment struct {
	Commitments      [][]byte
	ProofCommitments [][]byte
	ProofResponses   [][]byte
}

// DecentralizedOutput is the committee's batched response: per-row
// encrypted masks, masked key shares, nonces and masked nonces, plus the
// two aggregated enhanced proofs binding them to the DKG-time encrypted
// decentralized key share and to the generator (spec.md §4.7 "matches
// batch sizes"). The third, nonce-masking aggregation's proof stays
// internal to the committee; its statement travels as
// EncryptedMaskedNonces, tied to EncryptedNonces by ciphertext equality
// checked in FinalizeCommittee.
type DecentralizedOutput struct {
	EncryptedMasks           []group.Element
	EncryptedMaskedKeyShares []group.Element
	NoncePublicShares        []group.Element
	EncryptedNonces          []group.Element
	EncryptedMaskedNonces    []group.Element

	TupleProofCommitments [][]byte
	TupleProofResponses   [][]byte

	DlogProofCommitments [][]byte
	DlogProofResponses   [][]byte
}

// Row is the shared-shape half of one presignature: the material both
// sides agree on once a presign run completes.
type Row struct {
	NoncePublicShare        group.Element
	EncryptedMask           group.Element
	EncryptedMaskedKeyShare group.Element
	EncryptedMaskedNonce    group.Element
}

// CentralizedRow additionally carries the secret nonce share only the
// centralized party ever sees in the clear, plus the randomness its
// commitment round bound that share under -- Sign needs both to reopen
// the commitment inside its proofs.
type CentralizedRow struct {
	Row
	NonceShare       *curve.Scalar
	CommitRandomness *curve.Scalar
}

// DecentralizedRow is one committee member's per-row view after a
// completed presign run: the shared row material plus the centralized
// party's nonce commitment for this row, kept so Sign can verify the
// centralized party reuses the same committed nonce share
// (spec.md §4.7 Sign step 2).
type DecentralizedRow struct {
	Row
	CentralizedNonceCommitment *curve.Point
}
