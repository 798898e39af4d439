package dkg

import (
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/pkg/maurer/aggregation"
	"github.com/luxfi/ahe2pc/protocols/internal/wire"
)

// CommitteeShare is this member's additive secret key share, populated
// by StartCommittee before it returns. It
// exists because aggregation.Round1 only carries the witness forward
// internally; the committee member's plaintext share is otherwise never
// surfaced until FinalizeCommittee needs it to build the DecentralizedOutput.
type CommitteeShare struct {
	Xi *curve.Scalar
}

// StartCommittee begins one committee member's contribution to the
// decentralized half of DKG: it samples this member's additive secret key
// share and Paillier encryption randomness, then enters the aggregation
// sub-protocol (pkg/maurer/aggregation) proving knowledge of an enhanced
// encryption-of-discrete-log statement over the two (spec.md §4.7
// "decentralized committee jointly proves a distributed
// enhanced-Schnorr proof of knowledge of an encryption of its aggregate
// secret key share"). share.Xi is filled in as soon as this function
// returns.
func StartCommittee(helper *round.Helper, key ahe.EncryptionKey, rng io.Reader, share *CommitteeShare) (*aggregation.Round1, error) {
	lang := languages.NewEnhancedEncryptionOfDiscreteLog(key)

	xi, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	eta, err := lang.SampleUnbounded(rng)
	if err != nil {
		return nil, err
	}
	share.Xi = xi
	witness := lang.WitnessFromSecrets([]*saferith.Nat{new(saferith.Nat).SetBytes(xi.Bytes())}, eta)

	r1, err := aggregation.Start(helper, lang, witness, rng)
	if err != nil {
		return nil, err
	}
	return r1, nil
}

// FinalizeCommittee is run by a committee member once its MultiHandler
// driving StartCommittee's aggregation has produced agg, and once it has
// received the centralized party's commitment digest and decommitment.
// It verifies the centralized party kept its word, derives the joint
// public key, and packages agg for transmission back to the centralized
// party as a CommitteeOutput.
func FinalizeCommittee(
	agg *aggregation.Output,
	share *CommitteeShare,
	digest *commitment.TranscriptCommitment,
	decommit *CentralizedDecommitment,
) (*DecentralizedOutput, *CommitteeOutput, error) {
	ok, err := digest.Verify(commitLabel, &centralizedCommitValue{
		PublicKeyShare: decommit.PublicKeyShare,
		Randomness:     decommit.CommitRandomness,
	})
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrWrongDecommitment
	}

	centralizedPoint, err := curve.NewPointFromBytes(decommit.PublicKeyShare)
	if err != nil {
		return nil, nil, err
	}
	proof, err := wire.DecodeProof(languages.DiscreteLog{}, decommit.ProofCommitments, decommit.ProofResponses)
	if err != nil {
		return nil, nil, err
	}
	if err := maurer.Verify(languages.DiscreteLog{}, curve.WrapPoint(centralizedPoint), proof); err != nil {
		return nil, nil, err
	}

	p, ok := agg.AggregatedStatement.(*product.Element)
	if !ok || len(p.Components) != 2 {
		return nil, nil, maurer.ErrInvalidProof
	}
	decentralizedPoint, ok := p.At(1).(*curve.PointElement)
	if !ok {
		return nil, nil, maurer.ErrInvalidProof
	}
	jointPublicKey := centralizedPoint.Add(decentralizedPoint.Inner())

	commitments, responses := wire.EncodeProof(agg.Proof)
	committeeOutput := &CommitteeOutput{
		Statement:        agg.AggregatedStatement.Value().Bytes(),
		ProofCommitments: commitments,
		ProofResponses:   responses,
	}

	return &DecentralizedOutput{
		SecretKeyShare:            share.Xi,
		PublicKey:                 jointPublicKey,
		CentralizedPublicKeyShare: centralizedPoint,
		EncryptedSecretKeyShare:   p.At(0),
	}, committeeOutput, nil
}
