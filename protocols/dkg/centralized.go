package dkg

import (
	"crypto/rand"
	"io"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/protocols/internal/wire"
)

// commitLabel is the domain label bound into the centralized party's
// commit-round transcript commitment.
const commitLabel = "DKG commitment round of centralized party"

// CentralizedRound1 is the centralized party's entry point: it samples
// its additive secret key share and commits to the resulting public key
// share without yet revealing it (spec.md §4.7 "centralized party commits
// to its public key share").
type CentralizedRound1 struct {
	rng io.Reader
}

// StartCentralized begins the centralized party's half of a DKG run.
func StartCentralized(rng io.Reader) *CentralizedRound1 {
	if rng == nil {
		rng = rand.Reader
	}
	return &CentralizedRound1{rng: rng}
}

// Finalize samples the centralized secret key share and returns the
// commitment to send to the committee, alongside the next step.
func (r *CentralizedRound1) Finalize() (*CentralizedRound2, *CentralizedCommitment, error) {
	secretKeyShare, err := curve.SampleScalar(r.rng)
	if err != nil {
		return nil, nil, err
	}
	commitRandomness := make([]byte, 32)
	if _, err := io.ReadFull(r.rng, commitRandomness); err != nil {
		return nil, nil, err
	}
	publicKeyShare := curve.Generator().ScalarMul(secretKeyShare)

	digest, err := commitment.CommitTranscript(commitLabel, &centralizedCommitValue{
		PublicKeyShare: publicKeyShare.Bytes(),
		Randomness:     commitRandomness,
	})
	if err != nil {
		return nil, nil, err
	}

	return &CentralizedRound2{
			rng:              r.rng,
			secretKeyShare:   secretKeyShare,
			publicKeyShare:   publicKeyShare,
			commitRandomness: commitRandomness,
		}, &CentralizedCommitment{
			Digest: digest.Digest,
		}, nil
}

// CentralizedRound2 proves knowledge of the discrete log of its now-fixed
// public key share before revealing it.
type CentralizedRound2 struct {
	rng              io.Reader
	secretKeyShare   *curve.Scalar
	publicKeyShare   *curve.Point
	commitRandomness []byte
}

// Finalize produces the decommitment (public key share, commit
// randomness, and a proof of knowledge of the discrete log) to send to
// the committee.
func (r *CentralizedRound2) Finalize() (*CentralizedRound3, *CentralizedDecommitment, error) {
	proof, err := maurer.Prove(r.rng, languages.DiscreteLog{},
		curve.WrapScalar(r.secretKeyShare), curve.WrapPoint(r.publicKeyShare))
	if err != nil {
		return nil, nil, err
	}
	commitments, responses := wire.EncodeProof(proof)

	return &CentralizedRound3{
			secretKeyShare: r.secretKeyShare,
			publicKeyShare: r.publicKeyShare,
		}, &CentralizedDecommitment{
			PublicKeyShare:   r.publicKeyShare.Bytes(),
			CommitRandomness: r.commitRandomness,
			ProofCommitments: commitments,
			ProofResponses:   responses,
		}, nil
}

// CentralizedRound3 verifies the committee's encryption-of-discrete-log
// proof and derives the joint outputs.
type CentralizedRound3 struct {
	secretKeyShare *curve.Scalar
	publicKeyShare *curve.Point
}

// Finalize checks out, the committee's proof that its statement encrypts
// the discrete log of its public key share component, and computes the
// joint public key and the ciphertext the centralized party will use to
// homomorphically combine partial signatures with the committee's share
// (spec.md §4.7 "the centralized party never learns the decentralized
// secret key share, only its encryption and the joint public key").
func (r *CentralizedRound3) Finalize(key ahe.EncryptionKey, out *CommitteeOutput) (*Output, error) {
	lang := languages.NewEnhancedEncryptionOfDiscreteLog(key)

	statement, err := lang.DecodeStatement(out.Statement)
	if err != nil {
		return nil, err
	}
	proof, err := wire.DecodeProof(lang, out.ProofCommitments, out.ProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(lang, statement, proof); err != nil {
		return nil, err
	}

	p, ok := statement.(*product.Element)
	if !ok || len(p.Components) != 2 {
		return nil, maurer.ErrInvalidProof
	}
	encryptedShare := p.At(0)
	decentralizedPoint, ok := p.At(1).(*curve.PointElement)
	if !ok {
		return nil, maurer.ErrInvalidProof
	}

	jointPublicKey := r.publicKeyShare.Add(decentralizedPoint.Inner())

	return &Output{
		SecretKeyShare:                    r.secretKeyShare,
		PublicKeyShare:                    r.publicKeyShare,
		EncryptedDecentralizedSecretShare: encryptedShare,
		PublicKey:                         jointPublicKey,
	}, nil
}
