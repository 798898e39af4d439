package presign

import (
	"crypto/rand"
	"io"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/protocols/internal/wire"
)

// CentralizedRound1 is the centralized party's entry point for one presign
// batch: it samples batchSize nonce shares and commitment randomnesses and
// batch-proves knowledge of their decommitment (spec.md §4.7 "batch-prove
// knowledge-of-decommitment via Pedersen for all of them").
type CentralizedRound1 struct {
	rng       io.Reader
	batchSize int
}

// StartCentralized begins the centralized party's half of a presign run
// over batchSize rows.
func StartCentralized(rng io.Reader, batchSize int) *CentralizedRound1 {
	if rng == nil {
		rng = rand.Reader
	}
	return &CentralizedRound1{rng: rng, batchSize: batchSize}
}

func (r *CentralizedRound1) Finalize() (*CentralizedRound2, *CentralizedCommitment, error) {
	scheme := NonceCommitmentScheme()
	rows := make([]maurer.Language, r.batchSize)
	langs := make([]*languages.Decommitment, r.batchSize)
	for i := range rows {
		l := languages.NewDecommitment(scheme)
		langs[i] = l
		rows[i] = l
	}
	batch, err := maurer.NewBatch(rows...)
	if err != nil {
		return nil, nil, err
	}

	nonceShares := make([]*curve.Scalar, r.batchSize)
	commitRandomnesses := make([]*curve.Scalar, r.batchSize)
	witnessComponents := make([]group.Element, r.batchSize)
	statements := make([]group.Element, r.batchSize)
	for i := range rows {
		k, err := curve.SampleScalar(r.rng)
		if err != nil {
			return nil, nil, err
		}
		rr, err := curve.SampleScalar(r.rng)
		if err != nil {
			return nil, nil, err
		}
		nonceShares[i] = k
		commitRandomnesses[i] = rr
		witness := product.New(curve.WrapScalar(k), curve.WrapScalar(rr))
		witnessComponents[i] = witness
		statement, err := langs[i].Homomorphism(witness)
		if err != nil {
			return nil, nil, err
		}
		statements[i] = statement
	}
	batchWitness := product.New(witnessComponents...)
	batchStatement := product.New(statements...)

	proof, err := maurer.Prove(r.rng, batch, batchWitness, batchStatement)
	if err != nil {
		return nil, nil, err
	}
	proofCommitments, proofResponses := wire.EncodeProof(proof)

	commitments := make([][]byte, r.batchSize)
	for i, s := range statements {
		commitments[i] = s.Value().Bytes()
	}

	return &CentralizedRound2{
			nonceShares:        nonceShares,
			commitRandomnesses: commitRandomnesses,
		}, &CentralizedCommitment{
			Commitments:      commitments,
			ProofCommitments: proofCommitments,
			ProofResponses:   proofResponses,
		}, nil
}

// CentralizedRound2 verifies the committee's batch of proofs and emits
// one CentralizedRow per batch entry (spec.md §4.7 "matches batch sizes;
// emits per-row Presign").
type CentralizedRound2 struct {
	nonceShares        []*curve.Scalar
	commitRandomnesses []*curve.Scalar
}

// Finalize checks the committee's two aggregated enhanced proofs -- that
// its masks and masked key shares are a correctly formed tuple of the
// DKG-time encrypted decentralized key share, and that its encrypted
// nonces encrypt the discrete logs of its published nonce public shares
// -- then pairs each committed nonce share with the committee's matching
// row. The languages here are the same enhanced wrappers the committee
// proved under; anything else would not even share a Fiat-Shamir
// transcript with the proofs being checked.
func (r *CentralizedRound2) Finalize(key ahe.EncryptionKey, encryptedDecentralizedKeyShare group.Element, out *DecentralizedOutput) ([]*CentralizedRow, error) {
	n := len(r.nonceShares)
	if len(out.EncryptedMasks) != n || len(out.EncryptedMaskedKeyShares) != n ||
		len(out.NoncePublicShares) != n || len(out.EncryptedNonces) != n ||
		len(out.EncryptedMaskedNonces) != n {
		return nil, ErrBatchSizeMismatch
	}

	tupleRows := make([]maurer.Language, n)
	tupleStatements := make([]group.Element, n)
	dlogRows := make([]maurer.Language, n)
	dlogStatements := make([]group.Element, n)
	for i := 0; i < n; i++ {
		tupleRows[i] = languages.NewEnhancedEncryptionOfTuple(key, encryptedDecentralizedKeyShare)
		tupleStatements[i] = product.New(out.EncryptedMasks[i], out.EncryptedMaskedKeyShares[i])

		dlogRows[i] = languages.NewEnhancedEncryptionOfDiscreteLog(key)
		dlogStatements[i] = product.New(out.EncryptedNonces[i], out.NoncePublicShares[i])
	}

	tupleBatch, err := maurer.NewBatch(tupleRows...)
	if err != nil {
		return nil, err
	}
	tupleProof, err := wire.DecodeProof(tupleBatch, out.TupleProofCommitments, out.TupleProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(tupleBatch, product.New(tupleStatements...), tupleProof); err != nil {
		return nil, err
	}

	dlogBatch, err := maurer.NewBatch(dlogRows...)
	if err != nil {
		return nil, err
	}
	dlogProof, err := wire.DecodeProof(dlogBatch, out.DlogProofCommitments, out.DlogProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(dlogBatch, product.New(dlogStatements...), dlogProof); err != nil {
		return nil, err
	}

	rows := make([]*CentralizedRow, n)
	for i := range rows {
		rows[i] = &CentralizedRow{
			Row: Row{
				NoncePublicShare:        out.NoncePublicShares[i],
				EncryptedMask:           out.EncryptedMasks[i],
				EncryptedMaskedKeyShare: out.EncryptedMaskedKeyShares[i],
				EncryptedMaskedNonce:    out.EncryptedMaskedNonces[i],
			},
			NonceShare:       r.nonceShares[i],
			CommitRandomness: r.commitRandomnesses[i],
		}
	}
	return rows, nil
}
