package presign

import (
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/group/zstar"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/pkg/maurer/aggregation"
	"github.com/luxfi/ahe2pc/protocols/internal/wire"
)

// NonceSecrets holds, per batch row, this committee member's own nonce
// share and the Paillier randomness it was encrypted under in
// StartNonceDiscreteLogAggregation. StartNonceMaskingAggregation reuses
// both unchanged rather than resampling them, tying its masked-nonce
// ciphertext to the exact same encryption the discrete-log proof already
// committed to (spec.md §4.7 nonce-masking round).
type NonceSecrets struct {
	Nonces    []*saferith.Nat
	NonceEtas []*zstar.Element
}

// VerifyCentralizedCommitment checks the centralized party's batched
// knowledge-of-decommitment proof against its published nonce commitments
// and returns those commitments as curve points, one per row. Committee
// members hold on to them: Sign's consistency check later relates them to
// the coefficient commitments of the partial-signature evaluation
// (spec.md §4.7 Sign step 2).
func VerifyCentralizedCommitment(msg *CentralizedCommitment, batchSize int) ([]*curve.Point, error) {
	if len(msg.Commitments) != batchSize {
		return nil, ErrBatchSizeMismatch
	}
	scheme := NonceCommitmentScheme()
	rows := make([]maurer.Language, batchSize)
	statements := make([]group.Element, batchSize)
	points := make([]*curve.Point, batchSize)
	for i := range rows {
		lang := languages.NewDecommitment(scheme)
		rows[i] = lang
		statement, err := lang.DecodeStatement(msg.Commitments[i])
		if err != nil {
			return nil, err
		}
		statements[i] = statement
		point, err := curve.NewPointFromBytes(msg.Commitments[i])
		if err != nil {
			return nil, err
		}
		points[i] = point
	}
	batch, err := maurer.NewBatch(rows...)
	if err != nil {
		return nil, err
	}
	proof, err := wire.DecodeProof(batch, msg.ProofCommitments, msg.ProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(batch, product.New(statements...), proof); err != nil {
		return nil, err
	}
	return points, nil
}

// StartTupleAggregation begins the committee's aggregated enhanced proof
// that its batch of masks and masked key shares is a correctly formed
// tuple of the DKG-time encrypted decentralized key share (spec.md §4.7
// "initiates two enhanced aggregated Schnorr proofs").
func StartTupleAggregation(helper *round.Helper, key ahe.EncryptionKey, encryptedDecentralizedKeyShare group.Element, batchSize int, rng io.Reader) (*aggregation.Round1, *maurer.Batch, error) {
	rows := make([]maurer.Language, batchSize)
	langs := make([]*maurer.EnhancedLanguage, batchSize)
	for i := range rows {
		l := languages.NewEnhancedEncryptionOfTuple(key, encryptedDecentralizedKeyShare)
		langs[i] = l
		rows[i] = l
	}
	batch, err := maurer.NewBatch(rows...)
	if err != nil {
		return nil, nil, err
	}

	witnessComponents := make([]group.Element, batchSize)
	for i, l := range langs {
		mask, err := curve.SampleScalar(rng)
		if err != nil {
			return nil, nil, err
		}
		unbounded, err := l.SampleUnbounded(rng)
		if err != nil {
			return nil, nil, err
		}
		witnessComponents[i] = l.WitnessFromSecrets([]*saferith.Nat{new(saferith.Nat).SetBytes(mask.Bytes())}, unbounded)
	}
	witness := product.New(witnessComponents...)

	r1, err := aggregation.Start(helper, batch, witness, rng)
	return r1, batch, err
}

// MasksFromTupleOutput extracts the committee's aggregated per-row
// encrypted masks from a completed tuple aggregation, the ciphertexts the
// nonce-masking aggregation then targets.
func MasksFromTupleOutput(tupleAgg *aggregation.Output) ([]group.Element, error) {
	statement, ok := tupleAgg.AggregatedStatement.(*product.Element)
	if !ok {
		return nil, maurer.ErrInvalidProof
	}
	masks := make([]group.Element, len(statement.Components))
	for i, c := range statement.Components {
		row, ok := c.(*product.Element)
		if !ok || len(row.Components) != 2 {
			return nil, maurer.ErrInvalidProof
		}
		masks[i] = row.At(0)
	}
	return masks, nil
}

// StartNonceDiscreteLogAggregation begins the committee's aggregated
// enhanced proof that its batch of nonce shares encrypts the discrete
// logs of its published nonce public shares, and returns the per-row
// nonce share and encryption randomness so StartNonceMaskingAggregation
// can tie its own proof to this one.
func StartNonceDiscreteLogAggregation(helper *round.Helper, key ahe.EncryptionKey, batchSize int, rng io.Reader) (*aggregation.Round1, *maurer.Batch, *NonceSecrets, error) {
	rows := make([]maurer.Language, batchSize)
	langs := make([]*maurer.EnhancedLanguage, batchSize)
	for i := range rows {
		l := languages.NewEnhancedEncryptionOfDiscreteLog(key)
		langs[i] = l
		rows[i] = l
	}
	batch, err := maurer.NewBatch(rows...)
	if err != nil {
		return nil, nil, nil, err
	}

	secrets := &NonceSecrets{
		Nonces:    make([]*saferith.Nat, batchSize),
		NonceEtas: make([]*zstar.Element, batchSize),
	}
	witnessComponents := make([]group.Element, batchSize)
	for i, l := range langs {
		k, err := curve.SampleScalar(rng)
		if err != nil {
			return nil, nil, nil, err
		}
		unbounded, err := l.SampleUnbounded(rng)
		if err != nil {
			return nil, nil, nil, err
		}
		eta, ok := unbounded.(*zstar.Element)
		if !ok {
			return nil, nil, nil, group.ErrInvalidGroupElement
		}
		nonce := new(saferith.Nat).SetBytes(k.Bytes())
		secrets.Nonces[i] = nonce
		secrets.NonceEtas[i] = eta
		witnessComponents[i] = l.WitnessFromSecrets([]*saferith.Nat{nonce}, unbounded)
	}
	witness := product.New(witnessComponents...)

	r1, err := aggregation.Start(helper, batch, witness, rng)
	return r1, batch, secrets, err
}

// StartNonceMaskingAggregation begins the committee's third aggregated
// enhanced proof: for every row, it reuses this party's own nonce share
// and the exact encryption randomness from StartNonceDiscreteLogAggregation,
// sampling only a fresh randomness for the masked component, so the
// resulting statement's second ciphertext decrypts to mask_i * k_i
// (spec.md §8 "decryption of encrypted_masked_nonce / encrypted_mask ...
// yields k_i"). encryptedMasks is the committee's own aggregated tuple
// output (MasksFromTupleOutput), one row per batch entry, already
// finalized by the time this round starts.
func StartNonceMaskingAggregation(helper *round.Helper, key ahe.EncryptionKey, encryptedMasks []group.Element, secrets *NonceSecrets, rng io.Reader) (*aggregation.Round1, *maurer.Batch, error) {
	batchSize := len(encryptedMasks)
	rows := make([]maurer.Language, batchSize)
	langs := make([]*maurer.EnhancedLanguage, batchSize)
	for i := range rows {
		l := languages.NewEnhancedEncryptionOfTuple(key, encryptedMasks[i])
		langs[i] = l
		rows[i] = l
	}
	batch, err := maurer.NewBatch(rows...)
	if err != nil {
		return nil, nil, err
	}

	witnessComponents := make([]group.Element, batchSize)
	for i, l := range langs {
		fresh, err := l.SampleUnbounded(rng)
		if err != nil {
			return nil, nil, err
		}
		freshPair, ok := fresh.(*product.Element)
		if !ok || len(freshPair.Components) != 2 {
			return nil, nil, group.ErrInvalidGroupElement
		}
		unbounded := product.New(secrets.NonceEtas[i], freshPair.At(1))
		witnessComponents[i] = l.WitnessFromSecrets([]*saferith.Nat{secrets.Nonces[i]}, unbounded)
	}
	witness := product.New(witnessComponents...)

	r1, err := aggregation.Start(helper, batch, witness, rng)
	return r1, batch, err
}

// FinalizeCommittee packages the three completed aggregation runs -- the
// tuple-binding proof over (mask, masked_key_share), the
// discrete-log-binding proof over (encrypted_nonce, nonce_public_share),
// and the nonce-masking proof over (encrypted_nonce, masked_nonce) -- into
// the batched DecentralizedOutput the centralized party verifies. Only the
// first two proofs travel to the centralized party; the masking round's
// proof stays internal to the committee, whose members instead check here
// that the masking statement reuses, row for row, the exact nonce
// ciphertexts the discrete-log proof already bound.
func FinalizeCommittee(tupleAgg, dlogAgg, maskingAgg *aggregation.Output) (*DecentralizedOutput, error) {
	tupleStatement, ok := tupleAgg.AggregatedStatement.(*product.Element)
	if !ok {
		return nil, maurer.ErrInvalidProof
	}
	n := len(tupleStatement.Components)
	masks := make([]group.Element, n)
	maskedKeyShares := make([]group.Element, n)
	for i, c := range tupleStatement.Components {
		row, ok := c.(*product.Element)
		if !ok || len(row.Components) != 2 {
			return nil, maurer.ErrInvalidProof
		}
		masks[i] = row.At(0)
		maskedKeyShares[i] = row.At(1)
	}

	dlogStatement, ok := dlogAgg.AggregatedStatement.(*product.Element)
	if !ok || len(dlogStatement.Components) != n {
		return nil, maurer.ErrInvalidProof
	}
	encryptedNonces := make([]group.Element, n)
	noncePublicShares := make([]group.Element, n)
	for i, c := range dlogStatement.Components {
		row, ok := c.(*product.Element)
		if !ok || len(row.Components) != 2 {
			return nil, maurer.ErrInvalidProof
		}
		encryptedNonces[i] = row.At(0)
		noncePublicShares[i] = row.At(1)
	}

	maskingStatement, ok := maskingAgg.AggregatedStatement.(*product.Element)
	if !ok || len(maskingStatement.Components) != n {
		return nil, maurer.ErrInvalidProof
	}
	maskedNonces := make([]group.Element, n)
	for i, c := range maskingStatement.Components {
		row, ok := c.(*product.Element)
		if !ok || len(row.Components) != 2 {
			return nil, maurer.ErrInvalidProof
		}
		// The masking proof's first ciphertext must BE the discrete-log
		// proof's: same plaintext, same randomness, same bytes. That
		// equality is what transfers the discrete-log binding (this
		// ciphertext encrypts log of the nonce public share) onto the
		// masked nonce next to it.
		if !row.At(0).Equal(encryptedNonces[i]) {
			return nil, maurer.ErrInvalidProof
		}
		maskedNonces[i] = row.At(1)
	}

	tupleCommitments, tupleResponses := wire.EncodeProof(tupleAgg.Proof)
	dlogCommitments, dlogResponses := wire.EncodeProof(dlogAgg.Proof)

	return &DecentralizedOutput{
		EncryptedMasks:           masks,
		EncryptedMaskedKeyShares: maskedKeyShares,
		NoncePublicShares:        noncePublicShares,
		EncryptedNonces:          encryptedNonces,
		EncryptedMaskedNonces:    maskedNonces,
		TupleProofCommitments:    tupleCommitments,
		TupleProofResponses:      tupleResponses,
		DlogProofCommitments:     dlogCommitments,
		DlogProofResponses:       dlogResponses,
	}, nil
}

// Rows pairs a completed DecentralizedOutput with the centralized nonce
// commitments recovered by VerifyCentralizedCommitment, producing the
// per-row view a committee member carries into Sign.
func (out *DecentralizedOutput) Rows(nonceCommitments []*curve.Point) ([]*DecentralizedRow, error) {
	n := len(out.NoncePublicShares)
	if len(nonceCommitments) != n {
		return nil, ErrBatchSizeMismatch
	}
	rows := make([]*DecentralizedRow, n)
	for i := range rows {
		rows[i] = &DecentralizedRow{
			Row: Row{
				NoncePublicShare:        out.NoncePublicShares[i],
				EncryptedMask:           out.EncryptedMasks[i],
				EncryptedMaskedKeyShare: out.EncryptedMaskedKeyShares[i],
				EncryptedMaskedNonce:    out.EncryptedMaskedNonces[i],
			},
			CentralizedNonceCommitment: nonceCommitments[i],
		}
	}
	return rows, nil
}
