package sign

import (
	"crypto/rand"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/protocols/internal/wire"
	"github.com/luxfi/ahe2pc/protocols/presign"
)

// Centralized holds the state the centralized party needs to run Sign
// over one presign row: its DKG secret key share and the row itself,
// whose nonce share and commitment randomness reopen the commitment the
// committee has held since the presign commitment round.
type Centralized struct {
	rng   io.Reader
	key   ahe.EncryptionKey
	order *saferith.Nat

	secretKeyShare *curve.Scalar
	row            *presign.CentralizedRow
}

// NewCentralized builds the centralized party's Sign state from its DKG
// secret key share and one unused presign row.
func NewCentralized(
	rng io.Reader,
	key ahe.EncryptionKey,
	order *saferith.Nat,
	secretKeyShare *curve.Scalar,
	row *presign.CentralizedRow,
) *Centralized {
	if rng == nil {
		rng = rand.Reader
	}
	return &Centralized{
		rng: rng, key: key, order: order,
		secretKeyShare: secretKeyShare,
		row:            row,
	}
}

func scalarToNat(s *curve.Scalar) *saferith.Nat {
	return new(saferith.Nat).SetBytes(s.Bytes())
}

// Sign computes the public nonce R, r = x-coord(R), proves the presign
// row was used honestly, and homomorphically evaluates the encrypted
// partial signature (spec.md §4.7 Sign steps 1-4).
//
// R is the committee's nonce public share scaled by the INVERSE of this
// party's nonce share: the joint ECDSA nonce is then k_c^-1 * k_dec, and
// the evaluation's coefficients carry the matching k_c factor so the
// combined s comes out as nonce^-1 * (m + r*x) without either side ever
// holding the joint nonce.
func (c *Centralized) Sign(message []byte) (*PublicNonceEncryptedPartialSignatureAndProof, error) {
	k := c.row.NonceShare
	rho := c.row.CommitRandomness
	scheme := presign.NonceCommitmentScheme()

	noncePoint, ok := c.row.NoncePublicShare.(*curve.PointElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	r := noncePoint.Inner().ScalarMul(k.Invert())
	rx := r.XCoordinate()

	// Step 2a: committment-of-discrete-log over base R, reopening the
	// presign-time nonce commitment: statement (k*R, Com(k; rho)) where
	// k*R is the committee's own nonce public share.
	dlogLang := languages.NewCommitmentOfDiscreteLog(scheme, r)
	dlogWitness := product.New(curve.WrapScalar(k), curve.WrapScalar(rho))
	dlogStatement, err := dlogLang.Homomorphism(dlogWitness)
	if err != nil {
		return nil, err
	}
	dlogProof, err := maurer.Prove(c.rng, dlogLang, dlogWitness, dlogStatement)
	if err != nil {
		return nil, err
	}
	nonceProofCommitments, nonceProofResponses := wire.EncodeProof(dlogProof)

	// Step 2b: discrete-log-ratio-of-committed-values against this
	// party's public key share, reusing rho so the proof's first
	// commitment is byte-identical to the presign nonce commitment. Its
	// second commitment opens to k*x under randomness rho2.
	publicKeyShare := curve.Generator().ScalarMul(c.secretKeyShare)
	ratioLang := languages.NewDiscreteLogRatio(scheme, publicKeyShare)
	rho2, err := curve.SampleScalar(c.rng)
	if err != nil {
		return nil, err
	}
	ratioWitness := product.New(curve.WrapScalar(k), curve.WrapScalar(rho), curve.WrapScalar(rho2))
	ratioStatementRaw, err := ratioLang.Homomorphism(ratioWitness)
	if err != nil {
		return nil, err
	}
	ratioStatement, ok := ratioStatementRaw.(*product.Element)
	if !ok || len(ratioStatement.Components) != 2 {
		return nil, maurer.ErrInvalidProof
	}
	ratioProof, err := maurer.Prove(c.rng, ratioLang, ratioWitness, ratioStatementRaw)
	if err != nil {
		return nil, err
	}
	ratioProofCommitments, ratioProofResponses := wire.EncodeProof(ratioProof)

	// Step 3: committed-linear-evaluation over (encrypted_mask,
	// encrypted_masked_key_share) with coefficients
	// a1 = k*(m + r*x) and a2 = r*k, blinded by exactly the commitment
	// randomnesses (m*rho + r*rho2, r*rho) that make the committee's
	// homomorphic check close.
	m := messageScalar(message)
	a1 := k.Mul(m.Add(rx.Mul(c.secretKeyShare)))
	a2 := k.Mul(rx)
	rhoA1 := rho.Mul(m).Add(rho2.Mul(rx))
	rhoA2 := rho.Mul(rx)

	ciphertexts := []group.Element{c.row.EncryptedMask, c.row.EncryptedMaskedKeyShare}
	evalLang := languages.NewEnhancedCommittedLinearEvaluation(c.key, ciphertexts, c.order, scheme)

	mask, eta, _, err := c.key.EvaluateLinearCombination(
		[]*saferith.Nat{scalarToNat(a1), scalarToNat(a2)}, ciphertexts, c.order, c.rng)
	if err != nil {
		return nil, err
	}
	evalWitness := evalLang.WitnessFromSecrets(
		[]*saferith.Nat{scalarToNat(a1), scalarToNat(a2), mask},
		product.New(eta, curve.WrapScalar(rhoA1), curve.WrapScalar(rhoA2)))
	evalStatementRaw, err := evalLang.Homomorphism(evalWitness)
	if err != nil {
		return nil, err
	}
	evalStatement, ok := evalStatementRaw.(*product.Element)
	if !ok || len(evalStatement.Components) != 3 {
		return nil, maurer.ErrInvalidProof
	}
	evalProof, err := maurer.Prove(c.rng, evalLang, evalWitness, evalStatementRaw)
	if err != nil {
		return nil, err
	}
	evalProofCommitments, evalProofResponses := wire.EncodeProof(evalProof)

	return &PublicNonceEncryptedPartialSignatureAndProof{
		PublicNonce: r.Bytes(),

		NonceProofCommitments: nonceProofCommitments,
		NonceProofResponses:   nonceProofResponses,

		NonceShareByKeyShareCommitment: ratioStatement.At(1).Value().Bytes(),
		RatioProofCommitments:          ratioProofCommitments,
		RatioProofResponses:            ratioProofResponses,

		EncryptedPartialSignature:   evalStatement.At(0).Value().Bytes(),
		FirstCoefficientCommitment:  evalStatement.At(1).Value().Bytes(),
		SecondCoefficientCommitment: evalStatement.At(2).Value().Bytes(),
		EvalProofCommitments:        evalProofCommitments,
		EvalProofResponses:          evalProofResponses,
	}, nil
}
