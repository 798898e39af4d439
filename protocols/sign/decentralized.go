package sign

import (
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

// FinalizeCommittee verifies the centralized party's sign-time proofs
// against the presign row this committee member holds, checks the
// coefficient commitments are the prescribed homomorphic combination of
// the presign nonce commitment and the nonce-by-key-share commitment,
// and returns this member's decryption shares of the partial signature
// and masked nonce ciphertexts (spec.md §4.7 Sign steps 2-4).
func FinalizeCommittee(
	key ahe.EncryptionKey,
	order *saferith.Nat,
	row *presign.DecentralizedRow,
	centralizedPublicKeyShare *curve.Point,
	message []byte,
	msg *PublicNonceEncryptedPartialSignatureAndProof,
	decryptionKeyShare ahe.ThresholdDecryptionKeyShare,
) (*DecryptionShares, error) {
	scheme := presign.NonceCommitmentScheme()

	r, err := curve.NewPointFromBytes(msg.PublicNonce)
	if err != nil {
		return nil, err
	}
	rx := r.XCoordinate()

	noncePoint, ok := row.NoncePublicShare.(*curve.PointElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	nonceCommitment := row.CentralizedNonceCommitment

	// Step 2a: the discrete-log proof over base R must open this
	// committee member's own nonce public share together with the exact
	// commitment the centralized party published back in presign --
	// binding R to k_c^-1 * nonce_public_share for the committed k_c.
	dlogLang := languages.NewCommitmentOfDiscreteLog(scheme, r)
	dlogStatement := product.New(curve.WrapPoint(noncePoint.Inner()), curve.WrapPoint(nonceCommitment))
	dlogProof, err := wire.DecodeProof(dlogLang, msg.NonceProofCommitments, msg.NonceProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(dlogLang, dlogStatement, dlogProof); err != nil {
		return nil, err
	}

	// Step 2b: the ratio proof links the same nonce commitment to a
	// commitment opening to k_c * x_c, with the centralized public key
	// share fixing the ratio.
	nonceByKeyShareCommitment, err := curve.NewPointFromBytes(msg.NonceShareByKeyShareCommitment)
	if err != nil {
		return nil, err
	}
	ratioLang := languages.NewDiscreteLogRatio(scheme, centralizedPublicKeyShare)
	ratioStatement := product.New(curve.WrapPoint(nonceCommitment), curve.WrapPoint(nonceByKeyShareCommitment))
	ratioProof, err := wire.DecodeProof(ratioLang, msg.RatioProofCommitments, msg.RatioProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(ratioLang, ratioStatement, ratioProof); err != nil {
		return nil, err
	}

	// Step 3: the enhanced committed-linear-evaluation proof over this
	// row's (encrypted_mask, encrypted_masked_key_share).
	ciphertexts := []group.Element{row.EncryptedMask, row.EncryptedMaskedKeyShare}
	evalLang := languages.NewEnhancedCommittedLinearEvaluation(key, ciphertexts, order, scheme)

	statementBytes := append([]byte{}, msg.EncryptedPartialSignature...)
	statementBytes = append(statementBytes, msg.FirstCoefficientCommitment...)
	statementBytes = append(statementBytes, msg.SecondCoefficientCommitment...)
	evalStatementRaw, err := evalLang.DecodeStatement(statementBytes)
	if err != nil {
		return nil, err
	}
	evalProof, err := wire.DecodeProof(evalLang, msg.EvalProofCommitments, msg.EvalProofResponses)
	if err != nil {
		return nil, err
	}
	if err := maurer.Verify(evalLang, evalStatementRaw, evalProof); err != nil {
		return nil, err
	}

	// The consistency check binding the evaluation to values committed
	// long before the message existed (spec.md §4.7 Sign step 2):
	//   Com(a1) == m*Com(k) + r*Com(k*x)
	//   Com(a2) == r*Com(k)
	// so the only coefficients a malicious centralized party could have
	// used are a1 = k*(m + r*x), a2 = r*k.
	m := messageScalar(message)
	firstCommitment, err := curve.NewPointFromBytes(msg.FirstCoefficientCommitment)
	if err != nil {
		return nil, err
	}
	secondCommitment, err := curve.NewPointFromBytes(msg.SecondCoefficientCommitment)
	if err != nil {
		return nil, err
	}
	expectedFirst := nonceCommitment.ScalarMul(m).Add(nonceByKeyShareCommitment.ScalarMul(rx))
	expectedSecond := nonceCommitment.ScalarMul(rx)
	if !firstCommitment.Equal(expectedFirst) || !secondCommitment.Equal(expectedSecond) {
		return nil, ErrCommitmentsHomomorphicEvaluation
	}

	evalStatement, ok := evalStatementRaw.(*product.Element)
	if !ok || len(evalStatement.Components) != 3 {
		return nil, maurer.ErrInvalidProof
	}
	partialSignatureShare, err := decryptionKeyShare.GenerateDecryptionShareSemiHonest(evalStatement.At(0))
	if err != nil {
		return nil, err
	}
	maskedNonceShare, err := decryptionKeyShare.GenerateDecryptionShareSemiHonest(row.EncryptedMaskedNonce)
	if err != nil {
		return nil, err
	}

	return &DecryptionShares{
		PartialSignature: partialSignatureShare,
		MaskedNonce:      maskedNonceShare,
	}, nil
}
