// Package sign implements the message-dependent signing step (spec.md
// §4.7 Sign): given a message and a presign row, the centralized party
// computes the ECDSA nonce point, proves the row was used honestly, and
// homomorphically evaluates its half of the signature; the committee
// verifies those proofs, checks that the evaluation's coefficient
// commitments are the prescribed combination of the presign-time nonce
// commitment and the key-share ratio commitment, and produces the
// decryption shares an external combiner turns into the final (r, s)
// signature.
package sign

import (
	"errors"

	"golang.org/x/crypto/sha3"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
)

// ErrCommitmentsHomomorphicEvaluation is returned by the decentralized
// party when the coefficient commitments attached to the encrypted
// partial signature are not the required homomorphic combination of the
// presign nonce commitment and the nonce-by-key-share commitment
// (spec.md §4.7 Sign step 2, §6 error kinds).
var ErrCommitmentsHomomorphicEvaluation = errors.New("sign: coefficient commitments fail the homomorphic consistency check")

// PublicNonceEncryptedPartialSignatureAndProof is the centralized party's
// single outgoing message (spec.md §4.7 step 4): the public nonce R, the
// two commitments its proofs introduce, the encrypted partial signature
// with its per-coefficient commitments, and the three proofs.
type PublicNonceEncryptedPartialSignatureAndProof struct {
	PublicNonce []byte // R

	NonceProofCommitments [][]byte
	NonceProofResponses   [][]byte

	NonceShareByKeyShareCommitment []byte
	RatioProofCommitments          [][]byte
	RatioProofResponses            [][]byte

	FirstCoefficientCommitment  []byte
	SecondCoefficientCommitment []byte
	EncryptedPartialSignature   []byte
	EvalProofCommitments        [][]byte
	EvalProofResponses          [][]byte
}

// DecryptionShares is the committee's contribution towards reconstructing
// the final signature: one party's partial decryption of the encrypted
// partial signature and of the row's encrypted masked nonce.
type DecryptionShares struct {
	PartialSignature ahe.DecryptionShare
	MaskedNonce      ahe.DecryptionShare
}

// messageScalar hashes the message down to a 32-byte digest with SHA3-256
// (so callers may pass arbitrary-length messages rather than pre-digested
// ones) and reduces it mod q, giving the m both sides feed into the
// committed linear evaluation and its consistency check.
func messageScalar(message []byte) *curve.Scalar {
	digest := sha3.Sum256(message)
	return curve.NewScalar().SetBytes(digest[:])
}

// Combine reconstructs the ECDSA s from enough parties' decryption
// shares: the decrypted partial signature gamma*k_c*(m + r*x) and the
// decrypted masked nonce gamma*k_dec both carry the presign mask gamma,
// so the mask cancels in their ratio and what remains is k^-1*(m + r*x)
// for the joint nonce k = k_c^-1*k_dec and joint key x (spec.md §4.7
// step 4 "Combined externally"). The decrypted plaintexts are full-width
// Paillier residues; both are reduced mod q before the division.
func Combine(
	combiner ahe.Combiner,
	encryptedPartialSignature, encryptedMaskedNonce group.Element,
	partialSignatureShares, maskedNonceShares []ahe.DecryptionShare,
) (*curve.Scalar, error) {
	partialSignaturePlain, err := combiner.Combine(encryptedPartialSignature, partialSignatureShares)
	if err != nil {
		return nil, err
	}
	maskedNoncePlain, err := combiner.Combine(encryptedMaskedNonce, maskedNonceShares)
	if err != nil {
		return nil, err
	}

	nonceInverse := curve.NewScalar().SetBytesWide(maskedNoncePlain.Value().Bytes()).Invert()
	s := curve.NewScalar().SetBytesWide(partialSignaturePlain.Value().Bytes()).Mul(nonceInverse)
	return s, nil
}
