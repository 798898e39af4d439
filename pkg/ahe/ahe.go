// Package ahe defines the additively-homomorphic-encryption trait spec.md
// §4.2 describes: an encryption key parameterized over plaintext,
// randomness and ciphertext groups, exposing deterministic and
// probabilistic encryption, a circuit-privacy-preserving linear
// evaluation, and (for key-share holders) threshold decryption. Paillier
// is the only concrete instantiation THE CORE ships (pkg/ahe/paillier);
// everything else in the system programs against this trait.
package ahe

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
)

// ErrZeroDimension is returned by EvaluateLinearCombination(WithRandomness)
// when called with no coefficients (spec.md §4.2).
var ErrZeroDimension = errors.New("ahe: zero-dimension linear combination")

// ErrUnsafePublicParameters is returned by an evaluation call that would
// wrap around the plaintext modulus, i.e. violates 2*l*B^2 < N (spec.md §9
// "circuit-privacy preconditions").
var ErrUnsafePublicParameters = errors.New("ahe: evaluation unsafe for these public parameters")

// PublicParameters describes an AHE scheme instance: the three group
// public-parameters it is built from, plus scheme-specific bounds needed
// to size circuit-privacy masks (spec.md §4.2).
type PublicParameters interface {
	group.PublicParameters
	PlaintextSpacePublicParameters() group.PublicParameters
	RandomnessSpacePublicParameters() group.PublicParameters
	CiphertextSpacePublicParameters() group.PublicParameters
	// MessageBound is B, the bound asserted (by range proofs, externally)
	// on every plaintext and coefficient passed to a linear evaluation.
	MessageBound() *saferith.Nat
	// StatisticalSecurityBits is s, the statistical security parameter
	// used to size the circuit-privacy mask.
	StatisticalSecurityBits() int
	// CircuitPrivacyMaskBits is the bit-size of the statistical mask a
	// dimension-l linear evaluation draws (spec.md §4.2 "mask of size
	// (l*B^2/q)*2^s bits"). Exposed so proof layers that range-claim the
	// mask (the enhanced committed-linear-evaluation language) can size
	// their claims to the mask the evaluation will actually use.
	CircuitPrivacyMaskBits(dimension int, statementGroupOrder *saferith.Nat) int
}

// EncryptionKey is the public half of an AHE key pair.
type EncryptionKey interface {
	PublicParameters() PublicParameters

	// EncryptWithRandomness deterministically encrypts plaintext under the
	// given randomness.
	EncryptWithRandomness(plaintext, randomness group.Element) (group.Element, error)

	// Encrypt draws randomness uniformly and encrypts plaintext under it.
	Encrypt(plaintext group.Element, rng io.Reader) (randomness, ciphertext group.Element, err error)

	// EvaluateLinearCombinationWithRandomness computes
	// mask*q + sum(coefficients[i]*ciphertexts[i]) under the scheme, where
	// q is the statement-group order supplied by the caller. It enforces
	// the circuit-privacy bound 2*l*B^2 < N (spec.md §9), failing with
	// ErrUnsafePublicParameters when violated, and ErrZeroDimension when
	// given no coefficients.
	EvaluateLinearCombinationWithRandomness(
		coefficients []*saferith.Nat,
		ciphertexts []group.Element,
		statementGroupOrder *saferith.Nat,
		mask *saferith.Nat,
		randomness group.Element,
	) (group.Element, error)

	// EvaluateLinearCombination samples the mask and randomness, then
	// calls EvaluateLinearCombinationWithRandomness.
	EvaluateLinearCombination(
		coefficients []*saferith.Nat,
		ciphertexts []group.Element,
		statementGroupOrder *saferith.Nat,
		rng io.Reader,
	) (mask *saferith.Nat, randomness, ciphertext group.Element, err error)
}

// DecryptionKey is held by the party (or, for the committee, distributed
// across the threshold share-holders) able to decrypt.
type DecryptionKey interface {
	EncryptionKey
	// Decrypt recovers the plaintext for a party holding the full secret
	// key (in this module, a test key or a dealer's key before it is split).
	Decrypt(ciphertext group.Element) (group.Element, error)
}

// DecryptionShare is one threshold share-holder's partial decryption.
type DecryptionShare struct {
	Owner uint16
	Value *saferith.Nat
}

// ThresholdDecryptionKeyShare is held by one member of the decentralized
// committee: it can encrypt (inherited from EncryptionKey) and produce a
// partial decryption of any ciphertext, but alone learns nothing about the
// plaintext (spec.md §4.2 "Threshold decryption key").
type ThresholdDecryptionKeyShare interface {
	EncryptionKey
	// GenerateDecryptionShareSemiHonest returns this share-holder's partial
	// decryption of ciphertext. "Semi-honest" per spec.md §4.2: no proof
	// of correctness is attached, matching the AHE trait's documented
	// scope (robustness against a malicious share-holder is outside THE
	// CORE; see spec.md §1).
	GenerateDecryptionShareSemiHonest(ciphertext group.Element) (DecryptionShare, error)
}

// Combiner reconstructs a plaintext from at least Threshold decryption
// shares (spec.md §4.2 "A public combine(shares) step (external) ...").
type Combiner interface {
	Combine(ciphertext group.Element, shares []DecryptionShare) (group.Element, error)
	Threshold() int
}
