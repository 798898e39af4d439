// Package maurer implements the generic Schnorr/Maurer zero-knowledge
// proof-of-knowledge framework spec.md §4.4 describes: a Language
// abstracts any group homomorphism f: W -> S, and Prove/Verify realize a
// Sigma-protocol over it via Fiat-Shamir (Maurer, "Unified Zero-Knowledge
// Proofs of Knowledge", 2009). Each Language fixes its own REPETITIONS
// count per spec.md §4.4: 1 for languages whose statement space is a
// prime-order group, where a single 128-bit challenge already gives
// negligible knowledge error, and 128 parallel single-bit repetitions for
// languages touching hidden-order (Paillier) groups, where extraction
// needs invertible challenge differences and only binary challenges
// provide them. pkg/languages instantiates seven concrete Languages
// against this framework; pkg/maurer/aggregation lifts single-party Prove
// into the multi-party aggregation rounds spec.md §5 describes.
package maurer

import (
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/hash"
)

// ChallengeBitsTotal is the per-statement Fiat-Shamir challenge budget
// (spec.md §6 "128 bits per per-statement challenge"). A language's
// repetitions split this budget evenly: one repetition consumes the full
// 128-bit challenge, 128 repetitions consume one bit each, so the
// knowledge error is 2^-128 either way.
const ChallengeBitsTotal = 128

// Language is a group homomorphism f: WitnessSpace -> StatementSpace a
// prover can demonstrate knowledge of a preimage for, without revealing
// it (spec.md §4.4 "Language: group_homomorphism(w, pp) -> s").
type Language interface {
	// Name identifies the language for transcript domain separation.
	Name() string
	// Repetitions is REPETITIONS (spec.md §4.4): 1 for prime-order
	// statement groups, ChallengeBitsTotal for hidden-order ones. Must
	// divide ChallengeBitsTotal.
	Repetitions() int
	WitnessSpacePublicParameters() group.PublicParameters
	StatementSpacePublicParameters() group.PublicParameters
	// SampleWitness draws a uniformly random element of the witness space,
	// used both to generate real secrets and, by Prove, to draw each
	// repetition's randomizer.
	SampleWitness(rng io.Reader) (group.Element, error)
	// Homomorphism computes f(witness).
	Homomorphism(witness group.Element) (group.Element, error)
	// DecodeStatement reconstructs a statement-space element from its wire
	// encoding, used by proof aggregation (pkg/maurer/aggregation) to
	// deserialize peers' commitments and statements off the network.
	DecodeStatement(data []byte) (group.Element, error)
	// DecodeWitness reconstructs a witness-space element from its wire
	// encoding, used by proof aggregation to deserialize peers' proof-share
	// responses.
	DecodeWitness(data []byte) (group.Element, error)
}

// RangeVerifier is implemented by languages that assert magnitude bounds
// on (parts of) their responses -- the enhanced wrapper's range claims
// (spec.md §4.4). Verify and the aggregation blame check run VerifyRange
// on every response BEFORE the homomorphism identity, so an over-range
// witness fails the range-verification, not the homomorphism check
// (spec.md §8 property 6).
type RangeVerifier interface {
	VerifyRange(response group.Element) error
}

// ConstantsCarrier is implemented by languages whose public parameters
// include constants beyond their witness/statement group descriptions --
// commitment generators, target ciphertexts, fixed base points. Those
// constants must reach the Fiat-Shamir transcript too, or a proof over
// one constant could be replayed against another (spec.md §4.4 "the NAME
// string, all public parameters, and the statement vector are serialized
// into the transcript before any challenge is drawn").
type ConstantsCarrier interface {
	ConstantsBytes() []byte
}

// absorbStatement binds a language's identity and a statement into a
// transcript, the common prefix every challenge derivation in this package
// shares (spec.md §6 "domain separation").
func absorbStatement(lang Language, statement group.Element) *hash.Hash {
	t := hash.NewWithDomain(lang.Name())
	_ = t.WriteBytes("witness space", lang.WitnessSpacePublicParameters().Bytes())
	_ = t.WriteBytes("statement space", lang.StatementSpacePublicParameters().Bytes())
	if cc, ok := lang.(ConstantsCarrier); ok {
		_ = t.WriteBytes("language constants", cc.ConstantsBytes())
	}
	_ = t.WriteBytes("statement", statement.Value().Bytes())
	return t
}

// ChallengeBits derives the 128-bit challenge from the transcript
// absorbing a language, a statement, and every repetition's commitment
// (spec.md §4.4 step 3). Exported so the aggregation rounds
// (pkg/maurer/aggregation) derive the identical challenge the eventual
// single-verifier Verify call will recompute.
func ChallengeBits(lang Language, statement group.Element, commitments []group.Element) []byte {
	t := absorbStatement(lang, statement)
	for i, c := range commitments {
		_ = t.WriteBytes("commitment", append([]byte{byte(i), byte(i >> 8)}, c.Value().Bytes()...))
	}
	return t.Challenge128()
}

// ChallengeAt slices repetition i's challenge value out of the 128-bit
// challenge string: bits [i*width, (i+1)*width), big-endian. With
// width=128 that is the whole challenge; with width=1, repetition i's
// single bit.
func ChallengeAt(challenge []byte, i, width int) *saferith.Nat {
	n := new(big.Int).SetBytes(challenge)
	total := len(challenge) * 8
	n.Rsh(n, uint(total-(i+1)*width))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	n.And(n, mask)
	byteLen := (width + 7) / 8
	buf := make([]byte, byteLen)
	n.FillBytes(buf)
	return new(saferith.Nat).SetBytes(buf)
}

// challengeWidth is the per-repetition challenge bit-width for lang.
func challengeWidth(lang Language) int {
	return ChallengeBitsTotal / lang.Repetitions()
}
