package maurer_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/pow2"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
)

func TestDiscreteLogProofCompleteness(t *testing.T) {
	lang := languages.DiscreteLog{}
	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

func TestDiscreteLogProofRejectsWrongStatement(t *testing.T) {
	lang := languages.DiscreteLog{}
	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)

	otherWitness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	otherStatement, err := lang.Homomorphism(otherWitness)
	require.NoError(t, err)

	assert.ErrorIs(t, maurer.Verify(lang, otherStatement, proof), maurer.ErrInvalidProof)
}

func TestDiscreteLogProofRejectsTamperedResponse(t *testing.T) {
	lang := languages.DiscreteLog{}
	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)

	otherWitness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	proof.Responses[0] = otherWitness

	assert.ErrorIs(t, maurer.Verify(lang, statement, proof), maurer.ErrInvalidProof)
}

func TestDecommitmentProofCompleteness(t *testing.T) {
	lang := languages.NewDecommitment(commitment.NewPedersenPublicParameters("test-decommitment", 1))
	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

// Two Languages sharing the same underlying group but distinct NAMEs must
// not accept each other's proofs (spec.md §4.4 "domain separation").
func TestDomainSeparationAcrossLanguages(t *testing.T) {
	discreteLog := languages.DiscreteLog{}
	commitmentOfDL := languages.NewCommitmentOfDiscreteLog(
		commitment.NewPedersenWithBaseGenerator("domain-sep-test"), curve.Generator())

	witness, err := discreteLog.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := discreteLog.Homomorphism(witness)
	require.NoError(t, err)
	proof, err := maurer.Prove(rand.Reader, discreteLog, witness, statement)
	require.NoError(t, err)

	// A discrete-log witness isn't even shaped like a
	// committment-of-discrete-log witness, so Verify must fail outright
	// rather than accidentally accept.
	err = maurer.Verify(commitmentOfDL, statement, proof)
	assert.Error(t, err)
}

func TestEnhancedLanguageRoundTripsThroughSchnorr(t *testing.T) {
	inner := languages.DiscreteLog{}
	const numClaims, rangeBits, compSec, statSec = 4, 66, 128, 64

	enhanced := maurer.NewEnhancedLanguage(
		inner,
		[]int{numClaims}, rangeBits, compSec, statSec,
		nil, nil, nil, 0,
		func(composed []*saferith.Nat, _ group.Element) (group.Element, error) {
			return curve.WrapScalar(curve.NewScalar().SetBytesWide(composed[0].Bytes())), nil
		},
	)

	secretScalar, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	secretNat := new(saferith.Nat).SetBytes(secretScalar.Bytes())

	witness := enhanced.WitnessFromSecrets([]*saferith.Nat{secretNat}, nil)
	statement, err := enhanced.Homomorphism(witness)
	require.NoError(t, err)

	expectedStatement, err := inner.Homomorphism(curve.WrapScalar(secretScalar))
	require.NoError(t, err)
	assert.True(t, statement.Equal(expectedStatement))

	proof, err := maurer.Prove(rand.Reader, enhanced, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(enhanced, statement, proof))
}

// A prover who skips WitnessFromSecrets and plants an over-range chunk
// directly into the witness product still produces proofs whose
// homomorphism identities all hold -- the statement below is honestly
// computed FROM that witness -- so only the explicit range-verification
// can reject it, with ErrRangeClaim rather than ErrInvalidProof
// (spec.md §8 property 6: "fails the enhanced proof's range-verification,
// not the homomorphism check").
func TestEnhancedLanguageRejectsOverRangeWitness(t *testing.T) {
	inner := languages.DiscreteLog{}
	const numClaims, rangeBits, compSec, statSec = 4, 66, 128, 64

	enhanced := maurer.NewEnhancedLanguage(
		inner,
		[]int{numClaims}, rangeBits, compSec, statSec,
		nil, nil, nil, 0,
		func(composed []*saferith.Nat, _ group.Element) (group.Element, error) {
			return curve.WrapScalar(curve.NewScalar().SetBytesWide(composed[0].Bytes())), nil
		},
	)

	sampled, err := enhanced.SampleWitness(rand.Reader)
	require.NoError(t, err)
	witness, ok := sampled.(*product.Element)
	require.True(t, ok)

	// Overwrite one chunk with a value inside the chunk group but past
	// the enforced response bound.
	chunk, ok := witness.At(0).(*pow2.Element)
	require.True(t, ok)
	chunkPP, ok := chunk.PublicParameters().(*pow2.PublicParameters)
	require.True(t, ok)
	oversized := new(big.Int).Lsh(big.NewInt(1), uint(chunkPP.Bits-1))
	witness.Components[0] = pow2.FromBig(oversized, chunkPP)

	statement, err := enhanced.Homomorphism(witness)
	require.NoError(t, err)
	proof, err := maurer.Prove(rand.Reader, enhanced, witness, statement)
	require.NoError(t, err)

	assert.ErrorIs(t, maurer.Verify(enhanced, statement, proof), maurer.ErrRangeClaim)
}
