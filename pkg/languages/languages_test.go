package languages_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/ahe/paillier"
	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
)

// testPrimeBits gives N = 512 bits. The enhanced languages' recomposed
// randomizers reach ~2^480 (four 288-bit chunks at 64-bit positional
// weights), and recomposition is only additive while those integers stay
// below N, so the test modulus must clear that bound -- production
// moduli (2048+ bits) clear it by a much wider margin.
const testPrimeBits = 256

func testEncryptionKey(t *testing.T) *paillier.SecretKey {
	t.Helper()
	bound := new(saferith.Nat).SetUint64(1 << 32)
	sk, err := paillier.GenerateKeyPair(rand.Reader, testPrimeBits, bound)
	require.NoError(t, err)
	return sk
}

// mustCiphertext encrypts the small plaintext m under key, giving a
// well-formed ciphertext to use as a fixed evaluation target.
func mustCiphertext(t *testing.T, key *paillier.SecretKey, m uint64) group.Element {
	t.Helper()
	pp := key.PublicParameters().(*paillier.PublicParameters)
	plaintextPP := pp.PlaintextSpacePublicParameters().(*znplus.PublicParameters)
	plaintext := znplus.FromNat(new(saferith.Nat).SetUint64(m), plaintextPP)
	_, ciphertext, err := key.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)
	return ciphertext
}

func scalarNat(s *curve.Scalar) *saferith.Nat {
	return new(saferith.Nat).SetBytes(s.Bytes())
}

// The Paillier-mixed languages are proven through their enhanced
// wrappers: the base languages exponentiate ciphertexts by witness
// components as integers, and only the wrapper's wrap-free chunk
// arithmetic makes that map additive, so the wrapped forms are what
// every protocol round actually proves (spec.md §4.4 "each is lifted by
// the enhanced wrapper").
func TestEnhancedEncryptionOfDiscreteLogCompleteness(t *testing.T) {
	key := testEncryptionKey(t)
	lang := languages.NewEnhancedEncryptionOfDiscreteLog(key)

	x, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	eta, err := lang.SampleUnbounded(rand.Reader)
	require.NoError(t, err)

	witness := lang.WitnessFromSecrets([]*saferith.Nat{scalarNat(x)}, eta)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	// The statement's point component must be the share's public image.
	p, ok := statement.(*product.Element)
	require.True(t, ok)
	point, ok := p.At(1).(*curve.PointElement)
	require.True(t, ok)
	assert.True(t, point.Inner().Equal(curve.Generator().ScalarMul(x)))

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

func TestEnhancedEncryptionOfTupleCompleteness(t *testing.T) {
	key := testEncryptionKey(t)
	target := mustCiphertext(t, key, 7)
	lang := languages.NewEnhancedEncryptionOfTuple(key, target)

	x, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	etas, err := lang.SampleUnbounded(rand.Reader)
	require.NoError(t, err)

	witness := lang.WitnessFromSecrets([]*saferith.Nat{scalarNat(x)}, etas)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

func TestEnhancedProofRejectsForeignStatement(t *testing.T) {
	key := testEncryptionKey(t)
	lang := languages.NewEnhancedEncryptionOfDiscreteLog(key)

	x, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	eta, err := lang.SampleUnbounded(rand.Reader)
	require.NoError(t, err)
	witness := lang.WitnessFromSecrets([]*saferith.Nat{scalarNat(x)}, eta)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)
	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)

	otherX, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	otherEta, err := lang.SampleUnbounded(rand.Reader)
	require.NoError(t, err)
	otherStatement, err := lang.Homomorphism(lang.WitnessFromSecrets([]*saferith.Nat{scalarNat(otherX)}, otherEta))
	require.NoError(t, err)

	assert.ErrorIs(t, maurer.Verify(lang, otherStatement, proof), maurer.ErrInvalidProof)
}

func TestCommitmentOfDiscreteLogCompleteness(t *testing.T) {
	scheme := commitment.NewPedersenWithBaseGenerator("test-commitment-of-dl")
	baseScalar, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	base := curve.Generator().ScalarMul(baseScalar)
	lang := languages.NewCommitmentOfDiscreteLog(scheme, base)

	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

// A proof produced over one base point must not verify over another even
// when the statement happens to decode: the base is a language constant
// bound into the transcript.
func TestCommitmentOfDiscreteLogBindsBase(t *testing.T) {
	scheme := commitment.NewPedersenWithBaseGenerator("test-cdl-base-binding")
	lang := languages.NewCommitmentOfDiscreteLog(scheme, curve.Generator())

	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)
	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)

	otherLang := languages.NewCommitmentOfDiscreteLog(scheme, curve.Generator().Double())
	assert.Error(t, maurer.Verify(otherLang, statement, proof))
}

func TestDiscreteLogRatioCompleteness(t *testing.T) {
	scheme := commitment.NewPedersenWithBaseGenerator("test-dl-ratio")
	y, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	lang := languages.NewDiscreteLogRatio(scheme, curve.Generator().ScalarMul(y))

	x, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	rx, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	rxy, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	witness := product.New(curve.WrapScalar(x), curve.WrapScalar(rx), curve.WrapScalar(rxy))
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	// The second commitment opens to x*y under the same setup -- the
	// property sign's consistency check relies on.
	p, ok := statement.(*product.Element)
	require.True(t, ok)
	expected, err := scheme.Commit([]*curve.Scalar{x.Mul(y)}, rxy)
	require.NoError(t, err)
	c2, ok := p.At(1).(*curve.PointElement)
	require.True(t, ok)
	assert.True(t, c2.Inner().Equal(expected.Value))

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}

func TestDiscreteLogRatioRejectsWrongRatioPoint(t *testing.T) {
	scheme := commitment.NewPedersenWithBaseGenerator("test-dl-ratio-2")
	y, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	lang := languages.NewDiscreteLogRatio(scheme, curve.Generator().ScalarMul(y))

	witness, err := lang.SampleWitness(rand.Reader)
	require.NoError(t, err)
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)
	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)

	otherY, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	otherLang := languages.NewDiscreteLogRatio(scheme, curve.Generator().ScalarMul(otherY))
	assert.Error(t, maurer.Verify(otherLang, statement, proof))
}

func TestEnhancedCommittedLinearEvaluationCompleteness(t *testing.T) {
	key := testEncryptionKey(t)
	ciphertexts := []group.Element{
		mustCiphertext(t, key, 3),
		mustCiphertext(t, key, 11),
	}
	order := curve.ScalarPublicParameters{}.Order().Nat()
	scheme := commitment.NewPedersenWithBaseGenerator("test-committed-linear-eval")
	lang := languages.NewEnhancedCommittedLinearEvaluation(key, ciphertexts, order, scheme)

	a1, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	a2, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	mask, eta, _, err := key.EvaluateLinearCombination(
		[]*saferith.Nat{scalarNat(a1), scalarNat(a2)}, ciphertexts, order, rand.Reader)
	require.NoError(t, err)
	rho1, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	rho2, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	witness := lang.WitnessFromSecrets(
		[]*saferith.Nat{scalarNat(a1), scalarNat(a2), mask},
		product.New(eta, curve.WrapScalar(rho1), curve.WrapScalar(rho2)))
	statement, err := lang.Homomorphism(witness)
	require.NoError(t, err)

	// Each coefficient commitment opens to its coefficient under the
	// shared setup.
	p, ok := statement.(*product.Element)
	require.True(t, ok)
	expected1, err := scheme.Commit([]*curve.Scalar{a1}, rho1)
	require.NoError(t, err)
	c1, ok := p.At(1).(*curve.PointElement)
	require.True(t, ok)
	assert.True(t, c1.Inner().Equal(expected1.Value))

	proof, err := maurer.Prove(rand.Reader, lang, witness, statement)
	require.NoError(t, err)
	assert.NoError(t, maurer.Verify(lang, statement, proof))
}
