package paillier_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/ahe/paillier"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
)

// testPrimeBits is small enough to keep safe-prime generation fast while
// still giving a properly-sized 256-bit N for every test in this file.
const testPrimeBits = 128

func randPlaintext(t *testing.T, pp *paillier.PublicParameters, bound int64) *znplus.Element {
	t.Helper()
	plaintextPP, ok := pp.PlaintextSpacePublicParameters().(*znplus.PublicParameters)
	require.True(t, ok)
	m, err := rand.Int(rand.Reader, big.NewInt(bound))
	require.NoError(t, err)
	return znplus.FromNat(bignat.FromBig(m, plaintextPP.ByteLen), plaintextPP)
}

// decrypt(encrypt_with_randomness(plaintext, randomness)) == plaintext
// (spec.md §8 "AHE correctness").
func TestPaillierEncryptDecryptRoundTrip(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1 << 32)
	sk, err := paillier.GenerateKeyPair(rand.Reader, testPrimeBits, bound)
	require.NoError(t, err)

	pp := sk.PublicParameters().(*paillier.PublicParameters)
	plaintext := randPlaintext(t, pp, 1<<32)

	randomness, ciphertext, err := sk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)
	assert.NotNil(t, randomness)

	decrypted, err := sk.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.True(t, decrypted.Equal(plaintext))
}

// Decrypting two independent encryptions of the same plaintext under fresh
// randomness must still both recover the plaintext (randomized encryption
// is not deterministic, but decryption always is).
func TestPaillierEncryptionIsRandomizedButDecryptsConsistently(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1 << 20)
	sk, err := paillier.GenerateKeyPair(rand.Reader, testPrimeBits, bound)
	require.NoError(t, err)
	pp := sk.PublicParameters().(*paillier.PublicParameters)
	plaintext := randPlaintext(t, pp, 1<<20)

	_, c1, err := sk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)
	_, c2, err := sk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)
	assert.False(t, c1.Equal(c2), "two encryptions under independent randomness should differ")

	d1, err := sk.Decrypt(c1)
	require.NoError(t, err)
	d2, err := sk.Decrypt(c2)
	require.NoError(t, err)
	assert.True(t, d1.Equal(plaintext))
	assert.True(t, d2.Equal(plaintext))
}

// decrypt(evaluate_linear_combination(coeffs, cts)) mod q == (sum
// coeffs_i*decrypt(cts_i)) mod q (spec.md §8 "AHE correctness").
func TestPaillierLinearCombinationCorrectness(t *testing.T) {
	// The masking term mask*q must stay well below N to avoid wrapping
	// Paillier's own mod-N arithmetic (spec.md §9's circuit-privacy bound
	// assumes N is chosen far larger than the statement group order q,
	// as in production where N is ~3072 bits against a 256-bit q); use a
	// bigger N than the other tests in this file to preserve that margin.
	const linearCombinationPrimeBits = 384
	bound := new(saferith.Nat).SetUint64(1_000)
	sk, err := paillier.GenerateKeyPair(rand.Reader, linearCombinationPrimeBits, bound)
	require.NoError(t, err)
	pp := sk.PublicParameters().(*paillier.PublicParameters)

	const l = 3
	plaintexts := make([]*znplus.Element, l)
	ciphertexts := make([]group.Element, l)
	coefficients := make([]*saferith.Nat, l)
	expected := big.NewInt(0)

	for i := 0; i < l; i++ {
		plaintexts[i] = randPlaintext(t, pp, 1_000)
		_, ct, err := sk.Encrypt(plaintexts[i], rand.Reader)
		require.NoError(t, err)
		ciphertexts[i] = ct

		coeff, err := rand.Int(rand.Reader, big.NewInt(1_000))
		require.NoError(t, err)
		coefficients[i] = bignat.FromBig(coeff, 8)

		term := new(big.Int).Mul(coeff, bignat.ToBig(plaintexts[i].Nat()))
		expected.Add(expected, term)
	}

	q := curve.ScalarPublicParameters{}.Order().Nat()
	mask, r, ct, err := sk.EvaluateLinearCombination(coefficients, ciphertexts, q, rand.Reader)
	require.NoError(t, err)
	assert.NotNil(t, mask)
	assert.NotNil(t, r)

	decrypted, err := sk.Decrypt(ct)
	require.NoError(t, err)

	qBig := bignat.ToBig(q)
	got := new(big.Int).Mod(bignat.ToBig(decrypted.(*znplus.Element).Nat()), qBig)
	want := new(big.Int).Mod(expected, qBig)
	assert.Equal(t, 0, got.Cmp(want), "got %s, want %s", got, want)
}

func TestPaillierLinearCombinationRejectsEmptyDimension(t *testing.T) {
	bound := new(saferith.Nat).SetUint64(1_000)
	sk, err := paillier.GenerateKeyPair(rand.Reader, testPrimeBits, bound)
	require.NoError(t, err)
	q := curve.ScalarPublicParameters{}.Order().Nat()

	_, _, _, err = sk.EvaluateLinearCombination(nil, nil, q, rand.Reader)
	assert.ErrorIs(t, err, ahe.ErrZeroDimension)
}

// The circuit-privacy bound 2*l*B^2 < N must be enforced per evaluation
// (spec.md §9): a message bound close to N with enough terms must be
// rejected.
func TestPaillierLinearCombinationRejectsUnsafeBound(t *testing.T) {
	// B = 2^130 so that, with l=8 terms, 2*l*B^2 = 2^264 comfortably
	// exceeds the ~256-bit N that two 128-bit safe primes produce.
	unsafeBoundBig := new(big.Int).Lsh(big.NewInt(1), 130)
	unsafeBound := new(saferith.Nat).SetBytes(unsafeBoundBig.Bytes())
	sk, err := paillier.GenerateKeyPair(rand.Reader, testPrimeBits, unsafeBound)
	require.NoError(t, err)
	pp := sk.PublicParameters().(*paillier.PublicParameters)

	const l = 8 // 2*l*B^2 with B=2^130 vastly exceeds a 256-bit N
	ciphertexts := make([]group.Element, l)
	coefficients := make([]*saferith.Nat, l)
	for i := 0; i < l; i++ {
		plaintext := randPlaintext(t, pp, 1<<20)
		_, ct, err := sk.Encrypt(plaintext, rand.Reader)
		require.NoError(t, err)
		ciphertexts[i] = ct
		coefficients[i] = new(saferith.Nat).SetUint64(1)
	}

	q := curve.ScalarPublicParameters{}.Order().Nat()
	_, _, _, err = sk.EvaluateLinearCombination(coefficients, ciphertexts, q, rand.Reader)
	assert.ErrorIs(t, err, ahe.ErrUnsafePublicParameters)
}
