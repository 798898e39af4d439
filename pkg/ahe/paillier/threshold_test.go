package paillier_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/ahe/paillier"
)

// Reconstructing from exactly Threshold shares must recover the original
// plaintext, regardless of which subset of parties supplies them (spec.md
// §8 "threshold key generation + Combine correctness").
func TestThresholdCombineReconstructsPlaintext(t *testing.T) {
	const partyCount, threshold = 5, 3
	bound := new(saferith.Nat).SetUint64(1 << 20)

	pk, shares, err := paillier.GenerateThresholdKeyPair(rand.Reader, testPrimeBits, partyCount, threshold, bound)
	require.NoError(t, err)
	pp := pk.PublicParameters().(*paillier.PublicParameters)

	plaintext := randPlaintext(t, pp, 1<<20)
	_, ciphertext, err := pk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)

	combiner := paillier.NewThresholdCombiner(pp, partyCount, threshold)
	assert.Equal(t, threshold, combiner.Threshold())

	allDecryptionShares := make([]ahe.DecryptionShare, 0, len(shares))
	for _, s := range shares {
		ds, err := s.GenerateDecryptionShareSemiHonest(ciphertext)
		require.NoError(t, err)
		allDecryptionShares = append(allDecryptionShares, ds)
	}

	// Two different threshold-sized subsets must both recover the same
	// plaintext.
	subsetA := allDecryptionShares[:threshold]
	recoveredA, err := combiner.Combine(ciphertext, subsetA)
	require.NoError(t, err)
	assert.True(t, recoveredA.Equal(plaintext))

	subsetB := allDecryptionShares[len(allDecryptionShares)-threshold:]
	recoveredB, err := combiner.Combine(ciphertext, subsetB)
	require.NoError(t, err)
	assert.True(t, recoveredB.Equal(plaintext))
}

func TestThresholdCombineRejectsInsufficientShares(t *testing.T) {
	const partyCount, threshold = 4, 3
	bound := new(saferith.Nat).SetUint64(1 << 20)

	pk, shares, err := paillier.GenerateThresholdKeyPair(rand.Reader, testPrimeBits, partyCount, threshold, bound)
	require.NoError(t, err)
	pp := pk.PublicParameters().(*paillier.PublicParameters)
	plaintext := randPlaintext(t, pp, 1<<20)
	_, ciphertext, err := pk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)

	combiner := paillier.NewThresholdCombiner(pp, partyCount, threshold)
	ds, err := shares[0].GenerateDecryptionShareSemiHonest(ciphertext)
	require.NoError(t, err)

	_, err = combiner.Combine(ciphertext, []ahe.DecryptionShare{ds})
	assert.ErrorIs(t, err, paillier.ErrThresholdNotReached)
}

func TestThresholdCombineRejectsDuplicateShareOwner(t *testing.T) {
	const partyCount, threshold = 4, 2
	bound := new(saferith.Nat).SetUint64(1 << 20)

	pk, shares, err := paillier.GenerateThresholdKeyPair(rand.Reader, testPrimeBits, partyCount, threshold, bound)
	require.NoError(t, err)
	pp := pk.PublicParameters().(*paillier.PublicParameters)
	plaintext := randPlaintext(t, pp, 1<<20)
	_, ciphertext, err := pk.Encrypt(plaintext, rand.Reader)
	require.NoError(t, err)

	combiner := paillier.NewThresholdCombiner(pp, partyCount, threshold)
	ds, err := shares[0].GenerateDecryptionShareSemiHonest(ciphertext)
	require.NoError(t, err)

	_, err = combiner.Combine(ciphertext, []ahe.DecryptionShare{ds, ds})
	assert.ErrorIs(t, err, paillier.ErrDuplicateShare)
}
