package zstar_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/zstar"
)

func testPP() *zstar.PublicParameters {
	m := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(1_000_000_007 * 97))
	return zstar.NewPublicParameters(m)
}

func TestZStarGroupLaws(t *testing.T) {
	pp := testPP()
	a, err := zstar.Sample(rand.Reader, pp)
	require.NoError(t, err)
	b, err := zstar.Sample(rand.Reader, pp)
	require.NoError(t, err)

	assert.True(t, a.Add(a.Neutral()).Equal(a))
	assert.True(t, a.Sub(a).Equal(a.Neutral()))
	assert.True(t, a.Add(b).Equal(b.Add(a)))
	assert.True(t, a.Double().Equal(a.ScalarMul(new(saferith.Nat).SetUint64(2))))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(1)).Equal(a))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(0)).Equal(a.Neutral()))
}

func TestZStarValueRoundTrip(t *testing.T) {
	pp := testPP()
	a, err := zstar.Sample(rand.Reader, pp)
	require.NoError(t, err)
	back, err := zstar.New(a.Value(), pp)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
}

func TestZStarNewRejectsNonCoprimeResidue(t *testing.T) {
	pp := testPP()
	// 97 divides the modulus, so it shares a nontrivial factor with M.
	notCoprime := group.BytesValue(new(saferith.Nat).SetUint64(97).Bytes())
	_, err := zstar.New(notCoprime, pp)
	assert.ErrorIs(t, err, group.ErrInvalidGroupElement)
}
