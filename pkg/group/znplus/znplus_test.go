package znplus_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
)

func testPP() *znplus.PublicParameters {
	n := saferith.ModulusFromNat(new(saferith.Nat).SetUint64(1_000_000_007 * 97))
	return znplus.NewPublicParameters(n)
}

func sample(t *testing.T, pp *znplus.PublicParameters) *znplus.Element {
	t.Helper()
	zero := znplus.FromNat(new(saferith.Nat).SetUint64(0), pp)
	e, err := zero.Sample(rand.Reader)
	require.NoError(t, err)
	return e.(*znplus.Element)
}

func TestZNPlusGroupLaws(t *testing.T) {
	pp := testPP()
	a := sample(t, pp)
	b := sample(t, pp)

	assert.True(t, a.Add(a.Neutral()).Equal(a))
	assert.True(t, a.Sub(a).Equal(a.Neutral()))
	assert.True(t, a.Add(b).Equal(b.Add(a)))
	assert.True(t, a.Double().Equal(a.ScalarMul(new(saferith.Nat).SetUint64(2))))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(1)).Equal(a))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(0)).Equal(a.Neutral()))
}

func TestZNPlusValueRoundTrip(t *testing.T) {
	pp := testPP()
	a := sample(t, pp)
	back, err := znplus.New(a.Value(), pp)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
}

func TestZNPlusNewRejectsOutOfRange(t *testing.T) {
	pp := testPP()
	tooBig := new(saferith.Nat).SetUint64(1 << 62)
	_, err := znplus.New(group.BytesValue(tooBig.Bytes()), pp)
	assert.ErrorIs(t, err, group.ErrInvalidGroupElement)
}
