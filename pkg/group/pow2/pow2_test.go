package pow2_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/pow2"
)

func TestPow2GroupLaws(t *testing.T) {
	pp := pow2.NewPublicParameters(64)
	a, err := pow2.Sample(rand.Reader, pp)
	require.NoError(t, err)
	b, err := pow2.Sample(rand.Reader, pp)
	require.NoError(t, err)

	assert.True(t, a.Add(a.Neutral()).Equal(a))
	assert.True(t, a.Sub(a).Equal(a.Neutral()))
	assert.True(t, a.Add(b).Equal(b.Add(a)))
	assert.True(t, a.Double().Equal(a.ScalarMul(new(saferith.Nat).SetUint64(2))))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(1)).Equal(a))
	assert.True(t, a.ScalarMul(new(saferith.Nat).SetUint64(0)).Equal(a.Neutral()))
}

func TestPow2Wraps(t *testing.T) {
	pp := pow2.NewPublicParameters(8)
	max := pow2.FromBig(big.NewInt(255), pp)
	one := pow2.FromBig(big.NewInt(1), pp)
	assert.True(t, max.Add(one).Equal(pow2.FromBig(big.NewInt(0), pp)))
}

func TestPow2ValueRoundTrip(t *testing.T) {
	pp := pow2.NewPublicParameters(32)
	a, err := pow2.Sample(rand.Reader, pp)
	require.NoError(t, err)
	back, err := pow2.New(a.Value(), pp)
	require.NoError(t, err)
	assert.True(t, a.Equal(back))
}

func TestPow2NewRejectsOutOfRange(t *testing.T) {
	pp := pow2.NewPublicParameters(8)
	tooBig := group.BytesValue(big.NewInt(300).Bytes())
	_, err := pow2.New(tooBig, pp)
	assert.ErrorIs(t, err, group.ErrInvalidGroupElement)
}

func TestPow2SampleStaysWithinBound(t *testing.T) {
	pp := pow2.NewPublicParameters(16)
	bound := new(big.Int).Lsh(big.NewInt(1), 16)
	for i := 0; i < 50; i++ {
		e, err := pow2.Sample(rand.Reader, pp)
		require.NoError(t, err)
		assert.Less(t, e.Big().Cmp(bound), 0)
		assert.GreaterOrEqual(t, e.Big().Sign(), 0)
	}
}
