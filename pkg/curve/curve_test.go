package curve_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/curve"
)

func TestScalarFieldLaws(t *testing.T) {
	a, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	b, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	zero := curve.NewScalar()
	assert.True(t, a.Add(zero).Equal(a))
	assert.True(t, a.Sub(a).Equal(zero))
	assert.True(t, a.Add(b).Equal(b.Add(a)))
	assert.True(t, a.Add(a).Equal(a.Mul(curve.NewScalar().SetUint64(2))))

	inv := a.Invert()
	assert.True(t, a.Mul(inv).Equal(curve.NewScalar().SetUint64(1)))
}

func TestScalarBytesRoundTrip(t *testing.T) {
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	back := curve.NewScalar().SetBytes(s.Bytes())
	assert.True(t, s.Equal(back))
	assert.Len(t, s.Bytes(), 32)
}

func TestPointGroupLaws(t *testing.T) {
	a, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	b, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)

	pa := a.ActOnBase()
	pb := b.ActOnBase()

	assert.True(t, pa.Add(pa).Equal(pa.Double()))
	assert.True(t, pa.Add(pb).Equal(pb.Add(pa)))
	assert.True(t, pa.Sub(pa).Equal(curve.NewPoint()))

	sum := a.Add(b)
	assert.True(t, sum.ActOnBase().Equal(pa.Add(pb)))
}

func TestPointScalarMulDistributesOverAddition(t *testing.T) {
	a, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	b, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	p := curve.Generator()

	lhs := p.ScalarMul(a.Add(b))
	rhs := p.ScalarMul(a).Add(p.ScalarMul(b))
	assert.True(t, lhs.Equal(rhs))
}

func TestPointBytesRoundTrip(t *testing.T) {
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	p := s.ActOnBase()

	back, err := curve.NewPointFromBytes(p.Bytes())
	require.NoError(t, err)
	assert.True(t, p.Equal(back))
}

func TestNewPointFromBytesRejectsInvalidEncoding(t *testing.T) {
	_, err := curve.NewPointFromBytes(make([]byte, 33))
	assert.Error(t, err)
}

func TestXCoordinateIsDeterministicAndBounded(t *testing.T) {
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	p := s.ActOnBase()

	x1 := p.XCoordinate()
	x2 := p.XCoordinate()
	assert.True(t, x1.Equal(x2))

	order := new(big.Int).SetBytes(curve.ScalarPublicParameters{}.Order().Nat().Bytes())
	assert.Less(t, new(big.Int).SetBytes(x1.Bytes()).Cmp(order), 0)
}

func TestHashToPointIsDeterministicAndDistinctAcrossIndices(t *testing.T) {
	g1 := curve.HashToPoint("pedersen", 0)
	g1Again := curve.HashToPoint("pedersen", 0)
	g2 := curve.HashToPoint("pedersen", 1)

	assert.True(t, g1.Equal(g1Again))
	assert.False(t, g1.Equal(g2))
}

func TestHashToPointDiffersAcrossLabels(t *testing.T) {
	a := curve.HashToPoint("language-a", 0)
	b := curve.HashToPoint("language-b", 0)
	assert.False(t, a.Equal(b))
}
