package curve_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
)

func sampleScalarElement(t *testing.T) *curve.ScalarElement {
	t.Helper()
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	return curve.WrapScalar(s)
}

func TestScalarElementSatisfiesGroupLaws(t *testing.T) {
	var e group.Element = sampleScalarElement(t)
	other := sampleScalarElement(t)

	assert.True(t, e.Add(e.Neutral()).Equal(e))
	assert.True(t, e.Sub(e).Equal(e.Neutral()))
	assert.True(t, e.Double().Equal(e.ScalarMul(new(saferith.Nat).SetUint64(2))))
	assert.True(t, e.ScalarMul(new(saferith.Nat).SetUint64(0)).Equal(e.Neutral()))
	assert.True(t, e.ScalarMul(new(saferith.Nat).SetUint64(1)).Equal(e))
	assert.True(t, e.Add(other).Equal(other.Add(e)))
}

func TestScalarElementValueRoundTrips(t *testing.T) {
	e := sampleScalarElement(t)
	back, err := curve.NewScalarElement(e.Value(), curve.ScalarPublicParameters{})
	require.NoError(t, err)
	assert.True(t, e.Value().Equal(back.Value()))
}

func TestPointElementSatisfiesGroupLaws(t *testing.T) {
	s := sampleScalarElement(t)
	var e group.Element = curve.WrapPoint(s.Inner().ActOnBase())
	other := curve.WrapPoint(curve.Generator())

	assert.True(t, e.Add(e.Neutral()).Equal(e))
	assert.True(t, e.Sub(e).Equal(e.Neutral()))
	assert.True(t, e.Double().Equal(e.ScalarMul(new(saferith.Nat).SetUint64(2))))
	assert.True(t, e.ScalarMul(new(saferith.Nat).SetUint64(0)).Equal(e.Neutral()))
	assert.True(t, e.Add(other).Equal(other.Add(e)))
}

func TestPointElementValueRoundTrips(t *testing.T) {
	e := curve.WrapPoint(curve.Generator())
	back, err := curve.NewPointElement(e.Value(), curve.PointPublicParameters{})
	require.NoError(t, err)
	assert.True(t, e.Value().Equal(back.Value()))
}

func TestPointElementNewRejectsGarbage(t *testing.T) {
	_, err := curve.NewPointElement(group.BytesValue([]byte("not a point")), curve.PointPublicParameters{})
	assert.Error(t, err)
}

func TestPointElementAffineXImplementsCapability(t *testing.T) {
	e := curve.WrapPoint(curve.Generator())
	var withX group.AffineXCoordinate = e
	assert.NotNil(t, withX.AffineX())
}
