package product_test

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group/product"
)

func sampleScalarElement(t *testing.T) *curve.ScalarElement {
	t.Helper()
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	return curve.WrapScalar(s)
}

func samplePointElement(t *testing.T) *curve.PointElement {
	t.Helper()
	s, err := curve.SampleScalar(rand.Reader)
	require.NoError(t, err)
	return curve.WrapPoint(s.ActOnBase())
}

func TestProductComponentwiseAddition(t *testing.T) {
	a1, a2 := sampleScalarElement(t), samplePointElement(t)
	b1, b2 := sampleScalarElement(t), samplePointElement(t)

	a := product.Product2(a1, a2)
	b := product.Product2(b1, b2)

	sum := a.Add(b).(*product.Element)
	assert.True(t, sum.At(0).Equal(a1.Add(b1)))
	assert.True(t, sum.At(1).Equal(a2.Add(b2)))
}

func TestProductComponentwiseScalarMul(t *testing.T) {
	a1, a2 := sampleScalarElement(t), samplePointElement(t)
	a := product.Product2(a1, a2)

	k := new(saferith.Nat).SetUint64(7)
	scaled := a.ScalarMul(k).(*product.Element)
	assert.True(t, scaled.At(0).Equal(a1.ScalarMul(k)))
	assert.True(t, scaled.At(1).Equal(a2.ScalarMul(k)))
}

func TestProductGroupLaws(t *testing.T) {
	a := product.Product2(sampleScalarElement(t), samplePointElement(t))
	b := product.Product2(sampleScalarElement(t), samplePointElement(t))

	assert.True(t, a.Add(a.Neutral()).Equal(a))
	assert.True(t, a.Sub(a).Equal(a.Neutral()))
	assert.True(t, a.Add(b).Equal(b.Add(a)))
	assert.True(t, a.Double().Equal(a.ScalarMul(new(saferith.Nat).SetUint64(2))))
}

func TestProduct3And4Accessors(t *testing.T) {
	c1, c2, c3, c4 := sampleScalarElement(t), sampleScalarElement(t), sampleScalarElement(t), sampleScalarElement(t)

	p3 := product.Product3(c1, c2, c3)
	assert.True(t, p3.At(0).Equal(c1))
	assert.True(t, p3.At(1).Equal(c2))
	assert.True(t, p3.At(2).Equal(c3))

	p4 := product.Product4(c1, c2, c3, c4)
	assert.True(t, p4.At(3).Equal(c4))
}

func TestProductValueEqualityIsComponentwise(t *testing.T) {
	a := product.Product2(sampleScalarElement(t), samplePointElement(t))
	b := product.Product2(sampleScalarElement(t), samplePointElement(t))

	assert.True(t, a.Value().Equal(a.Value()))
	assert.False(t, a.Value().Equal(b.Value()))
}

func TestProductPublicParametersEquality(t *testing.T) {
	a := product.Product2(sampleScalarElement(t), samplePointElement(t))
	b := product.Product2(sampleScalarElement(t), samplePointElement(t))
	assert.True(t, a.PublicParameters().Equal(b.PublicParameters()))
}
