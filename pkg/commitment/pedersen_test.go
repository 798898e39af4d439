package commitment_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
)

func sampleScalars(t *testing.T, n int) []*curve.Scalar {
	t.Helper()
	out := make([]*curve.Scalar, n)
	for i := range out {
		s, err := curve.SampleScalar(rand.Reader)
		require.NoError(t, err)
		out[i] = s
	}
	return out
}

func TestPedersenCommitVerifyRoundTrip(t *testing.T) {
	pp := commitment.NewPedersenPublicParameters("test-pedersen", 3)
	msgs := sampleScalars(t, 3)
	r, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)

	c, err := pp.Commit(msgs, r)
	require.NoError(t, err)

	ok, err := pp.Verify(c, msgs, r)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPedersenVerifyRejectsWrongMessage(t *testing.T) {
	pp := commitment.NewPedersenPublicParameters("test-pedersen", 2)
	msgs := sampleScalars(t, 2)
	r, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)
	c, err := pp.Commit(msgs, r)
	require.NoError(t, err)

	wrong := sampleScalars(t, 2)
	ok, err := pp.Verify(c, wrong, r)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPedersenVerifyRejectsWrongBlinding(t *testing.T) {
	pp := commitment.NewPedersenPublicParameters("test-pedersen", 1)
	msgs := sampleScalars(t, 1)
	r, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)
	c, err := pp.Commit(msgs, r)
	require.NoError(t, err)

	otherR, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)
	ok, err := pp.Verify(c, msgs, otherR)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPedersenCommitRejectsDimensionMismatch(t *testing.T) {
	pp := commitment.NewPedersenPublicParameters("test-pedersen", 2)
	r, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)

	_, err = pp.Commit(sampleScalars(t, 3), r)
	assert.ErrorIs(t, err, commitment.ErrDimensionMismatch)
}

// Commitments are additively homomorphic: Com(a, ra) + Com(b, rb) opens to
// (a+b, ra+rb) (spec.md §4.4).
func TestPedersenAddIsHomomorphic(t *testing.T) {
	pp := commitment.NewPedersenPublicParameters("test-pedersen-hom", 2)
	a, b := sampleScalars(t, 2), sampleScalars(t, 2)
	ra, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)
	rb, err := commitment.RandomBlinding(rand.Reader)
	require.NoError(t, err)

	ca, err := pp.Commit(a, ra)
	require.NoError(t, err)
	cb, err := pp.Commit(b, rb)
	require.NoError(t, err)

	sum := make([]*curve.Scalar, 2)
	for i := range sum {
		sum[i] = a[i].Add(b[i])
	}
	rSum := ra.Add(rb)

	combined := pp.Add(ca, cb)
	expected, err := pp.Commit(sum, rSum)
	require.NoError(t, err)
	assert.True(t, combined.Equal(expected))
}

func TestPedersenPublicParametersAreDeterministicPerLabel(t *testing.T) {
	a := commitment.NewPedersenPublicParameters("same-label", 4)
	b := commitment.NewPedersenPublicParameters("same-label", 4)
	for i := range a.Generators {
		assert.True(t, a.Generators[i].Equal(b.Generators[i]))
	}
	assert.True(t, a.H.Equal(b.H))

	c := commitment.NewPedersenPublicParameters("different-label", 4)
	assert.False(t, a.H.Equal(c.H))
}
