package commitment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/pkg/commitment"
)

func TestTranscriptCommitmentVerifyRoundTrip(t *testing.T) {
	c, err := commitment.CommitTranscript("test-label", [][]byte{[]byte("hello"), []byte("world")})
	require.NoError(t, err)

	ok, err := c.Verify("test-label", [][]byte{[]byte("hello"), []byte("world")})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTranscriptCommitmentVerifyRejectsTamperedValue(t *testing.T) {
	c, err := commitment.CommitTranscript("test-label", [][]byte{[]byte("hello")})
	require.NoError(t, err)

	ok, err := c.Verify("test-label", [][]byte{[]byte("goodbye")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranscriptCommitmentVerifyRejectsWrongLabel(t *testing.T) {
	c, err := commitment.CommitTranscript("label-a", [][]byte{[]byte("hello")})
	require.NoError(t, err)

	ok, err := c.Verify("label-b", [][]byte{[]byte("hello")})
	require.NoError(t, err)
	assert.False(t, ok)
}
