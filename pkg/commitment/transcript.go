package commitment

import (
	"crypto/subtle"

	"github.com/luxfi/ahe2pc/pkg/hash"
)

// TranscriptCommitment is a plain, non-hiding binding commitment: a digest
// of a labeled value, used to bind a round's outgoing message before the
// sender has any incentive to change it, without needing a blinding factor
// (spec.md §4.4 "non-hiding transcript commitment", §5's reliable
// broadcast hash agreement is a sibling use of the same primitive).
type TranscriptCommitment struct {
	Digest []byte
}

// CommitTranscript absorbs label and value into a fresh transcript and
// returns the resulting 256-bit digest as a commitment (spec.md §6
// "256-bit commitment digests").
func CommitTranscript(label string, value interface{}) (*TranscriptCommitment, error) {
	t := hash.New()
	if err := t.Absorb(label, value); err != nil {
		return nil, err
	}
	return &TranscriptCommitment{Digest: t.Commitment256()}, nil
}

// Verify recomputes the commitment over (label, value) and compares it
// against c in constant time.
func (c *TranscriptCommitment) Verify(label string, value interface{}) (bool, error) {
	recomputed, err := CommitTranscript(label, value)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(c.Digest, recomputed.Digest) == 1, nil
}
