package maurer

import (
	"errors"
	"io"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/pool"
)

// ErrInvalidProof is returned by Verify when any repetition's check fails.
var ErrInvalidProof = errors.New("maurer: proof verification failed")

// ErrRangeClaim is returned by Verify when a response violates the
// language's claimed magnitude bound. Distinct from ErrInvalidProof so an
// over-range witness observably fails the range-verification rather than
// the homomorphism check (spec.md §8 property 6).
var ErrRangeClaim = errors.New("maurer: response outside the claimed range")

// repetitionPool fans the per-repetition independent group operations
// Prove and Verify perform out across goroutines (spec.md §5 "heavy
// computation ... delegated to external libraries", §9's repetition-count
// parallelism); single-party callers have no round.Helper of their own to
// supply a pool, so this package keeps one shared one.
var repetitionPool = pool.NewPool(0)

// Proof is a Sigma-protocol transcript: one commitment (statement mask)
// and one response per repetition, with the repetition count fixed by the
// language it was produced over (spec.md §4.4).
type Proof struct {
	Commitments []group.Element
	Responses   []group.Element
}

// Prove runs the full Sigma-protocol for lang over witness, whose image
// under lang's homomorphism is statement, producing a non-interactive
// proof via Fiat-Shamir (spec.md §4.4 steps 1-4: sample a randomizer per
// repetition, commit its image, slice each repetition's challenge out of
// a single 128-bit draw, respond with z_i = r_i + c_i*w).
func Prove(rng io.Reader, lang Language, witness, statement group.Element) (*Proof, error) {
	reps := lang.Repetitions()
	width := challengeWidth(lang)

	type randomizerCommitment struct {
		randomizer group.Element
		commitment group.Element
	}
	rcs, err := pool.Map(repetitionPool, reps, func(i int) (randomizerCommitment, error) {
		r, err := lang.SampleWitness(rng)
		if err != nil {
			return randomizerCommitment{}, err
		}
		commitment, err := lang.Homomorphism(r)
		if err != nil {
			return randomizerCommitment{}, err
		}
		return randomizerCommitment{randomizer: r, commitment: commitment}, nil
	})
	if err != nil {
		return nil, err
	}

	randomizers := make([]group.Element, reps)
	proof := &Proof{
		Commitments: make([]group.Element, reps),
		Responses:   make([]group.Element, reps),
	}
	for i, rc := range rcs {
		randomizers[i] = rc.randomizer
		proof.Commitments[i] = rc.commitment
	}

	challenge := ChallengeBits(lang, statement, proof.Commitments)
	responses, err := pool.Map(repetitionPool, reps, func(i int) (group.Element, error) {
		c := ChallengeAt(challenge, i, width)
		return randomizers[i].Add(witness.ScalarMul(c)), nil
	})
	if err != nil {
		return nil, err
	}
	copy(proof.Responses, responses)
	return proof, nil
}

// Verify checks a Proof against a claimed statement: every response is
// first checked against the language's range claims (when it makes any),
// then each repetition's challenge is recomputed and the homomorphism
// identity f(z_i) == a_i + c_i*x asserted (spec.md §4.4 step 5).
func Verify(lang Language, statement group.Element, proof *Proof) error {
	reps := lang.Repetitions()
	width := challengeWidth(lang)
	if len(proof.Commitments) != reps || len(proof.Responses) != reps {
		return ErrInvalidProof
	}
	if rv, ok := lang.(RangeVerifier); ok {
		for _, z := range proof.Responses {
			if err := rv.VerifyRange(z); err != nil {
				return err
			}
		}
	}
	challenge := ChallengeBits(lang, statement, proof.Commitments)
	valid, err := pool.Map(repetitionPool, reps, func(i int) (bool, error) {
		lhs, err := lang.Homomorphism(proof.Responses[i])
		if err != nil {
			return false, nil
		}
		c := ChallengeAt(challenge, i, width)
		rhs := proof.Commitments[i].Add(statement.ScalarMul(c))
		return lhs.Equal(rhs), nil
	})
	if err != nil {
		return err
	}
	for _, ok := range valid {
		if !ok {
			return ErrInvalidProof
		}
	}
	return nil
}
