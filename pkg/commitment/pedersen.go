// Package commitment implements the two commitment schemes the Schnorr/
// Maurer proof-aggregation framework builds on (spec.md §4.4): a
// homomorphic Pedersen commitment that the commitment languages in
// pkg/languages and the presign/sign nonce commitments are built over,
// and a transcript commitment that pkg/maurer/aggregation and
// protocols/dkg use to bind a party's message (such as a prover's first
// message) before it is revealed in a later round.
package commitment

import (
	"errors"
	"io"

	"github.com/luxfi/ahe2pc/pkg/curve"
)

// ErrDimensionMismatch is returned when the number of messages passed to
// Commit/Verify does not match the scheme's configured dimension.
var ErrDimensionMismatch = errors.New("commitment: message dimension mismatch")

// PedersenPublicParameters names a homomorphic Pedersen commitment scheme
// Com(msgs, r) = sum(msgs[i]*Generators[i]) + r*H over a single algebraic
// group (spec.md §4.4). THE CORE only ever instantiates this over the
// secp256k1 point group (the group the Schnorr languages' witnesses live
// in), so this package binds directly to pkg/curve rather than the fully
// generic group.Element surface, matching how the teacher's round package
// binds directly to its own concrete types rather than reaching for
// generics (spec.md §9).
type PedersenPublicParameters struct {
	Generators []*curve.Point
	H          *curve.Point
}

// NewPedersenPublicParameters derives k independent message generators and
// a blinding generator H for the given domain label, via
// curve.HashToPoint's nothing-up-my-sleeve construction. Called once per
// protocol session by the party that owns the Pedersen setup (spec.md §1
// "trusted setup for parameter generation is assumed available").
func NewPedersenPublicParameters(label string, dimension int) *PedersenPublicParameters {
	generators := make([]*curve.Point, dimension)
	for i := range generators {
		generators[i] = curve.HashToPoint(label, i)
	}
	return &PedersenPublicParameters{
		Generators: generators,
		H:          curve.HashToPoint(label, dimension),
	}
}

// NewPedersenWithBaseGenerator derives a dimension-1 Pedersen setup whose
// message generator is the curve's canonical base point G, with only the
// blinding generator H derived from the label. Commitments under this
// setup compose directly with public-key and nonce points (x*G), which is
// what lets the sign-time consistency check relate coefficient
// commitments to the DKG public key share and the presign nonce
// commitments by plain point arithmetic (spec.md §4.7 Sign step 2).
func NewPedersenWithBaseGenerator(label string) *PedersenPublicParameters {
	return &PedersenPublicParameters{
		Generators: []*curve.Point{curve.Generator()},
		H:          curve.HashToPoint(label, 0),
	}
}

func (pp *PedersenPublicParameters) Dimension() int { return len(pp.Generators) }

// Bytes is the canonical serialization of the full generator set, absorbed
// into Fiat-Shamir transcripts so a proof is bound to the exact setup it
// was produced over (spec.md §4.4 "domain separation").
func (pp *PedersenPublicParameters) Bytes() []byte {
	var out []byte
	for _, g := range pp.Generators {
		out = append(out, g.Bytes()...)
	}
	return append(out, pp.H.Bytes()...)
}

// Commitment is an opaque Pedersen commitment value.
type Commitment struct {
	Value *curve.Point
}

func (c *Commitment) Bytes() []byte { return c.Value.Bytes() }

func (c *Commitment) Equal(other *Commitment) bool {
	return c.Value.Equal(other.Value)
}

// Commit computes Com(messages, randomness).
func (pp *PedersenPublicParameters) Commit(messages []*curve.Scalar, randomness *curve.Scalar) (*Commitment, error) {
	if len(messages) != pp.Dimension() {
		return nil, ErrDimensionMismatch
	}
	acc := pp.H.ScalarMul(randomness)
	for i, m := range messages {
		acc = acc.Add(pp.Generators[i].ScalarMul(m))
	}
	return &Commitment{Value: acc}, nil
}

// Verify recomputes Com(messages, randomness) and compares it against c.
func (pp *PedersenPublicParameters) Verify(c *Commitment, messages []*curve.Scalar, randomness *curve.Scalar) (bool, error) {
	recomputed, err := pp.Commit(messages, randomness)
	if err != nil {
		return false, err
	}
	return c.Equal(recomputed), nil
}

// Add homomorphically combines two commitments.
func (pp *PedersenPublicParameters) Add(a, b *Commitment) *Commitment {
	return &Commitment{Value: a.Value.Add(b.Value)}
}

// RandomBlinding samples a uniformly random blinding scalar.
func RandomBlinding(rng io.Reader) (*curve.Scalar, error) {
	return curve.SampleScalar(rng)
}
