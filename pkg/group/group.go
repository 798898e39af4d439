// Package group is the uniform algebraic abstraction layer described in
// spec.md §4.1: a narrow surface (new/value/neutral/add/sub/neg/scalar_mul/
// double) realized by prime-order elliptic-curve groups, the additive
// groups of integers modulo an odd modulus or modulo 2^k, the
// multiplicative groups mod N and mod N², and direct-product combinators
// that lift operations componentwise over any of the above.
//
// Concrete realizations live in sibling packages (pkg/curve for the
// prime-order group, pkg/group/znplus, pkg/group/pow2, pkg/group/zstar,
// pkg/group/product); this package holds only the shared contracts and
// capability interfaces every realization implements a subset of.
package group

import (
	"crypto/subtle"
	"errors"
	"io"

	"github.com/cronokirby/saferith"
)

// ErrInvalidGroupElement is returned by New when the serialized value does
// not belong to the group described by the given public parameters (curve
// point off-curve, residue not coprime to the modulus, residue out of
// range).
var ErrInvalidGroupElement = errors.New("group: invalid group element")

// ErrInvalidPublicParameters is returned when public parameters are
// internally inconsistent, e.g. a requested sample bit-size exceeding the
// group's fixed-width capacity.
var ErrInvalidPublicParameters = errors.New("group: invalid public parameters")

// Value is the serializable form of a group element. Equality must be
// constant-time (spec.md §9 "Constant-time equality").
type Value interface {
	Bytes() []byte
	Equal(Value) bool
}

// PublicParameters describes the exact group instance (modulus,
// generators, sampling bounds, ...) an Element was constructed against.
// Public parameters are fed into the Fiat-Shamir transcript (spec.md §3)
// so a proof is bound to the precise algebraic setting it was produced
// over.
type PublicParameters interface {
	Bytes() []byte
	Equal(PublicParameters) bool
}

// Element is a member of an additively-written group. Every Element in
// memory was produced by a realization's New(), so membership always
// holds (spec.md §3 invariants).
type Element interface {
	Value() Value
	PublicParameters() PublicParameters
	Neutral() Element
	Add(Element) Element
	Sub(Element) Element
	Neg() Element
	ScalarMul(scalar *saferith.Nat) Element
	Double() Element
	Equal(Element) bool
}

// KnownOrder is implemented by groups whose order is known and fits in a
// saferith.Modulus (spec.md §4.1 "known-order scalar").
type KnownOrder interface {
	Order() *saferith.Modulus
}

// Cyclic is implemented by groups that expose a canonical generator.
type Cyclic interface {
	Generator() Element
}

// Samplable is implemented by groups that support uniform sampling.
type Samplable interface {
	Sample(rng io.Reader) (Element, error)
}

// AffineXCoordinate is implemented by the prime-order elliptic-curve group,
// whose affine x-coordinate (reduced modulo the scalar field order) is the
// quantity ECDSA signatures are built from.
type AffineXCoordinate interface {
	AffineX() *saferith.Nat
}

// BytesValue is a plain byte-string Value with constant-time equality; it
// is the Value type of every group in this package and its siblings.
type BytesValue []byte

func (b BytesValue) Bytes() []byte { return []byte(b) }

func (b BytesValue) Equal(other Value) bool {
	o, ok := other.(BytesValue)
	if !ok || len(o) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(b, o) == 1
}
