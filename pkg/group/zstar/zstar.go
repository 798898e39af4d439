// Package zstar implements the multiplicative group (Z/MZ)*, used both for
// the Paillier randomness space (M = N) and the Paillier ciphertext space
// (M = N²), per spec.md §3. The group's additive notation maps onto
// multiplication: Add is multiplication mod M, Neg is modular inversion,
// ScalarMul is modular exponentiation, and the Neutral element is 1.
package zstar

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
)

// PublicParameters carries the modulus M of the group (Z/MZ)*.
type PublicParameters struct {
	M       *saferith.Modulus
	ByteLen int
}

func NewPublicParameters(m *saferith.Modulus) *PublicParameters {
	return &PublicParameters{M: m, ByteLen: len(m.Nat().Bytes())}
}

func (pp *PublicParameters) Bytes() []byte { return bignat.ModulusToBig(pp.M).Bytes() }

func (pp *PublicParameters) Equal(other group.PublicParameters) bool {
	o, ok := other.(*PublicParameters)
	return ok && bignat.Eq(pp.M.Nat(), o.M.Nat())
}

// Element is a residue in (Z/MZ)*.
type Element struct {
	value *saferith.Nat
	pp    *PublicParameters
}

// New constructs an element, validating the value lies in [0, M) and is
// coprime to M (spec.md §4.1 "residue not coprime to N").
func New(value group.Value, pp *PublicParameters) (*Element, error) {
	v, ok := value.(group.BytesValue)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	nat := new(saferith.Nat).SetBytes(v)
	b := bignat.ToBig(nat)
	m := bignat.ModulusToBig(pp.M)
	if b.Sign() < 0 || b.Cmp(m) >= 0 {
		return nil, group.ErrInvalidGroupElement
	}
	if new(big.Int).GCD(nil, nil, b, m).Cmp(big.NewInt(1)) != 0 {
		return nil, group.ErrInvalidGroupElement
	}
	return &Element{value: nat, pp: pp}, nil
}

// FromNat wraps a value known to already be a valid unit, skipping the
// coprimality check (used internally once primality/coprimality is
// guaranteed by construction, e.g. ciphertexts produced by encryption).
func FromNat(n *saferith.Nat, pp *PublicParameters) *Element {
	return &Element{value: n, pp: pp}
}

func (e *Element) Nat() *saferith.Nat { return e.value }

func (e *Element) Value() group.Value                       { return group.BytesValue(e.value.Bytes()) }
func (e *Element) PublicParameters() group.PublicParameters { return e.pp }

func (e *Element) Neutral() group.Element {
	return &Element{value: new(saferith.Nat).SetUint64(1), pp: e.pp}
}

// Add is the group operation: multiplication mod M.
func (e *Element) Add(other group.Element) group.Element {
	o := other.(*Element)
	return &Element{value: bignat.ModMul(e.value, o.value, e.pp.M, e.pp.ByteLen), pp: e.pp}
}

// Sub computes e * other^-1 mod M.
func (e *Element) Sub(other group.Element) group.Element {
	o := other.(*Element)
	return e.Add(o.Neg().(*Element))
}

// Neg returns the modular inverse of e.
func (e *Element) Neg() group.Element {
	return &Element{value: bignat.ModInverse(e.value, e.pp.M, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Double() group.Element { return e.Add(e) }

// ScalarMul computes e^scalar mod M.
func (e *Element) ScalarMul(scalar *saferith.Nat) group.Element {
	return &Element{value: bignat.ModExp(e.value, scalar, e.pp.M, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Equal(other group.Element) bool {
	o, ok := other.(*Element)
	return ok && bignat.Eq(e.value, o.value)
}

// Sample draws a uniformly random unit of (Z/MZ)* by rejection sampling.
func (e *Element) Sample(rng io.Reader) (group.Element, error) {
	return Sample(rng, e.pp)
}

// Sample is the package-level convenience constructor.
func Sample(rng io.Reader, pp *PublicParameters) (*Element, error) {
	m := bignat.ModulusToBig(pp.M)
	for {
		n, err := rand.Int(rng, m)
		if err != nil {
			return nil, err
		}
		if n.Sign() == 0 {
			continue
		}
		if new(big.Int).GCD(nil, nil, n, m).Cmp(big.NewInt(1)) != 0 {
			continue
		}
		return &Element{value: bignat.FromBig(n, pp.ByteLen), pp: pp}, nil
	}
}
