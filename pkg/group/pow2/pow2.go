// Package pow2 implements the additive group Z/2^kZ using wrapping
// arithmetic on fixed-width big integers (spec.md §4.1 "Power-of-two
// moduli group"). It is the group every enhanced-language range claim
// lives in (spec.md §3 "EnhancedWitness.decomposed").
package pow2

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
)

// PublicParameters fixes the bit-size k of the group Z/2^kZ.
type PublicParameters struct {
	Bits int
}

func NewPublicParameters(bits int) *PublicParameters { return &PublicParameters{Bits: bits} }

func (pp *PublicParameters) Bytes() []byte {
	out := make([]byte, 4)
	v := uint32(pp.Bits)
	out[0], out[1], out[2], out[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	return out
}

func (pp *PublicParameters) Equal(other group.PublicParameters) bool {
	o, ok := other.(*PublicParameters)
	return ok && pp.Bits == o.Bits
}

func (pp *PublicParameters) byteLen() int { return (pp.Bits + 7) / 8 }

func (pp *PublicParameters) modulus() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(pp.Bits))
}

// Element is a residue modulo 2^Bits.
type Element struct {
	value *big.Int
	pp    *PublicParameters
}

// New constructs an element, validating value < 2^Bits.
func New(value group.Value, pp *PublicParameters) (*Element, error) {
	v, ok := value.(group.BytesValue)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	n := new(big.Int).SetBytes(v)
	if n.Cmp(pp.modulus()) >= 0 {
		return nil, group.ErrInvalidGroupElement
	}
	return &Element{value: n, pp: pp}, nil
}

// FromBig wraps an integer, reducing it modulo 2^Bits.
func FromBig(n *big.Int, pp *PublicParameters) *Element {
	r := new(big.Int).Mod(n, pp.modulus())
	return &Element{value: r, pp: pp}
}

func (e *Element) Big() *big.Int { return e.value }

func (e *Element) Value() group.Value {
	return group.BytesValue(bignat.FromBig(e.value, e.pp.byteLen()).Bytes())
}
func (e *Element) PublicParameters() group.PublicParameters { return e.pp }

func (e *Element) Neutral() group.Element {
	return &Element{value: new(big.Int), pp: e.pp}
}

func (e *Element) Add(other group.Element) group.Element {
	o := other.(*Element)
	r := new(big.Int).Add(e.value, o.value)
	r.Mod(r, e.pp.modulus())
	return &Element{value: r, pp: e.pp}
}

func (e *Element) Sub(other group.Element) group.Element {
	o := other.(*Element)
	r := new(big.Int).Sub(e.value, o.value)
	r.Mod(r, e.pp.modulus())
	return &Element{value: r, pp: e.pp}
}

func (e *Element) Neg() group.Element {
	r := new(big.Int).Neg(e.value)
	r.Mod(r, e.pp.modulus())
	return &Element{value: r, pp: e.pp}
}

func (e *Element) Double() group.Element { return e.Add(e) }

func (e *Element) ScalarMul(scalar *saferith.Nat) group.Element {
	r := new(big.Int).Mul(e.value, bignat.ToBig(scalar))
	r.Mod(r, e.pp.modulus())
	return &Element{value: r, pp: e.pp}
}

func (e *Element) Equal(other group.Element) bool {
	o, ok := other.(*Element)
	return ok && e.value.Cmp(o.value) == 0
}

// Sample draws a value uniformly from [0, 2^Bits).
func (e *Element) Sample(rng io.Reader) (group.Element, error) {
	n, err := rand.Int(rng, e.pp.modulus())
	if err != nil {
		return nil, err
	}
	return &Element{value: n, pp: e.pp}, nil
}

// Sample is the package-level convenience constructor used before any
// Element exists yet.
func Sample(rng io.Reader, pp *PublicParameters) (*Element, error) {
	n, err := rand.Int(rng, pp.modulus())
	if err != nil {
		return nil, err
	}
	return &Element{value: n, pp: pp}, nil
}
