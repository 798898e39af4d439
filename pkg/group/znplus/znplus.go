// Package znplus implements the additive group Z_N, the Paillier plaintext
// space (spec.md §4.1, §3 "PlaintextSpaceGroupElement").
package znplus

import (
	"crypto/rand"
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
)

// PublicParameters carries the modulus N defining Z_N.
type PublicParameters struct {
	N       *saferith.Modulus
	ByteLen int
}

func NewPublicParameters(n *saferith.Modulus) *PublicParameters {
	return &PublicParameters{N: n, ByteLen: len(n.Nat().Bytes())}
}

func (pp *PublicParameters) Bytes() []byte { return bignat.ToBig(pp.N.Nat()).Bytes() }

func (pp *PublicParameters) Equal(other group.PublicParameters) bool {
	o, ok := other.(*PublicParameters)
	return ok && bignat.Eq(pp.N.Nat(), o.N.Nat())
}

// Order returns N, the group's (non-prime, in general) order.
func (pp *PublicParameters) Order() *saferith.Modulus { return pp.N }

// Element is a residue in Z_N under addition mod N.
type Element struct {
	value *saferith.Nat
	pp    *PublicParameters
}

// New constructs an element from a value and public parameters, validating
// that value lies in [0, N).
func New(value group.Value, pp *PublicParameters) (*Element, error) {
	v, ok := value.(group.BytesValue)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	nat := new(saferith.Nat).SetBytes(v)
	if bignat.ToBig(nat).Cmp(bignat.ModulusToBig(pp.N)) >= 0 {
		return nil, group.ErrInvalidGroupElement
	}
	return &Element{value: nat, pp: pp}, nil
}

func FromNat(n *saferith.Nat, pp *PublicParameters) *Element {
	reduced := bignat.ModAdd(n, new(saferith.Nat).SetUint64(0), pp.N, pp.ByteLen)
	return &Element{value: reduced, pp: pp}
}

func (e *Element) Nat() *saferith.Nat { return e.value }

func (e *Element) Value() group.Value               { return group.BytesValue(e.value.Bytes()) }
func (e *Element) PublicParameters() group.PublicParameters { return e.pp }
func (e *Element) Order() *saferith.Modulus          { return e.pp.N }

func (e *Element) Neutral() group.Element {
	return &Element{value: new(saferith.Nat).SetUint64(0), pp: e.pp}
}

func (e *Element) Add(other group.Element) group.Element {
	o := other.(*Element)
	return &Element{value: bignat.ModAdd(e.value, o.value, e.pp.N, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Sub(other group.Element) group.Element {
	o := other.(*Element)
	return &Element{value: bignat.ModSub(e.value, o.value, e.pp.N, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Neg() group.Element {
	return &Element{value: bignat.ModNeg(e.value, e.pp.N, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Double() group.Element { return e.Add(e) }

// ScalarMul computes scalar*e mod N (a coefficient, not reduced mod N a
// priori - callers supply coefficients already bounded per spec.md §4.2).
func (e *Element) ScalarMul(scalar *saferith.Nat) group.Element {
	return &Element{value: bignat.ModMul(e.value, scalar, e.pp.N, e.pp.ByteLen), pp: e.pp}
}

func (e *Element) Equal(other group.Element) bool {
	o, ok := other.(*Element)
	return ok && bignat.Eq(e.value, o.value)
}

func (e *Element) Sample(rng io.Reader) (group.Element, error) {
	bound := bignat.ModulusToBig(e.pp.N)
	n, err := rand.Int(rng, bound)
	if err != nil {
		return nil, err
	}
	return FromNat(bignat.FromBig(n, e.pp.ByteLen), e.pp), nil
}
