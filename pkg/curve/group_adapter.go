package curve

import (
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/ahe2pc/pkg/group"
)

// secp256k1 scalar field order q, fed into ScalarPublicParameters.Order()
// and used throughout pkg/group as the "statement group order" q of
// spec.md §4.2's evaluate_linear_combination.
var secp256k1Order = func() *big.Int {
	return new(big.Int).Set(secp256k1.S256().N)
}()

// ScalarPublicParameters marks the Z_q group of secp256k1 scalars.
type ScalarPublicParameters struct{}

func (ScalarPublicParameters) Bytes() []byte { return []byte("secp256k1-scalar") }
func (ScalarPublicParameters) Equal(other group.PublicParameters) bool {
	_, ok := other.(ScalarPublicParameters)
	return ok
}

// Order returns the secp256k1 scalar field order q.
func (ScalarPublicParameters) Order() *saferith.Modulus {
	return saferith.ModulusFromNat(new(saferith.Nat).SetBytes(secp256k1Order.Bytes()))
}

// Generator returns the scalar 1, the generator of the additive group Z_q.
func (ScalarPublicParameters) Generator() group.Element {
	return WrapScalar(NewScalar().SetUint64(1))
}

// ScalarElement adapts *Scalar to group.Element.
type ScalarElement struct{ s *Scalar }

// WrapScalar lifts a concrete Scalar into the generic group abstraction.
func WrapScalar(s *Scalar) *ScalarElement { return &ScalarElement{s: s} }

// NewScalarElement constructs a group.Element from a serialized value,
// validating it reduces to a canonical residue mod q.
func NewScalarElement(value group.Value, _ ScalarPublicParameters) (*ScalarElement, error) {
	v, ok := value.(group.BytesValue)
	if !ok || len(v) != 32 {
		return nil, group.ErrInvalidGroupElement
	}
	s := NewScalar()
	if overflow := s.inner.SetByteSlice(v); overflow {
		return nil, group.ErrInvalidGroupElement
	}
	return &ScalarElement{s: s}, nil
}

func (e *ScalarElement) Inner() *Scalar { return e.s }

func (e *ScalarElement) Value() group.Value                       { return group.BytesValue(e.s.Bytes()) }
func (e *ScalarElement) PublicParameters() group.PublicParameters { return ScalarPublicParameters{} }
func (e *ScalarElement) Neutral() group.Element                   { return WrapScalar(NewScalar()) }
func (e *ScalarElement) Add(other group.Element) group.Element {
	return WrapScalar(e.s.Add(other.(*ScalarElement).s))
}
func (e *ScalarElement) Sub(other group.Element) group.Element {
	return WrapScalar(e.s.Sub(other.(*ScalarElement).s))
}
func (e *ScalarElement) Neg() group.Element    { return WrapScalar(e.s.Neg()) }
func (e *ScalarElement) Double() group.Element { return WrapScalar(e.s.Add(e.s)) }
func (e *ScalarElement) ScalarMul(scalar *saferith.Nat) group.Element {
	return WrapScalar(e.s.Mul(natToScalar(scalar)))
}
func (e *ScalarElement) Equal(other group.Element) bool {
	o, ok := other.(*ScalarElement)
	return ok && e.s.Equal(o.s)
}

func (e *ScalarElement) Sample(rng io.Reader) (group.Element, error) {
	s, err := SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return WrapScalar(s), nil
}

func natToScalar(n *saferith.Nat) *Scalar {
	return NewScalar().SetBytesWide(n.Bytes())
}

// PointPublicParameters marks the prime-order group of secp256k1 points.
type PointPublicParameters struct{}

func (PointPublicParameters) Bytes() []byte { return []byte("secp256k1-point") }
func (PointPublicParameters) Equal(other group.PublicParameters) bool {
	_, ok := other.(PointPublicParameters)
	return ok
}
func (PointPublicParameters) Order() *saferith.Modulus { return ScalarPublicParameters{}.Order() }
func (PointPublicParameters) Generator() group.Element { return WrapPoint(Generator()) }

// PointElement adapts *Point to group.Element, with the affine-x
// extraction capability ECDSA needs (spec.md §4.1).
type PointElement struct{ p *Point }

func WrapPoint(p *Point) *PointElement { return &PointElement{p: p} }

// NewPointElement constructs a group.Element from a serialized value,
// validating curve membership.
func NewPointElement(value group.Value, _ PointPublicParameters) (*PointElement, error) {
	v, ok := value.(group.BytesValue)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	p, err := NewPointFromBytes(v)
	if err != nil {
		return nil, group.ErrInvalidGroupElement
	}
	return &PointElement{p: p}, nil
}

func (e *PointElement) Inner() *Point { return e.p }

func (e *PointElement) Value() group.Value                       { return group.BytesValue(e.p.Bytes()) }
func (e *PointElement) PublicParameters() group.PublicParameters { return PointPublicParameters{} }
func (e *PointElement) Neutral() group.Element                   { return WrapPoint(NewPoint()) }
func (e *PointElement) Add(other group.Element) group.Element {
	return WrapPoint(e.p.Add(other.(*PointElement).p))
}
func (e *PointElement) Sub(other group.Element) group.Element {
	return WrapPoint(e.p.Sub(other.(*PointElement).p))
}
func (e *PointElement) Neg() group.Element    { return WrapPoint(e.p.Neg()) }
func (e *PointElement) Double() group.Element { return WrapPoint(e.p.Double()) }
func (e *PointElement) ScalarMul(scalar *saferith.Nat) group.Element {
	return WrapPoint(e.p.ScalarMul(natToScalar(scalar)))
}
func (e *PointElement) Equal(other group.Element) bool {
	o, ok := other.(*PointElement)
	return ok && e.p.Equal(o.p)
}

func (e *PointElement) Sample(rng io.Reader) (group.Element, error) {
	s, err := SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return WrapPoint(s.ActOnBase()), nil
}

// AffineX returns the affine x-coordinate of the point, reduced modulo the
// scalar field order q (spec.md §4.7 Sign: `r = x-coord(R)`).
func (e *PointElement) AffineX() *saferith.Nat {
	return new(saferith.Nat).SetBytes(e.p.XCoordinate().Bytes())
}
