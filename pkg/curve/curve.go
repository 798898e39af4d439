// Package curve wraps the decred secp256k1 implementation behind the
// narrow Scalar/Point surface the rest of the core programs against. It is
// the prime-order-group "leaf" that pkg/group lifts into the generic
// algebraic abstraction.
package curve

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Curve identifies a concrete prime-order elliptic curve realization. The
// core ships exactly one: Secp256k1.
type Curve interface {
	Name() string
	NewScalar() *Scalar
	NewPoint() *Point
	ScalarBytes() int
	PointBytes() int
}

// Secp256k1 is the curve used by ECDSA as specified in spec.md §4.7.
type Secp256k1 struct{}

func (Secp256k1) Name() string       { return "secp256k1" }
func (Secp256k1) ScalarBytes() int   { return 32 }
func (Secp256k1) PointBytes() int    { return 33 }
func (Secp256k1) NewScalar() *Scalar { return &Scalar{inner: new(secp256k1.ModNScalar)} }
func (Secp256k1) NewPoint() *Point   { return &Point{inner: new(secp256k1.JacobianPoint)} }

// Scalar is an element of Z_q, the secp256k1 scalar field.
type Scalar struct {
	inner *secp256k1.ModNScalar
}

// NewScalar returns the additive identity of Z_q.
func NewScalar() *Scalar { return Secp256k1{}.NewScalar() }

// SampleScalar draws a uniformly random nonzero scalar using rng.
func SampleScalar(rng io.Reader) (*Scalar, error) {
	var buf [40]byte // only the first 32 bytes are used; values >= q are rejected and redrawn, so there is no modular bias
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, err
		}
		s := new(secp256k1.ModNScalar)
		overflow := s.SetByteSlice(buf[:32])
		if overflow {
			continue
		}
		if s.IsZero() {
			continue
		}
		return &Scalar{inner: s}, nil
	}
}

// SetBytes interprets data as a big-endian encoded scalar, reducing mod q.
// data must be at most 32 bytes; use SetBytesWide for longer encodings.
func (s *Scalar) SetBytes(data []byte) *Scalar {
	s.inner.SetByteSlice(data)
	return s
}

// SetBytesWide interprets data of any length as a big-endian integer and
// reduces it mod q. SetBytes truncates inputs past 32 bytes, which silently
// corrupts values wider than the scalar field (Paillier plaintexts, composed
// range-claim digits), so every conversion from an unbounded integer goes
// through here instead.
func (s *Scalar) SetBytesWide(data []byte) *Scalar {
	n := new(big.Int).SetBytes(data)
	n.Mod(n, scalarOrder())
	return s.SetBytes(n.Bytes())
}

func scalarOrder() *big.Int {
	return new(big.Int).Set(secp256k1.S256().N)
}

// Bytes returns the canonical 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	out := make([]byte, 32)
	copy(out, b[:])
	return out
}

// SetUint64 sets s to the given small value.
func (s *Scalar) SetUint64(v uint64) *Scalar {
	s.inner.SetInt(uint32(v))
	if v > 0xffffffff {
		// ModNScalar.SetInt only takes uint32; fall back to byte encoding for larger seeds.
		var buf [32]byte
		for i := 0; i < 8; i++ {
			buf[31-i] = byte(v >> (8 * i))
		}
		s.inner.SetByteSlice(buf[:])
	}
	return s
}

func (s *Scalar) IsZero() bool { return s.inner.IsZero() }

func (s *Scalar) Add(other *Scalar) *Scalar {
	out := new(secp256k1.ModNScalar).Set(s.inner)
	out.Add(other.inner)
	return &Scalar{inner: out}
}

func (s *Scalar) Sub(other *Scalar) *Scalar {
	neg := new(secp256k1.ModNScalar).Set(other.inner).Negate()
	out := new(secp256k1.ModNScalar).Set(s.inner)
	out.Add(neg)
	return &Scalar{inner: out}
}

func (s *Scalar) Neg() *Scalar {
	out := new(secp256k1.ModNScalar).Set(s.inner).Negate()
	return &Scalar{inner: out}
}

func (s *Scalar) Mul(other *Scalar) *Scalar {
	out := new(secp256k1.ModNScalar).Set(s.inner)
	out.Mul(other.inner)
	return &Scalar{inner: out}
}

// Invert returns s^-1 mod q. s must be nonzero.
func (s *Scalar) Invert() *Scalar {
	out := new(secp256k1.ModNScalar).InverseValNonConst(s.inner)
	return &Scalar{inner: out}
}

func (s *Scalar) Equal(other *Scalar) bool { return s.inner.Equals(other.inner) }

func (s *Scalar) Clone() *Scalar { return &Scalar{inner: new(secp256k1.ModNScalar).Set(s.inner)} }

// ActOnBase returns s*G for the canonical curve generator G.
func (s *Scalar) ActOnBase() *Point {
	var jp secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(s.inner, &jp)
	return &Point{inner: &jp}
}

// Point is a point on the secp256k1 curve.
type Point struct {
	inner *secp256k1.JacobianPoint
}

// NewPoint returns the point at infinity.
func NewPoint() *Point { return Secp256k1{}.NewPoint() }

// NewPointFromBytes parses a compressed SEC1 encoding, validating curve
// membership (group.Element's "new() validates membership" invariant).
func NewPointFromBytes(data []byte) (*Point, error) {
	pk, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, err
	}
	var jp secp256k1.JacobianPoint
	pk.AsJacobian(&jp)
	return &Point{inner: &jp}, nil
}

// Bytes returns the 33-byte compressed SEC1 encoding.
func (p *Point) Bytes() []byte {
	p.inner.ToAffine()
	pub := secp256k1.NewPublicKey(&p.inner.X, &p.inner.Y)
	return pub.SerializeCompressed()
}

func (p *Point) IsIdentity() bool {
	var tmp secp256k1.JacobianPoint
	tmp.Set(p.inner)
	tmp.ToAffine()
	return (tmp.X.IsZero() && tmp.Y.IsZero())
}

func (p *Point) Add(other *Point) *Point {
	var out secp256k1.JacobianPoint
	secp256k1.AddNonConst(p.inner, other.inner, &out)
	return &Point{inner: &out}
}

func (p *Point) Neg() *Point {
	var out secp256k1.JacobianPoint
	out.Set(p.inner)
	out.ToAffine()
	out.Y.Negate(1)
	out.Y.Normalize()
	return &Point{inner: &out}
}

func (p *Point) Sub(other *Point) *Point { return p.Add(other.Neg()) }

func (p *Point) Double() *Point {
	var out secp256k1.JacobianPoint
	secp256k1.DoubleNonConst(p.inner, &out)
	return &Point{inner: &out}
}

// ScalarMul returns s*P.
func (p *Point) ScalarMul(s *Scalar) *Point {
	var out secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(s.inner, p.inner, &out)
	return &Point{inner: &out}
}

func (p *Point) Equal(other *Point) bool {
	a, b := *p.inner, *other.inner
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

func (p *Point) Clone() *Point {
	var out secp256k1.JacobianPoint
	out.Set(p.inner)
	return &Point{inner: &out}
}

// XCoordinate returns the affine x-coordinate of p reduced mod q, the
// quantity used as the ECDSA signature's r component (spec §4.7 Sign,
// step 1: `r = x-coord(R)`).
func (p *Point) XCoordinate() *Scalar {
	var affine secp256k1.JacobianPoint
	affine.Set(p.inner)
	affine.ToAffine()
	var s secp256k1.ModNScalar
	s.SetByteSlice(affine.X.Bytes()[:])
	return &Scalar{inner: &s}
}

// Generator returns the canonical secp256k1 base point G.
func Generator() *Point {
	one := NewScalar().SetUint64(1)
	return one.ActOnBase()
}

// Rand is the default source of cryptographic randomness for the package.
var Rand io.Reader = rand.Reader
