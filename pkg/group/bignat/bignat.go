// Package bignat centralizes conversions between saferith's fixed-width
// natural numbers and math/big, so every concrete group realization in
// pkg/group performs modular arithmetic through one reviewed chokepoint
// instead of re-deriving it. saferith.Nat/Modulus remain the types that
// cross package boundaries (public parameters, values, ciphertexts);
// big.Int is used only as the scratch space for the arithmetic itself.
package bignat

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// ToBig converts a saferith natural number to its big.Int value.
func ToBig(n *saferith.Nat) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(n.Bytes())
}

// FromBig converts a big.Int into a saferith natural number announcing at
// least byteLen bytes of capacity (rounded up), matching the fixed-width
// storage saferith uses internally.
func FromBig(b *big.Int, byteLen int) *saferith.Nat {
	buf := make([]byte, byteLen)
	b.FillBytes(buf)
	return new(saferith.Nat).SetBytes(buf)
}

// ModulusToBig converts a saferith modulus to its big.Int value.
func ModulusToBig(m *saferith.Modulus) *big.Int {
	return ToBig(m.Nat())
}

// ModulusFromBig builds a saferith modulus from a big.Int.
func ModulusFromBig(b *big.Int) *saferith.Modulus {
	return saferith.ModulusFromNat(new(saferith.Nat).SetBytes(b.Bytes()))
}

// ModAdd computes (x+y) mod m.
func ModAdd(x, y *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, by, bm := ToBig(x), ToBig(y), ModulusToBig(m)
	r := new(big.Int).Add(bx, by)
	r.Mod(r, bm)
	return FromBig(r, byteLen)
}

// ModSub computes (x-y) mod m.
func ModSub(x, y *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, by, bm := ToBig(x), ToBig(y), ModulusToBig(m)
	r := new(big.Int).Sub(bx, by)
	r.Mod(r, bm)
	return FromBig(r, byteLen)
}

// ModNeg computes (-x) mod m.
func ModNeg(x *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, bm := ToBig(x), ModulusToBig(m)
	r := new(big.Int).Neg(bx)
	r.Mod(r, bm)
	return FromBig(r, byteLen)
}

// ModMul computes (x*y) mod m.
func ModMul(x, y *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, by, bm := ToBig(x), ToBig(y), ModulusToBig(m)
	r := new(big.Int).Mul(bx, by)
	r.Mod(r, bm)
	return FromBig(r, byteLen)
}

// ModExp computes x^y mod m.
func ModExp(x, y *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, by, bm := ToBig(x), ToBig(y), ModulusToBig(m)
	r := new(big.Int).Exp(bx, by, bm)
	return FromBig(r, byteLen)
}

// ModInverse computes x^-1 mod m. Panics if x is not invertible; callers in
// this codebase only invert elements already known to lie in a
// multiplicative group.
func ModInverse(x *saferith.Nat, m *saferith.Modulus, byteLen int) *saferith.Nat {
	bx, bm := ToBig(x), ModulusToBig(m)
	r := new(big.Int).ModInverse(bx, bm)
	if r == nil {
		panic("bignat: value has no inverse modulo m")
	}
	return FromBig(r, byteLen)
}

// GCD returns gcd(x, y).
func GCD(x, y *saferith.Nat) *big.Int {
	return new(big.Int).GCD(nil, nil, ToBig(x), ToBig(y))
}

// Eq reports whether x and y represent the same integer.
func Eq(x, y *saferith.Nat) bool {
	return ToBig(x).Cmp(ToBig(y)) == 0
}

// IsZero reports whether x is zero.
func IsZero(x *saferith.Nat) bool {
	return ToBig(x).Sign() == 0
}
