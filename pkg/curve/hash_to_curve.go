package curve

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/luxfi/ahe2pc/pkg/hash"
)

// HashToPoint derives a curve point from a domain label and index via
// try-and-increment: nobody can feasibly know its discrete log relative to
// the standard generator, which is exactly the property Pedersen
// commitment parameters need of their non-G generators (spec.md §4.4
// "Pedersen... commitment parameters"). This is the same nothing-up-my-
// sleeve technique used to pick auxiliary generators in most Pedersen/
// bulletproof implementations; it differs from sampling a scalar and
// multiplying by G, which would leak exactly the discrete log relation the
// commitment's binding property depends on being unknown.
func HashToPoint(label string, index int) *Point {
	for counter := uint32(0); ; counter++ {
		var idxBuf, ctrBuf [4]byte
		binary.BigEndian.PutUint32(idxBuf[:], uint32(index))
		binary.BigEndian.PutUint32(ctrBuf[:], counter)

		t := hash.NewWithDomain("pedersen-generator")
		_ = t.WriteBytes("label", []byte(label))
		_ = t.WriteBytes("index", idxBuf[:])
		_ = t.WriteBytes("counter", ctrBuf[:])
		digest := t.Sum(32)

		candidate := make([]byte, 33)
		candidate[0] = 0x02
		copy(candidate[1:], digest)

		if pub, err := secp256k1.ParsePubKey(candidate); err == nil {
			var jp secp256k1.JacobianPoint
			pub.AsJacobian(&jp)
			return &Point{inner: &jp}
		}
	}
}
