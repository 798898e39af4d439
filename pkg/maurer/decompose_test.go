package maurer_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"

	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/maurer"
)

func TestDecomposeComposeRoundTrip(t *testing.T) {
	const numClaims, bits = 4, 66 // 264 bits, comfortably covers a 256-bit scalar

	for i := 0; i < 25; i++ {
		buf := make([]byte, 32)
		_, err := rand.Read(buf)
		assert.NoError(t, err)
		x := new(saferith.Nat).SetBytes(buf)

		digits := maurer.Decompose(x, numClaims, bits)
		assert.Len(t, digits, numClaims)
		back := maurer.Compose(digits, bits)
		assert.True(t, bignat.Eq(x, back), "round-trip failed for %s", bignat.ToBig(x))
	}
}

func TestDecomposeDigitsFitWithinClaimedBits(t *testing.T) {
	const numClaims, bits = 4, 66
	x := new(saferith.Nat).SetBytes(bytesOfAllOnes(32))
	digits := maurer.Decompose(x, numClaims, bits)
	bound := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	for _, d := range digits {
		assert.Less(t, bignat.ToBig(d).Cmp(bound), 0)
	}
}

func TestDecomposeZero(t *testing.T) {
	digits := maurer.Decompose(new(saferith.Nat).SetUint64(0), 3, 32)
	back := maurer.Compose(digits, 32)
	assert.True(t, bignat.IsZero(back))
}

func bytesOfAllOnes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = 0xff
	}
	return out
}
