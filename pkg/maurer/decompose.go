package maurer

import (
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group/bignat"
)

// Decompose writes value in a base-2^bits positional representation with
// numClaims digits, least-significant digit first: value = sum(digits[i] *
// 2^(i*bits)). This is the witness decomposition the enhanced language
// applies before range-claiming each chunk independently (spec.md §4.4
// "NUM_RANGE_CLAIMS chunks of range_claim_bits each", following
// original_source's decompose_witness).
func Decompose(value *saferith.Nat, numClaims, bits int) []*saferith.Nat {
	v := bignat.ToBig(value)
	mask := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	digits := make([]*saferith.Nat, numClaims)
	rem := new(big.Int).Set(v)
	byteLen := (bits + 7) / 8
	for i := 0; i < numClaims; i++ {
		d := new(big.Int).Mod(rem, mask)
		digits[i] = bignat.FromBig(d, byteLen)
		rem.Rsh(rem, uint(bits))
	}
	return digits
}

// Compose is the inverse of Decompose: sum(digits[i] * 2^(i*bits)).
// Digits wider than bits are accepted here because the enhanced
// language's randomizers and aggregated responses legitimately overflow
// the claim width; the magnitude bound on untrusted digits is enforced
// separately, by EnhancedLanguage.VerifyRange before any recomposition
// of a peer's response.
func Compose(digits []*saferith.Nat, bits int) *saferith.Nat {
	total := new(big.Int)
	for i, d := range digits {
		term := new(big.Int).Lsh(bignat.ToBig(d), uint(i*bits))
		total.Add(total, term)
	}
	byteLen := (total.BitLen() + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	return bignat.FromBig(total, byteLen)
}
