package paillier

import (
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
)

// ErrThresholdNotReached is returned by Combine when fewer than Threshold
// shares are supplied (spec.md §4.2 "A public combine(shares) step...
// requiring t shares").
var ErrThresholdNotReached = errors.New("paillier: fewer than threshold decryption shares supplied")

// ErrDuplicateShare is returned by Combine when two shares claim the same
// owner.
var ErrDuplicateShare = errors.New("paillier: duplicate share owner")

// KeyShare is one committee member's share of the decryption exponent,
// implementing ahe.ThresholdDecryptionKeyShare (spec.md §4.2 "Threshold
// decryption key"). Shares are produced by a trusted-dealer
// GenerateThresholdKeyPair; protocols/dkg generates only the ECDSA key
// shares and takes the Paillier key as given, so no dealerless way to
// produce these shares exists in this module.
type KeyShare struct {
	PublicKey

	Owner uint16
	share *big.Int // f(owner), a point on the degree-(threshold-1) sharing polynomial
}

// GenerateThresholdKeyPair runs trusted-dealer (t,n) Paillier threshold
// key generation: a single decryption exponent d is sampled as in
// GenerateKeyPair, then Shamir-shared over the integers among n parties
// with reconstruction threshold t, following the Damgard-Jurik/
// Fouque-Poupard-Stern integral-Lagrange-coefficient technique (scaling
// by Delta = n!) so that no share-holder's individual share leaks
// information about d on its own (spec.md §4.2, §1 "trusted setup for
// parameter generation is assumed available").
func GenerateThresholdKeyPair(rng io.Reader, primeBits, partyCount, threshold int, messageBound *saferith.Nat) (*PublicKey, []*KeyShare, error) {
	if threshold < 1 || threshold > partyCount {
		return nil, nil, errors.New("paillier: threshold must be in [1, partyCount]")
	}
	sk, err := GenerateKeyPair(rng, primeBits, messageBound)
	if err != nil {
		return nil, nil, err
	}

	n := bignat.ModulusToBig(sk.pp.N)
	// Coefficients are sampled with enough statistical slack over N that a
	// single share statistically hides d (spec.md §4.2's circuit-privacy
	// masking uses the same slack-over-bound technique).
	coeffBits := n.BitLen() + StatisticalSecurityParameter
	coeffs := make([]*big.Int, threshold)
	coeffs[0] = sk.d
	for i := 1; i < threshold; i++ {
		c, err := randBits(rng, coeffBits)
		if err != nil {
			return nil, nil, err
		}
		coeffs[i] = c
	}

	shares := make([]*KeyShare, partyCount)
	for i := 0; i < partyCount; i++ {
		owner := uint16(i + 1)
		shares[i] = &KeyShare{
			PublicKey: sk.PublicKey,
			Owner:     owner,
			share:     evalPolynomial(coeffs, int64(owner)),
		}
	}
	return &sk.PublicKey, shares, nil
}

// evalPolynomial evaluates sum(coeffs[i] * x^i) over the integers.
func evalPolynomial(coeffs []*big.Int, x int64) *big.Int {
	result := new(big.Int)
	xBig := big.NewInt(x)
	power := big.NewInt(1)
	for _, c := range coeffs {
		term := new(big.Int).Mul(c, power)
		result.Add(result, term)
		power.Mul(power, xBig)
	}
	return result
}

// GenerateDecryptionShareSemiHonest computes this share-holder's partial
// decryption c^(2*share) mod N^2. No proof of correct computation is
// attached (spec.md §4.2 "semi-honest"); a malicious share can only be
// caught by Combine's consumers failing signature verification
// downstream, not by this package.
func (ks *KeyShare) GenerateDecryptionShareSemiHonest(ciphertext group.Element) (ahe.DecryptionShare, error) {
	c, ok := ciphertext.(interface{ Nat() *saferith.Nat })
	if !ok {
		return ahe.DecryptionShare{}, group.ErrInvalidGroupElement
	}
	n2 := bignat.ModulusToBig(ks.pp.N2)
	cBig := bignat.ToBig(c.Nat())

	exponent := new(big.Int).Mul(ks.share, big.NewInt(2))
	value := new(big.Int).Exp(cBig, exponent, n2)
	return ahe.DecryptionShare{
		Owner: ks.Owner,
		Value: bignat.FromBig(value, len(ks.pp.N2.Nat().Bytes())),
	}, nil
}

// ThresholdCombiner reconstructs a plaintext from at least Threshold
// decryption shares via Lagrange interpolation in the exponent, scaled by
// Delta = partyCount! to keep every coefficient an integer (spec.md §4.2
// "A public combine(shares) step (external) that reconstructs the
// plaintext").
type ThresholdCombiner struct {
	pp         *PublicParameters
	partyCount int
	threshold  int
}

// NewThresholdCombiner builds a combiner for the given public parameters
// and (t, n) committee shape.
func NewThresholdCombiner(pp *PublicParameters, partyCount, threshold int) *ThresholdCombiner {
	return &ThresholdCombiner{pp: pp, partyCount: partyCount, threshold: threshold}
}

func (tc *ThresholdCombiner) Threshold() int { return tc.threshold }

func (tc *ThresholdCombiner) Combine(ciphertext group.Element, shares []ahe.DecryptionShare) (group.Element, error) {
	if len(shares) < tc.threshold {
		return nil, ErrThresholdNotReached
	}
	shares = shares[:tc.threshold]
	seen := make(map[uint16]bool, len(shares))
	for _, s := range shares {
		if seen[s.Owner] {
			return nil, ErrDuplicateShare
		}
		seen[s.Owner] = true
	}

	delta := factorial(tc.partyCount)
	n2 := bignat.ModulusToBig(tc.pp.N2)
	n := bignat.ModulusToBig(tc.pp.N)

	combined := big.NewInt(1)
	for _, s := range shares {
		lambda := scaledLagrangeCoefficientAtZero(shares, s.Owner, delta)
		exponent := new(big.Int).Mul(lambda, big.NewInt(2))
		if exponent.Sign() < 0 {
			exponent.Neg(exponent)
			term := new(big.Int).Exp(bignat.ToBig(s.Value), exponent, n2)
			term.ModInverse(term, n2)
			combined.Mul(combined, term)
		} else {
			term := new(big.Int).Exp(bignat.ToBig(s.Value), exponent, n2)
			combined.Mul(combined, term)
		}
		combined.Mod(combined, n2)
	}

	l := new(big.Int).Sub(combined, big.NewInt(1))
	l.Div(l, n)
	l.Mod(l, n)

	fourDelta := new(big.Int).Mul(delta, big.NewInt(4))
	inv := new(big.Int).ModInverse(fourDelta, n)
	if inv == nil {
		return nil, errors.New("paillier: 4*partyCount! not invertible mod N")
	}
	m := new(big.Int).Mul(l, inv)
	m.Mod(m, n)

	value := bignat.FromBig(m, tc.pp.plaintextPP.ByteLen)
	return znplus.FromNat(value, tc.pp.plaintextPP), nil
}

// scaledLagrangeCoefficientAtZero computes Delta * L_owner(0), where
// L_owner is the Lagrange basis polynomial for owner over the x-values of
// shares, as an exact integer (guaranteed integral because Delta =
// partyCount! absorbs every possible denominator (i-j) for i,j in
// [1, partyCount]).
func scaledLagrangeCoefficientAtZero(shares []ahe.DecryptionShare, owner uint16, delta *big.Int) *big.Int {
	num := new(big.Int).Set(delta)
	den := big.NewInt(1)
	i := big.NewInt(int64(owner))
	for _, s := range shares {
		if s.Owner == owner {
			continue
		}
		j := big.NewInt(int64(s.Owner))
		num.Mul(num, new(big.Int).Neg(j))
		den.Mul(den, new(big.Int).Sub(i, j))
	}
	result := new(big.Int).Div(num, den)
	return result
}

func factorial(n int) *big.Int {
	result := big.NewInt(1)
	for i := int64(2); i <= int64(n); i++ {
		result.Mul(result, big.NewInt(i))
	}
	return result
}

var _ ahe.ThresholdDecryptionKeyShare = (*KeyShare)(nil)
var _ ahe.Combiner = (*ThresholdCombiner)(nil)
