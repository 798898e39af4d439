package paillier

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
)

// ErrKeyGenFailed is returned when safe-prime generation does not converge
// within a bounded number of attempts.
var ErrKeyGenFailed = errors.New("paillier: key generation did not converge")

// SecretKey is the full Paillier decryption key, implementing
// ahe.DecryptionKey. GenerateThresholdKeyPair splits it into the
// committee's key shares; the protocols never hold one directly. Tests
// use it as the reference implementation the threshold share scheme
// reconstructs against.
type SecretKey struct {
	PublicKey

	p, q   *big.Int
	lambda *big.Int // lcm(p-1, q-1)
	// d is the decryption exponent: d = lambda * (lambda^-1 mod N).
	d *big.Int
}

// GenerateKeyPair generates a fresh Paillier key with an N of the given
// bit length (primeBits is half of that, i.e. the bit length of each safe
// prime factor), following the standard safe-prime construction so that
// phi(N) = 4*p'*q' has no small factors (spec.md §4.2's Paillier
// instantiation leaves key generation itself unspecified; this follows the
// textbook safe-prime construction the original erik-3milabs/2pc-mpc crate
// assumes of its external Paillier provider).
func GenerateKeyPair(rng io.Reader, primeBits int, messageBound *saferith.Nat) (*SecretKey, error) {
	const maxAttempts = 64
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p, err := safePrime(rng, primeBits)
		if err != nil {
			return nil, err
		}
		q, err := safePrime(rng, primeBits)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() != 2*primeBits {
			continue
		}

		pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
		qMinus1 := new(big.Int).Sub(q, big.NewInt(1))
		gcdP1Q1 := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
		lambda := new(big.Int).Mul(pMinus1, qMinus1)
		lambda.Div(lambda, gcdP1Q1)

		dInv := new(big.Int).ModInverse(lambda, n)
		if dInv == nil {
			continue
		}
		d := new(big.Int).Mul(lambda, dInv)
		d.Mod(d, new(big.Int).Mul(n, n))

		pp := NewPublicParameters(n, messageBound)
		pk, err := New(pp)
		if err != nil {
			return nil, err
		}
		return &SecretKey{PublicKey: *pk, p: p, q: q, lambda: lambda, d: d}, nil
	}
	return nil, ErrKeyGenFailed
}

// safePrime samples a prime p = 2*p'+1 where p' is itself prime.
func safePrime(rng io.Reader, bits int) (*big.Int, error) {
	for {
		p, err := rand.Prime(rng, bits-1)
		if err != nil {
			return nil, err
		}
		candidate := new(big.Int).Lsh(p, 1)
		candidate.Add(candidate, big.NewInt(1))
		if candidate.ProbablyPrime(32) {
			return candidate, nil
		}
	}
}

func (sk *SecretKey) Decrypt(ciphertext group.Element) (group.Element, error) {
	m, err := sk.decryptToNat(ciphertext)
	if err != nil {
		return nil, err
	}
	return znplus.FromNat(m, sk.pp.plaintextPP), nil
}

// decryptToNat implements the textbook Paillier decryption:
// L(c^d mod N^2) where L(u) = (u-1)/N, using d = lambda*(lambda^-1 mod N)
// so that c^d mod N^2 = 1 + m*N mod N^2 (spec.md §4.1's "decrypt the
// plaintext" primitive).
func (sk *SecretKey) decryptToNat(ciphertext group.Element) (*saferith.Nat, error) {
	c, ok := ciphertext.(interface{ Nat() *saferith.Nat })
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	n2 := bignat.ModulusToBig(sk.pp.N2)
	n := bignat.ModulusToBig(sk.pp.N)

	cBig := bignat.ToBig(c.Nat())
	u := new(big.Int).Exp(cBig, sk.d, n2)
	l := new(big.Int).Sub(u, big.NewInt(1))
	l.Div(l, n)
	l.Mod(l, n)
	return bignat.FromBig(l, sk.pp.plaintextPP.ByteLen), nil
}

// ahe.ErrZeroDimension, ahe.ErrUnsafePublicParameters referenced for
// documentation purposes only; SecretKey reuses PublicKey's evaluation
// logic by embedding.
var _ ahe.DecryptionKey = (*SecretKey)(nil)
