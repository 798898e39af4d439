// Package paillier instantiates the AHE trait (pkg/ahe) over the Paillier
// cryptosystem: plaintext space Z_N, randomness space (Z/NZ)*, ciphertext
// space (Z/N²Z)* (spec.md §3, §4.2). The raw Paillier primitive (keygen,
// encrypt-with-randomness, partial decryption, share combination) is
// listed in spec.md §1 as an external collaborator THE CORE merely calls
// through the ahe.EncryptionKey/DecryptionKey/ThresholdDecryptionKeyShare
// interfaces; no importable Go Paillier library exists among the
// retrieved example dependencies, so this package supplies that primitive
// itself (see DESIGN.md), built on the teacher's saferith/group stack
// rather than on a fabricated dependency.
package paillier

import (
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
	"github.com/luxfi/ahe2pc/pkg/group/zstar"
)

// StatisticalSecurityParameter is the statistical security parameter s
// used throughout the core to size circuit-privacy masks and enhanced
// Schnorr randomizer sub-ranges (spec.md §4.2, §9 "Open question:
// randomizer sub-range selection"). It mirrors the value the original
// erik-3milabs/2pc-mpc crate's lib.rs fixes as
// STATISTICAL_SECURITY_PARAMETER.
const StatisticalSecurityParameter = 64

// ComputationalSecurityParameter is the Fiat-Shamir per-statement
// challenge bit-length (spec.md §6).
const ComputationalSecurityParameter = 128

// PublicParameters describes one Paillier instance.
type PublicParameters struct {
	N  *saferith.Modulus
	N2 *saferith.Modulus

	plaintextPP  *znplus.PublicParameters
	randomnessPP *zstar.PublicParameters
	ciphertextPP *zstar.PublicParameters

	// bound is B, the bound enforced on every plaintext/coefficient passed
	// to a linear evaluation (spec.md §4.2).
	bound *saferith.Nat
}

// NewPublicParameters builds public parameters from a Paillier modulus N.
// New() never rejects N outright (spec.md §9 "circuit-privacy
// preconditions": the check happens per evaluation call, not here).
func NewPublicParameters(n *big.Int, messageBound *saferith.Nat) *PublicParameters {
	nMod := saferith.ModulusFromNat(new(saferith.Nat).SetBytes(n.Bytes()))
	n2 := new(big.Int).Mul(n, n)
	n2Mod := saferith.ModulusFromNat(new(saferith.Nat).SetBytes(n2.Bytes()))
	return &PublicParameters{
		N:            nMod,
		N2:           n2Mod,
		plaintextPP:  znplus.NewPublicParameters(nMod),
		randomnessPP: zstar.NewPublicParameters(nMod),
		ciphertextPP: zstar.NewPublicParameters(n2Mod),
		bound:        messageBound,
	}
}

func (pp *PublicParameters) Bytes() []byte { return bignat.ModulusToBig(pp.N).Bytes() }

func (pp *PublicParameters) Equal(other group.PublicParameters) bool {
	o, ok := other.(*PublicParameters)
	return ok && bignat.Eq(pp.N.Nat(), o.N.Nat())
}

func (pp *PublicParameters) PlaintextSpacePublicParameters() group.PublicParameters {
	return pp.plaintextPP
}
func (pp *PublicParameters) RandomnessSpacePublicParameters() group.PublicParameters {
	return pp.randomnessPP
}
func (pp *PublicParameters) CiphertextSpacePublicParameters() group.PublicParameters {
	return pp.ciphertextPP
}
func (pp *PublicParameters) MessageBound() *saferith.Nat  { return pp.bound }
func (pp *PublicParameters) StatisticalSecurityBits() int { return StatisticalSecurityParameter }

// CircuitPrivacyMaskBits exposes the mask sizing to the proof layers
// (spec.md §4.2); EvaluateLinearCombination draws its mask with exactly
// this many bits.
func (pp *PublicParameters) CircuitPrivacyMaskBits(dimension int, statementGroupOrder *saferith.Nat) int {
	return pp.circuitPrivacyMaskBits(dimension, statementGroupOrder)
}

// PublicKey is the Paillier encryption key, implementing ahe.EncryptionKey.
type PublicKey struct {
	pp *PublicParameters
}

// New constructs an encryption key from public parameters. It validates
// nothing about the safety of N beyond the group's own membership checks
// (spec.md §9): the circuit-privacy bound is enforced per evaluation call.
func New(pp *PublicParameters) (*PublicKey, error) {
	return &PublicKey{pp: pp}, nil
}

func (k *PublicKey) PublicParameters() ahe.PublicParameters { return k.pp }

// onePlusN is the Paillier generator (1+N) mod N².
func (pp *PublicParameters) onePlusN() *saferith.Nat {
	n2 := bignat.ModulusToBig(pp.N2)
	one := bignat.ModulusToBig(pp.N)
	v := new(big.Int).Add(one, big.NewInt(1))
	v.Mod(v, n2)
	return bignat.FromBig(v, len(pp.N2.Nat().Bytes()))
}

func (k *PublicKey) EncryptWithRandomness(plaintext, randomness group.Element) (group.Element, error) {
	m, ok := plaintext.(*znplus.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	r, ok := randomness.(*zstar.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	n2 := k.pp.N2
	byteLen := len(n2.Nat().Bytes())

	gm := bignat.ModExp(k.pp.onePlusN(), m.Nat(), n2, byteLen)
	rn := bignat.ModExp(r.Nat(), k.pp.N.Nat(), n2, byteLen)
	c := bignat.ModMul(gm, rn, n2, byteLen)
	return zstar.FromNat(c, k.pp.ciphertextPP), nil
}

func (k *PublicKey) Encrypt(plaintext group.Element, rng io.Reader) (group.Element, group.Element, error) {
	r, err := zstar.Sample(rng, k.pp.randomnessPP)
	if err != nil {
		return nil, nil, err
	}
	c, err := k.EncryptWithRandomness(plaintext, r)
	if err != nil {
		return nil, nil, err
	}
	return r, c, nil
}

// circuitPrivacyMaskBits returns the bit-size of the statistical mask
// drawn to hide a linear evaluation of dimension l: size is
// (l*B^2/q) bit-length plus s bits of statistical slack (spec.md §4.2).
func (pp *PublicParameters) circuitPrivacyMaskBits(l int, q *saferith.Nat) int {
	b := bignat.ToBig(pp.bound)
	bound := new(big.Int).Mul(b, b)
	bound.Mul(bound, big.NewInt(int64(l)))
	qBig := bignat.ToBig(q)
	if qBig.Sign() > 0 {
		bound.Div(bound, qBig)
	}
	bits := bound.BitLen() + pp.StatisticalSecurityBits()
	if bits < 1 {
		bits = 1
	}
	return bits
}

// checkCircuitPrivacyBound enforces 2*l*B^2 < N (spec.md §9).
func (pp *PublicParameters) checkCircuitPrivacyBound(l int) error {
	b := bignat.ToBig(pp.bound)
	bound := new(big.Int).Mul(b, b)
	bound.Mul(bound, big.NewInt(2*int64(l)))
	if bound.Cmp(bignat.ModulusToBig(pp.N)) >= 0 {
		return ahe.ErrUnsafePublicParameters
	}
	return nil
}

func (k *PublicKey) EvaluateLinearCombinationWithRandomness(
	coefficients []*saferith.Nat,
	ciphertexts []group.Element,
	statementGroupOrder *saferith.Nat,
	mask *saferith.Nat,
	randomness group.Element,
) (group.Element, error) {
	l := len(coefficients)
	if l == 0 {
		return nil, ahe.ErrZeroDimension
	}
	if len(ciphertexts) != l {
		return nil, group.ErrInvalidGroupElement
	}
	if err := k.pp.checkCircuitPrivacyBound(l); err != nil {
		return nil, err
	}

	mq := new(big.Int).Mul(bignat.ToBig(mask), bignat.ToBig(statementGroupOrder))
	mq.Mod(mq, bignat.ModulusToBig(k.pp.N))
	maskTimesQ := znplus.FromNat(bignat.FromBig(mq, k.pp.plaintextPP.ByteLen), k.pp.plaintextPP)
	encMask, err := k.EncryptWithRandomness(maskTimesQ, randomness)
	if err != nil {
		return nil, err
	}

	acc := encMask
	for i := 0; i < l; i++ {
		ct, ok := ciphertexts[i].(*zstar.Element)
		if !ok {
			return nil, group.ErrInvalidGroupElement
		}
		term := ct.ScalarMul(coefficients[i])
		acc = acc.Add(term)
	}
	return acc, nil
}

func (k *PublicKey) EvaluateLinearCombination(
	coefficients []*saferith.Nat,
	ciphertexts []group.Element,
	statementGroupOrder *saferith.Nat,
	rng io.Reader,
) (*saferith.Nat, group.Element, group.Element, error) {
	if len(coefficients) == 0 {
		return nil, nil, nil, ahe.ErrZeroDimension
	}
	bits := k.pp.circuitPrivacyMaskBits(len(coefficients), statementGroupOrder)
	maskBig, err := randBits(rng, bits)
	if err != nil {
		return nil, nil, nil, err
	}
	mask := bignat.FromBig(maskBig, k.pp.plaintextPP.ByteLen)
	r, err := zstar.Sample(rng, k.pp.randomnessPP)
	if err != nil {
		return nil, nil, nil, err
	}
	ct, err := k.EvaluateLinearCombinationWithRandomness(coefficients, ciphertexts, statementGroupOrder, mask, r)
	if err != nil {
		return nil, nil, nil, err
	}
	return mask, r, ct, nil
}

func randBits(rng io.Reader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8+8) // oversample for negligible bias
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(buf)
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return n.Mod(n, mod), nil
}
