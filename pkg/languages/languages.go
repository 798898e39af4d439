// Package languages instantiates the seven concrete Schnorr languages
// spec.md §4.6 tables: each is a group homomorphism implementing
// pkg/maurer.Language, ready to be proven directly or lifted through
// pkg/maurer.NewEnhancedLanguage when a witness component needs a range
// claim. Every language here binds to the concrete secp256k1 curve group
// and Paillier AHE instance THE CORE ships, the way pkg/commitment binds
// directly to pkg/curve rather than the fully generic group.Element
// surface (spec.md §9).
package languages

import (
	"io"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/ahe"
	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/curve"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/group/znplus"
	"github.com/luxfi/ahe2pc/pkg/group/zstar"
	"github.com/luxfi/ahe2pc/pkg/maurer"
)

func splitChunks(data []byte, lens []int) ([][]byte, error) {
	out := make([][]byte, len(lens))
	offset := 0
	for i, l := range lens {
		if offset+l > len(data) {
			return nil, group.ErrInvalidGroupElement
		}
		out[i] = data[offset : offset+l]
		offset += l
	}
	if offset != len(data) {
		return nil, group.ErrInvalidGroupElement
	}
	return out, nil
}

func decodeScalar(data []byte) (*curve.ScalarElement, error) {
	return curve.NewScalarElement(group.BytesValue(data), curve.ScalarPublicParameters{})
}

func decodePoint(data []byte) (*curve.PointElement, error) {
	return curve.NewPointElement(group.BytesValue(data), curve.PointPublicParameters{})
}

// --- knowledge-of-discrete-log: s -> sG ---

// DiscreteLog is the knowledge-of-discrete-log language: witness s in
// Z_q, statement sG (spec.md §4.6).
type DiscreteLog struct{}

func (DiscreteLog) Name() string { return "knowledge-of-discrete-log" }

// Repetitions is 1: the statement group is prime-order secp256k1, where a
// single 128-bit challenge already has negligible knowledge error
// (spec.md §4.4 "1 for proofs over prime-order statement groups").
func (DiscreteLog) Repetitions() int { return 1 }

func (DiscreteLog) WitnessSpacePublicParameters() group.PublicParameters {
	return curve.ScalarPublicParameters{}
}
func (DiscreteLog) StatementSpacePublicParameters() group.PublicParameters {
	return curve.PointPublicParameters{}
}

func (DiscreteLog) SampleWitness(rng io.Reader) (group.Element, error) {
	s, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return curve.WrapScalar(s), nil
}

func (DiscreteLog) Homomorphism(witness group.Element) (group.Element, error) {
	s, ok := witness.(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	return curve.WrapPoint(curve.Generator().ScalarMul(s.Inner())), nil
}

func (DiscreteLog) DecodeStatement(data []byte) (group.Element, error) { return decodePoint(data) }
func (DiscreteLog) DecodeWitness(data []byte) (group.Element, error)   { return decodeScalar(data) }

// --- knowledge-of-decommitment: (m, r) -> Com(m; r) ---

// Decommitment is the knowledge-of-decommitment language: witness (m, r),
// statement C = Com(m; r) under a single-message Pedersen commitment
// (spec.md §4.6).
type Decommitment struct {
	PedersenPP *commitment.PedersenPublicParameters // dimension 1
}

// NewDecommitment builds the language over an existing dimension-1
// Pedersen setup; the setup is shared state between whichever protocol
// rounds commit and whichever later prove or check against those
// commitments, so callers own it rather than this constructor.
func NewDecommitment(pp *commitment.PedersenPublicParameters) *Decommitment {
	return &Decommitment{PedersenPP: pp}
}

func (Decommitment) Name() string { return "knowledge-of-decommitment" }

// Repetitions is 1: witness and statement both live in prime-order
// secp256k1 groups (spec.md §4.4).
func (Decommitment) Repetitions() int { return 1 }

func (l *Decommitment) ConstantsBytes() []byte { return l.PedersenPP.Bytes() }

func (Decommitment) WitnessSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{
		curve.ScalarPublicParameters{}, curve.ScalarPublicParameters{},
	}}
}
func (Decommitment) StatementSpacePublicParameters() group.PublicParameters {
	return curve.PointPublicParameters{}
}

func (l *Decommitment) SampleWitness(rng io.Reader) (group.Element, error) {
	m, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	r, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return product.New(curve.WrapScalar(m), curve.WrapScalar(r)), nil
}

func (l *Decommitment) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != 2 {
		return nil, group.ErrInvalidGroupElement
	}
	m, ok := p.At(0).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	r, ok := p.At(1).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	c, err := l.PedersenPP.Commit([]*curve.Scalar{m.Inner()}, r.Inner())
	if err != nil {
		return nil, err
	}
	return curve.WrapPoint(c.Value), nil
}

func (l *Decommitment) DecodeStatement(data []byte) (group.Element, error) { return decodePoint(data) }

func (l *Decommitment) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{32, 32})
	if err != nil {
		return nil, err
	}
	m, err := decodeScalar(chunks[0])
	if err != nil {
		return nil, err
	}
	r, err := decodeScalar(chunks[1])
	if err != nil {
		return nil, err
	}
	return product.New(m, r), nil
}

// --- encryption-of-discrete-log: (x, eta) -> (E(x; eta), xG) ---

// EncryptionOfDiscreteLog is the encryption-of-discrete-log language:
// witness (x, eta), statement (E(x; eta), xG), pairing the AHE ciphertext
// of a value with its discrete log image under G (spec.md §4.6, used by
// DKG's encryption-of-secret-share round).
type EncryptionOfDiscreteLog struct {
	Key                      ahe.EncryptionKey
	plaintextPP              *znplus.PublicParameters
	randomnessPP             *zstar.PublicParameters
	ciphertextPP             *zstar.PublicParameters
	ciphertextLen, randLen   int
}

// NewEncryptionOfDiscreteLog builds the language over key.
func NewEncryptionOfDiscreteLog(key ahe.EncryptionKey) *EncryptionOfDiscreteLog {
	pp := key.PublicParameters()
	plaintextPP := pp.PlaintextSpacePublicParameters().(*znplus.PublicParameters)
	randomnessPP := pp.RandomnessSpacePublicParameters().(*zstar.PublicParameters)
	ciphertextPP := pp.CiphertextSpacePublicParameters().(*zstar.PublicParameters)
	return &EncryptionOfDiscreteLog{
		Key: key, plaintextPP: plaintextPP, randomnessPP: randomnessPP, ciphertextPP: ciphertextPP,
		ciphertextLen: ciphertextPP.ByteLen, randLen: randomnessPP.ByteLen,
	}
}

func (EncryptionOfDiscreteLog) Name() string { return "encryption-of-discrete-log" }

// Repetitions runs the full binary-challenge amplification: the witness
// and statement touch hidden-order Paillier groups (spec.md §4.4 ">1 for
// weaker groups").
func (EncryptionOfDiscreteLog) Repetitions() int { return maurer.ChallengeBitsTotal }

func (l *EncryptionOfDiscreteLog) ConstantsBytes() []byte {
	return l.Key.PublicParameters().Bytes()
}

func (l *EncryptionOfDiscreteLog) WitnessSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{l.plaintextPP, l.randomnessPP}}
}
func (l *EncryptionOfDiscreteLog) StatementSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{l.ciphertextPP, curve.PointPublicParameters{}}}
}

func (l *EncryptionOfDiscreteLog) SampleWitness(rng io.Reader) (group.Element, error) {
	xSample, err := sampleZNPlus(rng, l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.Sample(rng, l.randomnessPP)
	if err != nil {
		return nil, err
	}
	return product.New(xSample, eta), nil
}

func sampleZNPlus(rng io.Reader, pp *znplus.PublicParameters) (group.Element, error) {
	zero := znplus.FromNat(new(saferith.Nat).SetUint64(0), pp)
	return zero.Sample(rng)
}

func (l *EncryptionOfDiscreteLog) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != 2 {
		return nil, group.ErrInvalidGroupElement
	}
	x, ok := p.At(0).(*znplus.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	eta, ok := p.At(1).(*zstar.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	ciphertext, err := l.Key.EncryptWithRandomness(x, eta)
	if err != nil {
		return nil, err
	}
	point := curve.WrapPoint(curve.Generator().ScalarMul(natToScalar(x.Nat())))
	return product.New(ciphertext, point), nil
}

func natToScalar(n *saferith.Nat) *curve.Scalar {
	return curve.NewScalar().SetBytesWide(bignat.ToBig(n).Bytes())
}

func (l *EncryptionOfDiscreteLog) DecodeStatement(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{l.ciphertextLen, 33})
	if err != nil {
		return nil, err
	}
	ct, err := zstar.New(group.BytesValue(chunks[0]), l.ciphertextPP)
	if err != nil {
		return nil, err
	}
	point, err := decodePoint(chunks[1])
	if err != nil {
		return nil, err
	}
	return product.New(ct, point), nil
}

func (l *EncryptionOfDiscreteLog) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{l.plaintextPP.ByteLen, l.randLen})
	if err != nil {
		return nil, err
	}
	x, err := znplus.New(group.BytesValue(chunks[0]), l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.New(group.BytesValue(chunks[1]), l.randomnessPP)
	if err != nil {
		return nil, err
	}
	return product.New(x, eta), nil
}

// --- encryption-of-tuple: (x, eta, eta') -> (E(x; eta), a^x . E(0; eta')) ---

// EncryptionOfTuple is the encryption-of-tuple language: witness
// (x, eta, eta'), statement (E(x; eta), E(a*x; eta')) for a fixed target
// ciphertext a (spec.md §4.6, used by presign to bind a mask to a
// previously committed encrypted value).
type EncryptionOfTuple struct {
	Key          ahe.EncryptionKey
	Target       group.Element // a, a ciphertext already committed elsewhere
	plaintextPP  *znplus.PublicParameters
	randomnessPP *zstar.PublicParameters
	ciphertextPP *zstar.PublicParameters
}

// NewEncryptionOfTuple builds the language over key and the fixed target
// ciphertext a.
func NewEncryptionOfTuple(key ahe.EncryptionKey, target group.Element) *EncryptionOfTuple {
	pp := key.PublicParameters()
	return &EncryptionOfTuple{
		Key: key, Target: target,
		plaintextPP:  pp.PlaintextSpacePublicParameters().(*znplus.PublicParameters),
		randomnessPP: pp.RandomnessSpacePublicParameters().(*zstar.PublicParameters),
		ciphertextPP: pp.CiphertextSpacePublicParameters().(*zstar.PublicParameters),
	}
}

func (EncryptionOfTuple) Name() string { return "encryption-of-tuple" }

func (EncryptionOfTuple) Repetitions() int { return maurer.ChallengeBitsTotal }

func (l *EncryptionOfTuple) ConstantsBytes() []byte {
	return append(l.Key.PublicParameters().Bytes(), l.Target.Value().Bytes()...)
}

func (l *EncryptionOfTuple) WitnessSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{l.plaintextPP, l.randomnessPP, l.randomnessPP}}
}
func (l *EncryptionOfTuple) StatementSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{l.ciphertextPP, l.ciphertextPP}}
}

func (l *EncryptionOfTuple) SampleWitness(rng io.Reader) (group.Element, error) {
	x, err := sampleZNPlus(rng, l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.Sample(rng, l.randomnessPP)
	if err != nil {
		return nil, err
	}
	etaP, err := zstar.Sample(rng, l.randomnessPP)
	if err != nil {
		return nil, err
	}
	return product.New(x, eta, etaP), nil
}

func (l *EncryptionOfTuple) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != 3 {
		return nil, group.ErrInvalidGroupElement
	}
	x, ok := p.At(0).(*znplus.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	eta, ok := p.At(1).(*zstar.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	etaP, ok := p.At(2).(*zstar.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	ct1, err := l.Key.EncryptWithRandomness(x, eta)
	if err != nil {
		return nil, err
	}
	zero := znplus.FromNat(new(saferith.Nat).SetUint64(0), l.plaintextPP)
	encZero, err := l.Key.EncryptWithRandomness(zero, etaP)
	if err != nil {
		return nil, err
	}
	ct2 := l.Target.ScalarMul(x.Nat()).Add(encZero)
	return product.New(ct1, ct2), nil
}

func (l *EncryptionOfTuple) DecodeStatement(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{l.ciphertextPP.ByteLen, l.ciphertextPP.ByteLen})
	if err != nil {
		return nil, err
	}
	ct1, err := zstar.New(group.BytesValue(chunks[0]), l.ciphertextPP)
	if err != nil {
		return nil, err
	}
	ct2, err := zstar.New(group.BytesValue(chunks[1]), l.ciphertextPP)
	if err != nil {
		return nil, err
	}
	return product.New(ct1, ct2), nil
}

func (l *EncryptionOfTuple) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{l.plaintextPP.ByteLen, l.randomnessPP.ByteLen, l.randomnessPP.ByteLen})
	if err != nil {
		return nil, err
	}
	x, err := znplus.New(group.BytesValue(chunks[0]), l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.New(group.BytesValue(chunks[1]), l.randomnessPP)
	if err != nil {
		return nil, err
	}
	etaP, err := zstar.New(group.BytesValue(chunks[2]), l.randomnessPP)
	if err != nil {
		return nil, err
	}
	return product.New(x, eta, etaP), nil
}

// --- committment-of-discrete-log: (s, r) -> (s*Base, Com(s; r)) ---

// CommitmentOfDiscreteLog is the committment-of-discrete-log language:
// witness (s, r), statement (s*Base, Com(s; r)) for a per-instance public
// base point (spec.md §4.6). Sign instantiates Base with the public nonce
// R, which is what ties the committee's presign-time nonce commitment and
// its nonce public share to the R the signature is assembled under
// (spec.md §4.7 Sign step 2).
type CommitmentOfDiscreteLog struct {
	PedersenPP *commitment.PedersenPublicParameters // dimension 1
	Base       *curve.Point
}

// NewCommitmentOfDiscreteLog builds the language over an existing
// dimension-1 Pedersen setup and the given base point.
func NewCommitmentOfDiscreteLog(pp *commitment.PedersenPublicParameters, base *curve.Point) *CommitmentOfDiscreteLog {
	return &CommitmentOfDiscreteLog{PedersenPP: pp, Base: base}
}

func (CommitmentOfDiscreteLog) Name() string { return "committment-of-discrete-log" }

// Repetitions is 1: everything lives in prime-order secp256k1 groups
// (spec.md §4.4).
func (CommitmentOfDiscreteLog) Repetitions() int { return 1 }

func (l *CommitmentOfDiscreteLog) ConstantsBytes() []byte {
	return append(l.PedersenPP.Bytes(), l.Base.Bytes()...)
}

func (CommitmentOfDiscreteLog) WitnessSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{
		curve.ScalarPublicParameters{}, curve.ScalarPublicParameters{},
	}}
}
func (CommitmentOfDiscreteLog) StatementSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{
		curve.PointPublicParameters{}, curve.PointPublicParameters{},
	}}
}

func (l *CommitmentOfDiscreteLog) SampleWitness(rng io.Reader) (group.Element, error) {
	s, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	r, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return product.New(curve.WrapScalar(s), curve.WrapScalar(r)), nil
}

func (l *CommitmentOfDiscreteLog) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != 2 {
		return nil, group.ErrInvalidGroupElement
	}
	s, ok := p.At(0).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	r, ok := p.At(1).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	point := curve.WrapPoint(l.Base.ScalarMul(s.Inner()))
	c, err := l.PedersenPP.Commit([]*curve.Scalar{s.Inner()}, r.Inner())
	if err != nil {
		return nil, err
	}
	return product.New(point, curve.WrapPoint(c.Value)), nil
}

func (l *CommitmentOfDiscreteLog) DecodeStatement(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{33, 33})
	if err != nil {
		return nil, err
	}
	p1, err := decodePoint(chunks[0])
	if err != nil {
		return nil, err
	}
	p2, err := decodePoint(chunks[1])
	if err != nil {
		return nil, err
	}
	return product.New(p1, p2), nil
}

func (l *CommitmentOfDiscreteLog) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{32, 32})
	if err != nil {
		return nil, err
	}
	s, err := decodeScalar(chunks[0])
	if err != nil {
		return nil, err
	}
	r, err := decodeScalar(chunks[1])
	if err != nil {
		return nil, err
	}
	return product.New(s, r), nil
}

// --- discrete-log-ratio-of-committed-values ---

// DiscreteLogRatio is the discrete-log-ratio-of-committed-values
// language: witness (x, r_x, r_xy), statement two commitments whose
// committed values are in ratio y, where y is given only through its
// public point Y = y*G -- (Com(x; r_x), x*Y + r_xy*H) (spec.md §4.6).
// Sign instantiates Y with the centralized party's DKG public key share,
// proving its second commitment opens to nonce_share*key_share without
// revealing either (spec.md §4.7 Sign step 2). The second statement
// component is computable because the Pedersen setup's message generator
// is the curve base point: x*Y = (x*y)*G, so it IS Com(x*y; r_xy) under
// the same setup.
type DiscreteLogRatio struct {
	PedersenPP *commitment.PedersenPublicParameters // dimension 1, base-generator
	RatioPoint *curve.Point                         // Y = y*G
}

// NewDiscreteLogRatio builds the language over an existing base-generator
// Pedersen setup and the ratio's public point.
func NewDiscreteLogRatio(pp *commitment.PedersenPublicParameters, ratioPoint *curve.Point) *DiscreteLogRatio {
	return &DiscreteLogRatio{PedersenPP: pp, RatioPoint: ratioPoint}
}

func (DiscreteLogRatio) Name() string { return "discrete-log-ratio-of-committed-values" }

// Repetitions is 1: everything lives in prime-order secp256k1 groups
// (spec.md §4.4).
func (DiscreteLogRatio) Repetitions() int { return 1 }

func (l *DiscreteLogRatio) ConstantsBytes() []byte {
	return append(l.PedersenPP.Bytes(), l.RatioPoint.Bytes()...)
}

func (DiscreteLogRatio) WitnessSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{
		curve.ScalarPublicParameters{}, curve.ScalarPublicParameters{}, curve.ScalarPublicParameters{},
	}}
}
func (DiscreteLogRatio) StatementSpacePublicParameters() group.PublicParameters {
	return &product.PublicParameters{Components: []group.PublicParameters{
		curve.PointPublicParameters{}, curve.PointPublicParameters{},
	}}
}

func (l *DiscreteLogRatio) SampleWitness(rng io.Reader) (group.Element, error) {
	x, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	rx, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	rxy, err := curve.SampleScalar(rng)
	if err != nil {
		return nil, err
	}
	return product.New(curve.WrapScalar(x), curve.WrapScalar(rx), curve.WrapScalar(rxy)), nil
}

func (l *DiscreteLogRatio) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != 3 {
		return nil, group.ErrInvalidGroupElement
	}
	x, ok := p.At(0).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	rx, ok := p.At(1).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	rxy, ok := p.At(2).(*curve.ScalarElement)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	c1, err := l.PedersenPP.Commit([]*curve.Scalar{x.Inner()}, rx.Inner())
	if err != nil {
		return nil, err
	}
	c2 := l.RatioPoint.ScalarMul(x.Inner()).Add(l.PedersenPP.H.ScalarMul(rxy.Inner()))
	return product.New(curve.WrapPoint(c1.Value), curve.WrapPoint(c2)), nil
}

func (l *DiscreteLogRatio) DecodeStatement(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{33, 33})
	if err != nil {
		return nil, err
	}
	p1, err := decodePoint(chunks[0])
	if err != nil {
		return nil, err
	}
	p2, err := decodePoint(chunks[1])
	if err != nil {
		return nil, err
	}
	return product.New(p1, p2), nil
}

func (l *DiscreteLogRatio) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitChunks(data, []int{32, 32, 32})
	if err != nil {
		return nil, err
	}
	x, err := decodeScalar(chunks[0])
	if err != nil {
		return nil, err
	}
	rx, err := decodeScalar(chunks[1])
	if err != nil {
		return nil, err
	}
	rxy, err := decodeScalar(chunks[2])
	if err != nil {
		return nil, err
	}
	return product.New(x, rx, rxy), nil
}

// --- committed-linear-evaluation ---

// CommittedLinearEvaluation is the committed-linear-evaluation language:
// witness (coeffs, mask, eta, rhos), statement
// (E(sum(coeffs[i]*ciphertexts[i]) + mask*q; eta), Com(coeffs[0]; rhos[0]),
// ..., Com(coeffs[D-1]; rhos[D-1])) (spec.md §4.6, used by sign's
// homomorphic partial-signature step). Each coefficient gets its own
// dimension-1 commitment under a shared base-generator Pedersen setup,
// which is what lets the committee's consistency check relate each
// coefficient commitment to the presign nonce commitments by scalar
// arithmetic on points (spec.md §4.7 "coefficient_commitments[0] ==
// r*(nonce*keyshare) + m*nonce_shares").
//
// Coefficient witness components live in the plaintext group: the
// ciphertext leg of the homomorphism exponentiates by the coefficient AS
// AN INTEGER, so only its enhanced wrapping (which keeps response
// arithmetic wrap-free over the integers) makes the map additive; proving
// this language directly with full-width plaintext randomizers would not
// verify. The Pedersen leg reduces the same integer mod q, a homomorphism
// in its own right.
type CommittedLinearEvaluation struct {
	Key         ahe.EncryptionKey
	Ciphertexts []group.Element
	Order       *saferith.Nat                        // q, the statement group order
	PedersenPP  *commitment.PedersenPublicParameters // dimension 1, base-generator

	plaintextPP  *znplus.PublicParameters
	randomnessPP *zstar.PublicParameters
	ciphertextPP *zstar.PublicParameters
}

// NewCommittedLinearEvaluation builds the language for a fixed set of
// target ciphertexts against a shared dimension-1 Pedersen setup.
func NewCommittedLinearEvaluation(key ahe.EncryptionKey, ciphertexts []group.Element, order *saferith.Nat, pedersenPP *commitment.PedersenPublicParameters) *CommittedLinearEvaluation {
	pp := key.PublicParameters()
	return &CommittedLinearEvaluation{
		Key: key, Ciphertexts: ciphertexts, Order: order,
		PedersenPP:   pedersenPP,
		plaintextPP:  pp.PlaintextSpacePublicParameters().(*znplus.PublicParameters),
		randomnessPP: pp.RandomnessSpacePublicParameters().(*zstar.PublicParameters),
		ciphertextPP: pp.CiphertextSpacePublicParameters().(*zstar.PublicParameters),
	}
}

func (l *CommittedLinearEvaluation) Name() string { return "committed-linear-evaluation" }

// Repetitions runs the full binary-challenge amplification: the
// ciphertext leg lives in a hidden-order Paillier group (spec.md §4.4
// ">1 for weaker groups").
func (l *CommittedLinearEvaluation) Repetitions() int { return maurer.ChallengeBitsTotal }

func (l *CommittedLinearEvaluation) ConstantsBytes() []byte {
	out := append(l.Key.PublicParameters().Bytes(), l.PedersenPP.Bytes()...)
	for _, ct := range l.Ciphertexts {
		out = append(out, ct.Value().Bytes()...)
	}
	return append(out, l.Order.Bytes()...)
}

func (l *CommittedLinearEvaluation) WitnessSpacePublicParameters() group.PublicParameters {
	n := len(l.Ciphertexts)
	components := make([]group.PublicParameters, 0, 2*n+2)
	for i := 0; i < n; i++ {
		components = append(components, l.plaintextPP)
	}
	components = append(components, l.plaintextPP, l.randomnessPP)
	for i := 0; i < n; i++ {
		components = append(components, curve.ScalarPublicParameters{})
	}
	return &product.PublicParameters{Components: components}
}

func (l *CommittedLinearEvaluation) StatementSpacePublicParameters() group.PublicParameters {
	n := len(l.Ciphertexts)
	components := make([]group.PublicParameters, 0, n+1)
	components = append(components, l.ciphertextPP)
	for i := 0; i < n; i++ {
		components = append(components, curve.PointPublicParameters{})
	}
	return &product.PublicParameters{Components: components}
}

func (l *CommittedLinearEvaluation) SampleWitness(rng io.Reader) (group.Element, error) {
	n := len(l.Ciphertexts)
	components := make([]group.Element, 0, 2*n+2)
	for i := 0; i < n; i++ {
		c, err := sampleZNPlus(rng, l.plaintextPP)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	mask, err := sampleZNPlus(rng, l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.Sample(rng, l.randomnessPP)
	if err != nil {
		return nil, err
	}
	components = append(components, mask, eta)
	for i := 0; i < n; i++ {
		rho, err := curve.SampleScalar(rng)
		if err != nil {
			return nil, err
		}
		components = append(components, curve.WrapScalar(rho))
	}
	return product.New(components...), nil
}

func (l *CommittedLinearEvaluation) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	n := len(l.Ciphertexts)
	if !ok || len(p.Components) != 2*n+2 {
		return nil, group.ErrInvalidGroupElement
	}
	coeffNats := make([]*saferith.Nat, n)
	for i := 0; i < n; i++ {
		c, ok := p.At(i).(*znplus.Element)
		if !ok {
			return nil, group.ErrInvalidGroupElement
		}
		coeffNats[i] = c.Nat()
	}
	mask, ok := p.At(n).(*znplus.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	eta, ok := p.At(n + 1).(*zstar.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	ciphertext, err := l.Key.EvaluateLinearCombinationWithRandomness(coeffNats, l.Ciphertexts, l.Order, mask.Nat(), eta)
	if err != nil {
		return nil, err
	}
	components := make([]group.Element, 0, n+1)
	components = append(components, ciphertext)
	for i := 0; i < n; i++ {
		rho, ok := p.At(n + 2 + i).(*curve.ScalarElement)
		if !ok {
			return nil, group.ErrInvalidGroupElement
		}
		ped, err := l.PedersenPP.Commit([]*curve.Scalar{natToScalar(coeffNats[i])}, rho.Inner())
		if err != nil {
			return nil, err
		}
		components = append(components, curve.WrapPoint(ped.Value))
	}
	return product.New(components...), nil
}

func (l *CommittedLinearEvaluation) DecodeStatement(data []byte) (group.Element, error) {
	n := len(l.Ciphertexts)
	lens := make([]int, 0, n+1)
	lens = append(lens, l.ciphertextPP.ByteLen)
	for i := 0; i < n; i++ {
		lens = append(lens, 33)
	}
	chunks, err := splitChunks(data, lens)
	if err != nil {
		return nil, err
	}
	ct, err := zstar.New(group.BytesValue(chunks[0]), l.ciphertextPP)
	if err != nil {
		return nil, err
	}
	components := make([]group.Element, 0, n+1)
	components = append(components, ct)
	for i := 0; i < n; i++ {
		point, err := decodePoint(chunks[1+i])
		if err != nil {
			return nil, err
		}
		components = append(components, point)
	}
	return product.New(components...), nil
}

func (l *CommittedLinearEvaluation) DecodeWitness(data []byte) (group.Element, error) {
	n := len(l.Ciphertexts)
	lens := make([]int, 0, 2*n+2)
	for i := 0; i < n; i++ {
		lens = append(lens, l.plaintextPP.ByteLen)
	}
	lens = append(lens, l.plaintextPP.ByteLen, l.randomnessPP.ByteLen)
	for i := 0; i < n; i++ {
		lens = append(lens, 32)
	}
	chunks, err := splitChunks(data, lens)
	if err != nil {
		return nil, err
	}
	components := make([]group.Element, 0, 2*n+2)
	for i := 0; i < n; i++ {
		c, err := znplus.New(group.BytesValue(chunks[i]), l.plaintextPP)
		if err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	mask, err := znplus.New(group.BytesValue(chunks[n]), l.plaintextPP)
	if err != nil {
		return nil, err
	}
	eta, err := zstar.New(group.BytesValue(chunks[n+1]), l.randomnessPP)
	if err != nil {
		return nil, err
	}
	components = append(components, mask, eta)
	for i := 0; i < n; i++ {
		rho, err := decodeScalar(chunks[n+2+i])
		if err != nil {
			return nil, err
		}
		components = append(components, rho)
	}
	return product.New(components...), nil
}
