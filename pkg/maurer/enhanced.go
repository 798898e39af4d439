package maurer

import (
	"io"
	"math/big"

	"github.com/cronokirby/saferith"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/bignat"
	"github.com/luxfi/ahe2pc/pkg/group/pow2"
	"github.com/luxfi/ahe2pc/pkg/group/product"
)

// aggregationSlackBits is headroom between the randomizer sampling range
// and the response bound VerifyRange enforces. Proof aggregation
// (pkg/maurer/aggregation) sums up to 2^16 parties' responses in the
// chunk group (PartyID is uint16, spec.md §6); the slack guarantees
// honest sums stay under the enforced bound.
const aggregationSlackBits = 16

// rangeRejectionSlackBits widens the chunk group modulus past the
// enforced response bound. Without it an over-range chunk could only
// exist by wrapping around the modulus -- invisible to any check; with
// it, a malicious chunk in [2^responseBound, 2^modulus) is representable
// and VerifyRange rejects it explicitly (spec.md §8 property 6 "fails
// the enhanced proof's range-verification, not the homomorphism check").
const rangeRejectionSlackBits = 16

// EnhancedLanguage wraps any Language so that each of its bounded witness
// components is carried as chunks of RangeClaimBits each, with the range
// claim enforced by an explicit VerifyRange pass over every response
// (spec.md §4.4 "enhanced language ... wrapping any language with a range
// proof via witness decomposition"), plus an optional Unbounded component
// for the parts of Inner's witness that carry no range claim at all (e.g.
// Paillier encryption randomness), matching the EnhancedWitness triple
// spec.md §3 names (the commitment_randomness component is realized
// directly by the aggregation transcript commitment,
// pkg/maurer/aggregation, rather than inside the witness itself).
//
// SecretClaims holds the number of chunks per bounded secret:
// a plain scalar takes RANGE_CLAIMS_PER_SCALAR chunks, a circuit-privacy
// mask takes however many its larger bit-size needs (spec.md §9
// "Const-generic array sizes ... carried as runtime lengths").
//
// The Sigma-protocol randomizer for each chunk is drawn from
// [0, 2^SampleBits) where SampleBits = RangeClaimBits +
// ComputationalSecurity + StatisticalSecurity, resolving spec.md §9's
// open question on randomizer sub-range selection exactly as stated
// there: the response z_i = r_i + e*w_i then lands within negligible
// statistical distance of uniform over the sampling range regardless of
// the small w_i hidden inside it. VerifyRange bounds every response
// chunk by 2^(SampleBits + aggregationSlackBits) -- the most an honest
// randomizer plus up to 2^16 parties' claimed witnesses can reach --
// and the chunk group modulus sits a further rangeRejectionSlackBits
// above that bound, so an over-range chunk is representable (it cannot
// hide by wrapping the modulus) and rejected explicitly.
type EnhancedLanguage struct {
	Inner                 Language
	SecretClaims          []int
	RangeClaimBits        int
	ComputationalSecurity int
	StatisticalSecurity   int

	// UnboundedPublicParameters is the public parameters of the
	// unconstrained witness component (e.g. a zstar.PublicParameters for
	// Paillier randomness). Nil if Inner's witness needs no such part.
	UnboundedPublicParameters group.PublicParameters
	// SampleUnbounded draws a fresh element of the unbounded component.
	SampleUnbounded func(rng io.Reader) (group.Element, error)
	// DecodeUnbounded reconstructs the unbounded component from its wire
	// encoding.
	DecodeUnbounded func(data []byte) (group.Element, error)
	// UnboundedByteLen is the fixed wire width of the unbounded component,
	// used to split DecodeWitness's combined byte string.
	UnboundedByteLen int

	// ComposeWitness maps the recomposed secrets (one per SecretClaims
	// entry, after Compose) and the unbounded component (nil if
	// UnboundedPublicParameters is nil) back into an element of Inner's
	// witness space.
	ComposeWitness func(composed []*saferith.Nat, unbounded group.Element) (group.Element, error)

	totalClaims   int
	sampleBits    int
	responseBound *big.Int
	witnessPP     *product.PublicParameters
	chunkPP       *pow2.PublicParameters
}

// NewEnhancedLanguage builds the enhanced wrapper around inner. Pass a nil
// unboundedPP (and nil sampleUnbounded/decodeUnbounded) when inner's
// witness needs no unconstrained component.
func NewEnhancedLanguage(
	inner Language,
	secretClaims []int,
	rangeClaimBits, computationalSecurityBits, statisticalSecurityBits int,
	unboundedPP group.PublicParameters,
	sampleUnbounded func(io.Reader) (group.Element, error),
	decodeUnbounded func([]byte) (group.Element, error),
	unboundedByteLen int,
	composeWitness func([]*saferith.Nat, group.Element) (group.Element, error),
) *EnhancedLanguage {
	sampleBits := rangeClaimBits + computationalSecurityBits + statisticalSecurityBits
	chunkPP := &pow2.PublicParameters{Bits: sampleBits + aggregationSlackBits + rangeRejectionSlackBits}
	responseBound := new(big.Int).Lsh(big.NewInt(1), uint(sampleBits+aggregationSlackBits))
	totalClaims := 0
	for _, n := range secretClaims {
		totalClaims += n
	}
	numComponents := totalClaims
	if unboundedPP != nil {
		numComponents++
	}
	components := make([]group.PublicParameters, numComponents)
	for i := 0; i < totalClaims; i++ {
		components[i] = chunkPP
	}
	if unboundedPP != nil {
		components[totalClaims] = unboundedPP
	}
	return &EnhancedLanguage{
		Inner:                     inner,
		SecretClaims:              secretClaims,
		RangeClaimBits:            rangeClaimBits,
		ComputationalSecurity:     computationalSecurityBits,
		StatisticalSecurity:       statisticalSecurityBits,
		UnboundedPublicParameters: unboundedPP,
		SampleUnbounded:           sampleUnbounded,
		DecodeUnbounded:           decodeUnbounded,
		UnboundedByteLen:          unboundedByteLen,
		ComposeWitness:            composeWitness,
		totalClaims:               totalClaims,
		sampleBits:                sampleBits,
		responseBound:             responseBound,
		witnessPP:                 &product.PublicParameters{Components: components},
		chunkPP:                   chunkPP,
	}
}

func (e *EnhancedLanguage) Name() string { return "enhanced/" + e.Inner.Name() }

// Repetitions runs the full binary-challenge amplification: the enhanced
// languages all touch hidden-order (Paillier) groups, where extraction
// needs invertible challenge differences and only single-bit challenges
// provide them (spec.md §4.4 ">1 for weaker groups").
func (e *EnhancedLanguage) Repetitions() int { return ChallengeBitsTotal }

// VerifyRange rejects any chunk of a response whose value reaches the
// honest response bound 2^(sampleBits + aggregationSlackBits) -- a
// randomizer plus up to 2^16 parties' claimed witnesses can never get
// there, so anything at or past it encodes an over-range witness. Run by
// Verify and the aggregation blame check before any homomorphism
// equality (spec.md §8 property 6); the recomposed bound it certifies is
// the claim width plus the standard soundness slack, exactly the relaxed
// range a Sigma-protocol range argument extracts.
func (e *EnhancedLanguage) VerifyRange(response group.Element) error {
	p, ok := response.(*product.Element)
	if !ok {
		return group.ErrInvalidGroupElement
	}
	for i := 0; i < e.totalClaims; i++ {
		chunk, ok := p.At(i).(*pow2.Element)
		if !ok {
			return group.ErrInvalidGroupElement
		}
		if chunk.Big().Cmp(e.responseBound) >= 0 {
			return ErrRangeClaim
		}
	}
	return nil
}

func (e *EnhancedLanguage) WitnessSpacePublicParameters() group.PublicParameters { return e.witnessPP }

func (e *EnhancedLanguage) StatementSpacePublicParameters() group.PublicParameters {
	return e.Inner.StatementSpacePublicParameters()
}

// ConstantsBytes folds the wrapper's sizing layout together with whatever
// constants the inner language carries.
func (e *EnhancedLanguage) ConstantsBytes() []byte {
	out := []byte{byte(e.RangeClaimBits), byte(e.ComputationalSecurity), byte(e.StatisticalSecurity)}
	for _, n := range e.SecretClaims {
		out = append(out, byte(n>>8), byte(n))
	}
	if cc, ok := e.Inner.(ConstantsCarrier); ok {
		out = append(out, cc.ConstantsBytes()...)
	}
	return out
}

func (e *EnhancedLanguage) DecodeStatement(data []byte) (group.Element, error) {
	return e.Inner.DecodeStatement(data)
}

// DecodeWitness splits data into totalClaims equal-length chunks, followed
// (if UnboundedPublicParameters is set) by a trailing UnboundedByteLen-byte
// unbounded component.
func (e *EnhancedLanguage) DecodeWitness(data []byte) (group.Element, error) {
	if e.totalClaims == 0 {
		return nil, group.ErrInvalidGroupElement
	}
	tail := len(data)
	if e.UnboundedPublicParameters != nil {
		tail -= e.UnboundedByteLen
	}
	if tail <= 0 || tail%e.totalClaims != 0 {
		return nil, group.ErrInvalidGroupElement
	}
	chunkLen := tail / e.totalClaims
	numComponents := e.totalClaims
	if e.UnboundedPublicParameters != nil {
		numComponents++
	}
	components := make([]group.Element, numComponents)
	for i := 0; i < e.totalClaims; i++ {
		chunk, err := pow2.New(group.BytesValue(data[i*chunkLen:(i+1)*chunkLen]), e.chunkPP)
		if err != nil {
			return nil, err
		}
		components[i] = chunk
	}
	if e.UnboundedPublicParameters != nil {
		unbounded, err := e.DecodeUnbounded(data[tail:])
		if err != nil {
			return nil, err
		}
		components[e.totalClaims] = unbounded
	}
	return product.New(components...), nil
}

// sampleDigit draws one randomizer chunk uniformly from [0, 2^sampleBits),
// the sub-range of the (wider) chunk group spec.md §9's open-question
// resolution prescribes.
func (e *EnhancedLanguage) sampleDigit(rng io.Reader) (*pow2.Element, error) {
	buf := make([]byte, (e.sampleBits+7)/8+8)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(buf)
	n.Mod(n, new(big.Int).Lsh(big.NewInt(1), uint(e.sampleBits)))
	return pow2.FromBig(n, e.chunkPP), nil
}

// SampleWitness draws every chunk independently from the randomizer
// sub-range, plus (if present) a fresh unbounded component, used by Prove
// and the aggregation rounds as this language's randomizer for every
// repetition.
func (e *EnhancedLanguage) SampleWitness(rng io.Reader) (group.Element, error) {
	numComponents := e.totalClaims
	if e.UnboundedPublicParameters != nil {
		numComponents++
	}
	components := make([]group.Element, numComponents)
	for i := 0; i < e.totalClaims; i++ {
		c, err := e.sampleDigit(rng)
		if err != nil {
			return nil, err
		}
		components[i] = c
	}
	if e.UnboundedPublicParameters != nil {
		u, err := e.SampleUnbounded(rng)
		if err != nil {
			return nil, err
		}
		components[e.totalClaims] = u
	}
	return product.New(components...), nil
}

// WitnessFromSecrets decomposes the actual bounded secrets (each smaller
// than 2^(RangeClaimBits * SecretClaims[i])) and pairs them with unbounded
// (nil if this language has no unbounded component), for use by a real
// prover rather than Prove's internal randomizer sampling.
func (e *EnhancedLanguage) WitnessFromSecrets(secrets []*saferith.Nat, unbounded group.Element) group.Element {
	numComponents := e.totalClaims
	if e.UnboundedPublicParameters != nil {
		numComponents++
	}
	components := make([]group.Element, 0, numComponents)
	for i, secret := range secrets {
		for _, d := range Decompose(secret, e.SecretClaims[i], e.RangeClaimBits) {
			components = append(components, pow2.FromBig(bignat.ToBig(d), e.chunkPP))
		}
	}
	if e.UnboundedPublicParameters != nil {
		components = append(components, unbounded)
	}
	return product.New(components...)
}

// Homomorphism recomposes each secret from its chunks (using
// RangeClaimBits-wide positional weights, independent of the larger chunk
// group the randomizers are drawn from), pairs the results with the
// unbounded component, and delegates to Inner.
func (e *EnhancedLanguage) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok {
		return nil, group.ErrInvalidGroupElement
	}
	digitByteLen := (e.chunkPP.Bits + 7) / 8
	composed := make([]*saferith.Nat, len(e.SecretClaims))
	offset := 0
	for s, numClaims := range e.SecretClaims {
		digits := make([]*saferith.Nat, numClaims)
		for i := 0; i < numClaims; i++ {
			chunk, ok := p.At(offset + i).(*pow2.Element)
			if !ok {
				return nil, group.ErrInvalidGroupElement
			}
			digits[i] = bignat.FromBig(chunk.Big(), digitByteLen)
		}
		composed[s] = Compose(digits, e.RangeClaimBits)
		offset += numClaims
	}
	var unbounded group.Element
	if e.UnboundedPublicParameters != nil {
		unbounded = p.At(e.totalClaims)
	}
	innerWitness, err := e.ComposeWitness(composed, unbounded)
	if err != nil {
		return nil, err
	}
	return e.Inner.Homomorphism(innerWitness)
}
