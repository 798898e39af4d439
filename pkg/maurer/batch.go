package maurer

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/group/product"
	"github.com/luxfi/ahe2pc/pkg/pool"
)

// rowPool fans a Batch's per-row operations (sampling, homomorphism
// evaluation, decoding) out across goroutines: every row is an
// independent presign witness/statement, so there is no reason to walk
// them one at a time (spec.md §4.7 "batch-prove ... for all of them").
var rowPool = pool.NewPool(0)

// Batch combines N independently-constructed Languages (typically N
// instances of the same underlying language, one per presign "row") into a
// single Language over N-way product witness/statement spaces. Proving
// knowledge of a Batch witness is exactly proving knowledge of every row's
// witness under one shared Fiat-Shamir challenge per repetition, which is
// how spec.md §4.7 presign's `batch_size` rows are bound into the single
// aggregated proof its "batch-prove ... for all of them" step names,
// rather than running batch_size separate aggregation instances.
type Batch struct {
	Rows          []Language
	witnessLens   []int
	statementLens []int
	witnessPP     *product.PublicParameters
	statementPP   *product.PublicParameters
}

// NewBatch builds a Batch over rows, which must all agree on their
// repetition count (they share one challenge draw per repetition). Each
// row's fixed wire width is learned once, by sampling a throwaway
// witness, since none of the wrapped languages vary their encoded length
// across samples.
func NewBatch(rows ...Language) (*Batch, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("maurer: batch needs at least one row")
	}
	for _, row := range rows[1:] {
		if row.Repetitions() != rows[0].Repetitions() {
			return nil, fmt.Errorf("maurer: batch rows disagree on repetitions (%d vs %d)",
				rows[0].Repetitions(), row.Repetitions())
		}
	}
	type rowInfo struct {
		witnessLen, statementLen int
		witnessPP, statementPP   group.PublicParameters
	}
	infos, err := pool.Map(rowPool, len(rows), func(i int) (rowInfo, error) {
		lang := rows[i]
		w, err := lang.SampleWitness(rand.Reader)
		if err != nil {
			return rowInfo{}, err
		}
		s, err := lang.Homomorphism(w)
		if err != nil {
			return rowInfo{}, err
		}
		return rowInfo{
			witnessLen:   len(w.Value().Bytes()),
			statementLen: len(s.Value().Bytes()),
			witnessPP:    lang.WitnessSpacePublicParameters(),
			statementPP:  lang.StatementSpacePublicParameters(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	witnessLens := make([]int, len(rows))
	statementLens := make([]int, len(rows))
	witnessComponents := make([]group.PublicParameters, len(rows))
	statementComponents := make([]group.PublicParameters, len(rows))
	for i, info := range infos {
		witnessLens[i] = info.witnessLen
		statementLens[i] = info.statementLen
		witnessComponents[i] = info.witnessPP
		statementComponents[i] = info.statementPP
	}
	return &Batch{
		Rows:          rows,
		witnessLens:   witnessLens,
		statementLens: statementLens,
		witnessPP:     &product.PublicParameters{Components: witnessComponents},
		statementPP:   &product.PublicParameters{Components: statementComponents},
	}, nil
}

func (b *Batch) Name() string {
	row := "empty"
	if len(b.Rows) > 0 {
		row = b.Rows[0].Name()
	}
	return fmt.Sprintf("batch[%d]/%s", len(b.Rows), row)
}

func (b *Batch) Repetitions() int { return b.Rows[0].Repetitions() }

func (b *Batch) WitnessSpacePublicParameters() group.PublicParameters   { return b.witnessPP }
func (b *Batch) StatementSpacePublicParameters() group.PublicParameters { return b.statementPP }

// VerifyRange delegates a batched response's per-row components to each
// row's own range claims, for rows that make any.
func (b *Batch) VerifyRange(response group.Element) error {
	p, ok := response.(*product.Element)
	if !ok || len(p.Components) != len(b.Rows) {
		return group.ErrInvalidGroupElement
	}
	for i, row := range b.Rows {
		if rv, ok := row.(RangeVerifier); ok {
			if err := rv.VerifyRange(p.At(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConstantsBytes concatenates each row's language constants (length
// prefixed, so row boundaries stay injective) -- a Batch is bound to the
// exact per-row constants its rows were built over, target ciphertexts
// included.
func (b *Batch) ConstantsBytes() []byte {
	var out []byte
	for _, row := range b.Rows {
		var c []byte
		if cc, ok := row.(ConstantsCarrier); ok {
			c = cc.ConstantsBytes()
		}
		out = append(out, byte(len(c)>>24), byte(len(c)>>16), byte(len(c)>>8), byte(len(c)))
		out = append(out, c...)
	}
	return out
}

func (b *Batch) SampleWitness(rng io.Reader) (group.Element, error) {
	components, err := pool.Map(rowPool, len(b.Rows), func(i int) (group.Element, error) {
		return b.Rows[i].SampleWitness(rng)
	})
	if err != nil {
		return nil, err
	}
	return product.New(components...), nil
}

func (b *Batch) Homomorphism(witness group.Element) (group.Element, error) {
	p, ok := witness.(*product.Element)
	if !ok || len(p.Components) != len(b.Rows) {
		return nil, group.ErrInvalidGroupElement
	}
	components, err := pool.Map(rowPool, len(b.Rows), func(i int) (group.Element, error) {
		return b.Rows[i].Homomorphism(p.At(i))
	})
	if err != nil {
		return nil, err
	}
	return product.New(components...), nil
}

func splitByLens(data []byte, lens []int) ([][]byte, error) {
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

func (b *Batch) DecodeStatement(data []byte) (group.Element, error) {
	chunks, err := splitByLens(data, b.statementLens)
	if err != nil {
		return nil, err
	}
	components, err := pool.Map(rowPool, len(b.Rows), func(i int) (group.Element, error) {
		return b.Rows[i].DecodeStatement(chunks[i])
	})
	if err != nil {
		return nil, err
	}
	return product.New(components...), nil
}

func (b *Batch) DecodeWitness(data []byte) (group.Element, error) {
	chunks, err := splitByLens(data, b.witnessLens)
	if err != nil {
		return nil, err
	}
	components, err := pool.Map(rowPool, len(b.Rows), func(i int) (group.Element, error) {
		return b.Rows[i].DecodeWitness(chunks[i])
	})
	if err != nil {
		return nil, err
	}
	return product.New(components...), nil
}
