// Package wire holds the small helpers every protocol package needs to
// carry a maurer.Proof and a language's statement/witness values over the
// CBOR-encoded round messages pkg/protocol transports (spec.md §6 "no wire
// format is prescribed; every message type is a product of group values
// ... with a canonical serialization defined by its group").
package wire

import (
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/maurer"
)

// EncodeProof splits a Proof into parallel commitment/response byte
// slices, the shape every round Content in protocols/dkg, presign and
// sign carries a proof as.
func EncodeProof(p *maurer.Proof) (commitments, responses [][]byte) {
	commitments = make([][]byte, len(p.Commitments))
	responses = make([][]byte, len(p.Responses))
	for i := range p.Commitments {
		commitments[i] = p.Commitments[i].Value().Bytes()
		responses[i] = p.Responses[i].Value().Bytes()
	}
	return
}

// DecodeProof reconstructs a Proof from its wire form against lang,
// insisting on exactly lang's repetition count of commitments and
// responses.
func DecodeProof(lang maurer.Language, commitments, responses [][]byte) (*maurer.Proof, error) {
	reps := lang.Repetitions()
	if len(commitments) != reps || len(responses) != reps {
		return nil, maurer.ErrInvalidProof
	}
	p := &maurer.Proof{
		Commitments: make([]group.Element, reps),
		Responses:   make([]group.Element, reps),
	}
	for i := 0; i < reps; i++ {
		c, err := lang.DecodeStatement(commitments[i])
		if err != nil {
			return nil, err
		}
		r, err := lang.DecodeWitness(responses[i])
		if err != nil {
			return nil, err
		}
		p.Commitments[i] = c
		p.Responses[i] = r
	}
	return p, nil
}
