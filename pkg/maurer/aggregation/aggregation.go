// Package aggregation lifts a single party's Sigma-protocol proof
// (pkg/maurer) into the four-round multi-party proof-aggregation state
// machine spec.md §5 describes: commitment, decommitment, proof-share and
// aggregation rounds, tolerant of malicious or simply absent parties via
// per-share re-verification and blame attribution. Every decentralized
// protocol round that needs several committee members to jointly prove
// knowledge of (the sum of) their individual witnesses for a common
// Language runs one instance of this state machine (spec.md §4.7's DKG,
// Presign and Sign all use it).
//
// Round1, returned by Start, is purely local: it computes this party's
// statement and samples its randomizers, with no incoming message to wait
// on. Its Finalize commits to those randomizers and broadcasts the
// digest, handing off to Round2 -- the first round that actually waits on
// peers.
package aggregation

import (
	"errors"
	"io"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/commitment"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/pkg/party"
	"github.com/luxfi/ahe2pc/pkg/pool"
)

// commitRoundLabel domain-separates the transcript commitment binding a
// party's statement masks between the commitment and decommitment rounds
// (one of spec.md §6's stable labels).
const commitRoundLabel = "maurer proof aggregation commitment round commitment"

// ErrWrongDecommitment is returned when a party's reveal does not match
// its earlier commitment digest.
var ErrWrongDecommitment = errors.New("aggregation: decommitment does not match commitment")

// ErrInvalidProofShare is returned when a party's proof-share message
// does not even deserialize into the language's witness space, or has
// the wrong repetition count.
var ErrInvalidProofShare = errors.New("aggregation: malformed proof share")

// ErrProofShareVerification is returned when a party's well-formed
// responses fail to verify (range claims included) against its own
// commitments and statement.
var ErrProofShareVerification = errors.New("aggregation: proof share verification failed")

// Output is the result of a successful aggregation: a single Proof
// attesting to knowledge of a witness whose image is the componentwise
// sum of every participant's individual statement.
type Output struct {
	AggregatedStatement group.Element
	Proof               *maurer.Proof
}

type partyState struct {
	statement   group.Element
	commitments []group.Element
	responses   []group.Element
	digest      *commitment.TranscriptCommitment
}

func commitmentBytes(elements []group.Element) [][]byte {
	out := make([][]byte, len(elements))
	for i, e := range elements {
		out[i] = e.Value().Bytes()
	}
	return out
}

// --- Round 1: local setup (no incoming message) ---

// Round1 computes this party's own statement and samples its Sigma-
// protocol randomizers. It implements plain Session, not BroadcastRound:
// it has nothing to wait on, so the handler finalizes it immediately,
// broadcasting this party's commitment digest and handing off to Round2.
type Round1 struct {
	*round.Helper
	lang    maurer.Language
	witness group.Element
	rng     io.Reader
}

// Start begins an aggregation run for witness under lang. rng is used to
// sample this party's randomizers once Round1 finalizes.
func Start(helper *round.Helper, lang maurer.Language, witness group.Element, rng io.Reader) (*Round1, error) {
	return &Round1{Helper: helper, lang: lang, witness: witness, rng: rng}, nil
}

func (r *Round1) MessageContent() round.Content     { return nil }
func (r *Round1) VerifyMessage(round.Message) error { return nil }
func (r *Round1) StoreMessage(round.Message) error  { return nil }

func (r *Round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	statement, err := r.lang.Homomorphism(r.witness)
	if err != nil {
		return nil, err
	}
	reps := r.lang.Repetitions()

	type randomizerCommitment struct {
		randomizer group.Element
		commitment group.Element
	}
	rcs, err := pool.Map(r.Pool(), reps, func(i int) (randomizerCommitment, error) {
		randomizer, err := r.lang.SampleWitness(r.rng)
		if err != nil {
			return randomizerCommitment{}, err
		}
		c, err := r.lang.Homomorphism(randomizer)
		if err != nil {
			return randomizerCommitment{}, err
		}
		return randomizerCommitment{randomizer: randomizer, commitment: c}, nil
	})
	if err != nil {
		return nil, err
	}
	randomizers := make([]group.Element, reps)
	commitments := make([]group.Element, reps)
	for i, rc := range rcs {
		randomizers[i] = rc.randomizer
		commitments[i] = rc.commitment
	}
	digest, err := commitment.CommitTranscript(commitRoundLabel, commitmentBytes(commitments))
	if err != nil {
		return nil, err
	}

	parties := make(map[party.ID]*partyState, r.N())
	parties[r.SelfID()] = &partyState{statement: statement, commitments: commitments, digest: digest}

	content := &Round1Content{
		NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number() + 1},
		Digest:                 digest.Digest,
	}
	out <- &round.Message{From: r.SelfID(), Content: content, Broadcast: true}

	return &Round2{
		Helper:      r.Helper.Next(r.Number() + 1),
		lang:        r.lang,
		witness:     r.witness,
		statement:   statement,
		randomizers: randomizers,
		commitments: commitments,
		parties:     parties,
	}, nil
}

// --- Round 2: commitment digests in, reveal out ---

type Round1Content struct {
	round.NormalBroadcastContent
	Digest []byte
}

// Round2 collects every party's commitment digest (including its own,
// already recorded by Round1.Finalize) and, once all are in, reveals its
// own statement and commitments (spec.md §5 "decommitment round").
type Round2 struct {
	*round.Helper
	lang        maurer.Language
	witness     group.Element
	statement   group.Element
	randomizers []group.Element
	commitments []group.Element
	parties     map[party.ID]*partyState
}

func (r *Round2) BroadcastContent() round.Content {
	return &Round1Content{NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number()}}
}
func (r *Round2) MessageContent() round.Content     { return nil }
func (r *Round2) VerifyMessage(round.Message) error { return nil }
func (r *Round2) StoreMessage(round.Message) error  { return nil }

func (r *Round2) StoreBroadcastMessage(msg round.Message) error {
	content, ok := msg.Content.(*Round1Content)
	if !ok {
		return errors.New("aggregation: unexpected commitment content")
	}
	if msg.From == r.SelfID() {
		return nil // already recorded locally in Round1.Finalize
	}
	r.parties[msg.From] = &partyState{digest: &commitment.TranscriptCommitment{Digest: content.Digest}}
	return nil
}

func (r *Round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	content := &Round2Content{
		NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number() + 1},
		Statement:              r.statement.Value().Bytes(),
		Commitments:            commitmentBytes(r.commitments),
	}
	out <- &round.Message{From: r.SelfID(), Content: content, Broadcast: true}

	// The self-addressed copy of this broadcast never passes back through
	// StoreBroadcastMessage (a party does not message itself over the
	// network), so record it here directly.
	r.parties[r.SelfID()].statement = r.statement
	r.parties[r.SelfID()].commitments = r.commitments

	return &Round3{
		Helper:      r.Helper.Next(r.Number() + 1),
		lang:        r.lang,
		witness:     r.witness,
		randomizers: r.randomizers,
		parties:     r.parties,
	}, nil
}

// --- Round 3: reveals in, challenge derived, responses out ---

type Round2Content struct {
	round.NormalBroadcastContent
	Statement   []byte
	Commitments [][]byte
}

// Round3 collects every party's revealed statement and commitments,
// verifying each against the digest recorded in Round2, then derives the
// joint Fiat-Shamir challenge and emits this party's responses (spec.md
// §5 "proof-share round").
type Round3 struct {
	*round.Helper
	lang        maurer.Language
	witness     group.Element
	randomizers []group.Element
	parties     map[party.ID]*partyState
}

func (r *Round3) BroadcastContent() round.Content {
	return &Round2Content{NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number()}}
}
func (r *Round3) MessageContent() round.Content     { return nil }
func (r *Round3) VerifyMessage(round.Message) error { return nil }
func (r *Round3) StoreMessage(round.Message) error  { return nil }

func (r *Round3) StoreBroadcastMessage(msg round.Message) error {
	content, ok := msg.Content.(*Round2Content)
	if !ok {
		return errors.New("aggregation: unexpected decommitment content")
	}
	ps := r.parties[msg.From]
	if ps == nil {
		return errors.New("aggregation: decommitment from unknown party")
	}
	if msg.From == r.SelfID() {
		return nil // this party's own statement/commitments are already set
	}
	ok2, err := ps.digest.Verify(commitRoundLabel, content.Commitments)
	if err != nil {
		return err
	}
	if !ok2 {
		return ErrWrongDecommitment
	}
	if len(content.Commitments) != r.lang.Repetitions() {
		return ErrWrongDecommitment
	}
	statement, err := r.lang.DecodeStatement(content.Statement)
	if err != nil {
		return err
	}
	commitments := make([]group.Element, len(content.Commitments))
	for i, c := range content.Commitments {
		e, err := r.lang.DecodeStatement(c)
		if err != nil {
			return err
		}
		commitments[i] = e
	}
	ps.statement = statement
	ps.commitments = commitments
	return nil
}

func (r *Round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	ids := r.PartyIDs().Sort()
	reps := r.lang.Repetitions()
	width := maurer.ChallengeBitsTotal / reps
	// The joint challenge is derived over the AGGREGATED statement and
	// statement masks, exactly the transcript maurer.Verify recomputes, so
	// the proof this run eventually emits is an ordinary single-prover
	// Schnorr proof any external verifier (the centralized party) can
	// check without knowing the committee's composition. Per-party sums
	// are order-independent, so sorting by PartyID is only needed to make
	// every member walk the same map order (spec.md §5 "ordering
	// guarantees").
	aggStatement := r.parties[ids[0]].statement
	aggCommitments := make([]group.Element, reps)
	copy(aggCommitments, r.parties[ids[0]].commitments)
	for _, id := range ids[1:] {
		ps := r.parties[id]
		aggStatement = aggStatement.Add(ps.statement)
		for i := 0; i < reps; i++ {
			aggCommitments[i] = aggCommitments[i].Add(ps.commitments[i])
		}
	}
	challenge := maurer.ChallengeBits(r.lang, aggStatement, aggCommitments)

	zs, err := pool.Map(r.Pool(), reps, func(i int) (group.Element, error) {
		c := maurer.ChallengeAt(challenge, i, width)
		return r.randomizers[i].Add(r.witness.ScalarMul(c)), nil
	})
	if err != nil {
		return nil, err
	}
	responses := make([][]byte, reps)
	selfResponses := make([]group.Element, reps)
	for i, z := range zs {
		selfResponses[i] = z
		responses[i] = z.Value().Bytes()
	}

	content := &Round3Content{
		NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number() + 1},
		Responses:              responses,
	}
	out <- &round.Message{From: r.SelfID(), Content: content, Broadcast: true}

	// As in Round2.Finalize, this party's own share never loops back
	// through StoreBroadcastMessage, so record it directly.
	r.parties[r.SelfID()].responses = selfResponses

	return &Round4{
		Helper:    r.Helper.Next(r.Number() + 1),
		lang:      r.lang,
		challenge: challenge,
		parties:   r.parties,
		self:      r.SelfID(),
	}, nil
}

// --- Round 4: responses in, aggregation and blame check ---

type Round3Content struct {
	round.NormalBroadcastContent
	Responses [][]byte
}

// Round4 collects every party's responses, verifies each party's
// individual proof share (range claims first, then the homomorphism
// identity) against its own commitments and statement, blaming any party
// whose share fails (spec.md §5 "blame attribution via individual
// proof-share re-verification"), then sums statements, commitments and
// responses componentwise into the aggregate Proof.
type Round4 struct {
	*round.Helper
	lang      maurer.Language
	challenge []byte
	parties   map[party.ID]*partyState
	self      party.ID
}

func (r *Round4) BroadcastContent() round.Content {
	return &Round3Content{NormalBroadcastContent: round.NormalBroadcastContent{Number: r.Number()}}
}
func (r *Round4) MessageContent() round.Content     { return nil }
func (r *Round4) VerifyMessage(round.Message) error { return nil }
func (r *Round4) StoreMessage(round.Message) error  { return nil }

func (r *Round4) StoreBroadcastMessage(msg round.Message) error {
	content, ok := msg.Content.(*Round3Content)
	if !ok {
		return errors.New("aggregation: unexpected proof-share content")
	}
	ps := r.parties[msg.From]
	if ps == nil {
		return errors.New("aggregation: proof share from unknown party")
	}
	if msg.From == r.self {
		return nil // this party's own responses are already set
	}
	if len(content.Responses) != r.lang.Repetitions() {
		return ErrInvalidProofShare
	}
	responses := make([]group.Element, len(content.Responses))
	for i, resp := range content.Responses {
		w, err := r.lang.DecodeWitness(resp)
		if err != nil {
			return ErrInvalidProofShare
		}
		responses[i] = w
	}
	ps.responses = responses
	return nil
}

func (r *Round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	ids := r.PartyIDs().Sort()
	reps := r.lang.Repetitions()
	width := maurer.ChallengeBitsTotal / reps
	rangeVerifier, checksRange := r.lang.(maurer.RangeVerifier)
	// Every party's individual proof share is independently re-verifiable,
	// so the blame check fans out one goroutine per party rather than
	// walking the list sequentially (spec.md §5 "individual proof-share
	// is verified to attribute blame").
	valid, err := pool.Map(r.Pool(), len(ids), func(idx int) (bool, error) {
		id := ids[idx]
		ps := r.parties[id]
		for i := 0; i < reps; i++ {
			if checksRange {
				if err := rangeVerifier.VerifyRange(ps.responses[i]); err != nil {
					return false, nil
				}
			}
			lhs, err := r.lang.Homomorphism(ps.responses[i])
			if err != nil {
				return false, nil
			}
			c := maurer.ChallengeAt(r.challenge, i, width)
			rhs := ps.commitments[i].Add(ps.statement.ScalarMul(c))
			if !lhs.Equal(rhs) {
				return false, nil
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	var culprits []party.ID
	for i, ok := range valid {
		if !ok {
			culprits = append(culprits, ids[i])
		}
	}
	if len(culprits) > 0 {
		return &round.Abort{Helper: r.Helper, Err: ErrProofShareVerification, Culprits: culprits}, nil
	}

	statement := r.parties[ids[0]].statement
	commitments := make([]group.Element, reps)
	responses := make([]group.Element, reps)
	copy(commitments, r.parties[ids[0]].commitments)
	copy(responses, r.parties[ids[0]].responses)
	for _, id := range ids[1:] {
		ps := r.parties[id]
		statement = statement.Add(ps.statement)
		for i := 0; i < reps; i++ {
			commitments[i] = commitments[i].Add(ps.commitments[i])
			responses[i] = responses[i].Add(ps.responses[i])
		}
	}

	result := &Output{
		AggregatedStatement: statement,
		Proof:               &maurer.Proof{Commitments: commitments, Responses: responses},
	}
	return &round.Output{Helper: r.Helper, Result: result}, nil
}
