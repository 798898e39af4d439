// Package round defines the contracts every protocol round implements:
// a round consumes itself on Finalize and produces the next round's
// object, so a caller cannot re-invoke an earlier round's API (spec.md §3
// "Lifecycles", §9 "Consumed-self state machines"). This mirrors the
// teacher's internal/round package, referenced throughout
// pkg/protocol/handler.go and the protocol packages built on top of it.
package round

import (
	"fmt"

	"github.com/luxfi/ahe2pc/pkg/hash"
	"github.com/luxfi/ahe2pc/pkg/party"
	"github.com/luxfi/ahe2pc/pkg/pool"
)

// Number identifies a round within a protocol's fixed sequence.
type Number uint32

// Content is the payload of a message a round expects to receive. It is
// allocated empty by a round (so cbor.Unmarshal has somewhere to write)
// and implements RoundNumber() to self-describe which round it belongs to.
type Content interface {
	RoundNumber() Number
}

// Message pairs a Content with routing information once it has been
// unmarshalled into a concrete Content.
type Message struct {
	From      party.ID
	To        party.ID // zero value means broadcast to all
	Content   Content
	Broadcast bool
}

// Session is the interface every round implements. A round is consumed by
// Finalize, which returns the next round (or a *round.Output / *round.Abort
// terminal object).
type Session interface {
	// Number returns this round's position in the protocol's sequence.
	Number() Number
	// FinalRoundNumber returns the last round number of the protocol.
	FinalRoundNumber() Number
	// ProtocolID names the protocol (used for message routing/dispatch).
	ProtocolID() string
	// SSID returns the session identifier binding this protocol run.
	SSID() []byte
	// SelfID returns this party's identifier.
	SelfID() party.ID
	// PartyIDs returns every participant in this round, self included.
	PartyIDs() party.IDSlice
	// OtherPartyIDs returns every participant except self.
	OtherPartyIDs() party.IDSlice
	// N returns len(PartyIDs()).
	N() int
	// Hash returns a fresh transcript seeded with this session's SSID,
	// used to derive round-specific commitments and challenges.
	Hash() *hash.Hash
	// MessageContent returns an empty Content to unmarshal a non-broadcast
	// message into, or nil if this round expects none.
	MessageContent() Content
	// VerifyMessage checks an incoming (non-broadcast) message for
	// validity before it is stored.
	VerifyMessage(msg Message) error
	// StoreMessage records a verified incoming message.
	StoreMessage(msg Message) error
	// Finalize is called once every expected message for this round has
	// been stored. It consumes the round and returns the next one.
	Finalize(out chan<- *Message) (Session, error)
}

// BroadcastRound is implemented by rounds that additionally expect one
// reliably-broadcast message per party before normal messages (if any)
// are processed.
type BroadcastRound interface {
	Session
	BroadcastContent() Content
	StoreBroadcastMessage(msg Message) error
}

// NormalBroadcastContent is embedded by broadcast Content types that do
// not also need a companion non-broadcast message; its RoundNumber is
// supplied by the embedding type via shadowing, following the teacher's
// round.NormalBroadcastContent pattern.
type NormalBroadcastContent struct {
	Number Number
}

func (c NormalBroadcastContent) RoundNumber() Number { return c.Number }

// Info describes the static parameters of a protocol run, supplied once at
// Start and threaded into every round via Helper.
type Info struct {
	ProtocolID       string
	FinalRoundNumber Number
	SelfID           party.ID
	PartyIDs         party.IDSlice
	Pool             *pool.Pool
}

// Helper is embedded by every concrete round type; it implements the
// bookkeeping portion of Session (everything but MessageContent,
// VerifyMessage, StoreMessage, Finalize, which are round-specific).
type Helper struct {
	info   Info
	number Number
	ssid   []byte
	pool   *pool.Pool
}

// NewHelper builds the round-1 Helper, which the protocol's first round
// embeds directly; later rounds derive theirs via Next. A nil info.Pool defaults to
// pool.NewPool(0) (runtime.NumCPU() workers) so every round can fan its
// per-repetition Schnorr work out through Helper.Pool() without each call
// site having to remember to supply one.
func NewHelper(info Info, sessionID []byte) (*Helper, error) {
	if len(info.PartyIDs) == 0 {
		return nil, fmt.Errorf("round: no parties specified")
	}
	if !info.PartyIDs.Contains(info.SelfID) {
		return nil, fmt.Errorf("round: self ID %d not among party IDs", info.SelfID)
	}
	ssid := make([]byte, len(sessionID))
	copy(ssid, sessionID)
	p := info.Pool
	if p == nil {
		p = pool.NewPool(0)
	}
	return &Helper{info: info, number: 1, ssid: ssid, pool: p}, nil
}

// Next returns a Helper advanced to the given round number, used by a
// round's Finalize to build the Helper embedded in the round it returns.
func (h *Helper) Next(number Number) *Helper {
	return &Helper{info: h.info, number: number, ssid: h.ssid, pool: h.pool}
}

func (h *Helper) Number() Number           { return h.number }
func (h *Helper) FinalRoundNumber() Number { return h.info.FinalRoundNumber }
func (h *Helper) ProtocolID() string       { return h.info.ProtocolID }
func (h *Helper) SSID() []byte             { return h.ssid }
func (h *Helper) SelfID() party.ID         { return h.info.SelfID }
func (h *Helper) PartyIDs() party.IDSlice  { return h.info.PartyIDs }
func (h *Helper) N() int                   { return len(h.info.PartyIDs) }
func (h *Helper) Pool() *pool.Pool         { return h.pool }

func (h *Helper) OtherPartyIDs() party.IDSlice {
	return h.info.PartyIDs.Remove(h.info.SelfID)
}

func (h *Helper) Hash() *hash.Hash {
	t := hash.New()
	_ = t.WriteBytes("protocol context", h.ssid)
	return t
}

// Abort is a terminal Session returned when a round detects a fatal
// condition. Culprits, if any, names the offending parties (spec.md §7).
type Abort struct {
	*Helper
	Err      error
	Culprits []party.ID
}

func (a *Abort) MessageContent() Content                { return nil }
func (a *Abort) VerifyMessage(Message) error             { return nil }
func (a *Abort) StoreMessage(Message) error              { return nil }
func (a *Abort) Finalize(chan<- *Message) (Session, error) {
	return a, a.Err
}

// Output is the terminal Session returned by the final round of a
// successful protocol run.
type Output struct {
	*Helper
	Result interface{}
}

func (o *Output) MessageContent() Content                { return nil }
func (o *Output) VerifyMessage(Message) error             { return nil }
func (o *Output) StoreMessage(Message) error              { return nil }
func (o *Output) Finalize(chan<- *Message) (Session, error) {
	return o, nil
}
