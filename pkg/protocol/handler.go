package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/hash"
	"github.com/luxfi/ahe2pc/pkg/party"
)

// Handler represents some kind of handler for a protocol.
type Handler interface {
	// Result returns the result of running the protocol, or an error.
	Result() (interface{}, error)
	// Listen returns a channel which will receive new messages.
	Listen() <-chan *Message
	// Stop aborts the protocol execution.
	Stop()
	// CanAccept checks whether or not a message can be accepted at the
	// current point in the protocol.
	CanAccept(msg *Message) bool
	// Accept advances the protocol execution after receiving a message.
	Accept(msg *Message)
}

// MultiHandler drives one party's execution of a protocol, exposing a
// simple "ingest messages, emit messages" surface over the underlying
// round.Session state machine (spec.md §5).
type MultiHandler struct {
	mtx sync.Mutex

	current round.Session
	rounds  map[round.Number]round.Session

	messages  map[round.Number]map[party.ID]*Message
	broadcast map[round.Number]map[party.ID]*Message
	bcastHash map[round.Number][]byte

	out    chan *Message
	err    *Error
	result interface{}
}

// NewMultiHandler starts a protocol run from a StartFunc.
func NewMultiHandler(create StartFunc, sessionID []byte) (*MultiHandler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	h := &MultiHandler{
		current:   r,
		rounds:    map[round.Number]round.Session{r.Number(): r},
		messages:  map[round.Number]map[party.ID]*Message{},
		broadcast: map[round.Number]map[party.ID]*Message{},
		bcastHash: map[round.Number][]byte{},
		out:       make(chan *Message, 2*r.N()),
	}
	h.initStorage(r)
	h.drainQueued(r)
	return h, nil
}

func (h *MultiHandler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, *h.err
	}
	return nil, errors.New("protocol: not finished")
}

func (h *MultiHandler) Listen() <-chan *Message {
	return h.out
}

func (h *MultiHandler) CanAccept(msg *Message) bool {
	r := h.current
	if msg == nil || !msg.IsFor(r.SelfID()) || msg.Protocol != r.ProtocolID() {
		return false
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return false
	}
	if !r.PartyIDs().Contains(msg.From) {
		return false
	}
	if msg.Data == nil || msg.RoundNumber > r.FinalRoundNumber() {
		return false
	}
	if msg.RoundNumber < r.Number() && msg.RoundNumber > 0 {
		return false
	}
	return true
}

// Accept processes an incoming message, possibly advancing the round and
// emitting new outgoing messages. A round-0 message is treated as an abort
// notification from another party.
func (h *MultiHandler) Accept(msg *Message) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if !h.CanAccept(msg) || h.err != nil || h.result != nil || h.duplicate(msg) {
		return
	}
	if msg.RoundNumber == 0 {
		h.abort(fmt.Errorf("aborted by %d: %s", msg.From, msg.Data), msg.From)
		return
	}

	h.store(msg)
	if h.current.Number() != msg.RoundNumber {
		return
	}

	var err error
	if msg.Broadcast {
		err = h.handleBroadcast(msg)
	} else {
		err = h.handleNormal(msg)
	}
	if err != nil {
		h.abort(err, msg.From)
		return
	}
	h.tryFinalize()
}

func (h *MultiHandler) handleBroadcast(msg *Message) error {
	r, ok := h.rounds[msg.RoundNumber]
	if !ok {
		return nil
	}
	b, ok := r.(round.BroadcastRound)
	if !ok {
		return errors.New("protocol: got broadcast message when none was expected")
	}
	content := b.BroadcastContent()
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	if err := b.StoreBroadcastMessage(round.Message{From: msg.From, Content: content, Broadcast: true}); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	if p2p := h.messages[msg.RoundNumber][msg.From]; p2p != nil {
		return h.handleNormal(p2p)
	}
	return nil
}

func (h *MultiHandler) handleNormal(msg *Message) error {
	r, ok := h.rounds[msg.RoundNumber]
	if !ok {
		return nil
	}
	if _, needsBroadcastFirst := r.(round.BroadcastRound); needsBroadcastFirst {
		q := h.broadcast[msg.RoundNumber]
		if q == nil || q[msg.From] == nil {
			return nil // broadcast not yet in hand; retried once it arrives
		}
	}
	content := r.MessageContent()
	if content == nil {
		return nil
	}
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	roundMsg := round.Message{From: msg.From, Content: content}
	if err := r.VerifyMessage(roundMsg); err != nil {
		return fmt.Errorf("round %d: %w", r.Number(), err)
	}
	return r.StoreMessage(roundMsg)
}

func (h *MultiHandler) tryFinalize() {
	if !h.receivedAll() {
		return
	}
	if !h.checkBroadcastHashes() {
		h.abort(errors.New("protocol: broadcast verification failed"))
		return
	}

	out := make(chan *round.Message, h.current.N()+1)
	next, err := h.current.Finalize(out)
	close(out)
	if err != nil || next == nil {
		h.abort(err, h.current.SelfID())
		return
	}

	if _, already := h.rounds[next.Number()]; !already {
		h.rounds[next.Number()] = next
		// Storage for next's round number must exist before we emit into it
		// below: a round's own outgoing message is always addressed to the
		// round it starts, including the sender's own broadcast loopback,
		// and store() silently drops messages for an uninitialized round.
		h.initStorage(next)
	}
	h.current = next

	for roundMsg := range out {
		h.emit(h.current, roundMsg)
	}

	switch r := next.(type) {
	case *round.Abort:
		h.abort(r.Err, r.Culprits...)
		return
	case *round.Output:
		h.result = r.Result
		h.abort(nil)
		return
	}

	h.drainQueued(next)
}

// drainQueued replays any messages for round r that arrived before r
// itself was constructed (e.g. a fast peer's round-N message reaching us
// while we are still finishing round N-1).
func (h *MultiHandler) drainQueued(r round.Session) {
	number := r.Number()
	if _, ok := r.(round.BroadcastRound); ok {
		for id, m := range h.broadcast[number] {
			if m == nil || id == r.SelfID() {
				continue
			}
			if err := h.handleBroadcast(m); err != nil {
				h.abort(err, m.From)
				return
			}
		}
	} else {
		for _, m := range h.messages[number] {
			if m == nil {
				continue
			}
			if err := h.handleNormal(m); err != nil {
				h.abort(err, m.From)
				return
			}
		}
	}
	h.tryFinalize()
}

func (h *MultiHandler) emit(r round.Session, roundMsg *round.Message) {
	data, err := cbor.Marshal(roundMsg.Content)
	if err != nil {
		panic(fmt.Errorf("protocol: failed to marshal round message: %w", err))
	}
	msg := &Message{
		SSID:                  r.SSID(),
		From:                  r.SelfID(),
		To:                    roundMsg.To,
		Protocol:              r.ProtocolID(),
		RoundNumber:           roundMsg.Content.RoundNumber(),
		Data:                  data,
		Broadcast:             roundMsg.Broadcast,
		BroadcastVerification: h.bcastHash[r.Number()-1],
	}
	if msg.Broadcast {
		h.store(msg)
	}
	h.out <- msg
}

func (h *MultiHandler) abort(err error, culprits ...party.ID) {
	if err != nil {
		h.err = &Error{Culprits: culprits, Err: err}
		select {
		case h.out <- &Message{SSID: h.current.SSID(), From: h.current.SelfID(), Protocol: h.current.ProtocolID(), Data: []byte(h.err.Error())}:
		default:
		}
	}
	close(h.out)
}

// Stop cancels the current execution of the protocol, alerting the caller
// via Result (spec.md §5 "callers impose deadlines and simply drop a party
// object to cancel").
func (h *MultiHandler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.err == nil && h.result == nil {
		h.abort(errors.New("aborted by user"), h.current.SelfID())
	}
}

// ErrUnresponsiveParties is the retryable absence condition of spec.md
// §7: the current round is still waiting on the named parties. Raised
// only through StopUnresponsive -- the core itself has no timeouts, the
// caller decides when waiting has gone on long enough (spec.md §5).
var ErrUnresponsiveParties = errors.New("protocol: unresponsive parties")

// Unresponsive lists the parties whose current-round message has not
// arrived yet. Empty when the round is complete (or already finished).
func (h *MultiHandler) Unresponsive() []party.ID {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.err != nil || h.result != nil {
		return nil
	}
	return h.unresponsive()
}

// StopUnresponsive aborts the run blaming exactly the parties that have
// not delivered their current-round message, surfacing
// ErrUnresponsiveParties with their IDs as Culprits via Result.
func (h *MultiHandler) StopUnresponsive() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.err != nil || h.result != nil {
		return
	}
	h.abort(ErrUnresponsiveParties, h.unresponsive()...)
}

func (h *MultiHandler) unresponsive() []party.ID {
	r := h.current
	number := r.Number()
	missing := make(map[party.ID]bool)
	if _, ok := r.(round.BroadcastRound); ok {
		for _, id := range r.PartyIDs() {
			if id != r.SelfID() && h.broadcast[number][id] == nil {
				missing[id] = true
			}
		}
	}
	if r.MessageContent() != nil {
		for _, id := range r.OtherPartyIDs() {
			if h.messages[number][id] == nil {
				missing[id] = true
			}
		}
	}
	ids := make(party.IDSlice, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	return ids.Sort()
}

func (h *MultiHandler) receivedAll() bool {
	r := h.current
	number := r.Number()
	if _, ok := r.(round.BroadcastRound); ok {
		for _, id := range r.PartyIDs() {
			if h.broadcast[number][id] == nil {
				return false
			}
		}
		if h.bcastHash[number] == nil {
			t := hash.New()
			for _, id := range r.PartyIDs().Sort() {
				_ = t.WriteAny(&hash.BytesWithDomain{TheDomain: "Message", Bytes: h.broadcast[number][id].Hash()})
			}
			h.bcastHash[number] = t.Sum(32)
		}
	}
	if r.MessageContent() != nil {
		for _, id := range r.OtherPartyIDs() {
			if h.messages[number][id] == nil {
				return false
			}
		}
	}
	return true
}

func (h *MultiHandler) checkBroadcastHashes() bool {
	number := h.current.Number()
	prev := h.bcastHash[number-1]
	if prev == nil {
		return true
	}
	for _, m := range h.messages[number] {
		if m != nil && !bytes.Equal(prev, m.BroadcastVerification) {
			return false
		}
	}
	for _, m := range h.broadcast[number] {
		if m != nil && !bytes.Equal(prev, m.BroadcastVerification) {
			return false
		}
	}
	return true
}

func (h *MultiHandler) duplicate(msg *Message) bool {
	var q map[party.ID]*Message
	if msg.Broadcast {
		q = h.broadcast[msg.RoundNumber]
	} else {
		q = h.messages[msg.RoundNumber]
	}
	if q == nil {
		return true
	}
	return q[msg.From] != nil
}

func (h *MultiHandler) store(msg *Message) {
	var q map[party.ID]*Message
	if msg.Broadcast {
		q = h.broadcast[msg.RoundNumber]
	} else {
		q = h.messages[msg.RoundNumber]
	}
	if q == nil || q[msg.From] != nil {
		return
	}
	q[msg.From] = msg
}

func (h *MultiHandler) initStorage(r round.Session) {
	number := r.Number()
	if _, ok := r.(round.BroadcastRound); ok {
		if h.broadcast[number] == nil {
			h.broadcast[number] = make(map[party.ID]*Message, r.N())
			for _, id := range r.PartyIDs() {
				h.broadcast[number][id] = nil
			}
		}
	}
	if r.MessageContent() != nil {
		if h.messages[number] == nil {
			h.messages[number] = make(map[party.ID]*Message, r.N()-1)
			for _, id := range r.OtherPartyIDs() {
				h.messages[number][id] = nil
			}
		}
	}
}

func (h *MultiHandler) String() string {
	return fmt.Sprintf("party: %d, protocol: %s", h.current.SelfID(), h.current.ProtocolID())
}
