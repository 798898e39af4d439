// Package protocol wires internal/round state machines to a
// transport-agnostic "ingest messages, emit messages" surface (spec.md §5:
// "the core's public surface exposes only pure ingest messages -> emit
// next message transitions"). No wire format beyond CBOR-encoded round
// content is prescribed (spec.md §6).
package protocol

import (
	"fmt"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/hash"
	"github.com/luxfi/ahe2pc/pkg/party"
)

// StartFunc creates the first round of a protocol given a session ID.
type StartFunc func(sessionID []byte) (round.Session, error)

// Message is an opaque, CBOR-encoded wire message produced by one round
// and destined for the party To (or, if Broadcast is set, every party).
type Message struct {
	SSID                  []byte
	From                  party.ID
	To                    party.ID
	Protocol              string
	RoundNumber           round.Number
	Data                  []byte
	Broadcast             bool
	BroadcastVerification []byte
}

// IsFor reports whether the message is addressed to id: a broadcast
// message is for every party, any other message only for its To.
func (m *Message) IsFor(id party.ID) bool {
	if m.Broadcast {
		return true
	}
	return m.To == id
}

// Hash returns a content digest of the message used for broadcast
// agreement (spec.md §5 "commutative hash absorption only after sorting
// by PartyID").
func (m *Message) Hash() []byte {
	t := hash.New()
	_ = t.WriteBytes("message content", m.Data)
	return t.Sum(8)
}

// Error is returned by a Handler when the protocol aborts, naming the
// parties responsible if any were identified (spec.md §7).
type Error struct {
	Culprits []party.ID
	Err      error
}

func (e Error) Error() string {
	if len(e.Culprits) == 0 {
		return fmt.Sprintf("protocol aborted: %s", e.Err)
	}
	return fmt.Sprintf("protocol aborted due to %v: %s", e.Culprits, e.Err)
}

func (e Error) Unwrap() error { return e.Err }
