package aggregation_test

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ahe2pc/internal/round"
	"github.com/luxfi/ahe2pc/pkg/group"
	"github.com/luxfi/ahe2pc/pkg/languages"
	"github.com/luxfi/ahe2pc/pkg/maurer"
	"github.com/luxfi/ahe2pc/pkg/maurer/aggregation"
	"github.com/luxfi/ahe2pc/pkg/party"
	"github.com/luxfi/ahe2pc/pkg/protocol"
)

func newAggregationHandler(t *testing.T, ids party.IDSlice, self party.ID, lang maurer.Language, witness group.Element) *protocol.MultiHandler {
	t.Helper()
	start := func(sessionID []byte) (round.Session, error) {
		helper, err := round.NewHelper(round.Info{
			ProtocolID:       "test-aggregation",
			FinalRoundNumber: 4,
			SelfID:           self,
			PartyIDs:         ids,
		}, sessionID)
		if err != nil {
			return nil, err
		}
		return aggregation.Start(helper, lang, witness, rand.Reader)
	}
	h, err := protocol.NewMultiHandler(start, []byte("test-aggregation-ssid"))
	require.NoError(t, err)
	return h
}

// runNetwork shuttles messages between handlers until none of them
// produce further output, optionally mangling messages via tamper before
// delivery (tamper may be nil).
func runNetwork(t *testing.T, ids party.IDSlice, handlers map[party.ID]*protocol.MultiHandler, tamper func(msg *protocol.Message)) {
	t.Helper()
	for iter := 0; iter < 50; iter++ {
		progressed := false
		for _, from := range ids {
			h := handlers[from]
		drain:
			for {
				select {
				case msg := <-h.Listen():
					if msg == nil {
						break drain
					}
					progressed = true
					if tamper != nil {
						tamper(msg)
					}
					for _, to := range ids {
						if to == from {
							continue
						}
						target := handlers[to]
						if target.CanAccept(msg) {
							target.Accept(msg)
						}
					}
				default:
					break drain
				}
			}
		}
		if !progressed {
			return
		}
	}
	t.Fatal("aggregation network did not settle within the iteration budget")
}

func sampleWitnesses(t *testing.T, ids party.IDSlice, lang maurer.Language) map[party.ID]group.Element {
	t.Helper()
	witnesses := make(map[party.ID]group.Element, len(ids))
	for _, id := range ids {
		w, err := lang.SampleWitness(rand.Reader)
		require.NoError(t, err)
		witnesses[id] = w
	}
	return witnesses
}

// An honest 3-party run must produce, at every party, the same aggregated
// statement (the componentwise sum of every individual statement) and a
// proof that verifies against it.
func TestAggregationHonestRunSucceeds(t *testing.T) {
	ids := party.IDSlice{1, 2, 3}
	lang := languages.DiscreteLog{}
	witnesses := sampleWitnesses(t, ids, lang)

	handlers := make(map[party.ID]*protocol.MultiHandler, len(ids))
	for _, id := range ids {
		handlers[id] = newAggregationHandler(t, ids, id, lang, witnesses[id])
	}
	runNetwork(t, ids, handlers, nil)

	var expected group.Element
	for _, id := range ids {
		st, err := lang.Homomorphism(witnesses[id])
		require.NoError(t, err)
		if expected == nil {
			expected = st
		} else {
			expected = expected.Add(st)
		}
	}

	for _, id := range ids {
		res, err := handlers[id].Result()
		require.NoError(t, err, "party %d should finish", id)
		out, ok := res.(*aggregation.Output)
		require.True(t, ok)

		assert.True(t, out.AggregatedStatement.Equal(expected))
		assert.NoError(t, maurer.Verify(lang, out.AggregatedStatement, out.Proof))
	}
}

// A party that never delivers its messages must be nameable: once the
// caller decides waiting is over, StopUnresponsive aborts blaming exactly
// the silent party (spec.md §5 "surfaced as UnresponsiveParties").
func TestAggregationNamesUnresponsiveParty(t *testing.T) {
	ids := party.IDSlice{1, 2, 3}
	lang := languages.DiscreteLog{}
	const silent = party.ID(3)
	witnesses := sampleWitnesses(t, ids, lang)

	handlers := make(map[party.ID]*protocol.MultiHandler, len(ids))
	for _, id := range ids {
		handlers[id] = newAggregationHandler(t, ids, id, lang, witnesses[id])
	}

	// Deliver everything except anything sent by the silent party.
	tamper := func(msg *protocol.Message) {
		if msg.From == silent {
			msg.Data = nil // CanAccept rejects nil-data messages
		}
	}
	runNetwork(t, ids, handlers, tamper)

	for _, id := range ids {
		if id == silent {
			continue
		}
		assert.Equal(t, party.IDSlice{silent}, party.IDSlice(handlers[id].Unresponsive()))
		handlers[id].StopUnresponsive()
		_, err := handlers[id].Result()
		require.Error(t, err)
		var protoErr protocol.Error
		require.ErrorAs(t, err, &protoErr)
		assert.ErrorIs(t, protoErr.Err, protocol.ErrUnresponsiveParties)
		assert.Equal(t, []party.ID{silent}, protoErr.Culprits)
	}
}

// Corrupting one byte of the cheater's round-3 proof share in transit must
// cause every honest recipient to abort with ErrProofShareVerification, naming
// the cheater among Culprits (spec.md §5 "blame attribution").
func TestAggregationDetectsCorruptedProofShare(t *testing.T) {
	ids := party.IDSlice{1, 2, 3}
	lang := languages.DiscreteLog{}
	const cheater = party.ID(2)
	witnesses := sampleWitnesses(t, ids, lang)

	handlers := make(map[party.ID]*protocol.MultiHandler, len(ids))
	for _, id := range ids {
		handlers[id] = newAggregationHandler(t, ids, id, lang, witnesses[id])
	}

	tamper := func(msg *protocol.Message) {
		if !msg.Broadcast || msg.From != cheater || msg.RoundNumber != 4 {
			return
		}
		var content aggregation.Round3Content
		require.NoError(t, cbor.Unmarshal(msg.Data, &content))
		corrupted := make([]byte, len(content.Responses[0]))
		copy(corrupted, content.Responses[0])
		corrupted[0] ^= 0xFF
		content.Responses[0] = corrupted
		data, err := cbor.Marshal(&content)
		require.NoError(t, err)
		msg.Data = data
	}
	runNetwork(t, ids, handlers, tamper)

	for _, id := range ids {
		if id == cheater {
			continue // the cheater's own local copy of its share was never tampered with
		}
		_, err := handlers[id].Result()
		require.Error(t, err)
		var protoErr protocol.Error
		require.ErrorAs(t, err, &protoErr)
		assert.ErrorIs(t, protoErr.Err, aggregation.ErrProofShareVerification)
		assert.Contains(t, protoErr.Culprits, party.ID(cheater))
	}
}
