package transport

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayankMankar1/ShadowSignal/game"
)

type stubWords struct{}

func (stubWords) RandomTerm() string           { return "pizza" }
func (stubWords) RandomPair() (string, string) { return "pizza", "calzone" }

type recvEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestHandler(t *testing.T) (*Handler, *Hub) {
	t.Helper()
	log := zerolog.Nop()
	hub := NewHub(log)
	reg := game.NewRegistry(rand.New(rand.NewSource(1)))
	svc := game.NewService(reg, stubWords{}, hub, game.NewScheduler(), rand.New(rand.NewSource(1)), log)
	return NewHandler(svc, hub, nil, log), hub
}

// connect registers a pumpless client; tests read frames straight off the
// send channel.
func connect(h *Hub, id string) *Client {
	c := newClient(id, nil, zerolog.Nop())
	h.add(c)
	return c
}

func recv(t *testing.T, c *Client) recvEnvelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env recvEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return recvEnvelope{}
	}
}

func recvType(t *testing.T, c *Client, msgType string) recvEnvelope {
	t.Helper()
	for i := 0; i < 16; i++ {
		env := recv(t, c)
		if env.Type == msgType {
			return env
		}
	}
	t.Fatalf("client %s never received %q", c.ID, msgType)
	return recvEnvelope{}
}

func send(h *Handler, c *Client, msg any) {
	data, _ := json.Marshal(msg)
	h.handleMessage(c, data)
}

func TestMalformedMessageRejectedWithoutStateChange(t *testing.T) {
	h, hub := newTestHandler(t)
	c := connect(hub, "c1")

	h.handleMessage(c, []byte("{not json"))

	env := recv(t, c)
	assert.Equal(t, "error", env.Type)
}

func TestUnknownActionRejected(t *testing.T) {
	h, hub := newTestHandler(t)
	c := connect(hub, "c1")

	send(h, c, ClientMessage{Action: "moonwalk"})

	env := recv(t, c)
	assert.Equal(t, "error", env.Type)
	assert.Contains(t, string(env.Data), "unknown action")
}

func TestCreateJoinFetchFlow(t *testing.T) {
	h, hub := newTestHandler(t)
	host := connect(hub, "c1")
	guest := connect(hub, "c2")

	send(h, host, ClientMessage{Action: "create", Name: "Alice"})
	state := recvType(t, host, game.MsgRoomState)

	var view game.RoomView
	require.NoError(t, json.Unmarshal(state.Data, &view))
	require.Len(t, view.Code, 5)

	send(h, guest, ClientMessage{Action: "join", Code: view.Code, Name: "Bob"})
	guestState := recvType(t, guest, game.MsgRoomState)
	require.NoError(t, json.Unmarshal(guestState.Data, &view))
	assert.Len(t, view.Players, 2)

	// The join was broadcast to the host too.
	hostState := recvType(t, host, game.MsgRoomState)
	require.NoError(t, json.Unmarshal(hostState.Data, &view))
	assert.Len(t, view.Players, 2)

	send(h, guest, ClientMessage{Action: "fetch", Code: view.Code})
	fetched := recvType(t, guest, game.MsgRoomState)
	require.NoError(t, json.Unmarshal(fetched.Data, &view))
	assert.Equal(t, "c1", view.HostID)
}

func TestRejectionsGoToCallerOnly(t *testing.T) {
	h, hub := newTestHandler(t)
	host := connect(hub, "c1")
	guest := connect(hub, "c2")

	send(h, host, ClientMessage{Action: "create", Name: "Alice"})
	recvType(t, host, game.MsgRoomState)

	send(h, guest, ClientMessage{Action: "join", Code: "NOPES", Name: "Bob"})

	env := recv(t, guest)
	assert.Equal(t, "error", env.Type)
	assert.Empty(t, host.send, "bystanders must not see the rejection")
}

func TestFullGameOverWebsocketEnvelopes(t *testing.T) {
	h, hub := newTestHandler(t)

	clients := make([]*Client, 3)
	for i := range clients {
		clients[i] = connect(hub, fmt.Sprintf("c%d", i))
	}

	send(h, clients[0], ClientMessage{Action: "create", Name: "Alice"})
	state := recvType(t, clients[0], game.MsgRoomState)
	var view game.RoomView
	require.NoError(t, json.Unmarshal(state.Data, &view))
	code := view.Code

	send(h, clients[1], ClientMessage{Action: "join", Code: code, Name: "Bob"})
	send(h, clients[2], ClientMessage{Action: "join", Code: code, Name: "Carol"})
	recvType(t, clients[2], game.MsgRoomState) // Carol's own join state

	send(h, clients[0], ClientMessage{Action: "start", Code: code, Mode: game.ModeImposter})
	started := recvType(t, clients[2], game.MsgRoomState)
	require.NoError(t, json.Unmarshal(started.Data, &view))
	require.Equal(t, game.PhaseSpeaking, view.Phase)
	require.Len(t, view.TurnOrder, 3)

	// Everyone yields in order, then everyone votes for the first speaker.
	byID := map[string]*Client{"c0": clients[0], "c1": clients[1], "c2": clients[2]}
	for _, id := range view.TurnOrder {
		send(h, byID[id], ClientMessage{Action: "skip", Code: code})
	}
	change := recvType(t, clients[0], game.MsgPhaseChanged)
	assert.Contains(t, string(change.Data), string(game.PhaseVoting))

	target := view.TurnOrder[0]
	for _, c := range clients {
		send(h, c, ClientMessage{Action: "vote", Code: code, Target: target})
	}

	over := recvType(t, clients[1], game.MsgGameOver)
	var result game.GameOver
	require.NoError(t, json.Unmarshal(over.Data, &result))
	assert.NotEmpty(t, result.Winner)
	assert.Equal(t, target, result.EliminatedID)
}

func TestSignalRelay(t *testing.T) {
	h, hub := newTestHandler(t)
	a := connect(hub, "c1")
	b := connect(hub, "c2")

	send(h, a, ClientMessage{Action: "signal", Signal: &SignalPayload{
		Kind: "offer",
		To:   "c2",
		Data: json.RawMessage(`{"sdp":"v=0"}`),
	}})

	env := recvType(t, b, "signal")
	var relay SignalRelay
	require.NoError(t, json.Unmarshal(env.Data, &relay))
	assert.Equal(t, "c1", relay.From)
	assert.Equal(t, "offer", relay.Kind)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(relay.Data))
}

func TestSignalRelayErrors(t *testing.T) {
	h, hub := newTestHandler(t)
	a := connect(hub, "c1")

	send(h, a, ClientMessage{Action: "signal"})
	assert.Equal(t, "error", recv(t, a).Type)

	send(h, a, ClientMessage{Action: "signal", Signal: &SignalPayload{Kind: "smoke", To: "c1"}})
	assert.Equal(t, "error", recv(t, a).Type)

	send(h, a, ClientMessage{Action: "signal", Signal: &SignalPayload{Kind: "answer", To: "ghost"}})
	assert.Equal(t, "error", recv(t, a).Type)
}
