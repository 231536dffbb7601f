package game

// Envelope is the unit sent toward the transport boundary. The engine never
// talks to sockets directly; it hands envelopes to a Sender per recipient.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Envelope types produced by the engine.
const (
	MsgRoomState    = "room_state"
	MsgPhaseChanged = "phase_changed"
	MsgVoteUpdate   = "vote_update"
	MsgGameOver     = "game_over"
	MsgRoomClosed   = "room_closed"
)

type PhaseChange struct {
	Phase Phase `json:"phase"`
	Round int   `json:"round"`
}

// VoteUpdate carries live per-target tallies during the voting phase.
type VoteUpdate struct {
	Counts map[string]int `json:"counts"`
	Voted  int            `json:"voted"`
	Alive  int            `json:"alive"`
}

// GameOver is the terminal notification, broadcast alongside the final
// room state.
type GameOver struct {
	Winner         Winner   `json:"winner"`
	WinningPlayers []string `json:"winningPlayers"`
	EliminatedID   string   `json:"eliminatedId"`
	EliminatedName string   `json:"eliminatedName"`
	EliminatedRole Role     `json:"eliminatedRole"`
}

// Sender is the "send to one" primitive the transport layer provides.
// Implementations must not block; slow recipients are the transport's
// problem, not the engine's.
type Sender interface {
	Send(playerID string, env Envelope)
	// RoomClosed announces that a room was destroyed after its last member
	// left.
	RoomClosed(code string)
}

// WordSource is the read-only corpus boundary.
type WordSource interface {
	RandomTerm() string
	RandomPair() (primary, similar string)
}
