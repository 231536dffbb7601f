package game

import (
	"strings"
	"sync"
	"time"
)

// Phase is a room's stage in the round life cycle.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseSpeaking Phase = "speaking"
	PhaseVoting   Phase = "voting"
	PhaseResults  Phase = "results"
	PhaseEnded    Phase = "ended"
)

// Mode selects how the odd one out diverges from the group.
type Mode string

const (
	// ModeImposter gives every civilian the same word and the odd one out
	// nothing at all.
	ModeImposter Mode = "imposter"
	// ModeSpy gives the odd one out a near-synonym of the civilians' word.
	ModeSpy Mode = "spy"
)

type Role string

const (
	RoleCivilian Role = "civilian"
	RoleImposter Role = "imposter"
	RoleSpy      Role = "spy"
)

// Winner identifies the winning side once a game ends.
type Winner string

const (
	WinnerCivilians Winner = "civilians"
	WinnerImposter  Winner = "imposter"
	WinnerSpy       Winner = "spy"
)

const (
	TurnDuration  = 30 * time.Second
	ResultsDelay  = 5 * time.Second
	MinPlayers    = 3
	MaxNameLength = 20
)

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

// Room is one game session. All fields are guarded by mu; the engine takes
// the lock for the full duration of every transition, which serializes all
// mutations per room (cross-room actions stay independent).
type Room struct {
	mu sync.Mutex

	Code             string
	HostID           string
	Players          []*Player // join order
	Mode             Mode
	Phase            Phase
	Roles            map[string]Role   // player id -> role, empty in lobby
	Words            map[string]string // player id -> word, no key = no word
	TurnOrder        []string          // speaking sequence for the round
	CurrentTurnIndex int
	TurnStartedAt    time.Time // zero when no turn is active
	Votes            map[string]string // voter id -> target id
	Eliminated       []string
	LastEliminated   string
	Round            int
	Winner           Winner
	WinningPlayers   []string

	// Timer bookkeeping. Each epoch increments on every arm (and every
	// stop) so that a callback from a replaced or stale timer can
	// recognize itself and do nothing.
	turnEpoch    uint64
	turnTimer    TimerHandle
	resultsEpoch uint64
	resultsTimer TimerHandle
}

func newRoom(code, hostID, hostName string) *Room {
	return &Room{
		Code:    code,
		HostID:  hostID,
		Phase:   PhaseLobby,
		Players: []*Player{{ID: hostID, Name: hostName, Alive: true}},
		Roles:   make(map[string]Role),
		Words:   make(map[string]string),
		Votes:   make(map[string]string),
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) isAlive(id string) bool {
	p := r.player(id)
	return p != nil && p.Alive
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Alive {
			n++
		}
	}
	return n
}

func (r *Room) alivePlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Room) nameTaken(name string) bool {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// currentSpeaker returns the id at the turn cursor, or "" outside speaking.
func (r *Room) currentSpeaker() string {
	if r.Phase != PhaseSpeaking || r.CurrentTurnIndex >= len(r.TurnOrder) {
		return ""
	}
	return r.TurnOrder[r.CurrentTurnIndex]
}

// oddOneOut returns the id of the single non-civilian, or "" in the lobby.
func (r *Room) oddOneOut() string {
	for id, role := range r.Roles {
		if role != RoleCivilian {
			return id
		}
	}
	return ""
}

// clearGameState wipes everything a fresh lobby would not have. Players and
// host are kept; everyone comes back alive.
func (r *Room) clearGameState() {
	r.Mode = ""
	r.Roles = make(map[string]Role)
	r.Words = make(map[string]string)
	r.TurnOrder = nil
	r.CurrentTurnIndex = 0
	r.TurnStartedAt = time.Time{}
	r.Votes = make(map[string]string)
	r.Eliminated = nil
	r.LastEliminated = ""
	r.Round = 0
	r.Winner = ""
	r.WinningPlayers = nil
}
