package game

import (
	"math/rand"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Service is the game engine: it owns every state transition and is the only
// writer of room state. External actions arrive through the exported
// methods; timers re-enter through the handlers armed in room.go. Each
// action locks exactly one room for its full duration.
type Service struct {
	registry *Registry
	source   WordSource
	sender   Sender
	sched    Scheduler
	log      zerolog.Logger

	// rng is shared across rooms and guarded separately, since room locks
	// don't serialize against each other.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewService(reg *Registry, source WordSource, sender Sender, sched Scheduler, rng *rand.Rand, log zerolog.Logger) *Service {
	return &Service{
		registry: reg,
		source:   source,
		sender:   sender,
		sched:    sched,
		rng:      rng,
		log:      log,
	}
}

// CreateRoom makes a fresh lobby with the caller as host and only member.
// Membership is exclusive: a connection belongs to at most one room, so the
// disconnect path always finds everything it has to clean up.
func (s *Service) CreateRoom(hostID, hostName string) (RoomView, error) {
	name, err := validateName(hostName)
	if err != nil {
		return RoomView{}, err
	}
	if _, member := s.registry.FindByPlayer(hostID); member {
		return RoomView{}, ErrAlreadyInRoom
	}
	room, err := s.registry.Create(hostID, name)
	if err != nil {
		return RoomView{}, err
	}
	s.log.Info().Str("room", room.Code).Str("host", name).Msg("room created")

	room.mu.Lock()
	defer room.mu.Unlock()
	view := Project(room, hostID)
	s.sender.Send(hostID, Envelope{Type: MsgRoomState, Data: view})
	return view, nil
}

// JoinRoom adds a player to a lobby. Names are unique per room,
// case-insensitively.
func (s *Service) JoinRoom(code, playerID, playerName string) (RoomView, error) {
	name, err := validateName(playerName)
	if err != nil {
		return RoomView{}, err
	}
	if _, member := s.registry.FindByPlayer(playerID); member {
		return RoomView{}, ErrAlreadyInRoom
	}
	room, ok := s.registry.Get(code)
	if !ok {
		return RoomView{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseLobby {
		return RoomView{}, ErrGameInProgress
	}
	if room.nameTaken(name) {
		return RoomView{}, ErrNameTaken
	}

	room.Players = append(room.Players, &Player{ID: playerID, Name: name, Alive: true})
	s.log.Info().Str("room", room.Code).Str("player", name).Int("players", len(room.Players)).Msg("player joined")
	s.broadcastState(room)
	return Project(room, playerID), nil
}

// FetchRoom returns the viewer's current projection of a room.
func (s *Service) FetchRoom(code, viewerID string) (RoomView, error) {
	room, ok := s.registry.Get(code)
	if !ok {
		return RoomView{}, ErrRoomNotFound
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return Project(room, viewerID), nil
}

// StartGame deals roles and words and opens round one. Host only, at least
// MinPlayers members.
func (s *Service) StartGame(code, callerID string, mode Mode) error {
	if mode != ModeImposter && mode != ModeSpy {
		return ErrUnknownMode
	}
	room, ok := s.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if callerID != room.HostID {
		return ErrNotHost
	}
	if len(room.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	s.startGame(room, mode)
	return nil
}

// SkipTurn lets the current speaker yield the floor early. It funnels into
// the same advance transition the turn timer uses.
func (s *Service) SkipTurn(code, callerID string) error {
	room, ok := s.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseSpeaking {
		return ErrWrongPhase
	}
	if room.currentSpeaker() != callerID {
		return ErrNotYourTurn
	}

	s.advanceTurn(room)
	return nil
}

// CastVote records (or overwrites) the voter's choice. The vote that brings
// the count up to the number of living players triggers the tally.
func (s *Service) CastVote(code, voterID, targetID string) error {
	room, ok := s.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !room.isAlive(voterID) {
		return ErrIneligibleVoter
	}
	if !room.isAlive(targetID) {
		return ErrIneligibleTarget
	}

	room.Votes[voterID] = targetID
	s.broadcastState(room)
	s.broadcastVoteUpdate(room)

	// Tally fires at most once: it moves the room out of voting before the
	// lock is released, so any later vote fails the phase check above.
	if len(room.Votes) >= room.aliveCount() {
		s.tally(room)
	}
	return nil
}

// ResetGame returns the room to the lobby, keeping members and host.
func (s *Service) ResetGame(code, callerID string) error {
	room, ok := s.registry.Get(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if callerID != room.HostID {
		return ErrNotHost
	}

	s.stopTimers(room)
	room.Phase = PhaseLobby
	room.clearGameState()
	for _, p := range room.Players {
		p.Alive = true
	}
	s.log.Info().Str("room", room.Code).Msg("room reset to lobby")
	s.broadcastState(room)
	return nil
}

// LeaveRoom handles a disconnect (or an explicit leave): the player is
// removed outright, with host reassignment, room teardown when empty, turn
// advance when the leaver held the floor, and a vote-threshold re-check
// when a vote was pending on them.
func (s *Service) LeaveRoom(playerID string) {
	room, ok := s.registry.FindByPlayer(playerID)
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	leaver := room.player(playerID)
	if leaver == nil {
		return
	}

	wasSpeaker := room.currentSpeaker() == playerID

	for i, p := range room.Players {
		if p.ID == playerID {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	delete(room.Roles, playerID)
	delete(room.Words, playerID)
	delete(room.Votes, playerID)
	for voter, target := range room.Votes {
		if target == playerID {
			delete(room.Votes, voter)
		}
	}

	s.log.Info().Str("room", room.Code).Str("player", leaver.Name).Int("players", len(room.Players)).Msg("player left")

	if len(room.Players) == 0 {
		s.stopTimers(room)
		s.registry.Remove(room.Code)
		s.sender.RoomClosed(room.Code)
		s.log.Info().Str("room", room.Code).Msg("room destroyed")
		return
	}

	if room.HostID == playerID {
		room.HostID = room.Players[0].ID
		s.log.Info().Str("room", room.Code).Str("host", room.Players[0].Name).Msg("host reassigned")
	}

	switch {
	case room.Phase == PhaseSpeaking && wasSpeaker:
		// Don't leave the floor to a ghost for the rest of the turn.
		// The leaver's removal is the advance here, so the cursor stays put;
		// the epoch check keeps the stale timer harmless.
		s.resumeSpeaking(room)
	case room.Phase == PhaseVoting && len(room.Votes) >= room.aliveCount() && len(room.Votes) > 0:
		// The alive count just shrank; the remaining ballots may now be
		// complete.
		s.tally(room)
	default:
		s.broadcastState(room)
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func (s *Service) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) shuffle(ids []string) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}
