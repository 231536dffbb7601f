package game

import "time"

// Transitions of the room state machine. Everything here expects the room
// lock to be held; the exported actions in service.go and the timer
// callbacks below are the only ways in.

func (s *Service) startGame(r *Room, mode Mode) {
	r.clearGameState()
	r.Mode = mode
	r.Phase = PhaseSpeaking
	r.Round = 1
	for _, p := range r.Players {
		p.Alive = true
	}

	odd := r.Players[s.intn(len(r.Players))]
	switch mode {
	case ModeImposter:
		term := s.source.RandomTerm()
		for _, p := range r.Players {
			if p.ID == odd.ID {
				r.Roles[p.ID] = RoleImposter
				// no word entry: the imposter is dealt nothing
				continue
			}
			r.Roles[p.ID] = RoleCivilian
			r.Words[p.ID] = term
		}
	case ModeSpy:
		primary, similar := s.source.RandomPair()
		for _, p := range r.Players {
			if p.ID == odd.ID {
				r.Roles[p.ID] = RoleSpy
				r.Words[p.ID] = similar
				continue
			}
			r.Roles[p.ID] = RoleCivilian
			r.Words[p.ID] = primary
		}
	}

	order := make([]string, len(r.Players))
	for i, p := range r.Players {
		order[i] = p.ID
	}
	s.shuffle(order)
	r.TurnOrder = order
	r.CurrentTurnIndex = 0

	s.log.Info().Str("room", r.Code).Str("mode", string(mode)).Int("players", len(r.Players)).Msg("game started")
	s.armTurnTimer(r)
	s.broadcastState(r)
}

// advanceTurn moves the floor to the next living speaker, or to voting once
// the order is exhausted. The timer path and the explicit skip both land
// here; the epoch armed with each turn makes a late fire from a replaced
// timer a no-op, so the transition runs at most once per turn.
func (s *Service) advanceTurn(r *Room) {
	r.CurrentTurnIndex++
	s.resumeSpeaking(r)
}

// resumeSpeaking re-validates the order against the living and either hands
// the floor to the speaker at the cursor or closes the round. Entered with
// the cursor already advanced (normal advance) or in place (the current
// speaker vanished and their removal is the advance).
func (s *Service) resumeSpeaking(r *Room) {
	// Mid-round disconnects leave dead or vanished ids in the order; this
	// is the one place the order is filtered in place instead of rebuilt.
	filtered := r.TurnOrder[:0]
	for _, id := range r.TurnOrder {
		if r.isAlive(id) {
			filtered = append(filtered, id)
		}
	}
	r.TurnOrder = filtered

	if r.CurrentTurnIndex >= len(r.TurnOrder) {
		s.toVoting(r)
		return
	}

	s.armTurnTimer(r)
	s.broadcastState(r)
}

func (s *Service) toVoting(r *Room) {
	s.stopTurnTimer(r)
	r.TurnStartedAt = time.Time{}
	r.Phase = PhaseVoting
	r.Votes = make(map[string]string)

	s.log.Info().Str("room", r.Code).Int("round", r.Round).Msg("voting opened")
	s.broadcastState(r)
	s.notifyPhase(r)
}

// tally counts the ballots, eliminates the top target (uniform among ties)
// and either ends the game or schedules the next round.
func (s *Service) tally(r *Room) {
	counts := make(map[string]int)
	for voter, target := range r.Votes {
		if r.isAlive(voter) {
			counts[target]++
		}
	}
	if len(counts) == 0 {
		return
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	// Collect ties in player join order so the random pick below is the
	// only source of nondeterminism.
	var top []string
	for _, p := range r.Players {
		if counts[p.ID] == max {
			top = append(top, p.ID)
		}
	}
	victimID := top[s.intn(len(top))]

	victim := r.player(victimID)
	victim.Alive = false
	r.Eliminated = append(r.Eliminated, victimID)
	r.LastEliminated = victimID

	s.log.Info().Str("room", r.Code).Str("eliminated", victim.Name).Int("votes", max).Msg("player eliminated")

	if winner, ok := s.evaluateWin(r); ok {
		s.endGame(r, winner, victim)
		return
	}
	s.toResults(r)
}

// evaluateWin checks the terminal conditions after an elimination. The odd
// one out losing is checked first; with one elimination per tally the two
// branches cannot both hold.
func (s *Service) evaluateWin(r *Room) (Winner, bool) {
	oddID := r.oddOneOut()
	if !r.isAlive(oddID) {
		return WinnerCivilians, true
	}
	// Disconnects can pull the pool below the usual two-survivor boundary
	// between tallies, so this is a ceiling rather than an exact match.
	if r.aliveCount() <= 2 {
		switch r.Mode {
		case ModeSpy:
			return WinnerSpy, true
		default:
			return WinnerImposter, true
		}
	}
	return "", false
}

func (s *Service) endGame(r *Room, winner Winner, victim *Player) {
	s.stopTimers(r)
	r.TurnStartedAt = time.Time{}
	r.Phase = PhaseEnded
	r.Winner = winner

	winningRole := Role(winner)
	if winner == WinnerCivilians {
		winningRole = RoleCivilian
	}
	r.WinningPlayers = nil
	for _, p := range r.Players {
		if r.Roles[p.ID] == winningRole {
			r.WinningPlayers = append(r.WinningPlayers, p.ID)
		}
	}

	s.log.Info().Str("room", r.Code).Str("winner", string(winner)).Msg("game over")
	s.broadcastState(r)

	over := GameOver{
		Winner:         winner,
		WinningPlayers: r.WinningPlayers,
		EliminatedID:   victim.ID,
		EliminatedName: victim.Name,
		EliminatedRole: r.Roles[victim.ID],
	}
	for _, p := range r.Players {
		s.sender.Send(p.ID, Envelope{Type: MsgGameOver, Data: over})
	}
}

func (s *Service) toResults(r *Room) {
	r.Phase = PhaseResults
	s.broadcastState(r)

	if r.resultsTimer != nil {
		r.resultsTimer.Stop()
	}
	r.resultsEpoch++
	code, epoch := r.Code, r.resultsEpoch
	r.resultsTimer = s.sched.AfterFunc(ResultsDelay, func() {
		s.handleResultsDelay(code, epoch)
	})
}

// nextRound reopens speaking with a fresh shuffle of the survivors.
func (s *Service) nextRound(r *Room) {
	r.Round++
	r.Phase = PhaseSpeaking
	r.Votes = make(map[string]string)
	r.LastEliminated = ""
	order := r.alivePlayerIDs()
	s.shuffle(order)
	r.TurnOrder = order
	r.CurrentTurnIndex = 0

	s.log.Info().Str("room", r.Code).Int("round", r.Round).Msg("next round")
	s.armTurnTimer(r)
	s.broadcastState(r)
	s.notifyPhase(r)
}

// --- timers ---

func (s *Service) armTurnTimer(r *Room) {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
	}
	r.turnEpoch++
	r.TurnStartedAt = time.Now()

	code, epoch := r.Code, r.turnEpoch
	r.turnTimer = s.sched.AfterFunc(TurnDuration, func() {
		s.handleTurnTimeout(code, epoch)
	})
}

// handleTurnTimeout re-enters the machine when a speaker ran out of time.
// The room and the turn it was armed for may be long gone, so everything is
// re-validated under the lock instead of trusting the captured context.
func (s *Service) handleTurnTimeout(code string, epoch uint64) {
	room, ok := s.registry.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseSpeaking || room.turnEpoch != epoch {
		return
	}
	s.log.Debug().Str("room", code).Int("turn", room.CurrentTurnIndex).Msg("turn timer expired")
	s.advanceTurn(room)
}

func (s *Service) handleResultsDelay(code string, epoch uint64) {
	room, ok := s.registry.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Phase != PhaseResults || room.resultsEpoch != epoch {
		return
	}
	s.nextRound(room)
}

func (s *Service) stopTurnTimer(r *Room) {
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.turnEpoch++
}

func (s *Service) stopTimers(r *Room) {
	s.stopTurnTimer(r)
	if r.resultsTimer != nil {
		r.resultsTimer.Stop()
		r.resultsTimer = nil
	}
	r.resultsEpoch++
}

// --- outbound ---

// broadcastState pushes each member their own projection. Payloads are
// materialized per recipient; once roles exist they are never shared.
func (s *Service) broadcastState(r *Room) {
	for _, p := range r.Players {
		s.sender.Send(p.ID, Envelope{Type: MsgRoomState, Data: Project(r, p.ID)})
	}
}

func (s *Service) notifyPhase(r *Room) {
	change := PhaseChange{Phase: r.Phase, Round: r.Round}
	for _, p := range r.Players {
		s.sender.Send(p.ID, Envelope{Type: MsgPhaseChanged, Data: change})
	}
}

func (s *Service) broadcastVoteUpdate(r *Room) {
	update := VoteUpdate{
		Counts: make(map[string]int, len(r.Votes)),
		Voted:  len(r.Votes),
		Alive:  r.aliveCount(),
	}
	for _, target := range r.Votes {
		update.Counts[target]++
	}
	for _, p := range r.Players {
		s.sender.Send(p.ID, Envelope{Type: MsgVoteUpdate, Data: update})
	}
}
