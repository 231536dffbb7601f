package game

// RoomView is the per-recipient projection of a Room. It mirrors the room
// except that the role and word maps collapse to the viewer's own pair, so
// a client can never see what anyone else was dealt.
type RoomView struct {
	Code             string            `json:"code"`
	HostID           string            `json:"hostId"`
	Players          []Player          `json:"players"`
	Mode             Mode              `json:"mode,omitempty"`
	Phase            Phase             `json:"phase"`
	YourRole         Role              `json:"yourRole,omitempty"`
	YourWord         string            `json:"yourWord,omitempty"`
	TurnOrder        []string          `json:"turnOrder,omitempty"`
	CurrentTurnIndex int               `json:"currentTurnIndex"`
	TurnStartedAt    int64             `json:"turnStartedAt,omitempty"` // unix ms
	TurnDurationMs   int64             `json:"turnDurationMs"`
	Votes            map[string]string `json:"votes,omitempty"`
	Eliminated       []string          `json:"eliminated,omitempty"`
	LastEliminated   string            `json:"lastEliminated,omitempty"`
	Round            int               `json:"round"`
	Winner           Winner            `json:"winner,omitempty"`
	WinningPlayers   []string          `json:"winningPlayers,omitempty"`
}

// Project derives viewerID's safe view of the room. Pure; the caller must
// hold the room lock. Once a game has started the result differs per viewer,
// so a broadcast payload is materialized per recipient, never shared.
func Project(r *Room, viewerID string) RoomView {
	view := RoomView{
		Code:             r.Code,
		HostID:           r.HostID,
		Mode:             r.Mode,
		Phase:            r.Phase,
		CurrentTurnIndex: r.CurrentTurnIndex,
		TurnDurationMs:   TurnDuration.Milliseconds(),
		LastEliminated:   r.LastEliminated,
		Round:            r.Round,
		Winner:           r.Winner,
	}

	view.Players = make([]Player, len(r.Players))
	for i, p := range r.Players {
		view.Players[i] = *p
	}

	if len(r.TurnOrder) > 0 {
		view.TurnOrder = append([]string(nil), r.TurnOrder...)
	}
	if len(r.Votes) > 0 {
		view.Votes = make(map[string]string, len(r.Votes))
		for voter, target := range r.Votes {
			view.Votes[voter] = target
		}
	}
	if len(r.Eliminated) > 0 {
		view.Eliminated = append([]string(nil), r.Eliminated...)
	}
	if len(r.WinningPlayers) > 0 {
		view.WinningPlayers = append([]string(nil), r.WinningPlayers...)
	}
	if !r.TurnStartedAt.IsZero() {
		view.TurnStartedAt = r.TurnStartedAt.UnixMilli()
	}

	if role, ok := r.Roles[viewerID]; ok {
		view.YourRole = role
	}
	if word, ok := r.Words[viewerID]; ok {
		view.YourWord = word
	}
	return view
}
