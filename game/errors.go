package game

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidName      = errors.New("invalid name")
	ErrNameTaken        = errors.New("name already taken")
	ErrAlreadyInRoom    = errors.New("already in a room")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIneligibleVoter  = errors.New("you cannot vote")
	ErrIneligibleTarget = errors.New("invalid vote target")
	ErrUnknownMode      = errors.New("unknown game mode")
	ErrCodesExhausted   = errors.New("could not allocate a room code")
)
