package game

import (
	"math/rand"
	"sync"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 5

	// 26^5 codes; at tens of concurrent rooms a handful of retries is
	// already astronomically unlikely.
	maxCodeAttempts = 100
)

// Registry owns the mapping from room code to live Room. All methods are
// safe for concurrent use; the registry lock is never held across a room
// transition.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand
}

func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rng,
	}
}

// Create allocates a fresh room with an unused code and the host as its
// only member.
func (reg *Registry) Create(hostID, hostName string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for i := 0; i < maxCodeAttempts; i++ {
		code := reg.randomCode()
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		room := newRoom(code, hostID, hostName)
		reg.rooms[code] = room
		return room, nil
	}
	return nil, ErrCodesExhausted
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// FindByPlayer scans for the room holding the given player. Linear over
// rooms and members, fine at the expected scale. The registry lock is
// released before any room lock is taken: transitions hold a room lock
// while calling Remove, so nesting the locks here would invert the order.
func (reg *Registry) FindByPlayer(playerID string) (*Room, bool) {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	for _, room := range rooms {
		room.mu.Lock()
		member := room.player(playerID) != nil
		room.mu.Unlock()
		if member {
			return room, true
		}
	}
	return nil, false
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func (reg *Registry) randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[reg.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
