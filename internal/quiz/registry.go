package quiz

import (
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/lithammer/shortuuid/v3"
)

const (
	roomCodeLength  = 6
	codeGenRetries  = 50
	defaultMaxAge   = 2 * time.Hour
	defaultEmptyAge = 30 * time.Minute
)

// RegistryOptions tunes the expiry policy applied by Sweep.
type RegistryOptions struct {
	// MaxAge is the wall-clock age past which a room is evicted
	// unconditionally. Default is 2 hours.
	MaxAge time.Duration

	// EmptyMaxAge is the age past which a room with zero participants
	// is evicted. Default is 30 minutes.
	EmptyMaxAge time.Duration
}

// Registry is the process-wide mapping from room code to live room.
// It is owned by the composition root and injected into the
// dispatcher; there is no ambient global state.
type Registry struct {
	rooms       map[string]*Room
	maxAge      time.Duration
	emptyMaxAge time.Duration
	mu          sync.RWMutex
}

// NewRegistry returns an in-memory registry of quiz rooms.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.MaxAge <= 0 {
		opts.MaxAge = defaultMaxAge
	}
	if opts.EmptyMaxAge <= 0 {
		opts.EmptyMaxAge = defaultEmptyAge
	}
	return &Registry{
		rooms:       map[string]*Room{},
		maxAge:      opts.MaxAge,
		emptyMaxAge: opts.EmptyMaxAge,
	}
}

// Create registers a new room owned by the host conn under a freshly
// generated code, retrying generation on collision.
func (g *Registry) Create(host *websocket.Conn, now time.Time) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := newRoomCode()
	retries := codeGenRetries
	for retries > 0 {
		if _, exist := g.rooms[code]; !exist {
			break
		}
		code = newRoomCode()
		retries--
	}
	if retries <= 0 {
		return nil, ErrNoRoomCodeAvailable
	}

	room := NewRoom(code, host, now)
	g.rooms[code] = room

	return room, nil
}

// newRoomCode generates a short human-shareable room code:
// 6 case-normalized alphanumeric characters.
func newRoomCode() string {
	return strings.ToUpper(shortuuid.New()[:roomCodeLength])
}

// Get retrieves a room by code.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

// Delete closes all room conns before removing it.
func (g *Registry) Delete(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room := g.rooms[code]; room != nil {
		room.Close()
	}
	delete(g.rooms, code)
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// TotalQuestions sums the question banks across all live rooms.
func (g *Registry) TotalQuestions() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	total := 0
	for _, room := range g.rooms {
		total += room.NumQuestions()
	}
	return total
}

// TotalParticipants sums participants across all live rooms.
func (g *Registry) TotalParticipants() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	total := 0
	for _, room := range g.rooms {
		total += room.NumParticipants()
	}
	return total
}

// Sweep evicts stale rooms: any room older than MaxAge, or any empty
// room older than EmptyMaxAge. It returns the evicted codes. Rooms
// are closed under their own lock so a sweep never interrupts a
// mutation in progress.
func (g *Registry) Sweep(now time.Time) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var evicted []string
	for code, room := range g.rooms {
		age := now.Sub(room.CreationDate())
		if age > g.maxAge || (room.Empty() && age > g.emptyMaxAge) {
			room.Close()
			delete(g.rooms, code)
			evicted = append(evicted, code)
		}
	}
	return evicted
}
