package app

import (
	"context"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// QuestionSource supplies the ordered question list for a fresh room:
// already subject-balanced, shuffled, and sanitized. It is called exactly
// once per room, at creation.
type QuestionSource interface {
	QuizQuestions(ctx context.Context) ([]domain.Question, error)
}

// Registry owns every live room. Creation is test-and-set under the registry
// mutex, so concurrent first joins to the same identifier observe a single
// room and a single timer. A room's entire existence is bounded by having at
// least one attached participant; there is no persistence.
type Registry struct {
	source    QuestionSource
	countdown int
	tick      time.Duration

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry builds a registry. Zero countdown or tick fall back to the
// defaults (30 seconds, 1 second interval).
func NewRegistry(source QuestionSource, countdown int, tick time.Duration) *Registry {
	if countdown <= 0 {
		countdown = DefaultCountdownSeconds
	}
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &Registry{
		source:    source,
		countdown: countdown,
		tick:      tick,
		rooms:     make(map[string]*Room),
	}
}

// Join attaches a participant to the room with the given id, creating the
// room on first join. The question list is pulled from the source once; a
// source failure surfaces as a join failure and leaves no partial room
// behind.
func (g *Registry) Join(ctx context.Context, roomID string, p *Participant) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[roomID]
	if !ok {
		questions, err := g.source.QuizQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, domain.ErrNoQuestions
		}
		room = newRoom(roomID, questions, g.countdown, g.tick)
		room.start()
		g.rooms[roomID] = room
	}
	room.join(p)
	return room, nil
}

// Leave detaches a participant. When the last participant leaves, the room's
// timer is cancelled and all room state discarded. Unknown room ids are
// ignored as stale.
func (g *Registry) Leave(roomID string, p *Participant) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[roomID]
	if !ok {
		return
	}
	if room.leave(p) {
		room.stop()
		delete(g.rooms, roomID)
	}
}

// Get looks up a live room.
func (g *Registry) Get(roomID string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[roomID]
	return room, ok
}

// Len reports the number of live rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
