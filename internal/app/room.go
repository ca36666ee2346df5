package app

import (
	"context"
	"log"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

const (
	// DefaultCountdownSeconds is the per-turn countdown a room starts with and
	// resets to on every rotation or question advance.
	DefaultCountdownSeconds = 30
	// DefaultTickInterval is the real-time interval between countdown ticks.
	DefaultTickInterval = time.Second

	// outboundBuffer bounds the per-connection queue. A participant that falls
	// this far behind starts losing broadcasts instead of blocking the room.
	outboundBuffer = 64
)

// Participant is one connection attached to a room. Join order is the
// position in the room's participant slice; the earliest remaining
// participant is promoted on host failover.
type Participant struct {
	ID string

	out    chan domain.Message
	closed bool // guarded by the owning room's mutex
}

// NewParticipant wraps a connection identity in a participant handle with a
// buffered outbound queue.
func NewParticipant(id string) *Participant {
	return &Participant{ID: id, out: make(chan domain.Message, outboundBuffer)}
}

// Messages exposes the participant's outbound queue. The channel is closed
// when the participant leaves its room.
func (p *Participant) Messages() <-chan domain.Message {
	return p.out
}

func (p *Participant) deliver(msg domain.Message) {
	select {
	case p.out <- msg:
	default:
		log.Printf("participant %s: outbound queue full, dropping %s", p.ID, msg.Type)
	}
}

func (p *Participant) closeQueue() {
	if !p.closed {
		p.closed = true
		close(p.out)
	}
}

// Room is the state machine for one trivia session: a fixed question list, a
// rotating active contestant, a countdown, and an append-only answer log.
// A single mutex serializes every state mutation, so the timer expiry path
// and the manual submission path can never run the transition rule
// concurrently.
type Room struct {
	id        string
	questions []domain.Question
	countdown int
	tick      time.Duration

	mu           sync.Mutex
	participants []*Participant
	host         *Participant
	current      int
	active       int
	remaining    int
	transcript   string
	answers      []domain.AnswerRecord
	finished     bool

	cancel context.CancelFunc
}

func newRoom(id string, questions []domain.Question, countdown int, tick time.Duration) *Room {
	return &Room{
		id:        id,
		questions: questions,
		countdown: countdown,
		tick:      tick,
		remaining: countdown,
		answers:   []domain.AnswerRecord{},
	}
}

// ID returns the room's registry key.
func (r *Room) ID() string {
	return r.id
}

func (r *Room) start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.runTimer(ctx)
}

func (r *Room) stop() {
	r.cancel()
}

func (r *Room) runTimer(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.onTick()
		}
	}
}

// onTick decrements and broadcasts the countdown; when the countdown has been
// exhausted it resets and runs the same transition rule a manual submission
// uses.
func (r *Room) onTick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished || len(r.participants) == 0 {
		return
	}
	if r.remaining > 0 {
		r.remaining--
		r.broadcastLocked(domain.Message{
			Type: domain.TypeTimer,
			Data: domain.TimerUpdate{Timer: r.remaining},
		})
		return
	}
	r.remaining = r.countdown
	r.advanceLocked()
}

// join attaches a participant, sends it a private initial_state snapshot, and
// notifies existing participants with a lighter question_update.
func (r *Room) join(p *Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing == p {
			return
		}
	}
	r.participants = append(r.participants, p)
	if r.host == nil {
		r.host = p
	}

	p.deliver(domain.Message{
		Type: domain.TypeInitialState,
		Data: domain.InitialState{
			CurrentQuestionIndex: r.current,
			CurrentQuestion:      r.questions[r.current],
			Timer:                r.remaining,
			ActiveContestant:     r.active,
			PreviousAnswers:      append([]domain.AnswerRecord{}, r.answers...),
		},
	})

	update := domain.Message{Type: domain.TypeQuestionUpdate, Data: r.questionUpdateLocked()}
	for _, other := range r.participants {
		if other != p {
			other.deliver(update)
		}
	}
}

// leave detaches a participant and closes its queue. It reports whether the
// room is now empty; on host departure the earliest remaining participant is
// promoted and a new_host notice broadcast.
func (r *Room) leave(p *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, existing := range r.participants {
		if existing == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		return len(r.participants) == 0
	}
	r.participants = append(r.participants[:idx], r.participants[idx+1:]...)
	p.closeQueue()

	if len(r.participants) == 0 {
		r.host = nil
		return true
	}
	if r.host == p {
		r.host = r.participants[0]
		r.broadcastLocked(domain.Message{
			Type: domain.TypeNewHost,
			Data: domain.Notice{Message: "A new host has been elected."},
		})
	}
	return false
}

// SubmitAnswer appends an answer record tagged with the current question
// index, clears the transcript, resets the countdown, and runs the transition
// rule. After game over it is a no-op.
func (r *Room) SubmitAnswer(contestant int, answer string, correct bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.answers = append(r.answers, domain.AnswerRecord{
		Contestant:    contestant,
		Answer:        answer,
		Correct:       correct,
		QuestionIndex: r.current,
	})
	r.transcript = ""
	r.remaining = r.countdown
	r.advanceLocked()
}

// UpdateTranscript overwrites the in-progress answer text and broadcasts it.
// No state transition occurs.
func (r *Room) UpdateTranscript(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcript = text
	r.broadcastLocked(domain.Message{
		Type: domain.TypeTranscriptUpdate,
		Data: domain.TranscriptUpdate{Transcript: text, ActiveContestant: r.active},
	})
}

// ForceNextQuestion skips any remaining contestants on the current question
// and advances the cursor, the host's control.
func (r *Room) ForceNextQuestion() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceQuestionLocked()
}

// Relay broadcasts a message of an unrecognized type verbatim, the forward
// compatibility escape hatch.
func (r *Room) Relay(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(msg)
}

// advanceLocked is the shared transition rule: rotate to the next contestant
// on the current question, or advance the question once every participant has
// had a turn. A contestant index left dangling by a disconnect is clamped
// before the rule applies.
func (r *Room) advanceLocked() {
	if r.finished || len(r.participants) == 0 {
		return
	}
	if r.active >= len(r.participants) {
		r.active = len(r.participants) - 1
	}
	if r.active < len(r.participants)-1 {
		r.active++
		r.remaining = r.countdown
		r.broadcastLocked(domain.Message{
			Type: domain.TypeNextContestant,
			Data: domain.NextContestant{ActiveContestant: r.active},
		})
		return
	}
	r.advanceQuestionLocked()
}

func (r *Room) advanceQuestionLocked() {
	if r.finished {
		return
	}
	if r.current < len(r.questions)-1 {
		r.current++
		r.active = 0
		r.remaining = r.countdown
		r.broadcastLocked(domain.Message{Type: domain.TypeQuestionUpdate, Data: r.questionUpdateLocked()})
		return
	}
	r.finished = true
	r.broadcastLocked(domain.Message{
		Type: domain.TypeGameOver,
		Data: domain.Notice{Message: "The game has ended."},
	})
}

func (r *Room) questionUpdateLocked() domain.QuestionUpdate {
	return domain.QuestionUpdate{
		CurrentQuestionIndex: r.current,
		Question:             r.questions[r.current],
		Timer:                r.remaining,
		ActiveContestant:     r.active,
	}
}

func (r *Room) broadcastLocked(msg domain.Message) {
	for _, p := range r.participants {
		p.deliver(msg)
	}
}
