package domain

// Outbound message types. Every broadcast a room produces is one of these.
const (
	TypeInitialState     = "initial_state"
	TypeQuestionUpdate   = "question_update"
	TypeNextContestant   = "next_contestant"
	TypeTimer            = "timer"
	TypeTranscriptUpdate = "transcript_update"
	TypeGameOver         = "game_over"
	TypeNewHost          = "new_host"
)

// Inbound message types handled by the gateway. Anything else is relayed to
// the room verbatim.
const (
	TypeAnswerSubmitted = "answer_submitted"
	TypeNextQuestion    = "next_question"
)

// Message is the tagged envelope used in both directions on the wire.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// InitialState is the private snapshot sent to a freshly joined connection.
type InitialState struct {
	CurrentQuestionIndex int            `json:"current_question_index"`
	CurrentQuestion      Question       `json:"current_question"`
	Timer                int            `json:"timer"`
	ActiveContestant     int            `json:"active_contestant"`
	PreviousAnswers      []AnswerRecord `json:"previous_answers"`
}

// QuestionUpdate is broadcast when the question cursor moves, and to existing
// participants when someone joins.
type QuestionUpdate struct {
	CurrentQuestionIndex int      `json:"current_question_index"`
	Question             Question `json:"question"`
	Timer                int      `json:"timer"`
	ActiveContestant     int      `json:"active_contestant"`
}

// NextContestant announces a turn rotation within the current question.
type NextContestant struct {
	ActiveContestant int `json:"active_contestant"`
}

// TimerUpdate carries the countdown value after each tick.
type TimerUpdate struct {
	Timer int `json:"timer"`
}

// TranscriptUpdate mirrors the active contestant's in-progress answer text.
type TranscriptUpdate struct {
	Transcript       string `json:"transcript"`
	ActiveContestant int    `json:"active_contestant"`
}

// Notice is the payload of game_over and new_host broadcasts.
type Notice struct {
	Message string `json:"message"`
}
