package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
)

// APIHandler serves the synchronous side endpoints: free-text answer grading
// and the simulated bot contestant.
type APIHandler struct {
	bot *app.BotAgent
}

func NewAPIHandler(bot *app.BotAgent) *APIHandler {
	return &APIHandler{bot: bot}
}

type checkAnswerRequest struct {
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

type checkAnswerResponse struct {
	Result string `json:"result"`
	Points int    `json:"points"`
}

// CheckAnswer grades a user's free-text answer against the expected one.
func (h *APIHandler) CheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req checkAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp := checkAnswerResponse{Result: "Incorrect", Points: 0}
	if app.IsAnswerCorrect(req.UserAnswer, req.CorrectAnswer) {
		resp = checkAnswerResponse{Result: "Correct", Points: app.CorrectAnswerPoints}
	}
	writeJSON(w, resp)
}

type botAnswersRequest struct {
	Difficulty string            `json:"difficulty"`
	Questions  []domain.Question `json:"questions"`
}

// BotAnswers answers a whole question list at a fixed difficulty.
func (h *APIHandler) BotAnswers(w http.ResponseWriter, r *http.Request) {
	var req botAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	answers, err := h.bot.AnswerAll(r.Context(), req.Difficulty, req.Questions)
	if errors.Is(err, domain.ErrInvalidDifficulty) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("bot answers: %v", err)
		http.Error(w, "failed to generate answers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, answers)
}

type botAnswerRequest struct {
	Question         domain.Question `json:"question"`
	UserCorrectCount int             `json:"user_correct_count"`
	BotCorrectCount  int             `json:"bot_correct_count"`
}

// BotAnswer answers one question with accuracy adapted to the running score
// difference between the user and the bot.
func (h *APIHandler) BotAnswer(w http.ResponseWriter, r *http.Request) {
	var req botAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	answer, err := h.bot.AnswerAdaptive(r.Context(), req.Question, req.UserCorrectCount, req.BotCorrectCount)
	if err != nil {
		log.Printf("bot answer: %v", err)
		http.Error(w, "failed to generate answer", http.StatusInternalServerError)
		return
	}
	writeJSON(w, answer)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
