package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// difficultyAccuracy maps a difficulty level to the share of questions the
// bot answers correctly.
var difficultyAccuracy = map[string]float64{
	"easy":         0.8,
	"intermediate": 0.5,
	"hard":         0.2,
}

const (
	minBotAccuracy = 0.05
	maxBotAccuracy = 0.95
)

// BotAgent simulates a contestant. In normal mode it hits a fixed accuracy
// per difficulty level; in adaptive mode the accuracy tracks the gap between
// the user's score and its own. Wrong answers are drawn from the bank so they
// stay plausible for the subject.
type BotAgent struct {
	banks  BankRepository
	bankID string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBotAgent creates a bot answering from the named bank.
func NewBotAgent(banks BankRepository, bankID string) *BotAgent {
	return &BotAgent{
		banks:  banks,
		bankID: bankID,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AnswerAll answers a question list at the given difficulty. Exactly
// round(n * accuracy) of the answers are correct, with the correct positions
// chosen at random.
func (b *BotAgent) AnswerAll(ctx context.Context, difficulty string, questions []domain.Question) ([]domain.BotAnswer, error) {
	accuracy, ok := difficultyAccuracy[strings.ToLower(difficulty)]
	if !ok {
		return nil, domain.ErrInvalidDifficulty
	}
	bank, err := b.banks.Bank(ctx, b.bankID)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	correctCount := int(math.Round(float64(len(questions)) * accuracy))
	correct := make(map[int]bool, correctCount)
	for _, i := range b.rnd.Perm(len(questions))[:correctCount] {
		correct[i] = true
	}

	answers := make([]domain.BotAnswer, 0, len(questions))
	for i, q := range questions {
		if correct[i] {
			answers = append(answers, domain.BotAnswer{Sn: q.Sn, BotAnswer: q.CorrectAnswer, IsCorrect: true})
		} else {
			answers = append(answers, domain.BotAnswer{Sn: q.Sn, BotAnswer: b.wrongAnswerLocked(bank, q), IsCorrect: false})
		}
	}
	return answers, nil
}

// AnswerAdaptive answers one question with accuracy 0.5 + 0.1 per point of
// score difference in the user's favor, clamped to [0.05, 0.95]. A user who
// pulls ahead faces a sharper bot; a user who falls behind gets some slack.
func (b *BotAgent) AnswerAdaptive(ctx context.Context, q domain.Question, userCorrect, botCorrect int) (domain.BotAnswer, error) {
	bank, err := b.banks.Bank(ctx, b.bankID)
	if err != nil {
		return domain.BotAnswer{}, err
	}

	accuracy := 0.5 + 0.1*float64(userCorrect-botCorrect)
	accuracy = math.Max(minBotAccuracy, math.Min(maxBotAccuracy, accuracy))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rnd.Float64() < accuracy {
		return domain.BotAnswer{Sn: q.Sn, BotAnswer: q.CorrectAnswer, IsCorrect: true}, nil
	}
	return domain.BotAnswer{Sn: q.Sn, BotAnswer: b.wrongAnswerLocked(bank, q), IsCorrect: false}, nil
}

// wrongAnswerLocked fabricates a plausible wrong answer: perturb numeric
// answers by 10-30%, otherwise reuse the answer of a different question from
// the same subject.
func (b *BotAgent) wrongAnswerLocked(bank []domain.Question, q domain.Question) string {
	if q.CalculationsPresent {
		if v, err := strconv.ParseFloat(strings.TrimSpace(q.CorrectAnswer), 64); err == nil {
			offset := v * (0.1 + 0.2*b.rnd.Float64())
			return fmt.Sprintf("%.2f", v+offset)
		}
		return "42"
	}

	prompt := strings.ToLower(q.Prompt)
	preamble := strings.ToLower(q.PreambleText)
	var pool []string
	for _, candidate := range bank {
		if candidate.Subject != q.Subject {
			continue
		}
		if strings.ToLower(candidate.Prompt) == prompt {
			continue
		}
		// Skip siblings under the same preamble, their answers are too close.
		if preamble != "" && strings.ToLower(candidate.PreambleText) == preamble {
			continue
		}
		pool = append(pool, candidate.CorrectAnswer)
	}
	if len(pool) > 0 {
		return pool[b.rnd.Intn(len(pool))]
	}
	return fmt.Sprintf("No answer available for this %s question.", q.Subject)
}
