package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
)

// DefaultQuestionsPerSubject caps how many questions of each subject a quiz
// draws from the bank.
const DefaultQuestionsPerSubject = 6

// BankRepository loads the full question bank (from cache/backing store).
type BankRepository interface {
	Bank(ctx context.Context, bankID string) ([]domain.Question, error)
}

// BalancedSource builds per-room quizzes from a bank: a subject-balanced,
// shuffled, sanitized selection that keeps preamble groups intact.
type BalancedSource struct {
	banks      BankRepository
	bankID     string
	perSubject int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBalancedSource creates a source over the named bank. perSubject <= 0
// falls back to DefaultQuestionsPerSubject.
func NewBalancedSource(banks BankRepository, bankID string, perSubject int) *BalancedSource {
	if perSubject <= 0 {
		perSubject = DefaultQuestionsPerSubject
	}
	return &BalancedSource{
		banks:      banks,
		bankID:     bankID,
		perSubject: perSubject,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// QuizQuestions implements QuestionSource.
func (s *BalancedSource) QuizQuestions(ctx context.Context) ([]domain.Question, error) {
	bank, err := s.banks.Bank(ctx, s.bankID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return pickQuizQuestions(bank, s.perSubject, s.rnd), nil
}

// pickQuizQuestions groups the bank by subject, selects up to perSubject
// questions from each, and shuffles the combined selection. Questions that
// share a preamble travel together: a preamble group is taken whole or not at
// all.
func pickQuizQuestions(bank []domain.Question, perSubject int, rnd *rand.Rand) []domain.Question {
	bySubject := make(map[string][]domain.Question)
	var subjects []string
	for _, q := range bank {
		if _, ok := bySubject[q.Subject]; !ok {
			subjects = append(subjects, q.Subject)
		}
		bySubject[q.Subject] = append(bySubject[q.Subject], q)
	}

	var selection []domain.Question
	for _, subject := range subjects {
		selection = append(selection, pickSubjectQuestions(bySubject[subject], perSubject, rnd)...)
	}

	rnd.Shuffle(len(selection), func(i, j int) {
		selection[i], selection[j] = selection[j], selection[i]
	})
	return sanitizeQuestions(selection)
}

func pickSubjectQuestions(questions []domain.Question, count int, rnd *rand.Rand) []domain.Question {
	groups := make(map[string][]domain.Question)
	var groupKeys []string
	var standalone []domain.Question
	for _, q := range questions {
		if q.HasPreamble {
			if _, ok := groups[q.PreambleText]; !ok {
				groupKeys = append(groupKeys, q.PreambleText)
			}
			groups[q.PreambleText] = append(groups[q.PreambleText], q)
		} else {
			standalone = append(standalone, q)
		}
	}

	rnd.Shuffle(len(standalone), func(i, j int) {
		standalone[i], standalone[j] = standalone[j], standalone[i]
	})
	var selected []domain.Question
	for _, q := range standalone {
		if len(selected) >= count {
			break
		}
		selected = append(selected, q)
	}

	rnd.Shuffle(len(groupKeys), func(i, j int) {
		groupKeys[i], groupKeys[j] = groupKeys[j], groupKeys[i]
	})
	for _, key := range groupKeys {
		group := groups[key]
		if len(selected)+len(group) <= count {
			selected = append(selected, group...)
		}
	}
	return selected
}

// sanitizeQuestions clears artifacts a loosely typed bank export can carry,
// such as placeholder preamble text on questions flagged as having none.
func sanitizeQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		if !q.HasPreamble {
			q.PreambleText = ""
		}
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
		out[i] = q
	}
	return out
}
