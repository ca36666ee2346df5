package app

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"trivia-room-service/internal/domain"
)

func botBank() []domain.Question {
	return []domain.Question{
		{Sn: 1, Subject: "Biology", Prompt: "Name the powerhouse of the cell.", CorrectAnswer: "Mitochondria"},
		{Sn: 2, Subject: "Biology", Prompt: "Which pigment drives photosynthesis?", CorrectAnswer: "Chlorophyll"},
		{Sn: 3, Subject: "Biology", Prompt: "What carries oxygen in blood?", CorrectAnswer: "Haemoglobin"},
		{Sn: 4, Subject: "Mathematics", Prompt: "Evaluate 12 * 12.", CorrectAnswer: "144", CalculationsPresent: true},
	}
}

func newTestBot(seed int64) *BotAgent {
	bot := NewBotAgent(staticBanks{"round-1": botBank()}, "round-1")
	bot.rnd = rand.New(rand.NewSource(seed))
	return bot
}

func TestAnswerAllHitsDifficultyAccuracy(t *testing.T) {
	questions := botBank()[:3]
	cases := []struct {
		difficulty  string
		wantCorrect int
	}{
		{"easy", 2},         // round(3 * 0.8)
		{"intermediate", 2}, // round(3 * 0.5)
		{"hard", 1},         // round(3 * 0.2)
	}
	for _, tc := range cases {
		bot := newTestBot(7)
		answers, err := bot.AnswerAll(context.Background(), tc.difficulty, questions)
		if err != nil {
			t.Fatalf("%s: %v", tc.difficulty, err)
		}
		if len(answers) != len(questions) {
			t.Fatalf("%s: got %d answers, want %d", tc.difficulty, len(answers), len(questions))
		}
		correct := 0
		for _, a := range answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != tc.wantCorrect {
			t.Errorf("%s: %d correct answers, want %d", tc.difficulty, correct, tc.wantCorrect)
		}
	}
}

func TestAnswerAllCaseInsensitiveDifficulty(t *testing.T) {
	bot := newTestBot(1)
	if _, err := bot.AnswerAll(context.Background(), "Easy", botBank()[:2]); err != nil {
		t.Fatalf("difficulty should be case-insensitive: %v", err)
	}
}

func TestAnswerAllRejectsUnknownDifficulty(t *testing.T) {
	bot := newTestBot(1)
	if _, err := bot.AnswerAll(context.Background(), "impossible", botBank()); !errors.Is(err, domain.ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestWrongNumericAnswerStaysClose(t *testing.T) {
	bot := newTestBot(3)
	q := botBank()[3]
	for i := 0; i < 50; i++ {
		got := bot.wrongAnswerLocked(botBank(), q)
		v, err := strconv.ParseFloat(got, 64)
		if err != nil {
			t.Fatalf("numeric question produced non-numeric answer %q", got)
		}
		offset := (v - 144) / 144
		if offset < 0.1-1e-3 || offset > 0.3+1e-3 {
			t.Fatalf("perturbation %v outside the 10-30%% band", offset)
		}
	}
}

func TestWrongAnswerDrawnFromSameSubject(t *testing.T) {
	bot := newTestBot(5)
	q := botBank()[0]
	valid := map[string]bool{"Chlorophyll": true, "Haemoglobin": true}
	for i := 0; i < 20; i++ {
		got := bot.wrongAnswerLocked(botBank(), q)
		if got == q.CorrectAnswer {
			t.Fatalf("wrong answer must differ from the correct one")
		}
		if !valid[got] {
			t.Fatalf("wrong answer %q not drawn from the same subject", got)
		}
	}
}

func TestWrongAnswerFallbackMessage(t *testing.T) {
	bot := newTestBot(1)
	q := domain.Question{Sn: 9, Subject: "Geology", Prompt: "Name a rock.", CorrectAnswer: "Basalt"}
	got := bot.wrongAnswerLocked(botBank(), q)
	if !strings.Contains(got, "Geology") {
		t.Fatalf("fallback should name the subject, got %q", got)
	}
}

func TestAnswerAdaptiveAccuracyBounds(t *testing.T) {
	q := botBank()[0]

	// A bot leading by 10 points drops to the 5% floor: over many trials it
	// should almost never answer correctly.
	bot := newTestBot(11)
	correct := 0
	for i := 0; i < 200; i++ {
		a, err := bot.AnswerAdaptive(context.Background(), q, 0, 10)
		if err != nil {
			t.Fatalf("adaptive: %v", err)
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct > 30 {
		t.Fatalf("floor accuracy produced %d/200 correct answers", correct)
	}

	// A user leading by 10 points pushes the bot to the 95% ceiling.
	bot = newTestBot(13)
	correct = 0
	for i := 0; i < 200; i++ {
		a, err := bot.AnswerAdaptive(context.Background(), q, 10, 0)
		if err != nil {
			t.Fatalf("adaptive: %v", err)
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct < 170 {
		t.Fatalf("ceiling accuracy produced only %d/200 correct answers", correct)
	}
}
