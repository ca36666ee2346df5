package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trivia-room-service/internal/domain"
)

func TestBankRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{
			"round-1": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)

	if _, err := repo.Bank(context.Background(), "round-1"); err != nil {
		t.Fatalf("bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.Bank(context.Background(), "round-1"); err != nil {
		t.Fatalf("bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestBankRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		BankLoader: NewStaticBankLoader(map[string][]domain.Question{
			"round-1": sampleBank(),
		}),
	}
	repo := NewBankRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	if _, err := repo.Bank(context.Background(), "round-1"); err != nil {
		t.Fatalf("bank: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := repo.Bank(context.Background(), "round-1"); err != nil {
		t.Fatalf("bank after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestStaticBankLoaderMissing(t *testing.T) {
	loader := NewStaticBankLoader(map[string][]domain.Question{})
	if _, err := loader.LoadBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestFileBankLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	content := `[{"sn":1,"subject":"Physics","question_text":"Unit of force?","correct_answer":"Newton"}]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write bank file: %v", err)
	}

	questions, err := NewFileBankLoader(path).LoadBank(context.Background(), "any")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if len(questions) != 1 || questions[0].Subject != "Physics" {
		t.Fatalf("unexpected bank %+v", questions)
	}
}

func TestFileBankLoaderBadFile(t *testing.T) {
	if _, err := NewFileBankLoader("/nonexistent/bank.json").LoadBank(context.Background(), "any"); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write bank file: %v", err)
	}
	if _, err := NewFileBankLoader(path).LoadBank(context.Background(), "any"); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

type countingLoader struct {
	BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) ([]domain.Question, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{Sn: 1, Subject: "Mathematics", Prompt: "What is 2 + 2?", CorrectAnswer: "4"},
		{Sn: 2, Subject: "Physics", Prompt: "Unit of force?", CorrectAnswer: "Newton"},
	}
}
