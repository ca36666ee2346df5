package domain

import "errors"

var (
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrNoQuestions is returned when a bank produces an empty question list,
	// which would leave a room with nothing to play.
	ErrNoQuestions = errors.New("question bank is empty")
	// ErrInvalidDifficulty is returned for bot requests with an unknown
	// difficulty level.
	ErrInvalidDifficulty = errors.New("invalid difficulty level")
)
