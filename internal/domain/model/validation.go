package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel validation failures. Callers classify them as validation errors.
var (
	ErrScoreOutOfRange = errors.New("score must be between 1 and 5")
	ErrScoreNotInteger = errors.New("score must be an integer")
	ErrEmptyComment    = errors.New("comment text must not be empty")
	ErrEmptyID         = errors.New("identifier must not be empty")
)

// ValidateScore accepts integral values in [MinScore, MaxScore] and returns them as int.
func ValidateScore(value float64) (int, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, fmt.Errorf("%w: got %v", ErrScoreNotInteger, value)
	}
	if value < MinScore || value > MaxScore {
		return 0, fmt.Errorf("%w: got %v", ErrScoreOutOfRange, value)
	}
	return int(value), nil
}

// ValidateCommentText rejects text that is empty after trimming whitespace.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	return nil
}

// ValidateID rejects blank identifiers; name is used in the message.
func ValidateID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyID, name)
	}
	return nil
}
