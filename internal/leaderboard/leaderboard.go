// Package leaderboard stores and serves the ranked list of finished runs.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultNameMaxLen = 20
	DefaultLimit      = 10
	MaxLimit          = 100
)

var (
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidScore = errors.New("invalid score")
	ErrUnavailable  = errors.New("leaderboard unavailable")
)

// Entry is one ranked row.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	HelpedCount int       `json:"helpedCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Submission is what a finished run sends.
type Submission struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	HelpedCount int    `json:"helpedCount"`
}

// Normalize trims the name and checks every field. maxLen < 1 means
// DefaultNameMaxLen.
func (s Submission) Normalize(maxLen int) (Submission, error) {
	if maxLen < 1 {
		maxLen = DefaultNameMaxLen
	}
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return s, fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(s.Name); n > maxLen {
		return s, fmt.Errorf("%w: name has %d characters, max %d", ErrInvalidName, n, maxLen)
	}
	if s.Score < 0 {
		return s, fmt.Errorf("%w: score must be >= 0", ErrInvalidScore)
	}
	if s.HelpedCount < 0 {
		return s, fmt.Errorf("%w: helpedCount must be >= 0", ErrInvalidScore)
	}
	return s, nil
}

// ClampLimit maps a requested list size onto [1, hi]; non-positive means def.
func ClampLimit(limit, def, hi int) int {
	if def < 1 {
		def = DefaultLimit
	}
	if hi < 1 {
		hi = MaxLimit
	}
	if limit < 1 {
		limit = def
	}
	if limit > hi {
		limit = hi
	}
	return limit
}

// Repository is the storage port. Top returns entries by score descending,
// earlier submissions first on ties.
type Repository interface {
	Submit(ctx context.Context, sub Submission) (Entry, error)
	Top(ctx context.Context, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
}
