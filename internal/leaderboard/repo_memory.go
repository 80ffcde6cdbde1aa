package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo keeps entries in memory (dev/test use).
type MemoryRepo struct {
	mu         sync.RWMutex
	entries    []Entry
	now        func() time.Time
	nameMaxLen int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{now: time.Now, nameMaxLen: DefaultNameMaxLen}
}

// SetNow replaces the timestamp source.
func (r *MemoryRepo) SetNow(fn func() time.Time) {
	r.mu.Lock()
	r.now = fn
	r.mu.Unlock()
}

// SetNameMaxLen changes the longest accepted name, in characters.
func (r *MemoryRepo) SetNameMaxLen(n int) {
	r.mu.Lock()
	r.nameMaxLen = n
	r.mu.Unlock()
}

func (r *MemoryRepo) Submit(ctx context.Context, sub Submission) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, err := sub.Normalize(r.nameMaxLen)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:          uuid.New(),
		Name:        sub.Name,
		Score:       sub.Score,
		HelpedCount: sub.HelpedCount,
		CreatedAt:   r.now().UTC(),
	}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *MemoryRepo) Top(ctx context.Context, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit, DefaultLimit, MaxLimit)

	r.mu.RLock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
