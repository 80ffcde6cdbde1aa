package leaderboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionNormalize(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantErr error
		want    string
	}{
		{"trims", Submission{Name: "  Alva  ", Score: 10}, nil, "Alva"},
		{"twenty runes ok", Submission{Name: strings.Repeat("å", 20)}, nil, strings.Repeat("å", 20)},
		{"empty", Submission{Name: "   "}, ErrInvalidName, ""},
		{"too long", Submission{Name: strings.Repeat("x", 21)}, ErrInvalidName, ""},
		{"negative score", Submission{Name: "Bo", Score: -1}, ErrInvalidScore, ""},
		{"negative helped", Submission{Name: "Bo", HelpedCount: -1}, ErrInvalidScore, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sub.Normalize(0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, ClampLimit(0, 10, 100))
	assert.Equal(t, 10, ClampLimit(-3, 10, 100))
	assert.Equal(t, 5, ClampLimit(5, 10, 100))
	assert.Equal(t, 100, ClampLimit(500, 10, 100))
	assert.Equal(t, DefaultLimit, ClampLimit(0, 0, 0))
}

func TestMemoryRepo_TopOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	repo.SetNow(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	})

	for _, s := range []Submission{
		{Name: "first", Score: 30},
		{Name: "best", Score: 80},
		{Name: "second", Score: 30},
	} {
		_, err := repo.Submit(ctx, s)
		require.NoError(t, err)
	}

	top, err := repo.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"best", "first", "second"}, []string{top[0].Name, top[1].Name, top[2].Name})

	top, err = repo.Top(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestMemoryRepo_RejectsInvalidAndCancelled(t *testing.T) {
	repo := NewMemoryRepo()

	_, err := repo.Submit(context.Background(), Submission{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidName)

	repo.SetNameMaxLen(3)
	_, err = repo.Submit(context.Background(), Submission{Name: "Anna"})
	assert.ErrorIs(t, err, ErrInvalidName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = repo.Submit(ctx, Submission{Name: "Bo"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}

func TestSubmitter_Go(t *testing.T) {
	repo := NewMemoryRepo()
	s := Submitter{Repo: repo}

	done := make(chan error, 1)
	s.Go(Submission{Name: "Siri", Score: 20, HelpedCount: 2}, func(_ Entry, err error) { done <- err })

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not finish")
	}
	top, err := repo.Top(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Siri", top[0].Name)

	s.Go(Submission{Name: ""}, func(_ Entry, err error) { done <- err })
	assert.ErrorIs(t, <-done, ErrInvalidName)
}
