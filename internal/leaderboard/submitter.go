package leaderboard

import (
	"context"
	"log"
	"time"

	"github.com/yrrving/plastsamlaren/internal/logging"
)

// Submitter sends end-of-run results to a Repository, either waiting for the
// outcome or in the background.
type Submitter struct {
	Repo    Repository
	Timeout time.Duration
	Logger  *log.Logger
}

func (s Submitter) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 5 * time.Second
	}
	return s.Timeout
}

// Submit waits for the repository.
func (s Submitter) Submit(ctx context.Context, sub Submission) (Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()
	return s.Repo.Submit(ctx, sub)
}

// Go submits without waiting. Failures are logged and never retried; done,
// when non-nil, receives the outcome.
func (s Submitter) Go(sub Submission, done func(Entry, error)) {
	go func() {
		e, err := s.Submit(context.Background(), sub)
		if err != nil {
			logging.JSON(s.Logger, logging.LevelWarn, "leaderboard_submit_failed", map[string]any{
				"name":  sub.Name,
				"score": sub.Score,
				"error": err.Error(),
			})
		}
		if done != nil {
			done(e, err)
		}
	}()
}
