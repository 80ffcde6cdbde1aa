package quest

import "time"

// ProgressState is the persisted record of progress on one daily quest.
// BonusExpiresAt is epoch milliseconds; zero means no bonus window.
type ProgressState struct {
	QuestID        string `json:"questId"`
	Progress       int    `json:"progress"`
	Completed      bool   `json:"completed"`
	BonusExpiresAt int64  `json:"bonusExpiresAt"`
}

// BelongsTo reports whether the record tracks q.
func (s ProgressState) BelongsTo(q DailyQuest) bool {
	return s.QuestID != "" && s.QuestID == q.ID
}

// BonusActiveAt reports whether the completion bonus window is still open.
func (s ProgressState) BonusActiveAt(now time.Time) bool {
	return s.Completed && now.UnixMilli() < s.BonusExpiresAt
}

// BonusExpiry returns the expiry as a time, or the zero time if unset.
func (s ProgressState) BonusExpiry() time.Time {
	if s.BonusExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.BonusExpiresAt)
}

// ClampProgress bounds p to [0, target].
func ClampProgress(p, target int) int {
	if p < 0 {
		return 0
	}
	if target >= 0 && p > target {
		return target
	}
	return p
}
