package ops

import (
	"time"

	"github.com/yrrving/plastsamlaren/internal/quest"
)

// QuestReport compares today's generated quest with the stored record.
type QuestReport struct {
	Path        string               `json:"path"`
	Today       quest.DailyQuest     `json:"today"`
	Stored      *quest.ProgressState `json:"stored,omitempty"`
	Current     bool                 `json:"current"`
	BonusActive bool                 `json:"bonusActive"`
}

func InspectQuest(dataDir string, gen quest.Generator, now time.Time) (QuestReport, error) {
	store, err := quest.NewFileStore(dataDir)
	if err != nil {
		return QuestReport{}, err
	}
	rep := QuestReport{Path: store.Path(), Today: gen.Generate(now)}
	if st, ok := store.Load(); ok {
		rep.Stored = &st
		rep.Current = st.BelongsTo(rep.Today)
		rep.BonusActive = rep.Current && st.BonusActiveAt(now)
	}
	return rep, nil
}

// ClearQuest removes the stored record; the next session starts from zero.
func ClearQuest(dataDir string) error {
	store, err := quest.NewFileStore(dataDir)
	if err != nil {
		return err
	}
	return store.Clear()
}
