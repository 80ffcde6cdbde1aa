package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period             string            `json:"period"`
	EventCounts        map[EventType]int `json:"event_counts"`
	RunsStarted        int               `json:"runs_started"`
	RunsByMode         map[string]int    `json:"runs_by_mode"`
	MaterialCollected  int               `json:"material_collected"`
	ContainersCrafted  int               `json:"containers_crafted"`
	ContainersFilled   int               `json:"containers_filled"`
	Deliveries         int               `json:"deliveries"`
	BonusDeliveries    int               `json:"bonus_deliveries"`
	PointsAwarded      int               `json:"points_awarded"`
	QuestsCompleted    int               `json:"quests_completed"`
	QuestsByCategory   map[string]int    `json:"quests_by_category"`
	ScoresSubmitted    int               `json:"scores_submitted"`
	DeliveriesPerRun   float64           `json:"deliveries_per_run"`
	AvgPointsPerRunEnd float64           `json:"avg_points_per_run_end"`
}

// CalculateStats aggregates gameplay events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:           since.Format("2006-01-02"),
		EventCounts:      make(map[EventType]int),
		RunsByMode:       make(map[string]int),
		QuestsByCategory: make(map[string]int),
	}

	runsEnded := 0
	endedPoints := 0

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			metadata = EventMetadata{}
		}

		switch event.Type {
		case EventRunStarted:
			stats.RunsStarted++
			if mode, ok := metadata["mode"].(string); ok {
				stats.RunsByMode[mode]++
			}
		case EventRunEnded:
			runsEnded++
			endedPoints += intField(metadata, "score")
		case EventMaterialCollected:
			stats.MaterialCollected++
		case EventContainerCrafted:
			stats.ContainersCrafted++
		case EventContainerFilled:
			stats.ContainersFilled++
		case EventContainerDelivered:
			stats.Deliveries++
			stats.PointsAwarded += intField(metadata, "points")
			if bonus, ok := metadata["bonus"].(bool); ok && bonus {
				stats.BonusDeliveries++
			}
		case EventQuestCompleted:
			stats.QuestsCompleted++
			if cat, ok := metadata["category"].(string); ok {
				stats.QuestsByCategory[cat]++
			}
		case EventScoreSubmitted:
			stats.ScoresSubmitted++
		}
	}

	if stats.RunsStarted > 0 {
		stats.DeliveriesPerRun = float64(stats.Deliveries) / float64(stats.RunsStarted)
	}
	if runsEnded > 0 {
		stats.AvgPointsPerRunEnd = float64(endedPoints) / float64(runsEnded)
	}

	return stats, nil
}

// JSON numbers decode as float64.
func intField(m EventMetadata, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
