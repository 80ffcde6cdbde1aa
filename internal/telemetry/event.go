package telemetry

import "time"

type EventType string

const (
	EventRunStarted         EventType = "run_started"
	EventRunEnded           EventType = "run_ended"
	EventMaterialCollected  EventType = "material_collected"
	EventContainerCrafted   EventType = "container_crafted"
	EventContainerFilled    EventType = "container_filled"
	EventContainerDelivered EventType = "container_delivered"
	EventQuestCompleted     EventType = "quest_completed"
	EventScoreSubmitted     EventType = "score_submitted"
)

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}

// Recorder is the write side used by gameplay code.
type Recorder interface {
	RecordEvent(eventType EventType, metadata EventMetadata) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) RecordEvent(EventType, EventMetadata) error { return nil }
