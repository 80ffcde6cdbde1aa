package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_FilterAndBound(t *testing.T) {
	repo := NewBoundedMemoryRepository(3)
	base := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	step := 0
	repo.SetNow(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	})

	require.NoError(t, repo.RecordEvent(EventRunStarted, EventMetadata{"mode": "free"}))
	require.NoError(t, repo.RecordEvent(EventMaterialCollected, nil))
	require.NoError(t, repo.RecordEvent(EventMaterialCollected, nil))
	require.NoError(t, repo.RecordEvent(EventContainerCrafted, nil))

	all, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].ID)

	crafted, err := repo.GetEvents(time.Time{}, []EventType{EventContainerCrafted})
	require.NoError(t, err)
	assert.Len(t, crafted, 1)

	late, err := repo.GetEvents(base.Add(4*time.Minute), nil)
	require.NoError(t, err)
	assert.Len(t, late, 1)

	require.NoError(t, repo.Clear())
	all, _ = repo.GetEvents(time.Time{}, nil)
	assert.Empty(t, all)
}

func TestCalculateStats(t *testing.T) {
	repo := NewMemoryRepository()
	_ = repo.RecordEvent(EventRunStarted, EventMetadata{"mode": "timed"})
	_ = repo.RecordEvent(EventContainerDelivered, EventMetadata{"points": 10, "bonus": false})
	_ = repo.RecordEvent(EventContainerDelivered, EventMetadata{"points": 20, "bonus": true})
	_ = repo.RecordEvent(EventQuestCompleted, EventMetadata{"category": "deliver_containers"})
	_ = repo.RecordEvent(EventRunEnded, EventMetadata{"score": 30})

	events, err := repo.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	stats, err := CalculateStats(events, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.RunsStarted)
	assert.Equal(t, 1, stats.RunsByMode["timed"])
	assert.Equal(t, 2, stats.Deliveries)
	assert.Equal(t, 1, stats.BonusDeliveries)
	assert.Equal(t, 30, stats.PointsAwarded)
	assert.Equal(t, 1, stats.QuestsByCategory["deliver_containers"])
	assert.InDelta(t, 2.0, stats.DeliveriesPerRun, 0.001)
	assert.InDelta(t, 30.0, stats.AvgPointsPerRunEnd, 0.001)
}

func TestHandler_Stats(t *testing.T) {
	repo := NewMemoryRepository()
	_ = repo.RecordEvent(EventMaterialCollected, nil)

	h := NewHandler(repo)
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 1, out.MaterialCollected)

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
