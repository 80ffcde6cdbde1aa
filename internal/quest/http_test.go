package quest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToday_ReportsStoredProgressForTodaysQuest(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	q := Generate(now)

	store := NewMemoryStore()
	require.NoError(t, store.Save(ProgressState{
		QuestID:        q.ID,
		Progress:       q.Target,
		Completed:      true,
		BonusExpiresAt: now.Add(time.Hour).UnixMilli(),
	}))

	h := NewHandler(Generator{}, store)
	h.SetNow(func() time.Time { return now })

	req := httptest.NewRequest(http.MethodGet, "/api/quest/today?lang=sv", nil)
	rec := httptest.NewRecorder()
	h.Today(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out TodayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	assert.Equal(t, q.ID, out.Quest.ID)
	assert.Equal(t, "sv", out.Lang)
	assert.Equal(t, q.Target, out.Progress)
	assert.True(t, out.Completed)
	assert.True(t, out.BonusActive)
	assert.Contains(t, out.Quest.Description, strconv.Itoa(q.Target))
}

func TestToday_IgnoresRecordFromAnotherDay(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

	store := NewMemoryStore()
	require.NoError(t, store.Save(ProgressState{QuestID: "2026-2-13", Progress: 4, Completed: true}))

	h := NewHandler(Generator{}, store)
	h.SetNow(func() time.Time { return now })

	req := httptest.NewRequest(http.MethodGet, "/api/quest/today", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	h.Today(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out TodayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	assert.Equal(t, "en", out.Lang)
	assert.Zero(t, out.Progress)
	assert.False(t, out.Completed)
	assert.False(t, out.BonusActive)
}

func TestToday_RejectsNonGet(t *testing.T) {
	h := NewHandler(Generator{}, nil)
	rec := httptest.NewRecorder()
	h.Today(rec, httptest.NewRequest(http.MethodPost, "/api/quest/today", strings.NewReader("{}")))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestToday_KeepsConfiguredDescription(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	gen := Generator{Templates: []Template{
		{Category: CategoryCraftContainers, Description: "Bygg {n} återvunna flaskor idag", MinTarget: 4, MaxTarget: 4},
	}}

	h := NewHandler(gen, NewMemoryStore())
	h.SetNow(func() time.Time { return now })

	for _, lang := range []string{"en", "sv"} {
		rec := httptest.NewRecorder()
		h.Today(rec, httptest.NewRequest(http.MethodGet, "/api/quest/today?lang="+lang, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var out TodayResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "Bygg 4 återvunna flaskor idag", out.Quest.Description, lang)
		assert.Equal(t, gen.Generate(now).Description, out.Quest.Description, lang)
	}
}

func TestToday_TranslatesBuiltinDescription(t *testing.T) {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	q := Generate(now)

	h := NewHandler(Generator{Templates: DefaultTemplates()}, nil)
	h.SetNow(func() time.Time { return now })

	rec := httptest.NewRecorder()
	h.Today(rec, httptest.NewRequest(http.MethodGet, "/api/quest/today?lang=sv", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out TodayResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.NotEqual(t, q.Description, out.Quest.Description)
	assert.Contains(t, out.Quest.Description, strconv.Itoa(q.Target))
}
