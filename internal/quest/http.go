package quest

import (
	"encoding/json"
	"net/http"
	"time"
)

type TodayResponse struct {
	Quest          DailyQuest `json:"quest"`
	Lang           string     `json:"lang"`
	Progress       int        `json:"progress"`
	Completed      bool       `json:"completed"`
	BonusActive    bool       `json:"bonusActive"`
	BonusExpiresAt int64      `json:"bonusExpiresAt,omitempty"`
}

// Handler serves today's quest together with the stored progress for it.
type Handler struct {
	gen   Generator
	store Store
	now   func() time.Time
}

func NewHandler(gen Generator, store Store) *Handler {
	return &Handler{gen: gen, store: store, now: time.Now}
}

func (h *Handler) SetNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /api/quest/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}

	now := h.now()
	q := h.gen.Generate(now)
	tag := MatchLanguage(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	q.Description = q.Localized(tag)

	resp := TodayResponse{Quest: q, Lang: tag.String()}
	if h.store != nil {
		if st, ok := h.store.Load(); ok && st.BelongsTo(q) {
			resp.Progress = ClampProgress(st.Progress, q.Target)
			resp.Completed = st.Completed
			resp.BonusActive = st.BonusActiveAt(now)
			resp.BonusExpiresAt = st.BonusExpiresAt
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
