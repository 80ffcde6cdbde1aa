package leaderboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// Error codes carried next to the message so HTTP clients can map failures
// back onto the sentinels.
const (
	codeInvalidName  = "invalid_name"
	codeInvalidScore = "invalid_score"
	codeUnavailable  = "unavailable"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type TopResponse struct {
	Entries []Entry `json:"entries"`
}

type Handler struct {
	repo         Repository
	nameMaxLen   int
	defaultLimit int
	maxLimit     int
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:         repo,
		nameMaxLen:   DefaultNameMaxLen,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
}

// SetLimits overrides the name length and list size bounds; zero keeps the
// current value.
func (h *Handler) SetLimits(nameMaxLen, defaultLimit, maxLimit int) {
	if nameMaxLen > 0 {
		h.nameMaxLen = nameMaxLen
	}
	if defaultLimit > 0 {
		h.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		h.maxLimit = maxLimit
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// WriteRepoErr maps repository errors onto HTTP statuses.
func WriteRepoErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: codeInvalidName})
	case errors.Is(err, ErrInvalidScore):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: codeInvalidScore})
	case errors.Is(err, ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), Code: codeUnavailable})
	default:
		writeErr(w, http.StatusInternalServerError, "leaderboard storage failed")
	}
}

func (h *Handler) limit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return ClampLimit(n, h.defaultLimit, h.maxLimit)
}

// GET  /api/leaderboard?limit=N
// POST /api/leaderboard {name, score, helpedCount}
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := h.repo.Top(r.Context(), h.limit(r))
		if err != nil {
			WriteRepoErr(w, err)
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		writeJSON(w, http.StatusOK, TopResponse{Entries: entries})

	case http.MethodPost:
		var sub Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}
		sub, err := sub.Normalize(h.nameMaxLen)
		if err != nil {
			WriteRepoErr(w, err)
			return
		}
		e, err := h.repo.Submit(r.Context(), sub)
		if err != nil {
			WriteRepoErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET /leaderboard
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	entries, err := h.repo.Top(r.Context(), h.defaultLimit)
	if err != nil {
		http.Error(w, "leaderboard unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = TopListPage(entries).Render(r.Context(), w)
}
