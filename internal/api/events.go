package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"electional-engine/internal/calendar"
	"electional-engine/internal/domain"
	"electional-engine/internal/filter"
)

const monthLayout = "2006-01"

// writeResponse reports a calendar write.
type writeResponse struct {
	Events     []*domain.Event `json:"events"`
	Confirmed  int             `json:"confirmed"`
	LocalOnly  int             `json:"localOnly"`
	Duplicates int             `json:"duplicates"`
	Cleared    int             `json:"cleared"`
	Warning    string          `json:"warning,omitempty"`
}

func newWriteResponse(res *calendar.Result) writeResponse {
	out := writeResponse{
		Events:     res.Events,
		Confirmed:  res.Confirmed,
		LocalOnly:  res.LocalOnly,
		Duplicates: res.Duplicates,
		Cleared:    res.Cleared,
		Warning:    res.Warning,
	}
	if out.Events == nil {
		out.Events = []*domain.Event{}
	}
	return out
}

type listResponse struct {
	Events        []*domain.Event `json:"events"`
	Total         int             `json:"total"`
	ActiveFilters []string        `json:"activeFilters"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	state, err := filter.FromQuery(r.URL.Query())
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	events, err := s.book.Events(r.Context(), userID)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}

	p := filter.New(state, filter.DefaultContext())
	var matched []*domain.Event
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse(domain.DateLayout, date)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		matched = p.ApplyDay(events, day)
	} else {
		matched = p.Apply(events)
	}
	if matched == nil {
		matched = []*domain.Event{}
	}

	active := state.Active()
	if active == nil {
		active = []string{}
	}
	respondWithJSON(w, http.StatusOK, listResponse{
		Events:        matched,
		Total:         len(events),
		ActiveFilters: active,
	})
}

func (s *Server) handleCounts(w http.ResponseWriter, r *http.Request) {
	events, err := s.book.Events(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to count events", err)
		return
	}
	respondWithJSON(w, http.StatusOK, filter.CalculateCounts(events, filter.DefaultContext()))
}

// createRequest accepts a single event or a batch under "events". Analyze
// computes the chart and score of each event at its own date and time.
type createRequest struct {
	domain.Event
	Events    []*domain.Event   `json:"events"`
	Analyze   bool              `json:"analyze"`
	Latitude  *float64          `json:"latitude"`
	Longitude *float64          `json:"longitude"`
	Scoring   []domain.Priority `json:"scoringPriorities"`
}

func (s *Server) handleCreateEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	events := req.Events
	if len(events) == 0 {
		single := req.Event
		events = []*domain.Event{&single}
	}
	for _, e := range events {
		e.UserID = userID
	}

	if req.Analyze {
		loc := s.location
		if req.Latitude != nil && req.Longitude != nil {
			loc = domain.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		}
		for _, e := range events {
			if err := s.generator.Analyze(e, loc, req.Scoring); err != nil {
				s.respondWithError(w, statusOf(err), "Failed to analyze event", err)
				return
			}
		}
	}

	res, err := s.book.BulkAdd(r.Context(), events)
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to save events", err)
		return
	}
	s.log("user %s: saved %d events (%d duplicates)", userID, len(res.Events), res.Duplicates)
	respondWithJSON(w, http.StatusCreated, newWriteResponse(res))
}

// updateRequest applies at most one change per field present.
type updateRequest struct {
	Title          *string           `json:"title"`
	ToggleBookmark bool              `json:"toggleBookmark"`
	Priorities     []domain.Priority `json:"priorities"`
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	id := chi.URLParam(r, "id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if req.Title == nil && !req.ToggleBookmark && req.Priorities == nil {
		s.respondWithError(w, http.StatusBadRequest, "Nothing to update", nil)
		return
	}

	ctx := r.Context()
	merged := &calendar.Result{}
	apply := func(res *calendar.Result, err error) bool {
		if err != nil {
			s.respondWithError(w, statusOf(err), "Failed to update event", err)
			return false
		}
		merged.Events = res.Events
		merged.Confirmed = res.Confirmed
		merged.LocalOnly = res.LocalOnly
		if res.Warning != "" {
			merged.Warning = res.Warning
		}
		return true
	}

	if req.Title != nil && !apply(s.book.Rename(ctx, userID, id, *req.Title)) {
		return
	}
	if req.ToggleBookmark && !apply(s.book.ToggleBookmark(ctx, userID, id)) {
		return
	}
	if req.Priorities != nil && !apply(s.book.Rescore(ctx, userID, id, req.Priorities)) {
		return
	}
	respondWithJSON(w, http.StatusOK, newWriteResponse(merged))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	res, err := s.book.Delete(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to delete event", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWriteResponse(res))
}

// handleSync pulls remote records the local collection does not hold yet.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	n, err := s.book.Sync(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to sync events", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"loaded": n})
}

func (s *Server) handleClearGenerated(w http.ResponseWriter, r *http.Request) {
	var month *time.Time
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := time.Parse(monthLayout, v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Invalid month", errors.New("month must be YYYY-MM"))
			return
		}
		month = &m
	}

	res, err := s.book.ClearGenerated(r.Context(), chi.URLParam(r, "userID"), month)
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to clear generated events", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newWriteResponse(res))
}
