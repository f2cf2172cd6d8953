package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"electional-engine/internal/astrocontext"
	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// dateParam parses a YYYY-MM-DD query parameter, defaulting to today (UTC).
func dateParam(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(domain.DateLayout, v)
}

type aspectsResponse struct {
	Date     string          `json:"date"`
	Aspects  []domain.Aspect `json:"aspects"`
	Fallback bool            `json:"fallback"`
}

func (s *Server) handleAspects(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date")
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	list := s.detector.Daily(day)
	if list == nil {
		list = []domain.Aspect{}
	}
	resp := aspectsResponse{Date: day.Format(domain.DateLayout), Aspects: list}
	for _, a := range list {
		if a.Fallback {
			resp.Fallback = true
			break
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type contextResponse struct {
	Date              string                `json:"date"`
	MoonPhase         domain.MoonPhase      `json:"moonPhase"`
	Illumination      int                   `json:"illumination"`
	CyclePosition     float64               `json:"cyclePosition"`
	DaysToNextNew     float64               `json:"daysToNextNew"`
	DaysToNextFull    float64               `json:"daysToNextFull"`
	MercuryStatus     domain.MercuryStatus  `json:"mercuryStatus"`
	MercuryRetrograde bool                  `json:"mercuryRetrograde"`
	WaxingStart       string                `json:"waxingStart,omitempty"`
	WaxingEnd         string                `json:"waxingEnd,omitempty"`
	NextRetrograde    string                `json:"nextRetrograde,omitempty"`
	NextDirect        string                `json:"nextDirect,omitempty"`
	MagicFormula      *magicFormulaResponse `json:"magicFormula,omitempty"`
}

type magicFormulaResponse struct {
	Full               bool    `json:"full"`
	Partial            bool    `json:"partial"`
	JupiterPlutoInOrb  bool    `json:"jupiterPlutoInOrb"`
	JupiterPlutoDegree float64 `json:"jupiterPlutoDegree"`
}

func newContextResponse(c domain.AstronomicalContext) contextResponse {
	resp := contextResponse{
		Date:              c.Date.Format(domain.DateLayout),
		MoonPhase:         c.MoonPhase,
		Illumination:      c.Illumination,
		CyclePosition:     c.CyclePosition,
		DaysToNextNew:     c.DaysToNextNew,
		DaysToNextFull:    c.DaysToNextFull,
		MercuryStatus:     c.MercuryStatus,
		MercuryRetrograde: c.MercuryRetrograde,
	}
	if c.WaxingWindow != nil {
		resp.WaxingStart = c.WaxingWindow.Start.Format(time.RFC3339)
		resp.WaxingEnd = c.WaxingWindow.End.Format(time.RFC3339)
	}
	if c.NextRetrograde != nil {
		resp.NextRetrograde = c.NextRetrograde.Format(domain.DateLayout)
	}
	if c.NextDirect != nil {
		resp.NextDirect = c.NextDirect.Format(domain.DateLayout)
	}
	return resp
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	day, err := dateParam(r, "date")
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	resp := newContextResponse(s.context.Evaluate(day))
	if s.detector != nil {
		mf := astrocontext.DetectMagicFormula(s.detector.Chart(day))
		resp.MagicFormula = &magicFormulaResponse{
			Full:               mf.Full,
			Partial:            mf.Partial,
			JupiterPlutoInOrb:  mf.JupiterPlutoOrb,
			JupiterPlutoDegree: mf.JupiterPlutoDegree,
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDayScores(w http.ResponseWriter, r *http.Request) {
	if s.dayScores == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Day scores are not stored", nil)
		return
	}
	start, err := time.Parse(domain.DateLayout, r.URL.Query().Get("start"))
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := time.Parse(domain.DateLayout, r.URL.Query().Get("end"))
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}
	if end.Before(start) {
		s.respondWithError(w, http.StatusBadRequest, "Invalid range", errors.New("end is before start"))
		return
	}

	scores, err := s.dayScores.GetByRange(r.Context(), chi.URLParam(r, "userID"), start, end)
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to load day scores", err)
		return
	}
	if scores == nil {
		scores = []*domain.DayScore{}
	}
	respondWithJSON(w, http.StatusOK, scores)
}

type runResponse struct {
	ID          string   `json:"id"`
	State       string   `json:"state"`
	Priorities  []string `json:"priorities"`
	RangeStart  string   `json:"rangeStart"`
	RangeEnd    string   `json:"rangeEnd"`
	EventsFound int      `json:"eventsFound"`
	EventsSaved int      `json:"eventsSaved"`
	Warning     string   `json:"warning,omitempty"`
	StartedAt   string   `json:"startedAt"`
	FinishedAt  string   `json:"finishedAt,omitempty"`
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.respondWithError(w, http.StatusNotImplemented, "Generation runs are not stored", nil)
		return
	}
	run, err := s.runs.GetLatest(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, storage.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "No generation runs", nil)
		return
	}
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to load generation run", err)
		return
	}

	resp := runResponse{
		ID:          run.ID,
		State:       run.State,
		Priorities:  run.Priorities,
		RangeStart:  run.RangeStart.Format(domain.DateLayout),
		RangeEnd:    run.RangeEnd.Format(domain.DateLayout),
		EventsFound: run.EventsFound,
		EventsSaved: run.EventsSaved,
		Warning:     run.Warning,
		StartedAt:   run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	respondWithJSON(w, http.StatusOK, resp)
}
