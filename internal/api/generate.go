package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"electional-engine/internal/domain"
	"electional-engine/internal/generator"
	"electional-engine/internal/observability"
)

// Stream settings for the generation websocket.
const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 64 * 1024
)

// generateRequest is the body of a generation call. Month is YYYY-MM and
// defaults to the current month; coordinates default to the server location.
type generateRequest struct {
	UserID       string            `json:"userId"`
	Month        string            `json:"month"`
	Months       int               `json:"months"`
	Priorities   []domain.Priority `json:"priorities"`
	Latitude     *float64          `json:"latitude"`
	Longitude    *float64          `json:"longitude"`
	KeepExisting bool              `json:"keepExisting"`
}

func (g generateRequest) toRequest(fallback domain.Location, now time.Time) (generator.Request, error) {
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if g.Month != "" {
		m, err := time.Parse(monthLayout, g.Month)
		if err != nil {
			return generator.Request{}, fmt.Errorf("%w: month must be YYYY-MM", generator.ErrInvalidRange)
		}
		month = m
	}

	loc := fallback
	if g.Latitude != nil || g.Longitude != nil {
		if g.Latitude == nil || g.Longitude == nil {
			return generator.Request{}, fmt.Errorf("%w: latitude and longitude go together", generator.ErrNoLocation)
		}
		loc = domain.Location{Latitude: *g.Latitude, Longitude: *g.Longitude}
	}

	return generator.Request{
		UserID:       g.UserID,
		Location:     &loc,
		Priorities:   g.Priorities,
		Month:        month,
		Months:       g.Months,
		KeepExisting: g.KeepExisting,
	}, nil
}

type generateResponse struct {
	RunID           string          `json:"runId"`
	State           generator.State `json:"state"`
	RangeStart      string          `json:"rangeStart"`
	RangeEnd        string          `json:"rangeEnd"`
	DaysScanned     int             `json:"daysScanned"`
	Calculations    int             `json:"calculations"`
	CandidatesFound int             `json:"candidatesFound"`
	Selected        int             `json:"selected"`
	Cleared         int             `json:"cleared"`
	Duplicates      int             `json:"duplicates"`
	Published       int             `json:"published"`
	Events          []*domain.Event `json:"events"`
	Warning         string          `json:"warning,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
}

func newGenerateResponse(res *generator.RunResult) generateResponse {
	out := generateResponse{
		RunID:           res.RunID,
		State:           res.State,
		RangeStart:      res.Range.Start.Format(domain.DateLayout),
		RangeEnd:        res.Range.End.Format(domain.DateLayout),
		DaysScanned:     res.DaysScanned,
		Calculations:    res.Calculations,
		CandidatesFound: res.CandidatesFound,
		Selected:        res.Selected,
		Cleared:         res.Cleared,
		Duplicates:      res.Duplicates,
		Published:       res.Published,
		Events:          res.Events,
		Warning:         res.Warning,
		Errors:          res.Errors,
	}
	if out.Events == nil {
		out.Events = []*domain.Event{}
	}
	return out
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	body.UserID = chi.URLParam(r, "userID")

	req, err := body.toRequest(s.location, time.Now().UTC())
	if err != nil {
		s.respondWithError(w, statusOf(err), "Invalid generation request", err)
		return
	}

	res, err := s.generator.Run(r.Context(), req, generator.Handlers{})
	if err != nil {
		s.respondWithError(w, statusOf(err), "Failed to generate optimal timing", err)
		return
	}
	s.log("user %s: run %s %s with %d events", req.UserID, res.RunID, res.State, len(res.Events))
	respondWithJSON(w, http.StatusOK, newGenerateResponse(res))
}

// streamMessage is one frame of the generation stream.
type streamMessage struct {
	Type     string              `json:"type"` // progress | event | result | error
	Progress *generator.Progress `json:"progress,omitempty"`
	Event    *domain.Event       `json:"event,omitempty"`
	Result   *generateResponse   `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// handleGenerateStream runs one generation per connection. The first client
// message is the request; progress, candidates and the final result are
// streamed back. Closing the connection or sending {"type":"cancel"} cancels
// the run, which still saves what it selected so far.
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[api] failed to upgrade to websocket: %v", err)
		return
	}
	defer conn.Close()

	observability.UpdateWSClients(int(s.wsClients.Add(1)))
	defer func() { observability.UpdateWSClients(int(s.wsClients.Add(-1))) }()

	conn.SetReadLimit(wsMaxMessageSize)

	send := func(msg streamMessage) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(msg)
	}

	var body generateRequest
	if err := conn.ReadJSON(&body); err != nil {
		send(streamMessage{Type: "error", Error: "invalid request payload"})
		return
	}
	req, err := body.toRequest(s.location, time.Now().UTC())
	if err != nil {
		send(streamMessage{Type: "error", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader: any read error or cancel frame stops the run.
	go func() {
		defer cancel()
		for {
			var msg struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.log("websocket read: %v", err)
				}
				return
			}
			if msg.Type == "cancel" {
				return
			}
		}
	}()

	writeFailed := false
	write := func(msg streamMessage) {
		if writeFailed {
			return
		}
		if err := send(msg); err != nil {
			writeFailed = true
			cancel()
		}
	}

	res, err := s.generator.Run(ctx, req, generator.Handlers{
		OnProgress:  func(p generator.Progress) { write(streamMessage{Type: "progress", Progress: &p}) },
		OnCandidate: func(e *domain.Event) { write(streamMessage{Type: "event", Event: e}) },
	})
	if err != nil {
		write(streamMessage{Type: "error", Error: err.Error()})
		return
	}
	out := newGenerateResponse(res)
	write(streamMessage{Type: "result", Result: &out})

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
