package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/lead-planner/internal/event"
)

// EventHandler exposes CRUD operations over the event book.
type EventHandler struct {
	book      *event.Book
	responder responder
	newID     func() string
}

func NewEventHandler(book *event.Book, logger *slog.Logger) *EventHandler {
	return &EventHandler{book: book, responder: newResponder(logger), newID: uuid.NewString}
}

type eventRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	IsAllDay  bool      `json:"isAllDay"`
	Summary   string    `json:"summary"`
	Location  string    `json:"location"`
	Category  []string  `json:"category"`
	Reminders []int     `json:"reminders"`
	Recurring string    `json:"recurring"`
}

func (req eventRequest) toEvent() (event.Event, error) {
	recurring, err := event.ParseRecurrence(req.Recurring)
	if err != nil {
		vErr := &event.ValidationError{}
		vErr.Add("recurring", "must be one of weekly, monthly, annually")
		return event.Event{}, vErr
	}

	return event.Event{
		ID:        req.ID,
		Title:     strings.TrimSpace(req.Title),
		Start:     req.Start,
		End:       req.End,
		IsAllDay:  req.IsAllDay,
		Summary:   req.Summary,
		Location:  req.Location,
		Category:  req.Category,
		Reminders: req.Reminders,
		Recurring: recurring,
	}, nil
}

// List returns all events ordered by start time.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.book.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, events)
}

// Create stores a new event; a missing id is generated.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = h.newID()
	}

	ev, err := req.toEvent()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.book.Put(r.Context(), ev); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, ev)
}

// Update replaces the event with the given id.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if _, err := h.book.Get(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	req.ID = id

	ev, err := req.toEvent()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.book.Put(r.Context(), ev); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ev)
}

// Delete removes the event with the given id.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.book == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	if err := h.book.Delete(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
