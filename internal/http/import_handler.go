package http

import (
	"context"
	"log/slog"
	"net/http"
)

// CalendarImporter runs one pass over the subscribed calendar feeds.
type CalendarImporter interface {
	Run(ctx context.Context) (int, error)
}

// ImportHandler triggers an on-demand ICS import.
type ImportHandler struct {
	importer  CalendarImporter
	responder responder
}

func NewImportHandler(importer CalendarImporter, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, responder: newResponder(logger)}
}

type importResult struct {
	EventsApplied int `json:"events_applied"`
}

// RunICS imports all configured feeds now and reports how many events were applied.
func (h *ImportHandler) RunICS(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.importer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	applied, err := h.importer.Run(r.Context())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadGateway, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, importResult{EventsApplied: applied})
}
