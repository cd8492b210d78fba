package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/lead-planner/internal/notify"
)

// NotificationHandler exposes the notification feed to the host UI.
type NotificationHandler struct {
	center    *notify.Center
	responder responder
}

func NewNotificationHandler(center *notify.Center, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{center: center, responder: newResponder(logger)}
}

type notificationFeed struct {
	Notifications []notify.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// List returns the feed, most recent first, with the unread count.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.center == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	feed := notificationFeed{
		Notifications: h.center.List(),
		UnreadCount:   h.center.UnreadCount(),
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, feed)
}

// MarkRead marks a single notification read. Unknown ids yield 404; marking
// an already-read notification is a no-op success.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.center == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotifyID)
		return
	}

	if !h.center.MarkAsRead(r.Context(), id) {
		h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: "notification not found"})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// MarkAllRead marks the entire feed read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.center == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.center.MarkAllAsRead(r.Context())
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
