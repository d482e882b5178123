package handlers

import (
	"context"
	"net/http"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/http/middleware"
)

// NotificationFeed is the read side of the notification store: the in-app
// feed backing the bell icon. Email delivery happens on the queue worker.
type NotificationFeed interface {
	ListByUser(ctx context.Context, userID int) ([]*entity.Notification, error)
}

type NotificationHandler struct {
	Feed NotificationFeed
}

func NewNotificationHandler(feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{Feed: feed}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: "missing requester"})
		return
	}

	notifications, err := h.Feed.ListByUser(r.Context(), requester.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}
