package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/michaelberns/wtt/models"
)

// GetNotificationsHandler обрабатывает GET /users/:id/notifications
func (h *Handler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	list, unread, err := h.Store.GetNotifications(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}

	writeJSON(w, models.NotificationFeed{UnreadCount: unread, Notifications: list})
}

// MarkNotificationReadHandler обрабатывает POST /notifications/:id/read.
// Отметить можно только своё уведомление.
func (h *Handler) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	notifID := chi.URLParam(r, "notificationId")
	actor := actorID(r)
	if actor == "" {
		http.Error(w, "Missing X-User-Id header", http.StatusUnauthorized)
		return
	}

	n, err := h.Store.GetNotification(r.Context(), notifID)
	if err != nil {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	if n.UserID != actor {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Store.MarkNotificationRead(r.Context(), notifID); err != nil {
		http.Error(w, "Failed to mark notification read", http.StatusInternalServerError)
		return
	}

	n.Read = true
	writeJSON(w, n)
}
