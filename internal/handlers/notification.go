package handlers

import (
	"context"
	"net/http"
	"time"

	"taskhub/internal/models"
)

// GET /notifications - the caller's notifications, newest first
func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller, ok := callerID(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	notifications, err := h.Notifications.ListByUserID(ctx, caller)
	if err != nil {
		sendError(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	sendJSON(w, http.StatusOK, notifications)
}
