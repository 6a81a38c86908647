package handlers

import (
	"context"
	"net/http"
	"time"

	"taskhub/internal/models"
)

// GET /users - candidate assignees; password hashes never serialize
func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := callerID(r); !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		sendError(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	sendJSON(w, http.StatusOK, users)
}
