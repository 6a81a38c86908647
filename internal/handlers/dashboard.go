package handlers

import (
	"context"
	"net/http"
	"time"

	"taskhub/internal/models"
)

type dashboardResponse struct {
	Assigned []*models.Task `json:"assigned"`
	Created  []*models.Task `json:"created"`
	Overdue  []*models.Task `json:"overdue"`
}

type dashboardCounts struct {
	Assigned int `json:"assigned"`
	Created  int `json:"created"`
	Overdue  int `json:"overdue"`
}

/*
GET /tasks/dashboard - the caller's assigned / created / overdue task lists
GET /tasks/dashboard?view=counts - the same aggregates as counts only

Always recomputed from the store; a task may legitimately appear in more
than one set (e.g. self-assigned and past due).
*/
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
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
	now := time.Now().UTC()

	if r.URL.Query().Get("view") == "counts" {
		assigned, created, overdue, err := h.Tasks.DashboardCounts(ctx, caller, now)
		if err != nil {
			sendError(w, "Failed to compute dashboard", http.StatusInternalServerError)
			return
		}
		sendJSON(w, http.StatusOK, dashboardCounts{
			Assigned: assigned,
			Created:  created,
			Overdue:  overdue,
		})
		return
	}

	assigned, err := h.Tasks.ListAssignedTo(ctx, caller)
	if err != nil {
		sendError(w, "Failed to compute dashboard", http.StatusInternalServerError)
		return
	}
	created, err := h.Tasks.ListCreatedBy(ctx, caller)
	if err != nil {
		sendError(w, "Failed to compute dashboard", http.StatusInternalServerError)
		return
	}
	overdue, err := h.Tasks.ListOverdue(ctx, caller, now)
	if err != nil {
		sendError(w, "Failed to compute dashboard", http.StatusInternalServerError)
		return
	}

	if assigned == nil {
		assigned = []*models.Task{}
	}
	if created == nil {
		created = []*models.Task{}
	}
	if overdue == nil {
		overdue = []*models.Task{}
	}
	sendJSON(w, http.StatusOK, dashboardResponse{
		Assigned: assigned,
		Created:  created,
		Overdue:  overdue,
	})
}
