package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/db"
	"taskhub/internal/models"
)

/*
handles routes:
- GET /tasks?search=&status=&priority=&due_date= - list tasks visible to the caller
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filter, errMsg := taskFilterFromQuery(r)
	if errMsg != "" {
		sendError(w, errMsg, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tasks, err := h.Tasks.List(ctx, caller, filter)
	if err != nil {
		sendError(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	sendJSON(w, http.StatusOK, tasks)
}

// taskFilterFromQuery parses the optional listing criteria. An empty or
// whitespace-only search means "no constraint", never "match everything
// titled empty". Returns a non-empty message on invalid input.
func taskFilterFromQuery(r *http.Request) (db.TaskFilter, string) {
	q := r.URL.Query()
	var filter db.TaskFilter

	filter.Search = q.Get("search")

	if s := q.Get("status"); s != "" {
		status := models.NormalizeStatus(s)
		if status == "" {
			return filter, "Invalid status value"
		}
		filter.Status = status
	}
	if p := q.Get("priority"); p != "" {
		priority := models.NormalizePriority(p)
		if priority == "" {
			return filter, "Invalid priority value"
		}
		filter.Priority = priority
	}
	if d := q.Get("due_date"); d != "" {
		ceiling, err := parseDueDateCeiling(d)
		if err != nil {
			return filter, "Invalid due_date value"
		}
		filter.DueBefore = ceiling
	}
	return filter, ""
}

// parseDueDateCeiling accepts RFC3339 or a bare date. A bare date means "due
// on or before that day", so the ceiling stretches to the end of the day.
func parseDueDateCeiling(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.Add(24*time.Hour - time.Nanosecond), nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseDueDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		Priority    string `json:"priority"`
		Status      string `json:"status"`
		AssignedTo  string `json:"assigned_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	if len(title) > 200 {
		sendError(w, "title too long (max 200 chars)", http.StatusBadRequest)
		return
	}
	if input.DueDate == "" {
		sendError(w, "due_date is required", http.StatusBadRequest)
		return
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		sendError(w, "Invalid due_date value", http.StatusBadRequest)
		return
	}

	status := models.StatusPending
	if input.Status != "" {
		if status = models.NormalizeStatus(input.Status); status == "" {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
	}
	priority := models.PriorityLow
	if input.Priority != "" {
		if priority = models.NormalizePriority(input.Priority); priority == "" {
			sendError(w, "Invalid priority value", http.StatusBadRequest)
			return
		}
	}

	var assignee uuid.NullUUID
	if input.AssignedTo != "" {
		id, err := uuid.Parse(input.AssignedTo)
		if err != nil {
			sendError(w, "assigned_to must be a valid uuid", http.StatusBadRequest)
			return
		}
		assignee = uuid.NullUUID{UUID: id, Valid: true}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// created_by always comes from the token, never from the payload
	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		DueDate:     dueDate.UTC(),
		Priority:    priority,
		Status:      status,
		CreatedBy:   caller,
		AssignedTo:  assignee,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Tasks.Create(ctx, task); err != nil {
		sendError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	h.Notifier.TaskCreated(caller, task)
	w.Header().Set("Location", "/tasks/"+task.ID.String())
	sendJSON(w, http.StatusCreated, task)
}

/*
routes:
- GET /tasks/{id}
- PUT/PATCH /tasks/{id}
- DELETE /tasks/{id}
- POST /tasks/{id}/assign
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	idStr, action, _ := strings.Cut(rest, "/")
	if idStr == "" {
		sendError(w, "task_id is required", http.StatusBadRequest)
		return
	}
	taskID, err := uuid.Parse(idStr)
	if err != nil {
		sendError(w, "task_id must be a valid uuid", http.StatusBadRequest)
		return
	}

	if action == "assign" {
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.assignTask(w, r, taskID)
		return
	}
	if action != "" {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTaskByID(w, r, taskID)
	case http.MethodPut, http.MethodPatch:
		h.updateTaskByID(w, r, taskID)
	case http.MethodDelete:
		h.deleteTaskByID(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTaskByID(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to load task", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) updateTaskByID(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to load task", http.StatusInternalServerError)
		return
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
		Priority    *string `json:"priority"`
		Status      *string `json:"status"`
		AssignedTo  *string `json:"assigned_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			sendError(w, "title cannot be empty", http.StatusBadRequest)
			return
		}
		if len(title) > 200 {
			sendError(w, "title too long (max 200 chars)", http.StatusBadRequest)
			return
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			sendError(w, "Invalid due_date value", http.StatusBadRequest)
			return
		}
		task.DueDate = dueDate.UTC()
	}
	if input.Priority != nil {
		priority := models.NormalizePriority(*input.Priority)
		if priority == "" {
			sendError(w, "Invalid priority value", http.StatusBadRequest)
			return
		}
		task.Priority = priority
	}
	if input.Status != nil {
		status := models.NormalizeStatus(*input.Status)
		if status == "" {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		task.Status = status
	}
	if input.AssignedTo != nil {
		if *input.AssignedTo == "" {
			task.AssignedTo = uuid.NullUUID{}
		} else {
			id, err := uuid.Parse(*input.AssignedTo)
			if err != nil {
				sendError(w, "assigned_to must be a valid uuid", http.StatusBadRequest)
				return
			}
			task.AssignedTo = uuid.NullUUID{UUID: id, Valid: true}
		}
	}
	task.UpdatedAt = time.Now().UTC()

	if err := h.Tasks.Update(ctx, task); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to update task", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTaskByID(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Task not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// assignTask re-points the assignee and hands the notification fan-out to
// the notifier. The mutation commits even when the assignee id does not
// resolve to a user; only the email is skipped in that case.
func (h *Handler) assignTask(w http.ResponseWriter, r *http.Request, taskID uuid.UUID) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		sendError(w, "user_id must be a valid uuid", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.Assign(ctx, taskID, userID)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		sendError(w, "Failed to assign task", http.StatusInternalServerError)
		return
	}

	h.Notifier.TaskAssigned(userID, task)
	sendJSON(w, http.StatusOK, task)
}
