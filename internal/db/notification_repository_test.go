package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/models"
)

func TestNotificationRepository_Create_List(t *testing.T) {
	repo := NewNotificationRepository(setupTestDB(t))
	ctx := context.Background()

	userID := uuid.New()
	other := uuid.New()
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		n := &models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			TaskID:    uuid.New(),
			Message:   "You have been assigned a new task: " + msg,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	foreign := &models.Notification{
		ID:        uuid.New(),
		UserID:    other,
		TaskID:    uuid.New(),
		Message:   "not yours",
		CreatedAt: base,
	}
	if err := repo.Create(ctx, foreign); err != nil {
		t.Fatalf("Create foreign: %v", err)
	}

	notifications, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifications))
	}
	// newest first, unread by default
	if notifications[0].Message != "You have been assigned a new task: third" {
		t.Errorf("expected newest first, got %q", notifications[0].Message)
	}
	for _, n := range notifications {
		if n.Read {
			t.Errorf("notification %s must default to unread", n.ID)
		}
		if n.UserID != userID {
			t.Errorf("listed a foreign notification: %#v", n)
		}
	}
}

func TestNotificationRepository_ListByUserID_Empty(t *testing.T) {
	repo := NewNotificationRepository(setupTestDB(t))

	notifications, err := repo.ListByUserID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(notifications) != 0 {
		t.Errorf("expected no notifications, got %+v", notifications)
	}
}
