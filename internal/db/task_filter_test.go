package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/models"
)

func TestTaskFilter_SearchCaseInsensitive(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	due := time.Now().UTC().Add(24 * time.Hour)

	insertTask(t, repo, newTask(me, "Design Review", due))
	insertTask(t, repo, newTask(me, "design prep", due))
	insertTask(t, repo, newTask(me, "Testing Phase", due))

	tasks, err := repo.List(ctx, me, TaskFilter{Search: "design"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "design", len(tasks))
	}
	for _, task := range tasks {
		if task.Title == "Testing Phase" {
			t.Errorf("substring match must not return %q", task.Title)
		}
	}
}

func TestTaskFilter_EmptySearchMeansNoConstraint(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	due := time.Now().UTC()

	insertTask(t, repo, newTask(me, "Anything", due))

	for _, search := range []string{"", "   ", "\t"} {
		tasks, err := repo.List(ctx, me, TaskFilter{Search: search})
		if err != nil {
			t.Fatalf("List with search %q: %v", search, err)
		}
		if len(tasks) != 1 {
			t.Errorf("search %q: expected 1 task, got %d", search, len(tasks))
		}
	}
}

func TestTaskFilter_SearchEscapesLikeMetacharacters(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	due := time.Now().UTC()

	insertTask(t, repo, newTask(me, "100% done", due))
	insertTask(t, repo, newTask(me, "100 percent done", due))

	tasks, err := repo.List(ctx, me, TaskFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "100% done" {
		t.Errorf("%% must match literally, got %+v", tasks)
	}
}

func TestTaskFilter_StatusExactMatch(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	due := time.Now().UTC()

	pending := newTask(me, "Pending one", due)
	insertTask(t, repo, pending)
	completed := newTask(me, "Completed one", due)
	completed.Status = models.StatusCompleted
	insertTask(t, repo, completed)

	tasks, err := repo.List(ctx, me, TaskFilter{Status: models.StatusCompleted})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != completed.ID {
		t.Errorf("expected only the completed task, got %+v", tasks)
	}
}

func TestTaskFilter_DueDateCeiling(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()

	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }
	insertTask(t, repo, newTask(me, "Due 9th", day(9)))
	insertTask(t, repo, newTask(me, "Due 10th", day(10)))
	insertTask(t, repo, newTask(me, "Due 11th", day(11)))

	// ceiling of 2025-05-10 covers the whole day
	ceiling := day(10).Add(24*time.Hour - time.Nanosecond)
	tasks, err := repo.List(ctx, me, TaskFilter{DueBefore: ceiling})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks due on or before the 10th, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.Title == "Due 11th" {
			t.Error("task due after the ceiling must not match")
		}
	}
}

func TestTaskFilter_ConjunctiveCombination(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	due := time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)

	match := newTask(me, "Design doc", due)
	match.Status = models.StatusInProgress
	match.Priority = models.PriorityHigh
	insertTask(t, repo, match)

	wrongPriority := newTask(me, "Design sketch", due)
	wrongPriority.Status = models.StatusInProgress
	insertTask(t, repo, wrongPriority)

	wrongTitle := newTask(me, "Budget", due)
	wrongTitle.Status = models.StatusInProgress
	wrongTitle.Priority = models.PriorityHigh
	insertTask(t, repo, wrongTitle)

	tasks, err := repo.List(ctx, me, TaskFilter{
		Search:    "design",
		Status:    models.StatusInProgress,
		Priority:  models.PriorityHigh,
		DueBefore: due.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != match.ID {
		t.Errorf("all present filters must hold at once, got %+v", tasks)
	}
}

func TestTaskFilter_VisibilityScoping(t *testing.T) {
	repo := NewTaskRepository(setupTestDB(t))
	ctx := context.Background()
	me := uuid.New()
	stranger := uuid.New()
	due := time.Now().UTC()

	mine := newTask(me, "Mine", due)
	insertTask(t, repo, mine)

	assignedToMe := newTask(stranger, "Assigned to me", due)
	assignedToMe.AssignedTo = uuid.NullUUID{UUID: me, Valid: true}
	insertTask(t, repo, assignedToMe)

	foreign := newTask(stranger, "Foreign", due)
	insertTask(t, repo, foreign)

	tasks, err := repo.List(ctx, me, TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 visible tasks, got %d", len(tasks))
	}
	if containsTask(tasks, foreign.ID) {
		t.Error("caller must never see a task they neither created nor were assigned")
	}
}
