package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/db"
	"taskhub/internal/models"
)

// Notifier runs the side effects of task mutations: persisted notification
// records and emails. Work goes through a bounded queue served by a fixed
// pool of workers; a full queue drops the job. Failures are logged and never
// surfaced to the triggering request — best effort, no retry.
type Notifier struct {
	notifications *db.NotificationRepository
	users         db.UserRepositoryInterface
	mailer        Mailer

	jobs    chan func(ctx context.Context)
	pending sync.WaitGroup
	workers sync.WaitGroup
}

func New(notifications *db.NotificationRepository, users db.UserRepositoryInterface, mailer Mailer, workers, queueSize int) *Notifier {
	n := &Notifier{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		jobs:          make(chan func(ctx context.Context), queueSize),
	}
	for i := 0; i < workers; i++ {
		n.workers.Add(1)
		go n.worker()
	}
	return n
}

func (n *Notifier) worker() {
	defer n.workers.Done()
	for job := range n.jobs {
		job(context.Background())
		n.pending.Done()
	}
}

func (n *Notifier) enqueue(job func(ctx context.Context)) {
	n.pending.Add(1)
	select {
	case n.jobs <- job:
	default:
		n.pending.Done()
		log.Printf("notify: queue full, dropping job")
	}
}

// Flush blocks until every job queued so far has been processed.
func (n *Notifier) Flush() {
	n.pending.Wait()
}

// Close stops the workers after draining the queue. No further work may be
// enqueued.
func (n *Notifier) Close() {
	close(n.jobs)
	n.workers.Wait()
}

// TaskAssigned records a notification for the assignee and mails them a
// heads-up. An unknown assignee or one without an email only skips the mail;
// the assignment itself has already committed.
func (n *Notifier) TaskAssigned(userID uuid.UUID, task *models.Task) {
	taskID, title := task.ID, task.Title
	n.enqueue(func(ctx context.Context) {
		record := &models.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			TaskID:    taskID,
			Message:   "You have been assigned a new task: " + title,
			CreatedAt: time.Now().UTC(),
		}
		if err := n.notifications.Create(ctx, record); err != nil {
			log.Printf("notify: record assignment of %s to %s: %v", taskID, userID, err)
		}

		user, err := n.users.GetByID(ctx, userID)
		if err != nil || user.Email == "" {
			return
		}
		err = n.mailer.Send(user.Email, "New task assigned: "+title,
			"Hi "+user.Name+",\n\nYou have been assigned a new task: "+title+"\n")
		if err != nil {
			log.Printf("notify: assignment email to %s: %v", user.Email, err)
		}
	})
}

// TaskCreated mails the creator a confirmation.
func (n *Notifier) TaskCreated(userID uuid.UUID, task *models.Task) {
	title := task.Title
	n.enqueue(func(ctx context.Context) {
		user, err := n.users.GetByID(ctx, userID)
		if err != nil || user.Email == "" {
			return
		}
		err = n.mailer.Send(user.Email, "Task created: "+title,
			"Hi "+user.Name+",\n\nYour task has been created: "+title+"\n")
		if err != nil {
			log.Printf("notify: creation email to %s: %v", user.Email, err)
		}
	})
}
