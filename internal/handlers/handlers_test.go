package handlers

import (
	"database/sql"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/db"
	"taskhub/internal/notify"
)

type sentMail struct {
	To      string
	Subject string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject})
	return nil
}

func (m *captureMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func setupHTTP(t *testing.T) (*Handler, *http.ServeMux, *sql.DB, *captureMailer) {
	t.Helper()

	secret := strings.Repeat("a", 32)
	_ = os.Setenv("JWT_SECRET", secret)

	dbx, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(dbx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mailer := &captureMailer{}
	users := db.NewUserRepository(dbx)
	notifications := db.NewNotificationRepository(dbx)
	notifier := notify.New(notifications, users, mailer, 1, 16)

	h := &Handler{
		Users:         users,
		Tasks:         db.NewTaskRepository(dbx),
		Notifications: notifications,
		Notifier:      notifier,
		RateLimiter:   NewRateLimiter(100, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/register", h.Register)
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/users", h.AuthMiddleware(h.HandleUsers))
	mux.HandleFunc("/notifications", h.AuthMiddleware(h.HandleNotifications))
	mux.HandleFunc("/tasks", h.AuthMiddleware(h.HandleTasks))
	mux.HandleFunc("/tasks/dashboard", h.AuthMiddleware(h.HandleDashboard))
	mux.HandleFunc("/tasks/", h.AuthMiddleware(h.HandleTaskByID))

	t.Cleanup(func() {
		notifier.Close()
		dbx.Close()
	})
	return h, mux, dbx, mailer
}

func bearerForUser(t *testing.T, userID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(1 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return "Bearer " + signed
}

func newAuthedUser(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	id := uuid.New()
	return id, bearerForUser(t, id.String())
}
