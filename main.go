package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"taskhub/internal/db"
	"taskhub/internal/handlers"
	"taskhub/internal/notify"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	} else {
		log.Println(".env file not found, relying on environment variables")
	}

	validateEnv()
	dbConn := initDB()
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()

	notifier := initNotifier(dbConn)
	initHandlers(dbConn, notifier)

	server := initServer()
	startServer(server, notifier)
}

func validateEnv() {
	requiredEnvVars := []string{
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"POSTGRES_HOST", "POSTGRES_PORT", "SERVER_PORT",
	}
	for _, env := range requiredEnvVars {
		if os.Getenv(env) == "" {
			log.Fatalf("Environment variable %s must be set", env)
		}
	}
	if len(os.Getenv("JWT_SECRET")) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters")
	}
}

func initDB() *sql.DB {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	dbname := os.Getenv("POSTGRES_DB")
	port := os.Getenv("POSTGRES_PORT")
	host := os.Getenv("POSTGRES_HOST")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)

	dbConn, err := db.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return dbConn
}

func initNotifier(dbConn *sql.DB) *notify.Notifier {
	var mailer notify.Mailer = notify.LogMailer{}
	if smtp := notify.SMTPMailerFromEnv(); smtp != nil {
		mailer = smtp
	} else {
		log.Println("SMTP_HOST not set, emails are logged instead of sent")
	}
	// 2 workers and a queue of 64 bound the notification fan-out
	return notify.New(
		db.NewNotificationRepository(dbConn),
		db.NewUserRepository(dbConn),
		mailer, 2, 64)
}

func initHandlers(dbConn *sql.DB, notifier *notify.Notifier) *handlers.Handler {
	handler := &handlers.Handler{
		Users:         db.NewUserRepository(dbConn),
		Tasks:         db.NewTaskRepository(dbConn),
		Notifications: db.NewNotificationRepository(dbConn),
		Notifier:      notifier,
		// allow max 5 attempts per 15 minutes from the same IP
		RateLimiter: handlers.NewRateLimiter(5, 15*time.Minute),
	}
	http.HandleFunc("/register", handler.Register)
	http.HandleFunc("/login", handler.Login)
	http.HandleFunc("/users", handler.AuthMiddleware(handler.HandleUsers))
	http.HandleFunc("/notifications", handler.AuthMiddleware(handler.HandleNotifications))
	http.HandleFunc("/tasks", handler.AuthMiddleware(handler.HandleTasks))
	http.HandleFunc("/tasks/dashboard", handler.AuthMiddleware(handler.HandleDashboard))
	http.HandleFunc("/tasks/", handler.AuthMiddleware(handler.HandleTaskByID))
	return handler
}

func initServer() *http.Server {
	return &http.Server{
		Addr: ":" + os.Getenv("SERVER_PORT"),
	}
}

func startServer(server *http.Server, notifier *notify.Notifier) {
	log.Printf("Starting server on :%s", os.Getenv("SERVER_PORT"))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	// drain the queued notification work before exiting
	notifier.Close()
	log.Println("Server stopped")
}
