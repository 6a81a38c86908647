package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskhub/internal/db"
)

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))

	tests := []struct {
		name           string
		method         string
		body           string
		mockRepo       db.UserRepositoryInterface
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Successful login",
			method:         http.MethodPost,
			body:           `{"email": "test@example.com", "password": "strongpass"}`,
			mockRepo:       SetupMockUser("Test", "test@example.com", "strongpass"),
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":`,
		},
		{
			name:           "Invalid method (GET instead of POST)",
			method:         http.MethodGet,
			body:           ``,
			mockRepo:       NewMockUserRepository(),
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `"error":"Use POST method for login"`,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           `{"email": "test@example.com", "password": }`,
			mockRepo:       NewMockUserRepository(),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Bad JSON"`,
		},
		{
			name:           "Unknown email",
			method:         http.MethodPost,
			body:           `{"email": "nobody@example.com", "password": "strongpass"}`,
			mockRepo:       SetupMockUser("Test", "test@example.com", "strongpass"),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Invalid email or password"`,
		},
		{
			name:           "Wrong password",
			method:         http.MethodPost,
			body:           `{"email": "test@example.com", "password": "wrongpass"}`,
			mockRepo:       SetupMockUser("Test", "test@example.com", "strongpass"),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Invalid email or password"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			handler := &Handler{Users: tt.mockRepo}
			handler.Login(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, status)
			}

			body := strings.TrimSpace(rr.Body.String())
			if !strings.Contains(body, tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.expectedBody, body)
			}
		})
	}
}

func TestLogin_TokenGrantsAccess(t *testing.T) {
	_, mux, _, _ := setupHTTP(t)

	registerBody := `{"name": "Login User", "email": "login@example.com", "password": "strongpass"}`
	regReq := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(registerBody))
	regRR := httptest.NewRecorder()
	mux.ServeHTTP(regRR, regReq)
	if regRR.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", regRR.Code, regRR.Body.String())
	}

	body := `{"email": "login@example.com", "password": "strongpass"}`
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token in the login response")
	}

	// The issued token must pass the auth middleware on a protected route.
	listReq := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	listReq.Header.Set("Authorization", "Bearer "+resp.Token)
	listRR := httptest.NewRecorder()
	mux.ServeHTTP(listRR, listReq)
	if listRR.Code != http.StatusOK {
		t.Fatalf("listing tasks with issued token: expected 200, got %d: %s", listRR.Code, listRR.Body.String())
	}
}
