package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authservice "github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/internal/model/user"
)

func setupRouter() (*chi.Mux, *authservice.Service) {
	svc := authservice.NewService(user.NewMemoryStore(), []byte("test-secret"), time.Hour)
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func postJSON(r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSignUpCreatesUser(t *testing.T) {
	r, _ := setupRouter()

	resp := postJSON(r, "/signup", map[string]string{"username": "alice", "password": "p4ssw0rd"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var created user.User
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if created.Username != "alice" || created.ID == 0 {
		t.Fatalf("unexpected user: %+v", created)
	}
}

func TestSignUpDuplicateUsername(t *testing.T) {
	r, _ := setupRouter()

	if resp := postJSON(r, "/signup", map[string]string{"username": "alice", "password": "pw"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if resp := postJSON(r, "/signup", map[string]string{"username": "alice", "password": "pw"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSignUpMissingFields(t *testing.T) {
	r, _ := setupRouter()

	if resp := postJSON(r, "/signup", map[string]string{"username": "alice"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestLogInIssuesVerifiableToken(t *testing.T) {
	r, svc := setupRouter()

	if resp := postJSON(r, "/signup", map[string]string{"username": "alice", "password": "p4ssw0rd"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp := postJSON(r, "/login", map[string]string{"username": "alice", "password": "p4ssw0rd"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if payload.TokenType != "bearer" {
		t.Fatalf("unexpected token type: %q", payload.TokenType)
	}

	username, err := svc.Verify(payload.AccessToken)
	if err != nil {
		t.Fatalf("Verify err: %v", err)
	}
	if username != "alice" {
		t.Fatalf("token subject mismatch: %q", username)
	}
}

func TestLogInWrongPassword(t *testing.T) {
	r, _ := setupRouter()

	if resp := postJSON(r, "/signup", map[string]string{"username": "alice", "password": "p4ssw0rd"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if resp := postJSON(r, "/login", map[string]string{"username": "alice", "password": "wrong"}); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
