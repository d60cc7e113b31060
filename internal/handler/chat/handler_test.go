package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authservice "github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/internal/middleware"
	chatmodel "github.com/zixuanzhao/chat-relay/internal/model/chat"
	"github.com/zixuanzhao/chat-relay/internal/model/user"
	chatservice "github.com/zixuanzhao/chat-relay/internal/service/chat"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatmodel.MemoryHistory, string) {
	t.Helper()

	authSvc := authservice.NewService(user.NewMemoryStore(), []byte("test-secret"), time.Hour)
	token, err := authSvc.IssueToken("alice")
	if err != nil {
		t.Fatalf("IssueToken err: %v", err)
	}

	history := chatmodel.NewMemoryHistory()
	handler := New(chatservice.NewService(history, nil))

	r := chi.NewRouter()
	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(authSvc))
		handler.RegisterRoutes(protected)
	})
	return r, history, token
}

func TestListChatsReturnsOrderedHistory(t *testing.T) {
	r, history, token := setupRouter(t)
	now := time.Now()

	for _, turn := range []chatmodel.Turn{
		chatmodel.NewUserTurn("alice", "Hello", now),
		chatmodel.NewAssistantTurn("alice", "Hi there", now),
	} {
		if _, err := history.Append(context.Background(), turn); err != nil {
			t.Fatalf("Append err: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var turns []chatmodel.Turn
	if err := json.Unmarshal(resp.Body.Bytes(), &turns); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Message != "Hello" || turns[1].Message != "Hi there" {
		t.Fatalf("turns out of order: %+v", turns)
	}
	if _, err := time.Parse(chatmodel.TimeLayout, turns[0].Timestamp); err != nil {
		t.Fatalf("timestamp %q not in display format: %v", turns[0].Timestamp, err)
	}
}

func TestListChatsEmptyForNewUser(t *testing.T) {
	r, _, token := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body == "null\n" {
		t.Fatal("empty history must encode as [] not null")
	}
}

func TestListChatsRequiresBearerToken(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestListChatsRejectsGarbageToken(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
