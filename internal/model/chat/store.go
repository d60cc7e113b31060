package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrEmptyTurn rejects turns missing sender, receiver or message text.
var ErrEmptyTurn = errors.New("turn requires sender, receiver and message")

// History is the append-only log of turns. Append assigns the id and returns
// the persisted turn; ListFor returns every turn where username is sender or
// receiver, in write order. Implementations surface storage failures as
// errors — a reachable store with zero matching turns returns an empty slice,
// which is the normal state for a brand-new user.
type History interface {
	Append(ctx context.Context, turn Turn) (Turn, error)
	ListFor(ctx context.Context, username string) ([]Turn, error)
}

// MemoryHistory keeps turns in process memory. Used in tests.
type MemoryHistory struct {
	mu     sync.RWMutex
	nextID int64
	turns  []Turn
}

// NewMemoryHistory bootstraps an empty in-memory history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{nextID: 1}
}

// Append stores a turn and assigns its id.
func (h *MemoryHistory) Append(_ context.Context, turn Turn) (Turn, error) {
	if turn.Sender == "" || turn.Receiver == "" || turn.Message == "" {
		return Turn{}, ErrEmptyTurn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	turn.ID = h.nextID
	h.nextID++
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	if turn.Timestamp == "" {
		turn.Timestamp = FormatTime(turn.CreatedAt)
	}

	h.turns = append(h.turns, turn)
	return turn, nil
}

// ListFor returns the user's conversation in write order.
func (h *MemoryHistory) ListFor(_ context.Context, username string) ([]Turn, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	matched := make([]Turn, 0, len(h.turns))
	for _, turn := range h.turns {
		if turn.Sender == username || turn.Receiver == username {
			matched = append(matched, turn)
		}
	}
	return matched, nil
}
