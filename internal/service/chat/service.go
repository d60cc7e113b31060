package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zixuanzhao/chat-relay/internal/model/chat"
)

// ErrNoCompleter reports that no completion provider was configured.
var ErrNoCompleter = errors.New("completion provider not configured")

// Completer produces one reply for an ordered conversation. *ai.Service
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, turns []chat.Turn) (string, error)
}

// Service runs the message-exchange cycle shared by every live connection:
// persist the inbound turn, replay the user's conversation through the
// completion provider, persist the reply, return it.
type Service struct {
	history   chat.History
	completer Completer
}

// NewService wires the exchange service to storage and the provider. A nil
// completer keeps the service alive but fails every exchange.
func NewService(history chat.History, completer Completer) *Service {
	return &Service{history: history, completer: completer}
}

// Exchange runs one full cycle for an authenticated user. Both turns of a
// successful cycle carry the same timestamp basis. When generation fails the
// inbound turn stays persisted without a paired reply; that is accepted, not
// rolled back.
func (s *Service) Exchange(ctx context.Context, username, message string, at time.Time) (chat.Turn, error) {
	if _, err := s.history.Append(ctx, chat.NewUserTurn(username, message, at)); err != nil {
		return chat.Turn{}, fmt.Errorf("persist inbound turn: %w", err)
	}

	turns, err := s.history.ListFor(ctx, username)
	if err != nil {
		return chat.Turn{}, fmt.Errorf("load conversation: %w", err)
	}

	if s.completer == nil {
		return chat.Turn{}, ErrNoCompleter
	}

	reply, err := s.completer.Complete(ctx, turns)
	if err != nil {
		return chat.Turn{}, fmt.Errorf("generate reply: %w", err)
	}

	out, err := s.history.Append(ctx, chat.NewAssistantTurn(username, reply, at))
	if err != nil {
		return chat.Turn{}, fmt.Errorf("persist reply turn: %w", err)
	}

	return out, nil
}

// History returns the user's full conversation in write order. It is a pure
// read; an empty conversation is a valid result, not an error.
func (s *Service) History(ctx context.Context, username string) ([]chat.Turn, error) {
	turns, err := s.history.ListFor(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return turns, nil
}
