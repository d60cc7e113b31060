package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zixuanzhao/chat-relay/internal/config"
	"github.com/zixuanzhao/chat-relay/internal/model/chat"
)

// ErrGenerationFailed is the single outcome every provider failure collapses
// into: model errors, rate limits, network failures, timeouts.
var ErrGenerationFailed = errors.New("reply generation failed")

// Service adapts the configured chat model to the relay's completion
// contract: fixed model, bounded output length, one reply per call, no
// streaming.
type Service struct {
	chatModel    model.BaseChatModel
	contextLimit int
	timeout      time.Duration
}

// NewService creates the completion adapter from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Service{
		chatModel:    chatModel,
		contextLimit: cfg.ContextLimit,
		timeout:      cfg.Timeout,
	}, nil
}

// Complete generates one reply for the ordered conversation. The call blocks
// until the provider answers or the configured timeout expires.
func (s *Service) Complete(ctx context.Context, turns []chat.Turn) (string, error) {
	msgs := s.buildMessages(turns)
	if len(msgs) == 0 {
		return "", fmt.Errorf("%w: empty conversation", ErrGenerationFailed)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	response, err := s.chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	reply := strings.TrimSpace(response.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}

	log.Printf("[ai] generated reply, context=%d messages, length=%d", len(msgs), len(reply))
	return reply, nil
}

// buildMessages maps turns to role-tagged utterances using the role assigned
// at write time. The user's full history with the responder replays as one
// linear conversation.
func (s *Service) buildMessages(turns []chat.Turn) []*schema.Message {
	startIdx := 0
	if s.contextLimit > 0 && len(turns) > s.contextLimit {
		startIdx = len(turns) - s.contextLimit
	}

	msgs := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		switch turn.Role {
		case chat.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Message, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Message))
		}
	}

	return msgs
}
