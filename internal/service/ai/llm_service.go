// Package ai proxies chat turns to the hosted LLM provider through a
// compiled eino chain.
package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/empathai/backend/internal/analysis/emotion"
	"github.com/empathai/backend/internal/config"
	chatmodel "github.com/empathai/backend/internal/model/chat"
	memorymodel "github.com/empathai/backend/internal/model/memory"
	"github.com/empathai/backend/internal/model/persona"
)

// Service wraps the provider chat model with persona-grounded prompting.
type Service struct {
	chatModel    model.ChatModel
	cfg          config.LLMConfig
	persona      persona.Persona
	historyLimit int
	chain        compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service, compiling the chat chain once at startup.
func NewService(ctx context.Context, cfg config.LLMConfig, p persona.Persona, historyLimit int) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	if historyLimit < 1 {
		historyLimit = 10
	}

	return &Service{
		chatModel:    chatModel,
		cfg:          cfg,
		persona:      p,
		historyLimit: historyLimit,
		chain:        runnable,
	}, nil
}

// ModelName reports the configured provider model identifier.
func (s *Service) ModelName() string {
	return s.cfg.Model
}

// StreamingEnabled indicates whether streaming output is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.Stream
}

// Generate produces a persona reply for one chat turn. Provider failures
// surface as errors; there is no retry and no canned fallback.
func (s *Service) Generate(ctx context.Context, memories []memorymodel.Memory, history []chatmodel.Message, userMessage string, label emotion.Label, tone string) (string, error) {
	input := s.buildChainInput(memories, history, userMessage, label, tone)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Printf("[ai] generated reply, model=%s, length=%d", s.cfg.Model, len(response.Content))
	return response.Content, nil
}

// StreamReply streams the reply for one chat turn chunk by chunk.
func (s *Service) StreamReply(ctx context.Context, memories []memorymodel.Memory, history []chatmodel.Message, userMessage string, label emotion.Label, tone string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input := s.buildChainInput(memories, history, userMessage, label, tone)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream chat chain output: %w", err)
	}
	return stream, nil
}

func (s *Service) buildChainInput(memories []memorymodel.Memory, history []chatmodel.Message, userMessage string, label emotion.Label, tone string) map[string]any {
	return map[string]any{
		"system":  BuildSystemPrompt(s.persona, memories, label, tone),
		"history": historyMessages(history, s.historyLimit),
		"query":   userMessage,
	}
}

func historyMessages(messages []chatmodel.Message, limit int) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chatmodel.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chatmodel.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
