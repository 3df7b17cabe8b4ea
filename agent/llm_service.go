package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"divedata/config"
)

// LLMService wraps an Eino chat model behind the language-service contract:
// a synchronous generate call taking a system instruction, user content, an
// output token budget and a sampling temperature.
type LLMService struct {
	ChatModel model.ChatModel
	logger    func(string)
}

// NewLLMService constructs the chat model from configuration. Any
// OpenAI-compatible endpoint works through the base URL override.
func NewLLMService(ctx context.Context, cfg config.Config, logFunc func(string)) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured. Set API_KEY or apiKey in config")
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.ModelName,
		Timeout: 0, // Default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %v", err)
	}

	return &LLMService{
		ChatModel: chatModel,
		logger:    logFunc,
	}, nil
}

func (s *LLMService) log(msg string) {
	if s.logger != nil {
		s.logger(msg)
	}
}

// Generate runs one completion with the given system instruction and user
// content. The call either completes or returns a service error; there is no
// retry here.
func (s *LLMService) Generate(ctx context.Context, systemInstruction, content string, maxTokens int, temperature float32) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemInstruction},
		{Role: schema.User, Content: content},
	}

	opts := []model.Option{model.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}

	resp, err := s.ChatModel.Generate(ctx, messages, opts...)
	if err != nil {
		s.log(fmt.Sprintf("[LLM] Generate failed: %v", err))
		return "", err
	}

	return resp.Content, nil
}
