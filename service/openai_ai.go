package service

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/tieubaoca/rag-be/types"
)

// OpenAIService generates chat completions against OpenAI or any
// OpenAI-compatible endpoint.
type OpenAIService struct {
	client *openai.Client
	model  string
}

var _ AIService = (*OpenAIService)(nil)

func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		model:  model,
	}
}

func (s *OpenAIService) Complete(ctx context.Context, systemPrompt, userMessage string, temperature float32, maxTokens int) (*types.ChatCompletion, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userMessage},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		},
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response generated")
	}

	return &types.ChatCompletion{
		Content: resp.Choices[0].Message.Content,
		Model:   s.model,
		Usage: types.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (s *OpenAIService) ModelName() string {
	return s.model
}
