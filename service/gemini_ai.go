package service

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tieubaoca/rag-be/types"
)

// GeminiService generates chat completions using Google Gemini.
type GeminiService struct {
	client *genai.Client
	name   string
}

var _ AIService = (*GeminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		client: client,
		name:   modelName,
	}, nil
}

func (s *GeminiService) Complete(ctx context.Context, systemPrompt, userMessage string, temperature float32, maxTokens int) (*types.ChatCompletion, error) {
	// A fresh model per call keeps the per-request generation settings off
	// shared state.
	model := s.client.GenerativeModel(s.name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	usage := types.TokenUsage{}
	if resp.UsageMetadata != nil {
		usage = types.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return &types.ChatCompletion{
		Content: content,
		Model:   s.name,
		Usage:   usage,
	}, nil
}

func (s *GeminiService) ModelName() string {
	return s.name
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
