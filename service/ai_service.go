package service

import (
	"context"

	"github.com/tieubaoca/rag-be/types"
)

// AIService generates a chat completion from a system prompt and a single
// user message. Implementations wrap one upstream provider.
type AIService interface {
	Complete(ctx context.Context, systemPrompt, userMessage string, temperature float32, maxTokens int) (*types.ChatCompletion, error)
	ModelName() string
}
