package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/rag-be/types"
)

const defaultSystemPrompt = `You are a helpful AI assistant that answers questions based on the provided context from a knowledge base.

Instructions:
- Answer the question using ONLY the information provided in the context
- Be specific and cite which source(s) you used when possible
- If the context doesn't contain enough information, clearly state that
- Be concise but thorough in your explanations
- Use a professional and friendly tone
- If you find conflicting information in the sources, acknowledge it`

// ChatService turns retrieved chunks and a question into a grounded answer.
type ChatService struct {
	ai AIService
}

func NewChatService(ai AIService) *ChatService {
	return &ChatService{ai: ai}
}

func (s *ChatService) GenerateAnswer(ctx context.Context, question string, contextChunks []types.RetrievedChunk, systemPrompt string, temperature float32, maxTokens int) (*types.ChatCompletion, []types.Source, error) {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	userPrompt := buildUserPrompt(question, buildContext(contextChunks))

	completion, err := s.ai.Complete(ctx, systemPrompt, userPrompt, temperature, maxTokens)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate answer: %v", err)
	}

	log.Printf("Generated answer using %d tokens", completion.Usage.TotalTokens)
	return completion, ExtractSources(contextChunks), nil
}

func buildContext(chunks []types.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No relevant information found."
	}
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d] %s\nAuthor: %s\nContent: %s\n", i+1, chunk.Title, chunk.Author, chunk.Content))
	}
	return strings.Join(parts, "\n---\n")
}

func buildUserPrompt(question, contextText string) string {
	return fmt.Sprintf(`Context information:
%s

Question: %s

Please provide a comprehensive answer based on the context provided above. If the context doesn't contain enough information to answer the question, please state that clearly.`, contextText, question)
}

// ExtractSources collects one citation per distinct URL, in retrieval order.
// Chunks without a URL are not citable and are skipped.
func ExtractSources(chunks []types.RetrievedChunk) []types.Source {
	sources := make([]types.Source, 0)
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if chunk.URL == "" || seen[chunk.URL] {
			continue
		}
		sources = append(sources, types.Source{
			Title:  chunk.Title,
			URL:    chunk.URL,
			Author: chunk.Author,
			Source: chunk.Source,
		})
		seen[chunk.URL] = true
	}
	return sources
}
