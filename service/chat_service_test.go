package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/rag-be/types"
)

type fakeAIService struct {
	systemPrompt string
	userMessage  string
	temperature  float32
	maxTokens    int
	called       bool
	err          error
	completion   types.ChatCompletion
}

func (f *fakeAIService) Complete(ctx context.Context, systemPrompt, userMessage string, temperature float32, maxTokens int) (*types.ChatCompletion, error) {
	f.called = true
	f.systemPrompt = systemPrompt
	f.userMessage = userMessage
	f.temperature = temperature
	f.maxTokens = maxTokens
	if f.err != nil {
		return nil, f.err
	}
	completion := f.completion
	return &completion, nil
}

func (f *fakeAIService) ModelName() string {
	return f.completion.Model
}

func newFakeAI() *fakeAIService {
	return &fakeAIService{completion: types.ChatCompletion{
		Content: "The sky is blue.",
		Model:   "gpt-35-turbo",
		Usage:   types.TokenUsage{PromptTokens: 80, CompletionTokens: 20, TotalTokens: 100},
	}}
}

func retrievedFixtures() []types.RetrievedChunk {
	return []types.RetrievedChunk{
		{ID: "d1_chunk_0", Title: "T1", Author: "A1", Content: "C1", URL: "https://w/1", Source: "confluence"},
		{ID: "d2_chunk_0", Title: "T2", Author: "A2", Content: "C2", URL: "https://w/2", Source: "confluence"},
	}
}

func TestGenerateAnswerBuildsPrompt(t *testing.T) {
	ai := newFakeAI()
	svc := NewChatService(ai)

	completion, sources, err := svc.GenerateAnswer(context.Background(), "what is up?", retrievedFixtures(), "", 0.7, 1000)
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", completion.Content)
	assert.Len(t, sources, 2)

	expected := `Context information:
[Source 1] T1
Author: A1
Content: C1

---
[Source 2] T2
Author: A2
Content: C2


Question: what is up?

Please provide a comprehensive answer based on the context provided above. If the context doesn't contain enough information to answer the question, please state that clearly.`
	assert.Equal(t, expected, ai.userMessage)
	assert.Equal(t, float32(0.7), ai.temperature)
	assert.Equal(t, 1000, ai.maxTokens)
}

func TestGenerateAnswerUsesDefaultSystemPrompt(t *testing.T) {
	ai := newFakeAI()
	svc := NewChatService(ai)

	_, _, err := svc.GenerateAnswer(context.Background(), "q", retrievedFixtures(), "", 0.7, 1000)
	require.NoError(t, err)
	assert.Equal(t, defaultSystemPrompt, ai.systemPrompt)
}

func TestGenerateAnswerKeepsCustomSystemPrompt(t *testing.T) {
	ai := newFakeAI()
	svc := NewChatService(ai)

	_, _, err := svc.GenerateAnswer(context.Background(), "q", retrievedFixtures(), "Answer like a pirate.", 0.7, 1000)
	require.NoError(t, err)
	assert.Equal(t, "Answer like a pirate.", ai.systemPrompt)
}

func TestGenerateAnswerEmptyContext(t *testing.T) {
	ai := newFakeAI()
	svc := NewChatService(ai)

	_, sources, err := svc.GenerateAnswer(context.Background(), "q", nil, "", 0.7, 1000)
	require.NoError(t, err)
	assert.Contains(t, ai.userMessage, "No relevant information found.")
	assert.Empty(t, sources)
}

func TestGenerateAnswerPropagatesError(t *testing.T) {
	ai := newFakeAI()
	ai.err = errors.New("model unavailable")
	svc := NewChatService(ai)

	_, _, err := svc.GenerateAnswer(context.Background(), "q", retrievedFixtures(), "", 0.7, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate answer")
}

func TestExtractSources(t *testing.T) {
	chunks := []types.RetrievedChunk{
		{Title: "First", URL: "https://w/1", Author: "A1", Source: "confluence"},
		{Title: "No link", URL: "", Author: "A2", Source: "confluence"},
		{Title: "First again", URL: "https://w/1", Author: "A1", Source: "confluence"},
		{Title: "Second", URL: "https://w/2", Author: "A3", Source: "confluence"},
	}

	sources := ExtractSources(chunks)
	require.Len(t, sources, 2)
	assert.Equal(t, types.Source{Title: "First", URL: "https://w/1", Author: "A1", Source: "confluence"}, sources[0])
	assert.Equal(t, types.Source{Title: "Second", URL: "https://w/2", Author: "A3", Source: "confluence"}, sources[1])
}

func TestExtractSourcesEmpty(t *testing.T) {
	sources := ExtractSources(nil)
	assert.NotNil(t, sources)
	assert.Empty(t, sources)
}
