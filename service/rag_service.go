package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tieubaoca/rag-be/types"
)

const noAnswerFallback = "I couldn't find any relevant information in the knowledge base to answer your question."

// SearchStore is the retrieval surface the RAG pipeline depends on.
type SearchStore interface {
	VectorSearch(ctx context.Context, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error)
	HybridSearch(ctx context.Context, query string, vector []float32, topK int, filter *types.SearchFilter) ([]types.RetrievedChunk, error)
}

// RAGService answers questions by retrieving relevant chunks and handing
// them to the chat service.
type RAGService struct {
	embedder    Embedder
	store       SearchStore
	chatService *ChatService
	topK        int
	temperature float32
	maxTokens   int
}

func NewRAGService(embedder Embedder, store SearchStore, chatService *ChatService, topK int, temperature float32, maxTokens int) *RAGService {
	if topK <= 0 {
		topK = 5
	}
	return &RAGService{
		embedder:    embedder,
		store:       store,
		chatService: chatService,
		topK:        topK,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// AnswerQuestion runs the full pipeline: embed the question, retrieve the
// most relevant chunks, generate an answer. With no retrieved chunks the
// model is never called and a fixed fallback answer is returned.
func (s *RAGService) AnswerQuestion(ctx context.Context, req types.AskRequest) (*types.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}
	log.Printf("Processing question: %s", question)

	vectors, err := s.embedder.GenerateEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %v", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding generated for question")
	}
	queryVector := vectors[0]

	topK := s.topK
	if req.TopK > 0 {
		topK = req.TopK
	}
	useHybrid := true
	if req.UseHybridSearch != nil {
		useHybrid = *req.UseHybridSearch
	}

	var chunks []types.RetrievedChunk
	if useHybrid {
		chunks, err = s.store.HybridSearch(ctx, question, queryVector, topK, req.Filters)
	} else {
		chunks, err = s.store.VectorSearch(ctx, queryVector, topK, req.Filters)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %v", err)
	}

	if len(chunks) == 0 {
		log.Printf("No relevant chunks found for question")
		return &types.AskResponse{
			Question:        question,
			Answer:          noAnswerFallback,
			Sources:         []types.Source{},
			RetrievedChunks: 0,
		}, nil
	}

	temperature := s.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := s.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	log.Printf("Generating answer from %d chunks", len(chunks))
	completion, sources, err := s.chatService.GenerateAnswer(ctx, question, chunks, req.SystemPrompt, temperature, maxTokens)
	if err != nil {
		return nil, err
	}

	searchType := "vector"
	if useHybrid {
		searchType = "hybrid"
	}
	usage := completion.Usage
	return &types.AskResponse{
		Question:        question,
		Answer:          completion.Content,
		Model:           completion.Model,
		Usage:           &usage,
		Sources:         sources,
		RetrievedChunks: len(chunks),
		SearchType:      searchType,
	}, nil
}

// SearchChunks retrieves relevant chunks without generating an answer.
// Retrieval is always vector-only here.
func (s *RAGService) SearchChunks(ctx context.Context, req types.SearchRequest) (*types.SearchChunksResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.New("question must not be empty")
	}
	log.Printf("Retrieving chunks for: %s", question)

	vectors, err := s.embedder.GenerateEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %v", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding generated for question")
	}

	topK := s.topK
	if req.TopK > 0 {
		topK = req.TopK
	}
	chunks, err := s.store.VectorSearch(ctx, vectors[0], topK, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge base: %v", err)
	}
	if chunks == nil {
		chunks = []types.RetrievedChunk{}
	}

	return &types.SearchChunksResponse{
		Question: question,
		Chunks:   chunks,
		Count:    len(chunks),
	}, nil
}
