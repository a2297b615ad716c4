package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AskResponse is the grounded answer with its citations.
type AskResponse struct {
	Question        string      `json:"question"`
	Answer          string      `json:"answer"`
	Model           string      `json:"model,omitempty"`
	Usage           *TokenUsage `json:"usage,omitempty"`
	Sources         []Source    `json:"sources"`
	RetrievedChunks int         `json:"retrieved_chunks"`
	SearchType      string      `json:"search_type,omitempty"`
}

// SearchChunksResponse returns raw retrieved chunks with scores, without
// answer generation.
type SearchChunksResponse struct {
	Question string           `json:"question"`
	Chunks   []RetrievedChunk `json:"chunks"`
	Count    int              `json:"count"`
}

// ConfigResponse exposes the non-secret runtime configuration.
type ConfigResponse struct {
	Spaces         []string `json:"spaces"`
	ClassName      string   `json:"class_name"`
	ChunkSize      int      `json:"chunk_size"`
	ChunkOverlap   int      `json:"chunk_overlap"`
	TopK           int      `json:"top_k"`
	EmbeddingModel string   `json:"embedding_model"`
	ChatProvider   string   `json:"chat_provider"`
	ChatModel      string   `json:"chat_model"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
