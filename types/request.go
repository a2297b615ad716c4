package types

// SearchFilter restricts retrieval to a partition of the index. It travels
// opaquely from the API through the answering service into the search store,
// which compiles it into a store-native where filter.
type SearchFilter struct {
	SpaceKey string   `json:"space_key,omitempty"`
	Source   string   `json:"source,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// IsZero reports whether no filter criteria are set.
func (f *SearchFilter) IsZero() bool {
	return f == nil || (f.SpaceKey == "" && f.Source == "" && len(f.Tags) == 0)
}

// AskRequest is the body of POST /api/ask. Optional fields override the
// service defaults for this request only; pointers distinguish "not sent"
// from zero values.
type AskRequest struct {
	Question        string        `json:"question"`
	SystemPrompt    string        `json:"system_prompt,omitempty"`
	Filters         *SearchFilter `json:"filters,omitempty"`
	UseHybridSearch *bool         `json:"use_hybrid_search,omitempty"`
	TopK            int           `json:"top_k,omitempty"`
	Temperature     *float32      `json:"temperature,omitempty"`
	MaxTokens       int           `json:"max_tokens,omitempty"`
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Question string        `json:"question"`
	TopK     int           `json:"top_k,omitempty"`
	Filters  *SearchFilter `json:"filters,omitempty"`
}
