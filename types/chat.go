package types

// TokenUsage mirrors the token accounting returned by chat providers.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion is the normalized result of one chat-provider call.
type ChatCompletion struct {
	Content string     `json:"content"`
	Model   string     `json:"model"`
	Usage   TokenUsage `json:"usage"`
}

// Source is one cited document, deduplicated by URL in first-seen order.
type Source struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
	Source string `json:"source"`
}
