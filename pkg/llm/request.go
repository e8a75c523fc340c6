package llm

// ChatRequest represents a chat completion request (OpenAI-compatible).
type ChatRequest struct {
	Model    string    `json:"model"`            // Model name (e.g., "gpt-4o-mini")
	Messages []Message `json:"messages"`         // Conversation history, prompt order
	Stream   bool      `json:"stream,omitempty"` // Whether to stream responses

	// Generation options
	Temperature *float64 `json:"temperature,omitempty"` // Sampling temperature (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty"`       // Nucleus sampling threshold
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
	Seed        *int     `json:"seed,omitempty"`        // Random seed for reproducibility
	Stop        []string `json:"stop,omitempty"`        // Stop generation at these sequences
}
