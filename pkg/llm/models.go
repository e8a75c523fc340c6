package llm

// ModelList is the response of the model listing endpoint. Its only use
// here is as a credential probe: a successful list means the key works.
type ModelList struct {
	Object string  `json:"object"` // "list"
	Data   []Model `json:"data"`
}

// Model describes one available model.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"` // "model"
	OwnedBy string `json:"owned_by,omitempty"`
}
