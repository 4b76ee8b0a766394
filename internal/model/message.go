package model

// Message roles. Exactly two variants appear in a conversation log; the
// system frame is constructed per call and never persisted.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one turn in a suggestion's refinement conversation.
// Messages are immutable once appended; edits replace the whole log.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment references an externally stored file. The engine never inspects
// file bytes, only this metadata.
type Attachment struct {
	URL  string `json:"url"`  // time-limited signed retrieval URL
	Name string `json:"name"` // display name
	Type string `json:"type"` // MIME type
}
