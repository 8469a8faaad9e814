package domain

import "time"

// MinContentLength is the threshold below which extracted text is treated as
// "no content". Downstream generation is never attempted on shorter text.
const MinContentLength = 10

// ContentCategory is the keyword-detected document class used by the offline
// content generator.
type ContentCategory string

const (
	CategoryStudyNotes ContentCategory = "study_notes"
	CategoryLegal      ContentCategory = "legal"
	CategoryGeneric    ContentCategory = "generic"
)

// Citation is a passthrough of the upstream citation shape. Fields may be
// absent and are defensively defaulted when mapped to response sources.
type Citation struct {
	Text     string  `json:"text"`
	Content  string  `json:"content,omitempty"`
	Score    float64 `json:"score"`
	Page     *int    `json:"page"`
	Position *int    `json:"position"`
}

// Answer is a generated answer reassembled from the upstream token stream.
type Answer struct {
	Text      string
	Citations []Citation
}

// Message roles for the client-held chat session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the question-answer exchange. The server never
// stores these; the caller keeps them in its own session.
type ChatMessage struct {
	Role       string     `json:"role"`
	Text       string     `json:"text"`
	Timestamp  time.Time  `json:"timestamp"`
	Confidence *float64   `json:"confidence,omitempty"`
	Sources    []Citation `json:"sources,omitempty"`
}
