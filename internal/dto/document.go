package dto

import (
	"time"

	"studysphere/internal/domain"
)

// UploadResponse is returned by POST /api/upload.
type UploadResponse struct {
	DocumentID     string `json:"document_id"`
	KnowledgeBoxID string `json:"knowledge_box_id,omitempty"`
	Title          string `json:"title,omitempty"`
	Message        string `json:"message"`
	Mode           string `json:"mode,omitempty"`
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	DocumentID string `json:"document_id"`
}

// SummarizeResponse is returned by POST /api/summarize. Source identifies
// which cascade strategy produced the summary; Mode is "offline" for
// degraded responses.
type SummarizeResponse struct {
	Summary          string   `json:"summary"`
	DocumentID       string   `json:"document_id"`
	KnowledgeBoxID   string   `json:"knowledge_box_id,omitempty"`
	Source           string   `json:"source"`
	ProcessingStatus string   `json:"processing_status"`
	ContentLength    int      `json:"content_length,omitempty"`
	Citations        []Source `json:"citations,omitempty"`
	Mode             string   `json:"mode,omitempty"`
}

// QuizRequest is the body of POST /api/quiz.
type QuizRequest struct {
	DocumentID    string `json:"document_id"`
	QuestionCount int    `json:"question_count"`
}

// QuizResponse is returned by POST /api/quiz.
type QuizResponse struct {
	Quiz             []domain.QuizQuestion `json:"quiz"`
	TotalQuestions   int                   `json:"total_questions"`
	Source           string                `json:"source"`
	DocumentID       string                `json:"document_id"`
	KnowledgeBoxID   string                `json:"knowledge_box_id,omitempty"`
	DocumentInfo     *domain.DocumentInfo  `json:"document_info,omitempty"`
	ExtractionMethod string                `json:"extraction_method,omitempty"`
	Mode             string                `json:"mode,omitempty"`
}

// QuestionRequest is the body of POST /api/question.
type QuestionRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

// Source is a citation mapped into the response, with absent upstream fields
// defensively defaulted.
type Source struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Page     *int    `json:"page"`
	Position *int    `json:"position"`
}

// QuestionResponse is returned by POST /api/question.
type QuestionResponse struct {
	Answer         string    `json:"answer"`
	Question       string    `json:"question"`
	DocumentID     string    `json:"document_id"`
	KnowledgeBoxID string    `json:"knowledge_box_id,omitempty"`
	Sources        []Source  `json:"sources"`
	Confidence     float64   `json:"confidence"`
	Source         string    `json:"source,omitempty"`
	Mode           string    `json:"mode,omitempty"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// ErrorResponse represents an error in the API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
