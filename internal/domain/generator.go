package domain

import "context"

// AnswerGenerator produces free text from a prompt. The optional local LLM
// adapter implements it; the cascade uses it as a late strategy when the
// upstream generative endpoints yield nothing.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// UploadPayload is the resource-creation request sent to the upstream
// knowledge box. Content is the raw file body; the client encodes it.
type UploadPayload struct {
	Slug        string
	Title       string
	Summary     string
	Filename    string
	ContentType string
	Content     []byte
}

// UploadReceipt is what the upstream returns for a created resource.
type UploadReceipt struct {
	UUID string
}

// SearchOutcome is the normalized result of an upstream search call.
type SearchOutcome struct {
	AnswerText     string
	Paragraphs     []string
	ResourceTitles []string
	FulltextTotal  int
}
