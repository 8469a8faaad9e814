package port

import (
	"context"

	"studysphere/internal/domain"
)

// UpstreamClient is the port to the document-intelligence upstream. The rag
// adapter implements it; services receive a nil client when the upstream is
// not configured and must degrade to simulated content.
type UpstreamClient interface {
	// CreateResource uploads a file into the knowledge box and returns the
	// upstream resource identifier.
	CreateResource(ctx context.Context, payload domain.UploadPayload) (*domain.UploadReceipt, error)

	// FetchExtractedText retrieves the resource and locates its extracted
	// text. An empty string means the resource exists but exposes no text
	// yet; that is not an error.
	FetchExtractedText(ctx context.Context, documentID string) (string, error)

	// Search runs a knowledge-box search. Filters may be nil.
	Search(ctx context.Context, query string, filters []string) (*domain.SearchOutcome, error)

	// Ask runs the generative endpoint and reassembles its streamed answer.
	Ask(ctx context.Context, query string) (*domain.Answer, error)
}
