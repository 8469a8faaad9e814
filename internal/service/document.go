package service

import (
	"context"
	"fmt"

	"studysphere/internal/config"
	"studysphere/internal/domain"
	"studysphere/internal/dto"
	"studysphere/internal/logger"
	"studysphere/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadInput carries a fully-read uploaded file. The handler is responsible
// for closing the multipart stream; by the time the service sees the upload
// the bytes are already in memory.
type UploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// DocumentService handles document uploads into the knowledge box.
type DocumentService interface {
	Upload(ctx context.Context, input UploadInput) (*dto.UploadResponse, error)
}

type documentService struct {
	upstream port.UpstreamClient
	cfg      *config.Config
}

// NewDocumentService creates a DocumentService. A nil upstream client means
// the upstream is not configured and every upload is simulated.
func NewDocumentService(upstream port.UpstreamClient, cfg *config.Config) DocumentService {
	return &documentService{upstream: upstream, cfg: cfg}
}

// Upload stores the file upstream and returns the resource id the caller
// should use for later summarize/quiz/question calls. Missing configuration
// silently switches to simulation; authentication failures degrade to a
// simulated success. Other upstream failures are hard errors.
func (s *documentService) Upload(ctx context.Context, input UploadInput) (*dto.UploadResponse, error) {
	documentID := uuid.NewString()
	log := logger.Get()

	if s.upstream == nil || !s.cfg.Upstream.Configured() {
		log.Warn("Upstream credential or knowledge box not set, simulating upload",
			zap.String("document_id", documentID),
		)
		return &dto.UploadResponse{
			DocumentID: documentID,
			Message:    "PDF uploaded successfully (simulated)",
		}, nil
	}

	title := input.Filename
	if title == "" {
		title = fmt.Sprintf("Document %s", documentID)
	}

	payload := domain.UploadPayload{
		Slug:        fmt.Sprintf("document-%s", documentID),
		Title:       title,
		Summary:     fmt.Sprintf("Uploaded PDF: %s", input.Filename),
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Content:     input.Content,
	}

	receipt, err := s.upstream.CreateResource(ctx, payload)
	if err != nil {
		if isAuthFailure(err) {
			log.Warn("Upstream authentication failed, falling back to simulated upload",
				zap.String("document_id", documentID),
				zap.Error(err),
			)
			return &dto.UploadResponse{
				DocumentID: documentID,
				Title:      input.Filename,
				Message:    "PDF uploaded successfully (offline mode - upstream unavailable)",
				Mode:       "simulation",
			}, nil
		}
		return nil, domain.NewUpstreamError("Failed to upload PDF to the document service", err)
	}

	actualID := receipt.UUID
	if actualID == "" {
		actualID = documentID
	}
	log.Info("Uploaded document to knowledge box",
		zap.String("document_id", actualID),
		zap.String("title", title),
		zap.Int("size", len(input.Content)),
	)

	return &dto.UploadResponse{
		DocumentID:     actualID,
		KnowledgeBoxID: s.cfg.Upstream.KnowledgeBox,
		Title:          title,
		Message:        "PDF uploaded and processed successfully",
	}, nil
}
