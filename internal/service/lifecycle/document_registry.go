package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
)

// documentRegistry implements the DocumentRegistry interface
type documentRegistry struct {
	docRepo lifecycleRepo.DocumentRepository
	logger  *slog.Logger
}

// NewDocumentRegistry creates a new document registry service
func NewDocumentRegistry(docRepo lifecycleRepo.DocumentRepository, logger *slog.Logger) lifecycleSvc.DocumentRegistry {
	return &documentRegistry{docRepo: docRepo, logger: logger}
}

func (s *documentRegistry) RegisterDocument(ctx context.Context, req *lifecycleSvc.RegisterDocumentRequest) (*models.Document, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 512)),
		validation.Field(&req.OwnerID, validation.Required),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := &models.Document{
		ID:        uuid.New().String(),
		Title:     req.Title,
		OwnerID:   req.OwnerID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document registered", "document_id", doc.ID, "owner_id", doc.OwnerID)
	return doc, nil
}

func (s *documentRegistry) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	return s.docRepo.GetByID(ctx, documentID)
}

func (s *documentRegistry) ListDocuments(ctx context.Context) ([]models.Document, error) {
	return s.docRepo.List(ctx)
}
