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
	"auditcore/internal/domain/repositories"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	lifecycleSvc "auditcore/internal/domain/services/lifecycle"
)

// versionStore implements the VersionStore interface
type versionStore struct {
	docRepo     lifecycleRepo.DocumentRepository
	versionRepo lifecycleRepo.VersionRepository
	txManager   repositories.TransactionManager
	sessions    *SessionCache
	createLocks *keyedMutex
	logger      *slog.Logger
}

// NewVersionStore creates a new version store service
func NewVersionStore(
	docRepo lifecycleRepo.DocumentRepository,
	versionRepo lifecycleRepo.VersionRepository,
	txManager repositories.TransactionManager,
	sessions *SessionCache,
	logger *slog.Logger,
) lifecycleSvc.VersionStore {
	return &versionStore{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		sessions:    sessions,
		createLocks: newKeyedMutex(),
		logger:      logger,
	}
}

// ListVersions retrieves a document's versions newest first, serving from
// the session cache when one is live.
func (s *versionStore) ListVersions(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	if versions, ok := s.sessions.Versions(documentID); ok {
		return versions, nil
	}

	// Verify the document exists so an unknown ID is a 404, not an
	// empty list.
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s.sessions.Store(documentID, versions)
	return versions, nil
}

func validateCreateVersion(req *lifecycleSvc.CreateVersionRequest) error {
	hasContent := req.Content != nil && *req.Content != ""
	hasFile := len(req.FileReference) > 0 && string(req.FileReference) != "null"
	hasNotes := req.Notes != nil && *req.Notes != ""
	if !hasContent && !hasFile && !hasNotes {
		return fmt.Errorf("%w: a version needs content, a file reference or notes", domain.ErrValidation)
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.CreatedBy, validation.Required),
		validation.Field(&req.Content, validation.Length(0, maxContentLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

const maxContentLength = 1 << 20

// CreateVersion appends a new version. The per-document lock plus the
// transaction around read-max-then-insert keeps version numbers strictly
// increasing with no duplicates under concurrent submission; the unique
// index is the backstop if another writer bypasses the lock.
func (s *versionStore) CreateVersion(ctx context.Context, req *lifecycleSvc.CreateVersionRequest) (*models.DocumentVersion, error) {
	if err := validateCreateVersion(req); err != nil {
		return nil, err
	}

	if _, err := s.docRepo.GetByID(ctx, req.DocumentID); err != nil {
		return nil, err
	}

	unlock := s.createLocks.Lock(req.DocumentID)
	defer unlock()

	// A JSON null in the body means "no file", not a file reference.
	fileRef := req.FileReference
	if string(fileRef) == "null" {
		fileRef = nil
	}

	version := &models.DocumentVersion{
		ID:            uuid.New().String(),
		DocumentID:    req.DocumentID,
		Content:       req.Content,
		FileReference: fileRef,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		max, err := s.versionRepo.MaxVersionNumber(txCtx, req.DocumentID)
		if err != nil {
			return err
		}
		version.VersionNumber = max + 1
		return s.versionRepo.Create(txCtx, version)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("version created",
		"document_id", req.DocumentID,
		"version_id", version.ID,
		"version_number", version.VersionNumber,
	)

	// Drop the session so the next read reflects this write.
	s.sessions.Invalidate(req.DocumentID)

	return version, nil
}

// SelectVersion moves the navigation pointer to the given version
func (s *versionStore) SelectVersion(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	version, err := s.versionRepo.GetByID(ctx, documentID, versionID)
	if err != nil {
		return nil, err
	}

	s.sessions.Select(documentID, version.ID)
	return version, nil
}

// GetVersion retrieves a version without moving the navigation pointer.
// Read-only lookups (downloads, content fetches) go through here.
func (s *versionStore) GetVersion(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	return s.versionRepo.GetByID(ctx, documentID, versionID)
}

// Navigate moves the pointer one version older (prev) or newer (next).
// Past either boundary the current selection comes back unchanged.
func (s *versionStore) Navigate(ctx context.Context, documentID string, dir lifecycleSvc.NavigationDirection, fromVersionID string) (*models.DocumentVersion, error) {
	versions, err := s.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}

	from := -1
	for i := range versions {
		if versions[i].ID == fromVersionID {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, fmt.Errorf("version %s: %w", fromVersionID, domain.ErrNotFound)
	}

	// The list is newest first, so prev (toward lower numbers) walks
	// forward through the slice and next walks backward.
	target := from
	switch dir {
	case lifecycleSvc.NavigatePrev:
		if from < len(versions)-1 {
			target = from + 1
		}
	case lifecycleSvc.NavigateNext:
		if from > 0 {
			target = from - 1
		}
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrValidation, dir)
	}

	selected := versions[target]
	s.sessions.Select(documentID, selected.ID)
	return &selected, nil
}

// FetchPayload resolves the retrievable content of a version
func (s *versionStore) FetchPayload(ctx context.Context, documentID, versionID string) (models.Payload, error) {
	version, err := s.versionRepo.GetByID(ctx, documentID, versionID)
	if err != nil {
		return nil, err
	}

	payload, err := models.DecodeVersionPayload(version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %s has no retrievable payload", domain.ErrNotFound, versionID)
	}
	return payload, nil
}
