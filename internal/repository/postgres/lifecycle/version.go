package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	"auditcore/internal/repository/postgres"
)

// PostgresVersionRepository implements the VersionRepository interface.
// The table carries a unique (document_id, version_number) index; a
// duplicate there means two writers raced past serialization, surfaced to
// the caller as a conflict.
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *postgres.RepositoryConfig) lifecycleRepo.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new version
func (r *PostgresVersionRepository) Create(ctx context.Context, v *models.DocumentVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, version_number, content, file_reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		v.ID,
		v.DocumentID,
		v.VersionNumber,
		v.Content,
		v.FileReference,
		v.Notes,
		v.CreatedBy,
		v.CreatedAt,
	).Scan(&v.CreatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("version %d already exists for document %s", v.VersionNumber, v.DocumentID),
				ResourceType: "version",
				ResourceID:   v.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", v.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// ListByDocument retrieves all versions of a document, newest first
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, content, file_reference, notes, created_by, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, r.tables.Versions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.DocumentVersion
	for rows.Next() {
		var v models.DocumentVersion
		if err := rows.Scan(
			&v.ID,
			&v.DocumentID,
			&v.VersionNumber,
			&v.Content,
			&v.FileReference,
			&v.Notes,
			&v.CreatedBy,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

// GetByID retrieves one version, scoped to its document
func (r *PostgresVersionRepository) GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, version_number, content, file_reference, notes, created_by, created_at
		FROM %s
		WHERE id = $1 AND document_id = $2
	`, r.tables.Versions)

	var v models.DocumentVersion
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, versionID, documentID).Scan(
		&v.ID,
		&v.DocumentID,
		&v.VersionNumber,
		&v.Content,
		&v.FileReference,
		&v.Notes,
		&v.CreatedBy,
		&v.CreatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &v, nil
}

// MaxVersionNumber returns the highest assigned version number, or 0
func (r *PostgresVersionRepository) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version_number), 0)
		FROM %s
		WHERE document_id = $1
	`, r.tables.Versions)

	var max int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, documentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max version number: %w", err)
	}

	return max, nil
}
