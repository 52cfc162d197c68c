package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	lifecycleRepo "auditcore/internal/domain/repositories/lifecycle"
	"auditcore/internal/repository/postgres"
)

// PostgresWorkflowRepository implements the WorkflowRepository interface.
// A partial unique index on (document_id) WHERE status = 'in_progress'
// enforces at most one active workflow per document at the storage layer.
type PostgresWorkflowRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(config *postgres.RepositoryConfig) lifecycleRepo.WorkflowRepository {
	return &PostgresWorkflowRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create persists a new workflow instance
func (r *PostgresWorkflowRepository) Create(ctx context.Context, w *models.DocumentWorkflow) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, template_id, current_step, status, started_at, completed_at, timeout_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING started_at
	`, r.tables.Workflows)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		w.ID,
		w.DocumentID,
		w.TemplateID,
		w.CurrentStep,
		w.Status,
		w.StartedAt,
		w.CompletedAt,
		w.TimeoutAt,
	).Scan(&w.StartedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already has an active workflow", w.DocumentID),
				ResourceType: "workflow",
				ResourceID:   w.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", w.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("create workflow: %w", err)
	}

	return nil
}

const workflowColumns = "id, document_id, template_id, current_step, status, started_at, completed_at, timeout_at"

func scanWorkflow(row interface{ Scan(...interface{}) error }, w *models.DocumentWorkflow) error {
	return row.Scan(
		&w.ID,
		&w.DocumentID,
		&w.TemplateID,
		&w.CurrentStep,
		&w.Status,
		&w.StartedAt,
		&w.CompletedAt,
		&w.TimeoutAt,
	)
}

// ListByDocument retrieves all workflows for a document, most recently started first
func (r *PostgresWorkflowRepository) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentWorkflow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE document_id = $1
		ORDER BY started_at DESC
	`, workflowColumns, r.tables.Workflows)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []models.DocumentWorkflow
	for rows.Next() {
		var w models.DocumentWorkflow
		if err := scanWorkflow(rows, &w); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, w)
	}

	return workflows, rows.Err()
}

// GetByID retrieves one workflow without history
func (r *PostgresWorkflowRepository) GetByID(ctx context.Context, workflowID string) (*models.DocumentWorkflow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, workflowColumns, r.tables.Workflows)

	var w models.DocumentWorkflow
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanWorkflow(executor.QueryRow(ctx, query, workflowID), &w); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workflow %s: %w", workflowID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	return &w, nil
}

// ListHistory retrieves the execution history in ascending performed_at order
func (r *PostgresWorkflowRepository) ListHistory(ctx context.Context, workflowID string) ([]models.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, workflow_id, step_number, action, performed_by, performed_at, notes, status
		FROM %s
		WHERE workflow_id = $1
		ORDER BY performed_at ASC
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(
			&e.ID,
			&e.WorkflowID,
			&e.StepNumber,
			&e.Action,
			&e.PerformedBy,
			&e.PerformedAt,
			&e.Notes,
			&e.Status,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// AppendHistory persists one immutable history entry
func (r *PostgresWorkflowRepository) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workflow_id, step_number, action, performed_by, performed_at, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.History)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		entry.ID,
		entry.WorkflowID,
		entry.StepNumber,
		entry.Action,
		entry.PerformedBy,
		entry.PerformedAt,
		entry.Notes,
		entry.Status,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("workflow %s: %w", entry.WorkflowID, domain.ErrNotFound)
		}
		return fmt.Errorf("append history: %w", err)
	}

	return nil
}

// ApplyTransition updates the workflow row guarded by the observed state.
// Zero rows touched means a concurrent actor moved the workflow first; the
// caller re-reads and raises the typed failure.
func (r *PostgresWorkflowRepository) ApplyTransition(ctx context.Context, workflowID string, fromStep int, t models.Transition) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET current_step = $1, status = $2, completed_at = $3
		WHERE id = $4 AND status = $5 AND current_step = $6
	`, r.tables.Workflows)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		t.ToStep,
		t.Status,
		t.CompletedAt,
		workflowID,
		models.WorkflowInProgress,
		fromStep,
	)
	if err != nil {
		return false, fmt.Errorf("apply transition: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkTimedOut expires every in-progress workflow past its deadline
func (r *PostgresWorkflowRepository) MarkTimedOut(ctx context.Context, now time.Time) ([]string, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, completed_at = $2
		WHERE status = $3 AND timeout_at IS NOT NULL AND timeout_at <= $2
		RETURNING id
	`, r.tables.Workflows)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, models.WorkflowTimedOut, now, models.WorkflowInProgress)
	if err != nil {
		return nil, fmt.Errorf("mark timed out: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan timed-out id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
