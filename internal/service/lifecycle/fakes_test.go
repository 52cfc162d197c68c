package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"auditcore/internal/domain"
	models "auditcore/internal/domain/models/lifecycle"
	"auditcore/internal/domain/repositories"
	"auditcore/internal/workflowdef"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTemplates(t interface{ Fatalf(string, ...any) }) *workflowdef.Registry {
	registry, err := workflowdef.NewRegistry()
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	return registry
}

func strPtr(s string) *string {
	return &s
}

// fakeDocumentRepo is an in-memory DocumentRepository.
type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]models.Document
}

func newFakeDocumentRepo(docs ...models.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{docs: make(map[string]models.Document)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.docs[doc.ID]; exists {
		return &domain.ConflictError{Message: "document already exists", ResourceType: "document", ResourceID: doc.ID}
	}
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r *fakeDocumentRepo) List(ctx context.Context) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeVersionRepo is an in-memory VersionRepository. Versions are stored in
// insertion order and listed newest first, like the real repository.
type fakeVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]models.DocumentVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string][]models.DocumentVersion)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, v *models.DocumentVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.versions[v.DocumentID] {
		if existing.VersionNumber == v.VersionNumber {
			return &domain.ConflictError{Message: "duplicate version number", ResourceType: "version", ResourceID: v.ID}
		}
	}
	r.versions[v.DocumentID] = append(r.versions[v.DocumentID], *v)
	return nil
}

func (r *fakeVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.versions[documentID]
	out := make([]models.DocumentVersion, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, documentID, versionID string) (*models.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions[documentID] {
		if v.ID == versionID {
			v := v
			return &v, nil
		}
	}
	return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
}

func (r *fakeVersionRepo) MaxVersionNumber(ctx context.Context, documentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, v := range r.versions[documentID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

// fakeWorkflowRepo is an in-memory WorkflowRepository enforcing the same
// single-active-workflow guarantee as the partial unique index.
type fakeWorkflowRepo struct {
	mu        sync.Mutex
	workflows map[string]*models.DocumentWorkflow
	byDoc     map[string][]string // insertion order per document
	history   map[string][]models.HistoryEntry

	// beforeApply, when set, runs once at the top of the next
	// ApplyTransition call. Tests use it to slip a concurrent write in
	// between a caller's read and its guarded update.
	beforeApply func()
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{
		workflows: make(map[string]*models.DocumentWorkflow),
		byDoc:     make(map[string][]string),
		history:   make(map[string][]models.HistoryEntry),
	}
}

func (r *fakeWorkflowRepo) put(w models.DocumentWorkflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[w.ID] = &w
	r.byDoc[w.DocumentID] = append(r.byDoc[w.DocumentID], w.ID)
}

func (r *fakeWorkflowRepo) Create(ctx context.Context, w *models.DocumentWorkflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.byDoc[w.DocumentID] {
		if r.workflows[id].Status == models.WorkflowInProgress {
			return &domain.ConflictError{Message: "document already has an active workflow", ResourceType: "workflow", ResourceID: id}
		}
	}
	stored := *w
	r.workflows[w.ID] = &stored
	r.byDoc[w.DocumentID] = append(r.byDoc[w.DocumentID], w.ID)
	return nil
}

func (r *fakeWorkflowRepo) ListByDocument(ctx context.Context, documentID string) ([]models.DocumentWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byDoc[documentID]
	out := make([]models.DocumentWorkflow, 0, len(ids))
	// Most recently started first.
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, *r.workflows[ids[i]])
	}
	return out, nil
}

func (r *fakeWorkflowRepo) GetByID(ctx context.Context, workflowID string) (*models.DocumentWorkflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, domain.ErrNotFound)
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWorkflowRepo) ListHistory(ctx context.Context, workflowID string) ([]models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.history[workflowID]
	out := make([]models.HistoryEntry, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *fakeWorkflowRepo) AppendHistory(ctx context.Context, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[entry.WorkflowID] = append(r.history[entry.WorkflowID], *entry)
	return nil
}

func (r *fakeWorkflowRepo) ApplyTransition(ctx context.Context, workflowID string, fromStep int, t models.Transition) (bool, error) {
	if hook := r.beforeApply; hook != nil {
		r.beforeApply = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[workflowID]
	if !ok {
		return false, nil
	}
	if w.Status != models.WorkflowInProgress || w.CurrentStep != fromStep {
		return false, nil
	}
	w.CurrentStep = t.ToStep
	w.Status = t.Status
	w.CompletedAt = t.CompletedAt
	return true, nil
}

func (r *fakeWorkflowRepo) MarkTimedOut(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, w := range r.workflows {
		if w.Status == models.WorkflowInProgress && w.TimeoutAt != nil && !now.Before(*w.TimeoutAt) {
			w.Status = models.WorkflowTimedOut
			w.CompletedAt = &now
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeTxManager runs the unit of work directly; the fakes have no real
// transactions to roll back.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func (r *fakeWorkflowRepo) snapshotHistory() map[string][]models.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]models.HistoryEntry, len(r.history))
	for id, entries := range r.history {
		copied := make([]models.HistoryEntry, len(entries))
		copy(copied, entries)
		out[id] = copied
	}
	return out
}

func (r *fakeWorkflowRepo) restoreHistory(h map[string][]models.HistoryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = h
}

// rollbackTxManager simulates transaction rollback over the workflow repo:
// when the unit of work fails, history appended inside it is discarded. A
// failed ApplyTransition writes nothing, so history is the only state a
// failed unit of work can leave behind.
type rollbackTxManager struct {
	repo *fakeWorkflowRepo
}

func (m *rollbackTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	before := m.repo.snapshotHistory()
	if err := fn(ctx); err != nil {
		m.repo.restoreHistory(before)
		return err
	}
	return nil
}

// fakeEvents records published events.
type fakeEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (f *fakeEvents) Publish(evt models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}

func (f *fakeEvents) published() []models.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Event, len(f.events))
	copy(out, f.events)
	return out
}
