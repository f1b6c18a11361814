package audits

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/vantagesource/qualis/internal/extraction"
	"github.com/vantagesource/qualis/internal/scoring"
	"github.com/vantagesource/qualis/internal/suppliers"
	"github.com/vantagesource/qualis/pkg/pagination"
	"github.com/vantagesource/qualis/pkg/query"
	"github.com/vantagesource/qualis/pkg/repository"
	"github.com/vantagesource/qualis/pkg/storage"
	"github.com/vantagesource/qualis/pkg/tasks"
)

// minNotesLength is the minimum trimmed length for override notes.
const minNotesLength = 10

const auditColumns = `id, supplier_id, audit_type, document_ref, document_name, size_bytes,
	supplier_type, employee_count, factory_area_sqm, production_lines_count,
	markets_served, certifications, has_machinery_photos, positive_points,
	negative_points, products_verified, audit_date, inspector_name,
	extraction_status, extraction_error, extraction_raw_response, extracted_at,
	ai_classification, ai_classification_reason, manual_classification,
	classification_notes, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	suppliers  suppliers.System
	runner     *tasks.Runner
	runtime    *extraction.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an audit repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	sups suppliers.System,
	runner *tasks.Runner,
	runtime *extraction.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		suppliers:  sups,
		runner:     runner,
		runtime:    runtime,
		logger:     logger.With("system", "audits"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Audit], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentName", "InspectorName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audits: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	results, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAudit)
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}

	result := pagination.NewPageResult(results, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Audit, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAudit)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

// Upload validates the document, stores it, creates the audit in pending
// state, and schedules extraction. Validation failures never leave a partial
// audit row behind.
func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Audit, error) {
	if _, err := r.suppliers.Find(ctx, cmd.SupplierID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSupplierNotFound, cmd.SupplierID)
	}

	id := uuid.New()
	ref, name, size, err := r.materializeDocument(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO audits(id, supplier_id, audit_type, document_ref, document_name, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, auditColumns)

	insertArgs := []any{id, cmd.SupplierID, cmd.AuditType, ref, name, size}

	a, err := repository.QueryOne(ctx, r.db, q, insertArgs, scanAudit)
	if err != nil {
		if !isExternalRef(ref) {
			if delErr := r.storage.Delete(ctx, ref); delErr != nil {
				r.logger.Warn("compensating blob delete failed", "key", ref, "error", delErr)
			}
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"audit created",
		"id", a.ID,
		"supplier_id", a.SupplierID,
		"document", a.DocumentName,
	)

	if err := r.scheduleExtraction(ctx, a.ID); err != nil {
		return nil, err
	}

	return r.Find(ctx, a.ID)
}

// materializeDocument either validates+stores uploaded bytes or records a
// remote URL reference as-is. Remote documents are validated lazily when the
// rasterizer first reads them.
func (r *repo) materializeDocument(
	ctx context.Context,
	id uuid.UUID,
	cmd UploadCommand,
) (ref, name string, size int64, err error) {
	if cmd.DocumentURL != "" {
		if !isExternalRef(cmd.DocumentURL) {
			return "", "", 0, fmt.Errorf("%w: document url must be http(s)", ErrInvalidFile)
		}
		return cmd.DocumentURL, filepath.Base(cmd.DocumentURL), 0, nil
	}

	if strings.TrimSpace(cmd.Filename) == "" {
		return "", "", 0, fmt.Errorf("%w: filename required", ErrInvalidFile)
	}
	if len(cmd.Data) == 0 {
		return "", "", 0, fmt.Errorf("%w: empty document", ErrInvalidFile)
	}
	if cmd.ContentType != "application/pdf" {
		return "", "", 0, fmt.Errorf("%w: %s is not a PDF", ErrInvalidFile, cmd.ContentType)
	}

	if _, err := api.PageCount(bytes.NewReader(cmd.Data), nil); err != nil {
		return "", "", 0, fmt.Errorf("%w: unreadable PDF: %v", ErrInvalidFile, err)
	}

	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))
	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return "", "", 0, fmt.Errorf("upload document blob: %w", err)
	}

	return key, cmd.Filename, int64(len(cmd.Data)), nil
}

// Reprocess resets a terminal audit back to pending and schedules a new
// extraction run. Payload fields, the raw response, and the automated grade
// are cleared; a human override survives. A request against an audit already
// pending is coalesced; one against a processing audit is rejected.
func (r *repo) Reprocess(ctx context.Context, id uuid.UUID) (*Audit, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	switch a.ExtractionStatus {
	case StatusProcessing:
		return nil, fmt.Errorf("%w: audit %s", ErrProcessing, id)
	case StatusPending:
		return a, nil
	}

	q := fmt.Sprintf(`
		UPDATE audits SET
			supplier_type = NULL,
			employee_count = NULL,
			factory_area_sqm = NULL,
			production_lines_count = NULL,
			markets_served = NULL,
			certifications = NULL,
			has_machinery_photos = false,
			positive_points = NULL,
			negative_points = NULL,
			products_verified = NULL,
			audit_date = NULL,
			inspector_name = NULL,
			extraction_status = 'pending',
			extraction_error = NULL,
			extraction_raw_response = NULL,
			extracted_at = NULL,
			ai_classification = NULL,
			ai_classification_reason = NULL,
			updated_at = now()
		WHERE id = $1 AND extraction_status IN ('completed', 'failed')
		RETURNING %s`, auditColumns)

	if _, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanAudit); err != nil {
		return nil, repository.MapError(err, ErrProcessing, ErrDuplicate)
	}

	r.logger.Info("audit reprocess scheduled", "id", id)

	if err := r.scheduleExtraction(ctx, id); err != nil {
		return nil, err
	}

	return r.Find(ctx, id)
}

// scheduleExtraction claims the pending audit (the in-flight guard: the
// conditional update succeeds exactly once per scheduled run) and submits
// the background task. Submission failure marks the audit failed rather
// than leaving it stuck in processing.
func (r *repo) scheduleExtraction(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE audits SET extraction_status = 'processing', updated_at = now()
		 WHERE id = $1 AND extraction_status = 'pending'`,
		id,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: audit %s", ErrProcessing, id)
		}
		return fmt.Errorf("claim audit %s: %w", id, err)
	}

	err = r.runner.Submit("extract-audit", func(taskCtx context.Context) {
		r.runExtraction(taskCtx, id)
	})
	if err != nil {
		r.markFailed(ctx, id, fmt.Sprintf("extraction could not be scheduled: %v", err))
		return fmt.Errorf("schedule extraction: %w", err)
	}

	return nil
}

// runExtraction executes the pipeline for a claimed audit and records the
// terminal outcome. All failures land in extraction_status=failed with a
// stored diagnostic; nothing is silently swallowed into completed.
func (r *repo) runExtraction(ctx context.Context, id uuid.UUID) {
	a, err := r.Find(ctx, id)
	if err != nil {
		r.logger.Error("extraction run lost its audit", "id", id, "error", err)
		return
	}

	result, err := extraction.Execute(ctx, r.runtime, a.DocumentRef)
	if err != nil {
		r.logger.Error("extraction failed", "id", id, "error", err)
		r.markFailed(ctx, id, err.Error())
		return
	}

	updated, err := r.completeExtraction(ctx, id, result)
	if err != nil {
		r.logger.Error("persist extraction result", "id", id, "error", err)
		r.markFailed(ctx, id, fmt.Sprintf("persist extraction result: %v", err))
		return
	}

	if _, err := r.classify(ctx, updated); err != nil {
		r.logger.Error("automated classification failed", "id", id, "error", err)

		// The audit is completed but carries no grade yet; the supplier
		// still has to reflect that state instead of its stale certification.
		if syncErr := r.synchronize(ctx, updated); syncErr != nil {
			r.logger.Error("synchronize unclassified audit", "id", id, "error", syncErr)
		}
	}
}

func (r *repo) completeExtraction(
	ctx context.Context,
	id uuid.UUID,
	result *extraction.Result,
) (*Audit, error) {
	rec := result.Record

	markets, err := marshalColumn(rec.MarketsServed)
	if err != nil {
		return nil, err
	}
	certs, err := marshalColumn(rec.Certifications)
	if err != nil {
		return nil, err
	}
	positive, err := marshalColumn(rec.PositivePoints)
	if err != nil {
		return nil, err
	}
	negative, err := marshalColumn(rec.NegativePoints)
	if err != nil {
		return nil, err
	}
	products, err := marshalColumn(rec.ProductsVerified)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		UPDATE audits SET
			supplier_type = $2,
			employee_count = $3,
			factory_area_sqm = $4,
			production_lines_count = $5,
			markets_served = $6,
			certifications = $7,
			has_machinery_photos = $8,
			positive_points = $9,
			negative_points = $10,
			products_verified = $11,
			audit_date = $12,
			inspector_name = $13,
			extraction_status = 'completed',
			extraction_error = NULL,
			extraction_raw_response = $14,
			extracted_at = now(),
			updated_at = now()
		WHERE id = $1 AND extraction_status = 'processing'
		RETURNING %s`, auditColumns)

	updateArgs := []any{
		id,
		rec.SupplierType,
		rec.EmployeeCount,
		rec.FactoryAreaSqm,
		rec.ProductionLinesCount,
		markets,
		certs,
		rec.HasMachineryPhotos,
		positive,
		negative,
		products,
		rec.AuditDate,
		rec.InspectorName,
		result.RawResponse,
	}

	a, err := repository.QueryOne(ctx, r.db, q, updateArgs, scanAudit)
	if err != nil {
		return nil, repository.MapError(err, ErrInvalidTransition, ErrDuplicate)
	}

	r.logger.Info(
		"extraction completed",
		"id", a.ID,
		"pages", result.PageCount,
		"supplier_type", a.SupplierType,
	)
	return &a, nil
}

func (r *repo) markFailed(ctx context.Context, id uuid.UUID, message string) {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE audits SET
			extraction_status = 'failed',
			extraction_error = $2,
			updated_at = now()
		 WHERE id = $1 AND extraction_status = 'processing'`,
		id, message,
	)
	if err != nil {
		r.logger.Error("mark audit failed", "id", id, "error", err)
	}
}

// Classify forces automated classification of a completed audit. The scorer
// is pure, so re-invocation on the same payload is idempotent.
func (r *repo) Classify(ctx context.Context, id uuid.UUID) (*Audit, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.ExtractionStatus != StatusCompleted {
		return nil, fmt.Errorf("%w: audit %s is %s", ErrNotCompleted, id, a.ExtractionStatus)
	}

	return r.classify(ctx, a)
}

func (r *repo) classify(ctx context.Context, a *Audit) (*Audit, error) {
	grade, reason := scoring.Score(a.Record())

	q := fmt.Sprintf(`
		UPDATE audits SET
			ai_classification = $2,
			ai_classification_reason = $3,
			updated_at = now()
		WHERE id = $1 AND extraction_status = 'completed'
		RETURNING %s`, auditColumns)

	updated, err := repository.QueryOne(
		ctx, r.db, q,
		[]any{a.ID, grade, reason},
		scanAudit,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotCompleted, ErrDuplicate)
	}

	r.logger.Info(
		"audit classified",
		"id", updated.ID,
		"grade", grade,
		"reason", reason,
	)

	if err := r.synchronize(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// Override records a human classification. The automated grade and reason
// are left untouched for the audit trail; the supplier's certification is
// resynchronized against the new effective classification.
func (r *repo) Override(ctx context.Context, id uuid.UUID, cmd OverrideCommand) (*Audit, error) {
	grade, err := scoring.ParseGrade(cmd.Grade)
	if err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(cmd.Notes)
	if len(notes) < minNotesLength {
		return nil, fmt.Errorf(
			"%w: at least %d characters after trimming",
			ErrNotesRequired, minNotesLength,
		)
	}

	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.ExtractionStatus != StatusCompleted {
		return nil, fmt.Errorf("%w: audit %s is %s", ErrNotCompleted, id, a.ExtractionStatus)
	}

	q := fmt.Sprintf(`
		UPDATE audits SET
			manual_classification = $2,
			classification_notes = $3,
			updated_at = now()
		WHERE id = $1 AND extraction_status = 'completed'
		RETURNING %s`, auditColumns)

	updated, err := repository.QueryOne(
		ctx, r.db, q,
		[]any{id, grade, notes},
		scanAudit,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotCompleted, ErrDuplicate)
	}

	r.logger.Info(
		"classification overridden",
		"id", updated.ID,
		"grade", grade,
		"ai_grade", updated.AIClassification,
	)

	if err := r.synchronize(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// synchronize propagates the audit's effective classification into the
// supplier's denormalized certification state.
func (r *repo) synchronize(ctx context.Context, a *Audit) error {
	status := suppliers.CertificationForGrade(a.EffectiveClassification())

	if _, err := r.suppliers.SetCertification(ctx, a.SupplierID, status, a.ID); err != nil {
		return fmt.Errorf("synchronize supplier certification: %w", err)
	}
	return nil
}

// ResolveLatest returns the supplier's most recently created audit. It
// resolves by recency, never by the supplier's latest_audit_id pointer,
// which is only updated at classification time and can lag behind.
func (r *repo) ResolveLatest(ctx context.Context, supplierID uuid.UUID) (*Audit, error) {
	q := fmt.Sprintf(`
		SELECT %s FROM audits
		WHERE supplier_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, auditColumns)

	a, err := repository.QueryOne(ctx, r.db, q, []any{supplierID}, scanAudit)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

// ServeDocument resolves the document reference server-side so local paths
// and storage keys are never exposed to clients.
func (r *repo) ServeDocument(ctx context.Context, id uuid.UUID) (*storage.Object, string, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, "", err
	}

	obj, err := r.openDocument(ctx, a.DocumentRef)
	if err != nil {
		return nil, "", err
	}

	return obj, a.DocumentName, nil
}

func (r *repo) openDocument(ctx context.Context, ref string) (*storage.Object, error) {
	switch {
	case isExternalRef(ref):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch document: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: document at %s", ErrNotFound, ref)
		}

		return &storage.Object{
			Body:          resp.Body,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: resp.ContentLength,
		}, nil

	case strings.HasPrefix(ref, "/"):
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, ref)
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat document: %w", err)
		}

		return &storage.Object{
			Body:          f,
			ContentType:   "application/pdf",
			ContentLength: info.Size(),
		}, nil

	default:
		return r.storage.Download(ctx, ref)
	}
}

func isExternalRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("audits/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "document"
	}
	return url.PathEscape(name)
}
