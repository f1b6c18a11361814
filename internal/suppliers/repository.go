package suppliers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/pkg/pagination"
	"github.com/vantagesource/qualis/pkg/query"
	"github.com/vantagesource/qualis/pkg/repository"
	"github.com/vantagesource/qualis/pkg/storage"
)

const defaultPipelineStatus = "onboarding"

const supplierColumns = `id, name, country, contact_email, certification_status,
	pipeline_status, latest_audit_id, certified_at, created_at, updated_at`

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a supplier repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "suppliers"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Supplier], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Country")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count suppliers: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	results, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSupplier)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}

	result := pagination.NewPageResult(results, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, r.db, q, args, scanSupplier)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Supplier, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, ErrInvalidName
	}

	pipelineStatus := cmd.PipelineStatus
	if pipelineStatus == "" {
		pipelineStatus = defaultPipelineStatus
	}

	q := fmt.Sprintf(`
		INSERT INTO suppliers(id, name, country, contact_email, certification_status, pipeline_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, supplierColumns)

	insertArgs := []any{
		uuid.New(),
		strings.TrimSpace(cmd.Name),
		cmd.Country,
		cmd.ContactEmail,
		CertificationUncertified,
		pipelineStatus,
	}

	s, err := repository.QueryOne(ctx, r.db, q, insertArgs, scanSupplier)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("supplier created", "id", s.ID, "name", s.Name)
	return &s, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Supplier, error) {
	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		return nil, ErrInvalidName
	}

	q := fmt.Sprintf(`
		UPDATE suppliers SET
			name = COALESCE($2, name),
			country = COALESCE($3, country),
			contact_email = COALESCE($4, contact_email),
			pipeline_status = COALESCE($5, pipeline_status),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, supplierColumns)

	updateArgs := []any{id, cmd.Name, cmd.Country, cmd.ContactEmail, cmd.PipelineStatus}

	s, err := repository.QueryOne(ctx, r.db, q, updateArgs, scanSupplier)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &s, nil
}

func (r *repo) SetCertification(
	ctx context.Context,
	id uuid.UUID,
	status CertificationStatus,
	auditID uuid.UUID,
) (*Supplier, error) {
	q := fmt.Sprintf(`
		UPDATE suppliers SET
			certification_status = $2,
			latest_audit_id = $3,
			certified_at = CASE
				WHEN certified_at IS NULL AND $4 THEN now()
				ELSE certified_at
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, supplierColumns)

	updateArgs := []any{id, status, auditID, status.Certified()}

	s, err := repository.QueryOne(ctx, r.db, q, updateArgs, scanSupplier)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"supplier certification updated",
		"id", s.ID,
		"status", s.CertificationStatus,
		"audit_id", auditID,
	)
	return &s, nil
}

// Delete removes a supplier and cascades to its audits. latest_audit_id is
// nulled first so the audit rows can go without tripping the back-reference
// constraint; blob cleanup happens after the transaction commits.
func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}

	keys, err := r.collectDocumentKeys(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(
			ctx,
			"UPDATE suppliers SET latest_audit_id = NULL WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear latest audit reference: %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			"DELETE FROM audits WHERE supplier_id = $1",
			id,
		); err != nil {
			return struct{}{}, fmt.Errorf("delete supplier audits: %w", err)
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM suppliers WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	for _, key := range keys {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn(
				"blob delete failed after DB delete",
				"key", key,
				"error", delErr,
			)
		}
	}

	r.logger.Info("supplier deleted", "id", id, "audit_documents", len(keys))
	return nil
}

// collectDocumentKeys gathers the storage keys of the supplier's audit
// documents. Remote URLs and local filesystem references are not ours to
// delete and are skipped.
func (r *repo) collectDocumentKeys(ctx context.Context, id uuid.UUID) ([]string, error) {
	rows, err := r.db.QueryContext(
		ctx,
		"SELECT document_ref FROM audits WHERE supplier_id = $1",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("collect audit documents: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan audit document: %w", err)
		}

		if strings.HasPrefix(ref, "http://") ||
			strings.HasPrefix(ref, "https://") ||
			strings.HasPrefix(ref, "/") {
			continue
		}
		keys = append(keys, ref)
	}

	return keys, rows.Err()
}
