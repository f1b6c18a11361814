package audits_test

import (
	"context"
	"database/sql/driver"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/vantagesource/qualis/internal/audits"
	"github.com/vantagesource/qualis/internal/extraction"
	"github.com/vantagesource/qualis/internal/scoring"
	"github.com/vantagesource/qualis/internal/suppliers"
	"github.com/vantagesource/qualis/pkg/lifecycle"
	"github.com/vantagesource/qualis/pkg/pagination"
	"github.com/vantagesource/qualis/pkg/storage"
	"github.com/vantagesource/qualis/pkg/tasks"
)

type nopStorage struct{}

func (nopStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func (nopStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	return nil
}

func (nopStorage) Download(ctx context.Context, key string) (*storage.Object, error) {
	return nil, storage.ErrNotFound
}

func (nopStorage) Delete(ctx context.Context, key string) error { return nil }

func (nopStorage) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

type nopSuppliers struct{}

func (nopSuppliers) Handler() *suppliers.Handler { return nil }

func (nopSuppliers) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters suppliers.Filters,
) (*pagination.PageResult[suppliers.Supplier], error) {
	return nil, nil
}

func (nopSuppliers) Find(ctx context.Context, id uuid.UUID) (*suppliers.Supplier, error) {
	return &suppliers.Supplier{ID: id}, nil
}

func (nopSuppliers) Create(ctx context.Context, cmd suppliers.CreateCommand) (*suppliers.Supplier, error) {
	return nil, nil
}

func (nopSuppliers) Update(ctx context.Context, id uuid.UUID, cmd suppliers.UpdateCommand) (*suppliers.Supplier, error) {
	return nil, nil
}

func (nopSuppliers) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (nopSuppliers) SetCertification(
	ctx context.Context,
	id uuid.UUID,
	status suppliers.CertificationStatus,
	auditID uuid.UUID,
) (*suppliers.Supplier, error) {
	return &suppliers.Supplier{ID: id, CertificationStatus: status}, nil
}

func newRepoSystem(t *testing.T) (audits.System, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := tasks.New(&tasks.Config{Workers: 1, QueueSize: 4, TaskTimeout: "30s"}, logger)

	system := audits.New(
		db,
		nopStorage{},
		nopSuppliers{},
		runner,
		&extraction.Runtime{Logger: logger},
		logger,
		pagination.Config{},
	)

	return system, mock
}

var auditRowColumns = []string{
	"id", "supplier_id", "audit_type", "document_ref", "document_name", "size_bytes",
	"supplier_type", "employee_count", "factory_area_sqm", "production_lines_count",
	"markets_served", "certifications", "has_machinery_photos", "positive_points",
	"negative_points", "products_verified", "audit_date", "inspector_name",
	"extraction_status", "extraction_error", "extraction_raw_response", "extracted_at",
	"ai_classification", "ai_classification_reason", "manual_classification",
	"classification_notes", "created_at", "updated_at",
}

// auditRow builds a row in the repository scan order. Payload and
// classification fields are provided by the caller; identity fields come
// from the arguments.
func auditRow(id, supplierID uuid.UUID, status string, fields map[string]any) *sqlmock.Rows {
	now := time.Now()
	values := map[string]any{
		"id":                       id.String(),
		"supplier_id":              supplierID.String(),
		"audit_type":               "factory_audit",
		"document_ref":             "audits/" + id.String() + "/report.pdf",
		"document_name":            "report.pdf",
		"size_bytes":               int64(2048),
		"supplier_type":            nil,
		"employee_count":           nil,
		"factory_area_sqm":         nil,
		"production_lines_count":   nil,
		"markets_served":           nil,
		"certifications":           nil,
		"has_machinery_photos":     false,
		"positive_points":          nil,
		"negative_points":          nil,
		"products_verified":        nil,
		"audit_date":               nil,
		"inspector_name":           nil,
		"extraction_status":        status,
		"extraction_error":         nil,
		"extraction_raw_response":  nil,
		"extracted_at":             nil,
		"ai_classification":        nil,
		"ai_classification_reason": nil,
		"manual_classification":    nil,
		"classification_notes":     nil,
		"created_at":               now,
		"updated_at":               now,
	}
	for k, v := range fields {
		values[k] = v
	}

	row := make([]driver.Value, 0, len(auditRowColumns))
	for _, col := range auditRowColumns {
		row = append(row, values[col])
	}

	return sqlmock.NewRows(auditRowColumns).AddRow(row...)
}

func TestReprocessPreservesManualClassification(t *testing.T) {
	system, mock := newRepoSystem(t)

	id := uuid.New()
	supplierID := uuid.New()

	completed := map[string]any{
		"supplier_type":            "manufacturer",
		"employee_count":           int64(420),
		"certifications":           []byte(`["ISO 9001"]`),
		"extraction_status":        "completed",
		"ai_classification":        "A",
		"ai_classification_reason": "Grade A (score 70): manufacturer",
		"manual_classification":    "B",
		"classification_notes":     "site visit found fewer production lines",
	}

	cleared := map[string]any{
		"extraction_status":     "pending",
		"manual_classification": "B",
		"classification_notes":  "site visit found fewer production lines",
	}

	mock.ExpectQuery(`FROM public\.audits a WHERE a\.id`).
		WillReturnRows(auditRow(id, supplierID, "completed", completed))

	mock.ExpectQuery(`UPDATE audits SET\s+supplier_type = NULL`).
		WillReturnRows(auditRow(id, supplierID, "pending", cleared))

	mock.ExpectExec(`extraction_status = 'pending'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`FROM public\.audits a WHERE a\.id`).
		WillReturnRows(auditRow(id, supplierID, "pending", cleared))

	got, err := system.Reprocess(context.Background(), id)
	if err != nil {
		t.Fatalf("expected reprocess to succeed, got %v", err)
	}

	if got.ExtractionStatus != audits.StatusPending {
		t.Errorf("expected pending, got %s", got.ExtractionStatus)
	}

	if got.ManualClassification == nil || *got.ManualClassification != scoring.GradeB {
		t.Errorf("expected manual classification B preserved, got %v", got.ManualClassification)
	}

	if got.AIClassification != nil {
		t.Errorf("expected AI classification cleared, got %v", *got.AIClassification)
	}

	if got.SupplierType != nil {
		t.Errorf("expected extraction payload cleared, got supplier type %v", *got.SupplierType)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReprocessPendingCoalesces(t *testing.T) {
	system, mock := newRepoSystem(t)

	id := uuid.New()
	supplierID := uuid.New()

	mock.ExpectQuery(`FROM public\.audits a WHERE a\.id`).
		WillReturnRows(auditRow(id, supplierID, "pending", nil))

	got, err := system.Reprocess(context.Background(), id)
	if err != nil {
		t.Fatalf("expected coalesced reprocess, got %v", err)
	}

	if got.ExtractionStatus != audits.StatusPending {
		t.Errorf("expected pending, got %s", got.ExtractionStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestResolveLatestOrdersByRecency(t *testing.T) {
	system, mock := newRepoSystem(t)

	supplierID := uuid.New()
	latest := uuid.New()

	mock.ExpectQuery(`(?s)FROM audits\s+WHERE supplier_id = .+ORDER BY created_at DESC\s+LIMIT 1`).
		WillReturnRows(auditRow(latest, supplierID, "pending", nil))

	got, err := system.ResolveLatest(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("expected latest audit, got %v", err)
	}

	if got.ID != latest {
		t.Errorf("expected audit %s, got %s", latest, got.ID)
	}

	if got.ExtractionStatus != audits.StatusPending {
		t.Errorf("expected the most recent pending audit, got %s", got.ExtractionStatus)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindFormatsAuditDate(t *testing.T) {
	system, mock := newRepoSystem(t)

	id := uuid.New()
	supplierID := uuid.New()

	mock.ExpectQuery(`FROM public\.audits a WHERE a\.id`).
		WillReturnRows(auditRow(id, supplierID, "completed", map[string]any{
			"extraction_status": "completed",
			"audit_date":        time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		}))

	got, err := system.Find(context.Background(), id)
	if err != nil {
		t.Fatalf("expected audit, got %v", err)
	}

	if got.AuditDate == nil || *got.AuditDate != "2024-03-18" {
		t.Errorf("expected audit date 2024-03-18, got %v", got.AuditDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
