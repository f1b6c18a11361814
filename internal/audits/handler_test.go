package audits_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/internal/audits"
	"github.com/vantagesource/qualis/internal/scoring"
	"github.com/vantagesource/qualis/pkg/pagination"
	"github.com/vantagesource/qualis/pkg/storage"
)

type mockSystem struct {
	listFn          func(ctx context.Context, page pagination.PageRequest, filters audits.Filters) (*pagination.PageResult[audits.Audit], error)
	findFn          func(ctx context.Context, id uuid.UUID) (*audits.Audit, error)
	uploadFn        func(ctx context.Context, cmd audits.UploadCommand) (*audits.Audit, error)
	reprocessFn     func(ctx context.Context, id uuid.UUID) (*audits.Audit, error)
	classifyFn      func(ctx context.Context, id uuid.UUID) (*audits.Audit, error)
	overrideFn      func(ctx context.Context, id uuid.UUID, cmd audits.OverrideCommand) (*audits.Audit, error)
	resolveLatestFn func(ctx context.Context, supplierID uuid.UUID) (*audits.Audit, error)
	serveDocumentFn func(ctx context.Context, id uuid.UUID) (*storage.Object, string, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *audits.Handler {
	return audits.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters audits.Filters) (*pagination.PageResult[audits.Audit], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*audits.Audit, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Upload(ctx context.Context, cmd audits.UploadCommand) (*audits.Audit, error) {
	return m.uploadFn(ctx, cmd)
}

func (m *mockSystem) Reprocess(ctx context.Context, id uuid.UUID) (*audits.Audit, error) {
	return m.reprocessFn(ctx, id)
}

func (m *mockSystem) Classify(ctx context.Context, id uuid.UUID) (*audits.Audit, error) {
	return m.classifyFn(ctx, id)
}

func (m *mockSystem) Override(ctx context.Context, id uuid.UUID, cmd audits.OverrideCommand) (*audits.Audit, error) {
	return m.overrideFn(ctx, id, cmd)
}

func (m *mockSystem) ResolveLatest(ctx context.Context, supplierID uuid.UUID) (*audits.Audit, error) {
	return m.resolveLatestFn(ctx, supplierID)
}

func (m *mockSystem) ServeDocument(ctx context.Context, id uuid.UUID) (*storage.Object, string, error) {
	return m.serveDocumentFn(ctx, id)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	group := sys.Handler(50 * 1024 * 1024).Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleAudit() audits.Audit {
	return audits.Audit{
		ID:               uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		SupplierID:       uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		AuditType:        audits.TypeFactoryAudit,
		DocumentRef:      "audits/550e8400-e29b-41d4-a716-446655440000/report.pdf",
		DocumentName:     "report.pdf",
		SizeBytes:        2048,
		ExtractionStatus: audits.StatusCompleted,
		CreatedAt:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC),
	}
}

func TestHandlerFind(t *testing.T) {
	audit := sampleAudit()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*audits.Audit, error) {
			if id != audit.ID {
				return nil, audits.ErrNotFound
			}
			return &audit, nil
		},
	}
	mux := setupMux(sys)

	t.Run("returns audit for status polling", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/audits/"+audit.ID.String(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got audits.Audit
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ExtractionStatus != audits.StatusCompleted {
			t.Errorf("extraction_status = %s", got.ExtractionStatus)
		}
	})

	t.Run("unknown id maps to 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/audits/"+uuid.NewString(), nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed id maps to 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/audits/not-a-uuid", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerOverride(t *testing.T) {
	audit := sampleAudit()
	audit.AIClassification = ptr(scoring.GradeA)

	var captured audits.OverrideCommand
	sys := &mockSystem{
		overrideFn: func(_ context.Context, _ uuid.UUID, cmd audits.OverrideCommand) (*audits.Audit, error) {
			captured = cmd
			overridden := audit
			overridden.ManualClassification = ptr(scoring.GradeC)
			overridden.ClassificationNotes = ptr(cmd.Notes)
			return &overridden, nil
		},
	}
	mux := setupMux(sys)

	body := `{"grade": "C", "notes": "client site visit contradicted report"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/audits/"+audit.ID.String()+"/override", strings.NewReader(body))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if captured.Grade != "C" {
		t.Errorf("grade = %q, want C", captured.Grade)
	}

	var got audits.Audit
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AIClassification == nil || *got.AIClassification != scoring.GradeA {
		t.Error("ai_classification was not preserved")
	}
	if got.ManualClassification == nil || *got.ManualClassification != scoring.GradeC {
		t.Error("manual_classification missing")
	}
}

func TestHandlerOverrideErrors(t *testing.T) {
	sys := &mockSystem{
		overrideFn: func(_ context.Context, _ uuid.UUID, cmd audits.OverrideCommand) (*audits.Audit, error) {
			if cmd.Grade == "D" {
				return nil, scoring.ErrInvalidGrade
			}
			return nil, audits.ErrNotesRequired
		},
	}
	mux := setupMux(sys)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"invalid grade", `{"grade": "D", "notes": "long enough notes here"}`, http.StatusBadRequest},
		{"whitespace notes", `{"grade": "B", "notes": "   "}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/audits/"+uuid.NewString()+"/override", strings.NewReader(tc.body))
			mux.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHandlerReprocessConflict(t *testing.T) {
	sys := &mockSystem{
		reprocessFn: func(_ context.Context, _ uuid.UUID) (*audits.Audit, error) {
			return nil, audits.ErrProcessing
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/audits/"+uuid.NewString()+"/reprocess", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandlerResolveLatest(t *testing.T) {
	audit := sampleAudit()
	audit.ExtractionStatus = audits.StatusPending

	var captured uuid.UUID
	sys := &mockSystem{
		resolveLatestFn: func(_ context.Context, supplierID uuid.UUID) (*audits.Audit, error) {
			captured = supplierID
			return &audit, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/audits/supplier/"+audit.SupplierID.String()+"/latest", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured != audit.SupplierID {
		t.Errorf("supplier id = %v, want %v", captured, audit.SupplierID)
	}

	var got audits.Audit
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ExtractionStatus != audits.StatusPending {
		t.Errorf("resolved audit status = %s, want pending", got.ExtractionStatus)
	}
}

func TestHandlerServeDocument(t *testing.T) {
	audit := sampleAudit()
	content := []byte("%PDF-1.7 test content")

	sys := &mockSystem{
		serveDocumentFn: func(_ context.Context, _ uuid.UUID) (*storage.Object, string, error) {
			return &storage.Object{
				Body:          io.NopCloser(bytes.NewReader(content)),
				ContentType:   "application/pdf",
				ContentLength: int64(len(content)),
			}, audit.DocumentName, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/audits/"+audit.ID.String()+"/document", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("streamed body does not match document content")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, audit.DocumentName) {
		t.Errorf("content disposition = %q", cd)
	}
}
