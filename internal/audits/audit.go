// Package audits implements the audit domain for Qualis: document upload,
// the asynchronous extraction lifecycle, automated A/B/C classification,
// human overrides, and the supplier certification synchronizer.
package audits

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/internal/extraction"
	"github.com/vantagesource/qualis/internal/scoring"
)

// Type distinguishes the two inspection document kinds.
type Type string

const (
	TypeFactoryAudit        Type = "factory_audit"
	TypeContainerInspection Type = "container_inspection"
)

// ParseType validates an audit type string.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeFactoryAudit:
		return TypeFactoryAudit, nil
	case TypeContainerInspection:
		return TypeContainerInspection, nil
	default:
		return "", fmt.Errorf("%w: audit type %q", ErrInvalidFile, s)
	}
}

// Audit represents a single uploaded inspection document plus its extracted
// and classified data. Extraction payload fields are nullable until an
// extraction run completes; classification fields are nullable until the
// scorer or a human has produced a grade.
type Audit struct {
	ID         uuid.UUID `json:"id"`
	SupplierID uuid.UUID `json:"supplier_id"`
	AuditType  Type      `json:"audit_type"`

	DocumentRef  string `json:"document_ref"`
	DocumentName string `json:"document_name"`
	SizeBytes    int64  `json:"size_bytes"`

	SupplierType         *extraction.SupplierType `json:"supplier_type,omitempty"`
	EmployeeCount        *int                     `json:"employee_count,omitempty"`
	FactoryAreaSqm       *float64                 `json:"factory_area_sqm,omitempty"`
	ProductionLinesCount *int                     `json:"production_lines_count,omitempty"`
	MarketsServed        map[string]float64       `json:"markets_served,omitempty"`
	Certifications       []string                 `json:"certifications"`
	HasMachineryPhotos   bool                     `json:"has_machinery_photos"`
	PositivePoints       []string                 `json:"positive_points"`
	NegativePoints       []string                 `json:"negative_points"`
	ProductsVerified     []string                 `json:"products_verified"`
	AuditDate            *string                  `json:"audit_date,omitempty"`
	InspectorName        *string                  `json:"inspector_name,omitempty"`

	ExtractionStatus      Status     `json:"extraction_status"`
	ExtractionError       *string    `json:"extraction_error,omitempty"`
	ExtractionRawResponse *string    `json:"extraction_raw_response,omitempty"`
	ExtractedAt           *time.Time `json:"extracted_at,omitempty"`

	AIClassification       *scoring.Grade `json:"ai_classification,omitempty"`
	AIClassificationReason *string        `json:"ai_classification_reason,omitempty"`
	ManualClassification   *scoring.Grade `json:"manual_classification,omitempty"`
	ClassificationNotes    *string        `json:"classification_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveClassification is the manual override when present, else the
// automated grade.
func (a *Audit) EffectiveClassification() *scoring.Grade {
	if a.ManualClassification != nil {
		return a.ManualClassification
	}
	return a.AIClassification
}

// Record reconstructs the extraction record from the stored payload fields
// so the scorer can be re-invoked without re-running extraction.
func (a *Audit) Record() *extraction.Record {
	supplierType := extraction.SupplierUnknown
	if a.SupplierType != nil {
		supplierType = *a.SupplierType
	}

	return &extraction.Record{
		SupplierType:         supplierType,
		EmployeeCount:        a.EmployeeCount,
		FactoryAreaSqm:       a.FactoryAreaSqm,
		ProductionLinesCount: a.ProductionLinesCount,
		MarketsServed:        a.MarketsServed,
		Certifications:       a.Certifications,
		HasMachineryPhotos:   a.HasMachineryPhotos,
		PositivePoints:       a.PositivePoints,
		NegativePoints:       a.NegativePoints,
		ProductsVerified:     a.ProductsVerified,
		AuditDate:            a.AuditDate,
		InspectorName:        a.InspectorName,
	}
}

// UploadCommand carries the data needed to ingest a new audit document.
// Data holds the raw file bytes; either Data+Filename or a pre-existing
// DocumentURL must be provided.
type UploadCommand struct {
	SupplierID  uuid.UUID
	AuditType   Type
	Data        []byte
	Filename    string
	ContentType string
	DocumentURL string
}

// OverrideCommand carries a human classification override. Notes are
// mandatory and must survive whitespace trimming.
type OverrideCommand struct {
	Grade string `json:"grade"`
	Notes string `json:"notes"`
}
