package audits

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/pkg/query"
	"github.com/vantagesource/qualis/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audits", "a").
	Project("id", "ID").
	Project("supplier_id", "SupplierID").
	Project("audit_type", "AuditType").
	Project("document_ref", "DocumentRef").
	Project("document_name", "DocumentName").
	Project("size_bytes", "SizeBytes").
	Project("supplier_type", "SupplierType").
	Project("employee_count", "EmployeeCount").
	Project("factory_area_sqm", "FactoryAreaSqm").
	Project("production_lines_count", "ProductionLinesCount").
	Project("markets_served", "MarketsServed").
	Project("certifications", "Certifications").
	Project("has_machinery_photos", "HasMachineryPhotos").
	Project("positive_points", "PositivePoints").
	Project("negative_points", "NegativePoints").
	Project("products_verified", "ProductsVerified").
	Project("audit_date", "AuditDate").
	Project("inspector_name", "InspectorName").
	Project("extraction_status", "ExtractionStatus").
	Project("extraction_error", "ExtractionError").
	Project("extraction_raw_response", "ExtractionRawResponse").
	Project("extracted_at", "ExtractedAt").
	Project("ai_classification", "AIClassification").
	Project("ai_classification_reason", "AIClassificationReason").
	Project("manual_classification", "ManualClassification").
	Project("classification_notes", "ClassificationNotes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for audit queries.
// Nil fields are ignored. SupplierID, AuditType, ExtractionStatus, and the
// classification fields use exact matching. DocumentName uses
// case-insensitive contains matching.
type Filters struct {
	SupplierID           *uuid.UUID `json:"supplier_id,omitempty"`
	AuditType            *string    `json:"audit_type,omitempty"`
	ExtractionStatus     *string    `json:"extraction_status,omitempty"`
	AIClassification     *string    `json:"ai_classification,omitempty"`
	ManualClassification *string    `json:"manual_classification,omitempty"`
	DocumentName         *string    `json:"document_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("SupplierID", f.SupplierID).
		WhereEquals("AuditType", f.AuditType).
		WhereEquals("ExtractionStatus", f.ExtractionStatus).
		WhereEquals("AIClassification", f.AIClassification).
		WhereEquals("ManualClassification", f.ManualClassification).
		WhereContains("DocumentName", f.DocumentName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("supplier_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			f.SupplierID = &id
		}
	}

	if t := values.Get("audit_type"); t != "" {
		f.AuditType = &t
	}

	if es := values.Get("extraction_status"); es != "" {
		f.ExtractionStatus = &es
	}

	if ai := values.Get("ai_classification"); ai != "" {
		f.AIClassification = &ai
	}

	if mc := values.Get("manual_classification"); mc != "" {
		f.ManualClassification = &mc
	}

	if dn := values.Get("document_name"); dn != "" {
		f.DocumentName = &dn
	}

	return f
}

func scanAudit(s repository.Scanner) (Audit, error) {
	var a Audit
	var marketsRaw, certsRaw, positiveRaw, negativeRaw, productsRaw []byte
	var auditDate sql.NullTime

	err := s.Scan(
		&a.ID,
		&a.SupplierID,
		&a.AuditType,
		&a.DocumentRef,
		&a.DocumentName,
		&a.SizeBytes,
		&a.SupplierType,
		&a.EmployeeCount,
		&a.FactoryAreaSqm,
		&a.ProductionLinesCount,
		&marketsRaw,
		&certsRaw,
		&a.HasMachineryPhotos,
		&positiveRaw,
		&negativeRaw,
		&productsRaw,
		&auditDate,
		&a.InspectorName,
		&a.ExtractionStatus,
		&a.ExtractionError,
		&a.ExtractionRawResponse,
		&a.ExtractedAt,
		&a.AIClassification,
		&a.AIClassificationReason,
		&a.ManualClassification,
		&a.ClassificationNotes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		return a, err
	}

	// audit_date is a DATE column; format it back to the YYYY-MM-DD string
	// the extraction produced instead of leaking a midnight timestamp.
	if auditDate.Valid {
		formatted := auditDate.Time.Format("2006-01-02")
		a.AuditDate = &formatted
	}

	if err := unmarshalColumn(marketsRaw, &a.MarketsServed, "markets_served"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(certsRaw, &a.Certifications, "certifications"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(positiveRaw, &a.PositivePoints, "positive_points"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(negativeRaw, &a.NegativePoints, "negative_points"); err != nil {
		return a, err
	}
	if err := unmarshalColumn(productsRaw, &a.ProductsVerified, "products_verified"); err != nil {
		return a, err
	}

	if a.Certifications == nil {
		a.Certifications = []string{}
	}
	if a.PositivePoints == nil {
		a.PositivePoints = []string{}
	}
	if a.NegativePoints == nil {
		a.NegativePoints = []string{}
	}
	if a.ProductsVerified == nil {
		a.ProductsVerified = []string{}
	}

	return a, nil
}

func unmarshalColumn[T any](raw []byte, dest *T, column string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", column, err)
	}
	return nil
}

// marshalColumn serializes a slice or map for a jsonb column. Empty values
// are stored as NULL rather than empty documents.
func marshalColumn(v any) (any, error) {
	switch val := v.(type) {
	case map[string]float64:
		if len(val) == 0 {
			return nil, nil
		}
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb column: %w", err)
	}
	return data, nil
}
