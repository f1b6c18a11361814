package extraction

import (
	"slices"
	"strings"
	"time"
)

// SupplierType categorizes how the audited company produces its goods.
type SupplierType string

// Supplier types recognized by the pipeline.
const (
	SupplierManufacturer SupplierType = "manufacturer"
	SupplierTrader       SupplierType = "trader"
	SupplierUnknown      SupplierType = "unknown"
)

// ParseSupplierType coerces a raw model value into a recognized supplier type.
// Unrecognized values degrade to SupplierUnknown rather than failing.
func ParseSupplierType(s string) SupplierType {
	switch SupplierType(strings.ToLower(strings.TrimSpace(s))) {
	case SupplierManufacturer:
		return SupplierManufacturer
	case SupplierTrader:
		return SupplierTrader
	default:
		return SupplierUnknown
	}
}

// Record is the structured extraction produced from an audit document.
// Pointer fields distinguish "the document never stated this" from a zero
// value; scoring and persistence both rely on that distinction.
type Record struct {
	SupplierType         SupplierType       `json:"supplier_type"`
	EmployeeCount        *int               `json:"employee_count,omitempty"`
	FactoryAreaSqm       *float64           `json:"factory_area_sqm,omitempty"`
	ProductionLinesCount *int               `json:"production_lines_count,omitempty"`
	MarketsServed        map[string]float64 `json:"markets_served,omitempty"`
	Certifications       []string           `json:"certifications,omitempty"`
	HasMachineryPhotos   bool               `json:"has_machinery_photos"`
	PositivePoints       []string           `json:"positive_points,omitempty"`
	NegativePoints       []string           `json:"negative_points,omitempty"`
	ProductsVerified     []string           `json:"products_verified,omitempty"`
	AuditDate            *string            `json:"audit_date,omitempty"`
	InspectorName        *string            `json:"inspector_name,omitempty"`
}

// Normalize coerces a freshly parsed record into canonical form: supplier
// type lowered to a recognized value, negative counts and percentages
// dropped, list fields deduplicated and trimmed, and an unparseable audit
// date discarded. Missing data stays missing; it never errors.
func (r *Record) Normalize() {
	r.SupplierType = ParseSupplierType(string(r.SupplierType))

	if r.EmployeeCount != nil && *r.EmployeeCount < 0 {
		r.EmployeeCount = nil
	}
	if r.FactoryAreaSqm != nil && *r.FactoryAreaSqm <= 0 {
		r.FactoryAreaSqm = nil
	}
	if r.ProductionLinesCount != nil && *r.ProductionLinesCount < 0 {
		r.ProductionLinesCount = nil
	}

	for region, pct := range r.MarketsServed {
		trimmed := strings.TrimSpace(region)
		if trimmed == "" || pct <= 0 || pct > 100 {
			delete(r.MarketsServed, region)
			continue
		}
		if trimmed != region {
			delete(r.MarketsServed, region)
			r.MarketsServed[trimmed] = pct
		}
	}
	if len(r.MarketsServed) == 0 {
		r.MarketsServed = nil
	}

	r.Certifications = dedupe(r.Certifications)
	r.PositivePoints = dedupe(r.PositivePoints)
	r.NegativePoints = dedupe(r.NegativePoints)
	r.ProductsVerified = dedupe(r.ProductsVerified)

	if r.AuditDate != nil {
		date := strings.TrimSpace(*r.AuditDate)
		if _, err := time.Parse("2006-01-02", date); err != nil {
			r.AuditDate = nil
		} else {
			r.AuditDate = &date
		}
	}

	if r.InspectorName != nil {
		name := strings.TrimSpace(*r.InspectorName)
		if name == "" {
			r.InspectorName = nil
		} else {
			r.InspectorName = &name
		}
	}
}

func dedupe(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
