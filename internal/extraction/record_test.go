package extraction_test

import (
	"testing"

	"github.com/vantagesource/qualis/internal/extraction"
)

func ptr[T any](v T) *T {
	return &v
}

func TestParseSupplierType(t *testing.T) {
	cases := map[string]extraction.SupplierType{
		"manufacturer":  extraction.SupplierManufacturer,
		"Manufacturer":  extraction.SupplierManufacturer,
		" trader ":      extraction.SupplierTrader,
		"unknown":       extraction.SupplierUnknown,
		"wholesaler":    extraction.SupplierUnknown,
		"":              extraction.SupplierUnknown,
		"manufacturing": extraction.SupplierUnknown,
	}

	for input, want := range cases {
		if got := extraction.ParseSupplierType(input); got != want {
			t.Errorf("ParseSupplierType(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRecordNormalize(t *testing.T) {
	t.Run("drops negative counts", func(t *testing.T) {
		r := extraction.Record{
			SupplierType:         extraction.SupplierManufacturer,
			EmployeeCount:        ptr(-5),
			FactoryAreaSqm:       ptr(-100.0),
			ProductionLinesCount: ptr(-1),
		}
		r.Normalize()

		if r.EmployeeCount != nil {
			t.Errorf("employee_count = %v, want nil", *r.EmployeeCount)
		}
		if r.FactoryAreaSqm != nil {
			t.Errorf("factory_area_sqm = %v, want nil", *r.FactoryAreaSqm)
		}
		if r.ProductionLinesCount != nil {
			t.Errorf("production_lines_count = %v, want nil", *r.ProductionLinesCount)
		}
	})

	t.Run("drops invalid market percentages", func(t *testing.T) {
		r := extraction.Record{
			SupplierType: extraction.SupplierTrader,
			MarketsServed: map[string]float64{
				"EU":     60,
				"NA":     140,
				"Asia":   0,
				"Africa": -10,
			},
		}
		r.Normalize()

		if len(r.MarketsServed) != 1 {
			t.Fatalf("markets = %v, want only EU", r.MarketsServed)
		}
		if _, ok := r.MarketsServed["EU"]; !ok {
			t.Error("valid EU entry was dropped")
		}
	})

	t.Run("dedupes list fields", func(t *testing.T) {
		r := extraction.Record{
			SupplierType:   extraction.SupplierManufacturer,
			Certifications: []string{"ISO 9001", " ISO 9001 ", "BSCI"},
			PositivePoints: []string{"clean", "clean", "organized"},
		}
		r.Normalize()

		if len(r.Certifications) != 2 {
			t.Errorf("certifications = %v, want 2 entries", r.Certifications)
		}
		if len(r.PositivePoints) != 2 {
			t.Errorf("positive_points = %v, want 2 entries", r.PositivePoints)
		}
	})

	t.Run("drops unparseable audit date", func(t *testing.T) {
		r := extraction.Record{
			SupplierType: extraction.SupplierManufacturer,
			AuditDate:    ptr("2026-13-45"),
		}
		r.Normalize()

		if r.AuditDate != nil {
			t.Errorf("audit_date = %v, want nil", *r.AuditDate)
		}
	})

	t.Run("keeps valid audit date", func(t *testing.T) {
		r := extraction.Record{
			SupplierType: extraction.SupplierManufacturer,
			AuditDate:    ptr("2026-03-10"),
		}
		r.Normalize()

		if r.AuditDate == nil || *r.AuditDate != "2026-03-10" {
			t.Errorf("audit_date = %v, want 2026-03-10", r.AuditDate)
		}
	})
}
