package extraction_test

import (
	"errors"
	"testing"

	"github.com/vantagesource/qualis/internal/extraction"
)

func TestParseRecord(t *testing.T) {
	t.Run("parses a well-formed record", func(t *testing.T) {
		record, err := extraction.ParseRecord(`{
			"supplier_type": "manufacturer",
			"employee_count": 320,
			"factory_area_sqm": 4500.5,
			"production_lines_count": 6,
			"markets_served": {"Europe": 60, "North America": 40},
			"certifications": ["ISO 9001", "BSCI"],
			"has_machinery_photos": true,
			"positive_points": ["organized workshop"],
			"audit_date": "2026-03-14",
			"inspector_name": "L. Chen"
		}`)
		if err != nil {
			t.Fatalf("expected record, got error: %v", err)
		}

		if record.SupplierType != extraction.SupplierManufacturer {
			t.Errorf("expected manufacturer, got %s", record.SupplierType)
		}

		if record.EmployeeCount == nil || *record.EmployeeCount != 320 {
			t.Errorf("expected employee count 320, got %v", record.EmployeeCount)
		}

		if len(record.MarketsServed) != 2 {
			t.Errorf("expected 2 markets, got %d", len(record.MarketsServed))
		}

		if record.AuditDate == nil || *record.AuditDate != "2026-03-14" {
			t.Errorf("expected audit date 2026-03-14, got %v", record.AuditDate)
		}
	})

	t.Run("parses a fenced code block", func(t *testing.T) {
		content := "Here is the consolidated report:\n```json\n{\"supplier_type\": \"trader\"}\n```"

		record, err := extraction.ParseRecord(content)
		if err != nil {
			t.Fatalf("expected record, got error: %v", err)
		}

		if record.SupplierType != extraction.SupplierTrader {
			t.Errorf("expected trader, got %s", record.SupplierType)
		}
	})

	t.Run("recovers by dropping unknown keys", func(t *testing.T) {
		record, err := extraction.ParseRecord(`{
			"supplier_type": "manufacturer",
			"employee_count": 120,
			"confidence": 0.92,
			"summary": "looks solid"
		}`)
		if err != nil {
			t.Fatalf("expected recovery, got error: %v", err)
		}

		if record.EmployeeCount == nil || *record.EmployeeCount != 120 {
			t.Errorf("expected employee count to survive recovery, got %v", record.EmployeeCount)
		}
	})

	t.Run("coerces numeric strings", func(t *testing.T) {
		record, err := extraction.ParseRecord(`{
			"supplier_type": "manufacturer",
			"employee_count": "250",
			"factory_area_sqm": "3200.5"
		}`)
		if err != nil {
			t.Fatalf("expected recovery, got error: %v", err)
		}

		if record.EmployeeCount == nil || *record.EmployeeCount != 250 {
			t.Errorf("expected coerced employee count 250, got %v", record.EmployeeCount)
		}

		if record.FactoryAreaSqm == nil || *record.FactoryAreaSqm != 3200.5 {
			t.Errorf("expected coerced factory area 3200.5, got %v", record.FactoryAreaSqm)
		}
	})

	t.Run("drops optionals that cannot satisfy the shape", func(t *testing.T) {
		record, err := extraction.ParseRecord(`{
			"supplier_type": "manufacturer",
			"employee_count": 80,
			"certifications": "ISO 9001",
			"audit_date": "next spring"
		}`)
		if err != nil {
			t.Fatalf("expected recovery, got error: %v", err)
		}

		if record.Certifications != nil {
			t.Errorf("expected malformed certifications dropped, got %v", record.Certifications)
		}

		if record.AuditDate != nil {
			t.Errorf("expected malformed audit date dropped, got %v", record.AuditDate)
		}

		if record.EmployeeCount == nil || *record.EmployeeCount != 80 {
			t.Errorf("expected employee count to survive, got %v", record.EmployeeCount)
		}
	})

	t.Run("coerces an unrecognized supplier type", func(t *testing.T) {
		record, err := extraction.ParseRecord(`{"supplier_type": "distributor"}`)
		if err != nil {
			t.Fatalf("expected recovery, got error: %v", err)
		}

		if record.SupplierType != extraction.SupplierUnknown {
			t.Errorf("expected unknown, got %s", record.SupplierType)
		}
	})

	t.Run("fails on content with no document", func(t *testing.T) {
		_, err := extraction.ParseRecord("the model declined to answer")
		if !errors.Is(err, extraction.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})

	t.Run("fails on a non-object document", func(t *testing.T) {
		_, err := extraction.ParseRecord(`["supplier_type", "manufacturer"]`)
		if !errors.Is(err, extraction.ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	})
}
