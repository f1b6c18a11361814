package scoring_test

import (
	"strings"
	"testing"

	"github.com/vantagesource/qualis/internal/extraction"
	"github.com/vantagesource/qualis/internal/scoring"
)

func ptr[T any](v T) *T {
	return &v
}

func strongManufacturer() *extraction.Record {
	return &extraction.Record{
		SupplierType:       extraction.SupplierManufacturer,
		EmployeeCount:      ptr(500),
		Certifications:     []string{"ISO 9001", "ISO 14001", "BSCI"},
		HasMachineryPhotos: true,
	}
}

func TestScoreDeterministic(t *testing.T) {
	rec := strongManufacturer()
	rec.MarketsServed = map[string]float64{"EU": 40, "NA": 35, "Asia": 25}
	rec.PositivePoints = []string{"clean floor", "organized inventory"}
	rec.NegativePoints = []string{"missing fire exits"}

	firstGrade, firstReason := scoring.Score(rec)
	for range 10 {
		grade, reason := scoring.Score(rec)
		if grade != firstGrade {
			t.Fatalf("grade = %v, want %v", grade, firstGrade)
		}
		if reason != firstReason {
			t.Fatalf("reason = %q, want %q", reason, firstReason)
		}
	}
}

func TestScoreScenarios(t *testing.T) {
	t.Run("strong manufacturer scores A", func(t *testing.T) {
		grade, reason := scoring.Score(strongManufacturer())
		if grade != scoring.GradeA {
			t.Fatalf("grade = %v, want A (%s)", grade, reason)
		}
	})

	t.Run("bare trader scores C", func(t *testing.T) {
		grade, _ := scoring.Score(&extraction.Record{
			SupplierType: extraction.SupplierTrader,
		})
		if grade != scoring.GradeC {
			t.Fatalf("grade = %v, want C", grade)
		}
	})

	t.Run("empty record scores C without panicking", func(t *testing.T) {
		grade, reason := scoring.Score(&extraction.Record{
			SupplierType: extraction.SupplierUnknown,
		})
		if grade != scoring.GradeC {
			t.Fatalf("grade = %v, want C", grade)
		}
		if reason == "" {
			t.Fatal("reason is empty")
		}
	})
}

func TestManufacturerOutranksTrader(t *testing.T) {
	variants := []*extraction.Record{
		{},
		{EmployeeCount: ptr(500), HasMachineryPhotos: true},
		{
			Certifications: []string{"ISO 9001", "BSCI"},
			MarketsServed:  map[string]float64{"EU": 60, "NA": 40},
		},
		{
			EmployeeCount:        ptr(120),
			FactoryAreaSqm:       ptr(3000.0),
			ProductionLinesCount: ptr(4),
			PositivePoints:       []string{"good lighting", "modern machines", "trained staff"},
			NegativePoints:       []string{"dusty warehouse"},
		},
	}

	rank := map[scoring.Grade]int{scoring.GradeA: 3, scoring.GradeB: 2, scoring.GradeC: 1}

	for i, base := range variants {
		asManufacturer := *base
		asManufacturer.SupplierType = extraction.SupplierManufacturer

		asTrader := *base
		asTrader.SupplierType = extraction.SupplierTrader

		mGrade, _ := scoring.Score(&asManufacturer)
		tGrade, _ := scoring.Score(&asTrader)

		if rank[mGrade] < rank[tGrade] {
			t.Errorf("variant %d: manufacturer %v < trader %v", i, mGrade, tGrade)
		}
	}
}

func TestScoreIgnoresUnrecognizedCertifications(t *testing.T) {
	recognized := &extraction.Record{
		SupplierType:   extraction.SupplierTrader,
		Certifications: []string{"iso 9001"},
	}
	bogus := &extraction.Record{
		SupplierType:   extraction.SupplierTrader,
		Certifications: []string{"Best Factory 2019", "Gold Star Award"},
	}

	rGrade, rReason := scoring.Score(recognized)
	bGrade, bReason := scoring.Score(bogus)

	if strings.Contains(bReason, "certification") {
		t.Errorf("bogus certifications credited: %q", bReason)
	}
	if !strings.Contains(rReason, "1 recognized certifications") {
		t.Errorf("recognized certification missing from reason: %q", rReason)
	}
	_ = rGrade
	_ = bGrade
}

func TestComposedReasonNamesDominantFactors(t *testing.T) {
	_, reason := scoring.Score(strongManufacturer())

	for _, want := range []string{"manufacturer", "certifications"} {
		if !strings.Contains(reason, want) {
			t.Errorf("reason %q missing %q", reason, want)
		}
	}
}

func TestParseGrade(t *testing.T) {
	cases := []struct {
		input   string
		want    scoring.Grade
		wantErr bool
	}{
		{"A", scoring.GradeA, false},
		{"b", scoring.GradeB, false},
		{" c ", scoring.GradeC, false},
		{"D", "", true},
		{"", "", true},
		{"AA", "", true},
	}

	for _, tc := range cases {
		got, err := scoring.ParseGrade(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseGrade(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseGrade(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseGrade(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
