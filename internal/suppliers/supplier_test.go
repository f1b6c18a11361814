package suppliers_test

import (
	"testing"

	"github.com/vantagesource/qualis/internal/scoring"
	"github.com/vantagesource/qualis/internal/suppliers"
)

func TestCertificationForGrade(t *testing.T) {
	cases := []struct {
		name     string
		grade    *scoring.Grade
		expected suppliers.CertificationStatus
	}{
		{"grade A", gradePtr(scoring.GradeA), suppliers.CertificationCertifiedA},
		{"grade B", gradePtr(scoring.GradeB), suppliers.CertificationCertifiedB},
		{"grade C", gradePtr(scoring.GradeC), suppliers.CertificationCertifiedC},
		{"no classification yet", nil, suppliers.CertificationPendingReview},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if status := suppliers.CertificationForGrade(tc.grade); status != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, status)
			}
		})
	}
}

func TestCertificationStatusCertified(t *testing.T) {
	certified := []suppliers.CertificationStatus{
		suppliers.CertificationCertifiedA,
		suppliers.CertificationCertifiedB,
		suppliers.CertificationCertifiedC,
	}
	for _, status := range certified {
		if !status.Certified() {
			t.Errorf("expected %s to be certified", status)
		}
	}

	uncertified := []suppliers.CertificationStatus{
		suppliers.CertificationUncertified,
		suppliers.CertificationPendingReview,
	}
	for _, status := range uncertified {
		if status.Certified() {
			t.Errorf("expected %s to not be certified", status)
		}
	}
}

func gradePtr(g scoring.Grade) *scoring.Grade {
	return &g
}
