// Package suppliers implements the supplier domain for Qualis.
// It provides types, data access, and business logic for supplier
// registration and the denormalized certification state kept in sync
// with each supplier's most recent classified audit.
package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/internal/scoring"
)

// CertificationStatus summarizes a supplier's most relevant audit
// classification.
type CertificationStatus string

const (
	CertificationUncertified   CertificationStatus = "uncertified"
	CertificationPendingReview CertificationStatus = "pending_review"
	CertificationCertifiedA    CertificationStatus = "certified_a"
	CertificationCertifiedB    CertificationStatus = "certified_b"
	CertificationCertifiedC    CertificationStatus = "certified_c"
)

// CertificationForGrade maps an effective classification to a certification
// status. A nil grade means extraction completed but no classification has
// been produced yet.
func CertificationForGrade(grade *scoring.Grade) CertificationStatus {
	if grade == nil {
		return CertificationPendingReview
	}
	switch *grade {
	case scoring.GradeA:
		return CertificationCertifiedA
	case scoring.GradeB:
		return CertificationCertifiedB
	case scoring.GradeC:
		return CertificationCertifiedC
	default:
		return CertificationPendingReview
	}
}

// Certified reports whether the status represents an actual certification
// tier rather than an intermediate state.
func (s CertificationStatus) Certified() bool {
	switch s {
	case CertificationCertifiedA, CertificationCertifiedB, CertificationCertifiedC:
		return true
	}
	return false
}

// Supplier represents a registered supplier with its denormalized
// certification state. LatestAuditID is a nullable back-reference updated at
// classification time; it can lag behind the most recently created audit, so
// read paths that need "the" audit must resolve by recency instead.
type Supplier struct {
	ID                  uuid.UUID           `json:"id"`
	Name                string              `json:"name"`
	Country             string              `json:"country"`
	ContactEmail        *string             `json:"contact_email,omitempty"`
	CertificationStatus CertificationStatus `json:"certification_status"`
	PipelineStatus      string              `json:"pipeline_status"`
	LatestAuditID       *uuid.UUID          `json:"latest_audit_id,omitempty"`
	CertifiedAt         *time.Time          `json:"certified_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new supplier.
type CreateCommand struct {
	Name           string  `json:"name"`
	Country        string  `json:"country"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	PipelineStatus string  `json:"pipeline_status,omitempty"`
}

// UpdateCommand carries optional supplier metadata changes. Nil fields are
// left untouched. Certification fields are excluded: those are mutated only
// through SetCertification.
type UpdateCommand struct {
	Name           *string `json:"name,omitempty"`
	Country        *string `json:"country,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	PipelineStatus *string `json:"pipeline_status,omitempty"`
}
