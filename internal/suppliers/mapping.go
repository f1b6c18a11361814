package suppliers

import (
	"net/url"

	"github.com/vantagesource/qualis/pkg/query"
	"github.com/vantagesource/qualis/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "suppliers", "s").
	Project("id", "ID").
	Project("name", "Name").
	Project("country", "Country").
	Project("contact_email", "ContactEmail").
	Project("certification_status", "CertificationStatus").
	Project("pipeline_status", "PipelineStatus").
	Project("latest_audit_id", "LatestAuditID").
	Project("certified_at", "CertifiedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for supplier queries.
// Nil fields are ignored. CertificationStatus, PipelineStatus, and Country
// use exact matching. Name uses case-insensitive contains matching.
type Filters struct {
	Name                *string `json:"name,omitempty"`
	Country             *string `json:"country,omitempty"`
	CertificationStatus *string `json:"certification_status,omitempty"`
	PipelineStatus      *string `json:"pipeline_status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Country", f.Country).
		WhereEquals("CertificationStatus", f.CertificationStatus).
		WhereEquals("PipelineStatus", f.PipelineStatus)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if c := values.Get("country"); c != "" {
		f.Country = &c
	}

	if cs := values.Get("certification_status"); cs != "" {
		f.CertificationStatus = &cs
	}

	if ps := values.Get("pipeline_status"); ps != "" {
		f.PipelineStatus = &ps
	}

	return f
}

func scanSupplier(s repository.Scanner) (Supplier, error) {
	var sup Supplier
	err := s.Scan(
		&sup.ID,
		&sup.Name,
		&sup.Country,
		&sup.ContactEmail,
		&sup.CertificationStatus,
		&sup.PipelineStatus,
		&sup.LatestAuditID,
		&sup.CertifiedAt,
		&sup.CreatedAt,
		&sup.UpdatedAt,
	)
	return sup, err
}
