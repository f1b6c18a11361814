package suppliers

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/pkg/pagination"
)

// System defines the public contract for supplier domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Supplier], error)

	Find(ctx context.Context, id uuid.UUID) (*Supplier, error)
	Create(ctx context.Context, cmd CreateCommand) (*Supplier, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SetCertification propagates an effective classification into the
	// supplier's denormalized state: certification_status, latest_audit_id,
	// and certified_at (set on first certification only).
	SetCertification(
		ctx context.Context,
		id uuid.UUID,
		status CertificationStatus,
		auditID uuid.UUID,
	) (*Supplier, error)
}
