package audits

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagesource/qualis/pkg/pagination"
	"github.com/vantagesource/qualis/pkg/storage"
)

// System defines the public contract for audit domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Audit], error)

	Find(ctx context.Context, id uuid.UUID) (*Audit, error)

	// Upload validates and stores an audit document, creates the audit in
	// pending state, and schedules asynchronous extraction. The returned
	// audit reflects the state at scheduling time (pending or processing).
	Upload(ctx context.Context, cmd UploadCommand) (*Audit, error)

	// Reprocess re-runs extraction from a terminal state. Payload fields
	// and the raw response are cleared; a pre-existing manual
	// classification survives. Rejected with ErrProcessing when a run is
	// already in flight.
	Reprocess(ctx context.Context, id uuid.UUID) (*Audit, error)

	// Classify forces automated classification of a completed audit.
	// Idempotent: re-invocation on the same payload produces the same
	// grade and reason.
	Classify(ctx context.Context, id uuid.UUID) (*Audit, error)

	// Override records a human classification. The automated result is
	// preserved for the audit trail.
	Override(ctx context.Context, id uuid.UUID, cmd OverrideCommand) (*Audit, error)

	// ResolveLatest returns the supplier's most recently created audit,
	// independent of the supplier's latest_audit_id pointer.
	ResolveLatest(ctx context.Context, supplierID uuid.UUID) (*Audit, error)

	// ServeDocument resolves the audit's document reference server-side
	// and returns a readable stream, so local-only references are never
	// handed to clients directly.
	ServeDocument(ctx context.Context, id uuid.UUID) (*storage.Object, string, error)
}
