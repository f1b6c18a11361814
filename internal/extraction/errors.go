// Package extraction implements the audit extraction pipeline: it resolves a
// stored document reference, renders a bounded number of pages to images, and
// drives a vision-capable model through a 3-node state graph
// (init → extract → consolidate) to produce a structured extraction record.
package extraction

import "errors"

// Sentinel errors for pipeline failures. Every pipeline failure wraps exactly
// one of these so callers can store an operator-actionable diagnostic and
// decide whether a retry could ever help.
var (
	// ErrDependencyMissing indicates the system-level rasterization capability
	// (ImageMagick) is absent. Fatal: retrying cannot succeed until an
	// operator installs the dependency.
	ErrDependencyMissing = errors.New("page rendering dependency missing")
	// ErrDocumentMissing indicates the audit document reference could not be
	// resolved: the blob, file, or remote URL no longer exists. Fatal for the
	// run, but unrelated to system dependencies.
	ErrDocumentMissing = errors.New("audit document not found")
	// ErrConfiguration indicates missing or invalid model provider
	// credentials. Fatal and distinct from transient provider failures.
	ErrConfiguration = errors.New("model provider configuration invalid")
	// ErrTransient indicates the provider kept failing after bounded retries.
	ErrTransient = errors.New("model provider unavailable")
	// ErrParse indicates an unreadable document or model output that could
	// not be coerced into the extraction record shape.
	ErrParse = errors.New("malformed document or model output")
	// ErrRender indicates page image rendering failed for an otherwise
	// readable document.
	ErrRender = errors.New("failed to render page images")
)
