package extraction

import (
	"log/slog"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/vantagesource/qualis/internal/prompts"
	"github.com/vantagesource/qualis/pkg/storage"
)

// Runtime bundles the dependencies that pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure and
// Domain systems. Agent credentials arrive here as explicit configuration so
// multiple providers can coexist in tests.
type Runtime struct {
	Agent    gaconfig.AgentConfig
	Storage  storage.System
	Prompts  prompts.System
	Logger   *slog.Logger
	MaxPages int

	// MaxDocumentBytes bounds how much of a remote document reference is
	// read; it mirrors the upload size ceiling. Zero disables the cap.
	MaxDocumentBytes int64

	// Retry bounds for transient provider failures. Fatal failures
	// (configuration, parsing, rendering) are never retried.
	RetryAttempts int
	RetryBackoff  time.Duration
}
