package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vantagesource/qualis/internal/prompts"
)

// ComposePrompt builds a system prompt by combining tunable instructions,
// the immutable output specification, and the findings accumulated from
// preceding pages. When findings is empty (first page), the prompt contains
// only instructions and spec.
func ComposePrompt(
	ctx context.Context,
	ps prompts.System,
	stage prompts.Stage,
	findings []PageFinding,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if len(findings) > 0 {
		findingsJSON, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return "", fmt.Errorf("serialize page findings: %w", err)
		}

		sb.WriteString("\n\nFindings from pages analyzed so far:\n\n")
		sb.WriteString(string(findingsJSON))
	}

	return sb.String(), nil
}
