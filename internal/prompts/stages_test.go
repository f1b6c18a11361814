package prompts_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vantagesource/qualis/internal/prompts"
)

func TestParseStage(t *testing.T) {
	for _, stage := range prompts.Stages() {
		parsed, err := prompts.ParseStage(string(stage))
		if err != nil {
			t.Errorf("expected %s to parse, got %v", stage, err)
		}
		if parsed != stage {
			t.Errorf("expected %s, got %s", stage, parsed)
		}
	}

	for _, raw := range []string{"", "Extract", "classify", "consolidate "} {
		if _, err := prompts.ParseStage(raw); !errors.Is(err, prompts.ErrInvalidStage) {
			t.Errorf("expected ErrInvalidStage for %q, got %v", raw, err)
		}
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	var stage prompts.Stage
	if err := json.Unmarshal([]byte(`"extract"`), &stage); err != nil {
		t.Fatalf("expected extract to unmarshal, got %v", err)
	}
	if stage != prompts.StageExtract {
		t.Errorf("expected extract, got %s", stage)
	}

	if err := json.Unmarshal([]byte(`"review"`), &stage); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("expected ErrInvalidStage, got %v", err)
	}
}

func TestInstructions(t *testing.T) {
	for _, stage := range prompts.Stages() {
		text, err := prompts.Instructions(stage)
		if err != nil {
			t.Errorf("expected instructions for %s, got %v", stage, err)
		}
		if text == "" {
			t.Errorf("expected non-empty instructions for %s", stage)
		}
	}

	if _, err := prompts.Instructions(prompts.Stage("classify")); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("expected ErrInvalidStage, got %v", err)
	}
}
