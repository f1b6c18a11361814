package extraction_test

import (
	"errors"
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/vantagesource/qualis/internal/extraction"
)

func runtimeWithProvider(provider *gaconfig.ProviderConfig) *extraction.Runtime {
	return &extraction.Runtime{
		Agent: gaconfig.AgentConfig{
			Name:   "qualis-extract",
			Client: &gaconfig.ClientConfig{Provider: provider},
		},
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Run("rejects a missing provider", func(t *testing.T) {
		rt := &extraction.Runtime{}
		if err := rt.ValidateCredentials(); !errors.Is(err, extraction.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("rejects an unnamed provider", func(t *testing.T) {
		rt := runtimeWithProvider(&gaconfig.ProviderConfig{})
		if err := rt.ValidateCredentials(); !errors.Is(err, extraction.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("exempts ollama from token checks", func(t *testing.T) {
		rt := runtimeWithProvider(&gaconfig.ProviderConfig{Name: "ollama"})
		if err := rt.ValidateCredentials(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("rejects a remote provider without a token", func(t *testing.T) {
		rt := runtimeWithProvider(&gaconfig.ProviderConfig{
			Name:    "azure",
			Options: map[string]any{"token": "   "},
		})
		if err := rt.ValidateCredentials(); !errors.Is(err, extraction.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("accepts a remote provider with a token", func(t *testing.T) {
		rt := runtimeWithProvider(&gaconfig.ProviderConfig{
			Name:    "azure",
			Options: map[string]any{"token": "secret"},
		})
		if err := rt.ValidateCredentials(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
