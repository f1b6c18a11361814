package extraction

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
)

// ValidateCredentials confirms the configured provider is usable before any
// pipeline run claims an audit. Local providers (ollama) require no token;
// everything else does. Missing credentials surface as a fatal configuration
// failure rather than a retryable provider error.
func (r *Runtime) ValidateCredentials() error {
	if r.Agent.Client == nil || r.Agent.Client.Provider == nil || r.Agent.Client.Provider.Name == "" {
		return fmt.Errorf("%w: provider not configured", ErrConfiguration)
	}

	provider := r.Agent.Client.Provider
	if provider.Name == "ollama" {
		return nil
	}

	token, _ := provider.Options["token"].(string)
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf(
			"%w: provider %s requires a token",
			ErrConfiguration, provider.Name,
		)
	}

	return nil
}

// vision sends a single page image to the vision model, retrying transient
// provider failures with exponential backoff.
func (r *Runtime) vision(ctx context.Context, prompt, dataURI string) (string, error) {
	return r.withRetry(ctx, func(ctx context.Context) (string, error) {
		a, err := agent.New(&r.Agent)
		if err != nil {
			return "", fmt.Errorf("%w: create agent: %w", ErrConfiguration, err)
		}

		resp, err := a.Vision(ctx, prompt, []string{dataURI})
		if err != nil {
			return "", fmt.Errorf("vision call: %w", err)
		}

		return resp.Content(), nil
	})
}

// chat sends a text-only prompt to the model, retrying transient failures.
func (r *Runtime) chat(ctx context.Context, prompt string) (string, error) {
	return r.withRetry(ctx, func(ctx context.Context) (string, error) {
		a, err := agent.New(&r.Agent)
		if err != nil {
			return "", fmt.Errorf("%w: create agent: %w", ErrConfiguration, err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}

		return resp.Content(), nil
	})
}

func (r *Runtime) withRetry(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	attempts := max(r.RetryAttempts, 1)
	backoff := r.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := fn(ctx)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == attempts {
			break
		}

		r.Logger.WarnContext(
			ctx, "provider call failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", ErrTransient, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if isTransient(lastErr) {
		return "", fmt.Errorf("%w: %w", ErrTransient, lastErr)
	}
	return "", lastErr
}

// isTransient distinguishes retryable provider failures from fatal ones.
// Configuration errors are never retried; network-level failures, timeouts,
// and provider throttling are.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrParse) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"temporarily unavailable",
		"status 429",
		"status 500",
		"status 502",
		"status 503",
		"status 504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	return false
}
