package audits_test

import (
	"testing"

	"github.com/vantagesource/qualis/internal/audits"
)

func TestStatusTransitions(t *testing.T) {
	all := []audits.Status{
		audits.StatusPending,
		audits.StatusProcessing,
		audits.StatusCompleted,
		audits.StatusFailed,
	}

	allowed := map[audits.Status][]audits.Status{
		audits.StatusPending:    {audits.StatusProcessing},
		audits.StatusProcessing: {audits.StatusCompleted, audits.StatusFailed},
		audits.StatusCompleted:  {audits.StatusPending},
		audits.StatusFailed:     {audits.StatusPending},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, legal := range allowed[from] {
				if to == legal {
					want = true
				}
			}

			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := map[audits.Status]bool{
		audits.StatusPending:    false,
		audits.StatusProcessing: false,
		audits.StatusCompleted:  true,
		audits.StatusFailed:     true,
	}

	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := audits.ParseStatus("processing"); err != nil {
		t.Errorf("ParseStatus(processing): %v", err)
	}
	if _, err := audits.ParseStatus(" Completed "); err != nil {
		t.Errorf("ParseStatus with whitespace and case: %v", err)
	}
	if _, err := audits.ParseStatus("done"); err == nil {
		t.Error("ParseStatus(done): expected error")
	}
}
