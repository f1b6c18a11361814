// Package scoring computes deterministic A/B/C supplier grades from
// extraction records. The scorer is a pure function: identical records
// always produce the identical grade and rationale, and missing optional
// fields lower the score without erroring.
package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Grade is an A/B/C supplier qualification tier.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// ErrInvalidGrade indicates a grade outside {A, B, C}.
var ErrInvalidGrade = errors.New("grade must be A, B, or C")

// ParseGrade validates and normalizes a grade string.
func ParseGrade(s string) (Grade, error) {
	switch Grade(strings.ToUpper(strings.TrimSpace(s))) {
	case GradeA:
		return GradeA, nil
	case GradeB:
		return GradeB, nil
	case GradeC:
		return GradeC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
}

func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC:
		return true
	}
	return false
}

func (g Grade) String() string {
	return string(g)
}
