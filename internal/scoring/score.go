package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vantagesource/qualis/internal/extraction"
)

// Point values and grade thresholds. These are implementation-chosen
// constants; the factors themselves (supplier type, size tiers,
// certifications, market diversity, photo evidence, observation sentiment)
// are fixed, the weights are tunable in one place.
const (
	pointsManufacturer = 20
	pointsUnknownType  = 5

	pointsEmployeesLarge  = 15 // >= 500
	pointsEmployeesMedium = 10 // >= 100
	pointsEmployeesSmall  = 5  // >= 20

	pointsAreaLarge  = 10 // >= 10000 sqm
	pointsAreaMedium = 6  // >= 2000 sqm
	pointsAreaSmall  = 3  // >= 500 sqm

	pointsLinesMany = 8 // >= 5
	pointsLinesSome = 5 // >= 2
	pointsLinesOne  = 2

	pointsPerCertification = 7
	maxCertificationPoints = 21

	pointsMarketsBroad  = 8 // >= 3 regions
	pointsMarketsPair   = 5
	pointsMarketsSingle = 2

	pointsMachineryPhotos = 10

	pointsSentimentStrong = 10 // >= 75% positive
	pointsSentimentMixed  = 5  // >= 50% positive
	pointsSentimentPoor   = -5 // < 25% positive

	thresholdA = 65
	thresholdB = 40
)

// recognizedCertifications are the quality and compliance standards that
// contribute to the score. Unrecognized certificate names are ignored
// rather than trusted.
var recognizedCertifications = map[string]bool{
	"iso 9001":  true,
	"iso 14001": true,
	"iso 45001": true,
	"iso 13485": true,
	"bsci":      true,
	"sedex":     true,
	"smeta":     true,
	"ce":        true,
	"ul":        true,
	"rohs":      true,
	"reach":     true,
	"fsc":       true,
	"gots":      true,
	"oeko-tex":  true,
	"gmp":       true,
	"haccp":     true,
	"brc":       true,
}

type factor struct {
	points int
	label  string
}

// Score grades an extraction record. It returns the grade and a short
// rationale referencing the dominant contributing factors. Absent optional
// fields simply contribute no points.
func Score(r *extraction.Record) (Grade, string) {
	factors := collectFactors(r)

	total := 0
	for _, f := range factors {
		total += f.points
	}

	grade := GradeC
	switch {
	case total >= thresholdA:
		grade = GradeA
	case total >= thresholdB:
		grade = GradeB
	}

	return grade, composeReason(grade, total, factors)
}

func collectFactors(r *extraction.Record) []factor {
	var factors []factor

	add := func(points int, label string) {
		if points != 0 {
			factors = append(factors, factor{points: points, label: label})
		}
	}

	switch r.SupplierType {
	case extraction.SupplierManufacturer:
		add(pointsManufacturer, "manufacturer profile")
	case extraction.SupplierUnknown:
		add(pointsUnknownType, "unverified supplier type")
	}

	if r.EmployeeCount != nil {
		n := *r.EmployeeCount
		switch {
		case n >= 500:
			add(pointsEmployeesLarge, fmt.Sprintf("workforce of %d", n))
		case n >= 100:
			add(pointsEmployeesMedium, fmt.Sprintf("workforce of %d", n))
		case n >= 20:
			add(pointsEmployeesSmall, fmt.Sprintf("workforce of %d", n))
		}
	}

	if r.FactoryAreaSqm != nil {
		area := *r.FactoryAreaSqm
		switch {
		case area >= 10000:
			add(pointsAreaLarge, fmt.Sprintf("factory area %.0f sqm", area))
		case area >= 2000:
			add(pointsAreaMedium, fmt.Sprintf("factory area %.0f sqm", area))
		case area >= 500:
			add(pointsAreaSmall, fmt.Sprintf("factory area %.0f sqm", area))
		}
	}

	if r.ProductionLinesCount != nil {
		lines := *r.ProductionLinesCount
		switch {
		case lines >= 5:
			add(pointsLinesMany, fmt.Sprintf("%d production lines", lines))
		case lines >= 2:
			add(pointsLinesSome, fmt.Sprintf("%d production lines", lines))
		case lines >= 1:
			add(pointsLinesOne, "single production line")
		}
	}

	if certs := countRecognized(r.Certifications); certs > 0 {
		points := min(certs*pointsPerCertification, maxCertificationPoints)
		add(points, fmt.Sprintf("%d recognized certifications", certs))
	}

	if regions := len(r.MarketsServed); regions > 0 {
		switch {
		case regions >= 3:
			add(pointsMarketsBroad, fmt.Sprintf("serves %d market regions", regions))
		case regions == 2:
			add(pointsMarketsPair, "serves 2 market regions")
		default:
			add(pointsMarketsSingle, "serves a single market region")
		}
	}

	if r.HasMachineryPhotos {
		add(pointsMachineryPhotos, "machinery photographs verified")
	}

	pos, neg := len(r.PositivePoints), len(r.NegativePoints)
	if pos+neg > 0 {
		ratio := float64(pos) / float64(pos+neg)
		switch {
		case ratio >= 0.75:
			add(pointsSentimentStrong, fmt.Sprintf("%d of %d observations positive", pos, pos+neg))
		case ratio >= 0.5:
			add(pointsSentimentMixed, fmt.Sprintf("%d of %d observations positive", pos, pos+neg))
		case ratio < 0.25:
			add(pointsSentimentPoor, fmt.Sprintf("only %d of %d observations positive", pos, pos+neg))
		}
	}

	return factors
}

func countRecognized(certs []string) int {
	count := 0
	for _, c := range certs {
		if recognizedCertifications[strings.ToLower(strings.TrimSpace(c))] {
			count++
		}
	}
	return count
}

// composeReason names the top contributing factors in descending point
// order. Sorting is stable so equal-weight factors keep their collection
// order and the output stays deterministic.
func composeReason(grade Grade, total int, factors []factor) string {
	if len(factors) == 0 {
		return fmt.Sprintf("Grade %s (score %d): insufficient audit evidence", grade, total)
	}

	sorted := slices.Clone(factors)
	slices.SortStableFunc(sorted, func(a, b factor) int {
		return b.points - a.points
	})

	limit := min(len(sorted), 3)
	labels := make([]string, 0, limit)
	for _, f := range sorted[:limit] {
		labels = append(labels, f.label)
	}

	return fmt.Sprintf("Grade %s (score %d): %s", grade, total, strings.Join(labels, "; "))
}
