package plots

import (
	"fmt"
	"math"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// PercentageTolerance is how far the split total may stray from 100.
const PercentageTolerance = 0.01

// sumEpsilon absorbs float64 error so a total exactly on the tolerance passes.
const sumEpsilon = 1e-9

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AreaFor converts a percentage of a land into an absolute area.
func AreaFor(percentage, landSize float64) float64 {
	return Round2(percentage / 100 * landSize)
}

// ValidateSplits checks a division request before anything is written.
func ValidateSplits(splits []models.PlotSplit, maxPlots int) error {
	if len(splits) == 0 {
		return fmt.Errorf("%w: at least one plot is required", models.ErrInvalidInput)
	}
	if maxPlots > 0 && len(splits) > maxPlots {
		return fmt.Errorf("%w: this land allows at most %d crops, got %d", models.ErrInvalidInput, maxPlots, len(splits))
	}

	var total float64
	for i, split := range splits {
		if split.Percentage <= 0 || split.Percentage > 100 {
			return fmt.Errorf("%w: plot %d percentage must be greater than 0 and at most 100, got %g", models.ErrInvalidInput, i+1, split.Percentage)
		}
		total += split.Percentage
	}

	if math.Abs(total-100) > PercentageTolerance+sumEpsilon {
		return fmt.Errorf("%w: plot percentages must add up to 100, got %g", models.ErrInvalidInput, Round2(total))
	}
	return nil
}
