package risk

import (
	"fmt"
	"math"

	"github.com/aristath/varcalc/pkg/formulas"
)

// EstimateHistorical computes VaR by historical simulation: the negated
// (1 - confidence) percentile of the rolling returns, scaled by the
// portfolio value.
//
// The result is not clamped. If the lower tail of the sample is positive the
// estimate is negative, meaning the sample shows a gain at that confidence.
func EstimateHistorical(series RollingReturnSeries, confidenceLevel, portfolioValue float64) (VaREstimate, error) {
	if err := checkConfidence(confidenceLevel); err != nil {
		return VaREstimate{}, err
	}
	if err := checkPortfolioValue(portfolioValue); err != nil {
		return VaREstimate{}, err
	}
	if series.Len() < 2 {
		return VaREstimate{}, fmt.Errorf("%w: need at least 2 rolling returns, got %d", ErrInsufficientData, series.Len())
	}

	tail := formulas.Percentile(series.Values, (1-confidenceLevel)*100)
	return VaREstimate{
		Method:          MethodHistorical,
		Value:           -tail * portfolioValue,
		ConfidenceLevel: confidenceLevel,
		HorizonDays:     series.Window,
	}, nil
}

func checkConfidence(c float64) error {
	if math.IsNaN(c) || c <= 0 || c >= 1 {
		return fmt.Errorf("%w: confidence level must be in (0, 1), got %v", ErrInvalidInput, c)
	}
	return nil
}

func checkPortfolioValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: portfolio value must be positive, got %v", ErrInvalidInput, v)
	}
	return nil
}
