package risk

import (
	"fmt"
	"math"

	"github.com/aristath/varcalc/pkg/formulas"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// weightSumTolerance bounds how far the weights may sum away from 1.
const weightSumTolerance = 1e-9

// AnnualizedCovariance returns the sample covariance (n-1 denominator) of
// the daily log returns, scaled by 252 trading days.
func AnnualizedCovariance(returns *LogReturnMatrix) *mat.SymDense {
	var daily, annual mat.SymDense
	stat.CovarianceMatrix(&daily, returns.Dense(), nil)
	annual.ScaleSym(formulas.TradingDaysPerYear, &daily)
	return &annual
}

// PortfolioVolatility returns sqrt(w' Σ w). Tiny negative variances from
// rounding are treated as zero.
func PortfolioVolatility(cov mat.Symmetric, weights []float64) float64 {
	w := mat.NewVecDense(len(weights), append([]float64(nil), weights...))
	variance := mat.Inner(w, cov, w)
	return math.Sqrt(math.Max(variance, 0))
}

// EstimateParametric computes variance-covariance VaR assuming normally
// distributed returns:
//
//	VaR = σ_annual * z(confidence) * sqrt(horizonDays/252) * portfolioValue
//
// The square-root-of-time scaling assumes i.i.d. returns; it is an
// approximation for multi-day horizons.
func EstimateParametric(returns *LogReturnMatrix, weights []float64, confidenceLevel float64, horizonDays int, portfolioValue float64) (VaREstimate, error) {
	if returns == nil || returns.Width() == 0 {
		return VaREstimate{}, fmt.Errorf("%w: return matrix has no instruments", ErrInvalidInput)
	}
	if len(weights) != returns.Width() {
		return VaREstimate{}, fmt.Errorf("%w: %d weights for %d instruments", ErrInvalidInput, len(weights), returns.Width())
	}
	if sum := floats.Sum(weights); !(math.Abs(sum-1) <= weightSumTolerance) {
		return VaREstimate{}, fmt.Errorf("%w: weights sum to %v, expected 1", ErrInvalidInput, sum)
	}
	if err := checkConfidence(confidenceLevel); err != nil {
		return VaREstimate{}, err
	}
	if horizonDays < 1 {
		return VaREstimate{}, fmt.Errorf("%w: horizon must be >= 1 day, got %d", ErrInvalidInput, horizonDays)
	}
	if err := checkPortfolioValue(portfolioValue); err != nil {
		return VaREstimate{}, err
	}
	if returns.Len() < returns.Width()+1 {
		return VaREstimate{}, fmt.Errorf("%w: need at least %d return rows for %d instruments, got %d",
			ErrInsufficientData, returns.Width()+1, returns.Width(), returns.Len())
	}

	sigma := PortfolioVolatility(AnnualizedCovariance(returns), weights)
	z := formulas.ZScore(confidenceLevel)

	return VaREstimate{
		Method:          MethodParametric,
		Value:           sigma * z * formulas.HorizonScale(horizonDays) * portfolioValue,
		ConfidenceLevel: confidenceLevel,
		HorizonDays:     horizonDays,
	}, nil
}
