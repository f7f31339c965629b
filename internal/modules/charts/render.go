package charts

import (
	"fmt"
	"strings"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/aristath/varcalc/pkg/money"
	"github.com/rs/zerolog"
	"github.com/vicanso/go-charts/v2"
)

const (
	chartWidth  = 1000
	chartHeight = 600
)

// Renderer draws distribution charts for completed runs
type Renderer struct {
	bins int
	log  zerolog.Logger
}

// NewRenderer creates a renderer. bins < 1 uses DefaultBins.
func NewRenderer(bins int, log zerolog.Logger) *Renderer {
	if bins < 1 {
		bins = DefaultBins
	}
	return &Renderer{
		bins: bins,
		log:  log.With().Str("service", "charts").Logger(),
	}
}

// Title is the chart heading for one estimate, e.g. "Historical VaR = $7,079.36".
func Title(est risk.VaREstimate) string {
	name := string(est.Method)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s VaR = %s", name, money.FormatUSD(est.Value))
}

// Subtitle describes the plotted distribution
func Subtitle(horizonDays int) string {
	return fmt.Sprintf("Distribution of Portfolio's %d-Day Returns", horizonDays)
}

// LegendLabel names the tail series, e.g. "VaR at 95% confidence level".
func LegendLabel(confidence float64) string {
	return fmt.Sprintf("VaR at %s confidence level", money.FormatPercent(confidence, 0))
}

// DistributionBins returns the histogram of rolling returns in currency units
func (r *Renderer) DistributionBins(result risk.Result) []Bin {
	scaled := make([]float64, len(result.RollingReturns.Values))
	for i, v := range result.RollingReturns.Values {
		scaled[i] = v * result.Inputs.PortfolioValue
	}
	return Histogram(scaled, r.bins)
}

// RenderDistribution returns a PNG histogram of the run's rolling returns,
// titled with the VaR of the given method.
func (r *Renderer) RenderDistribution(result risk.Result, method risk.Method) ([]byte, error) {
	est, ok := result.Estimate(method)
	if !ok {
		return nil, fmt.Errorf("%w: unknown method %q", risk.ErrInvalidInput, method)
	}

	bins := r.DistributionBins(result)
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: run %s has no rolling returns to plot", risk.ErrInsufficientData, result.ID)
	}

	labels := make([]string, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.0f", b.Mid())
	}
	// Losses beyond -VaR are drawn as a separate, highlighted series.
	body, tail := SplitAt(bins, -est.Value)

	painter, err := charts.BarRender([][]float64{body, tail},
		charts.TitleTextOptionFunc(Title(est), Subtitle(result.RollingReturns.Window)),
		charts.XAxisDataOptionFunc(labels),
		charts.LegendOptionFunc(charts.LegendOption{Data: []string{"Returns", LegendLabel(est.ConfidenceLevel)}}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", method, err)
	}

	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s chart: %w", method, err)
	}

	r.log.Debug().Str("run_id", result.ID).Str("method", string(method)).Int("bytes", len(img)).Msg("Rendered distribution chart")
	return img, nil
}
