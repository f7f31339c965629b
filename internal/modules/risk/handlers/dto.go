package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/aristath/varcalc/pkg/money"
)

// tickerList accepts either ["AAPL","MSFT"] or "AAPL MSFT"
type tickerList []string

func (t *tickerList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = risk.ParseTickers(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// CalculateRequest is the JSON body of a VaR request. Omitted fields take
// the server defaults.
type CalculateRequest struct {
	Tickers         tickerList `json:"tickers"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	RollingWindow   int        `json:"rolling_window"`
	ConfidenceLevel float64    `json:"confidence_level"`
	PortfolioValue  float64    `json:"portfolio_value"`
}

func (req CalculateRequest) toParameters() (risk.Parameters, error) {
	params := risk.Parameters{
		Tickers:         []string(req.Tickers),
		RollingWindow:   req.RollingWindow,
		ConfidenceLevel: req.ConfidenceLevel,
		PortfolioValue:  req.PortfolioValue,
	}

	var err error
	if req.StartDate != "" {
		if params.StartDate, err = risk.ParseDate(req.StartDate); err != nil {
			return risk.Parameters{}, fmt.Errorf("start_date: %w", err)
		}
	}
	if req.EndDate != "" {
		if params.EndDate, err = risk.ParseDate(req.EndDate); err != nil {
			return risk.Parameters{}, fmt.Errorf("end_date: %w", err)
		}
	}
	return params, nil
}

type estimateResponse struct {
	Method          string  `json:"method"`
	Value           float64 `json:"value"`
	ConfidenceLevel float64 `json:"confidence_level"`
	HorizonDays     int     `json:"horizon_days"`
}

type inputsResponse struct {
	Tickers         []string `json:"tickers"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	RollingWindow   int      `json:"rolling_window"`
	ConfidenceLevel float64  `json:"confidence_level"`
	PortfolioValue  float64  `json:"portfolio_value"`
}

type rollingResponse struct {
	Window int       `json:"window"`
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

type summaryResponse struct {
	PortfolioValue  string `json:"portfolio_value"`
	ConfidenceLevel string `json:"confidence_level"`
	HistoricalVaR   string `json:"historical_var"`
	ParametricVaR   string `json:"parametric_var"`
}

type resultResponse struct {
	ID             string           `json:"id"`
	CreatedAt      string           `json:"created_at"`
	Inputs         inputsResponse   `json:"inputs"`
	Historical     estimateResponse `json:"historical"`
	Parametric     estimateResponse `json:"parametric"`
	RollingReturns *rollingResponse `json:"rolling_returns,omitempty"`
	Summary        summaryResponse  `json:"summary"`
}

func newEstimateResponse(est risk.VaREstimate) estimateResponse {
	return estimateResponse{
		Method:          string(est.Method),
		Value:           est.Value,
		ConfidenceLevel: est.ConfidenceLevel,
		HorizonDays:     est.HorizonDays,
	}
}

func newResultResponse(result risk.Result, withRolling bool) resultResponse {
	in := result.Inputs
	resp := resultResponse{
		ID:        result.ID,
		CreatedAt: result.CreatedAt.Format(time.RFC3339),
		Inputs: inputsResponse{
			Tickers:         in.Tickers,
			StartDate:       in.StartDate.Format(risk.DateLayout),
			EndDate:         in.EndDate.Format(risk.DateLayout),
			RollingWindow:   in.RollingWindow,
			ConfidenceLevel: in.ConfidenceLevel,
			PortfolioValue:  in.PortfolioValue,
		},
		Historical: newEstimateResponse(result.Historical),
		Parametric: newEstimateResponse(result.Parametric),
		Summary: summaryResponse{
			PortfolioValue:  money.FormatUSD(in.PortfolioValue),
			ConfidenceLevel: money.FormatPercent(in.ConfidenceLevel, 2),
			HistoricalVaR:   money.FormatUSD(result.Historical.Value),
			ParametricVaR:   money.FormatUSD(result.Parametric.Value),
		},
	}

	if withRolling {
		rolling := &rollingResponse{
			Window: result.RollingReturns.Window,
			Dates:  make([]string, len(result.RollingReturns.Dates)),
			Values: result.RollingReturns.Values,
		}
		for i, d := range result.RollingReturns.Dates {
			rolling.Dates[i] = d.Format(risk.DateLayout)
		}
		resp.RollingReturns = rolling
	}
	return resp
}
