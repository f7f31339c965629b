package risk

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted on every surface.
const DateLayout = "2006-01-02"

// Parameters is the user-facing input of one VaR calculation.
type Parameters struct {
	Tickers         []string  `json:"tickers" validate:"required,min=1,unique,dive,required"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	RollingWindow   int       `json:"rolling_window" validate:"min=1,max=252"`
	ConfidenceLevel float64   `json:"confidence_level" validate:"gte=0.9,lte=0.99"`
	PortfolioValue  float64   `json:"portfolio_value" validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the parameter ranges. Failures wrap ErrInvalidInput.
func (p Parameters) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if math.IsInf(p.PortfolioValue, 0) {
		return fmt.Errorf("%w: portfolio_value must be finite", ErrInvalidInput)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}
	if !p.StartDate.Before(p.EndDate) {
		return fmt.Errorf("%w: start_date %s must be before end_date %s",
			ErrInvalidInput, p.StartDate.Format(DateLayout), p.EndDate.Format(DateLayout))
	}
	return nil
}

// WithDefaults fills zero-valued fields from defaults.
func (p Parameters) WithDefaults(defaults Parameters) Parameters {
	if len(p.Tickers) == 0 {
		p.Tickers = append([]string(nil), defaults.Tickers...)
	}
	if p.StartDate.IsZero() {
		p.StartDate = defaults.StartDate
	}
	if p.EndDate.IsZero() {
		p.EndDate = defaults.EndDate
	}
	if p.RollingWindow == 0 {
		p.RollingWindow = defaults.RollingWindow
	}
	if p.ConfidenceLevel == 0 {
		p.ConfidenceLevel = defaults.ConfidenceLevel
	}
	if p.PortfolioValue == 0 {
		p.PortfolioValue = defaults.PortfolioValue
	}
	return p
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, s)
	}
	return d, nil
}

// TruncateDay drops the clock part of t, keeping its calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "unique":
		return field + " must not contain duplicates"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
