// Package main is a command line VaR calculator.
//
//	varcalc -tickers "AAPL MSFT GOOG" -start 2020-01-01 -window 20 -confidence 0.95 -value 100000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"github.com/aristath/varcalc/internal/clients/yahoo"
	"github.com/aristath/varcalc/internal/modules/charts"
	"github.com/aristath/varcalc/internal/modules/history"
	"github.com/aristath/varcalc/internal/modules/prices"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/aristath/varcalc/pkg/formulas"
	"github.com/aristath/varcalc/pkg/logger"
	"github.com/aristath/varcalc/pkg/money"
)

type options struct {
	tickers    string
	start      string
	end        string
	window     int
	confidence float64
	value      float64
	pricesPath string
	chartDir   string
	retries    int
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("varcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.tickers, "tickers", "AAPL MSFT GOOG", "space or comma separated tickers")
	fs.StringVar(&opts.start, "start", "2020-01-01", "start date (YYYY-MM-DD)")
	fs.StringVar(&opts.end, "end", "", "end date, exclusive (YYYY-MM-DD, default today)")
	fs.IntVar(&opts.window, "window", 20, "rolling window in trading days")
	fs.Float64Var(&opts.confidence, "confidence", 0.95, "confidence level between 0.90 and 0.99")
	fs.Float64Var(&opts.value, "value", 100000, "portfolio value")
	fs.StringVar(&opts.pricesPath, "prices", "", "read prices from a CSV file instead of Yahoo Finance")
	fs.StringVar(&opts.chartDir, "chart-dir", "", "write historical.png and parametric.png into this directory")
	fs.IntVar(&opts.retries, "retries", 3, "Yahoo Finance retry attempts")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (o options) parameters() (risk.Parameters, error) {
	params := risk.Parameters{
		Tickers:         risk.ParseTickers(o.tickers),
		RollingWindow:   o.window,
		ConfidenceLevel: o.confidence,
		PortfolioValue:  o.value,
	}

	var err error
	if params.StartDate, err = risk.ParseDate(o.start); err != nil {
		return risk.Parameters{}, fmt.Errorf("-start: %w", err)
	}
	if o.end != "" {
		if params.EndDate, err = risk.ParseDate(o.end); err != nil {
			return risk.Parameters{}, fmt.Errorf("-end: %w", err)
		}
	}
	return params, nil
}

func newSource(o options, log zerolog.Logger) (risk.PriceSource, error) {
	if o.pricesPath != "" {
		return prices.LoadCSVFile(o.pricesPath)
	}
	return prices.NewYahooSource(yahoo.NewClient(log, o.retries), log), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: opts.logLevel, Pretty: true, Output: stderr})

	params, err := opts.parameters()
	if err != nil {
		return err
	}

	source, err := newSource(opts, log)
	if err != nil {
		return err
	}

	service := risk.NewService(source, history.NewMemoryStore(), nil, params, log)
	result, err := service.Calculate(ctx, params)
	if err != nil {
		return err
	}

	inputTable(result.Inputs, stdout).Render()
	fmt.Fprintln(stdout)
	outputTable(*result, stdout).Render()

	if opts.chartDir != "" {
		if err := writeCharts(*result, opts.chartDir, log); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nCharts written to %s\n", opts.chartDir)
	}
	return nil
}

func inputTable(in risk.Parameters, out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Input Summary")
	t.AppendRows([]table.Row{
		{"Tickers", strings.Join(in.Tickers, " ")},
		{"Start Date", in.StartDate.Format(risk.DateLayout)},
		{"End Date", in.EndDate.Format(risk.DateLayout)},
		{"Rolling Window", fmt.Sprintf("%d days", in.RollingWindow)},
		{"Confidence Level", money.FormatPercent(in.ConfidenceLevel, 2)},
		{"Portfolio Value", money.FormatUSD(in.PortfolioValue)},
	})
	return t
}

func outputTable(result risk.Result, out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("VaR Calculation Output")
	t.AppendHeader(table.Row{"Method", "VaR Value"})
	t.AppendRows([]table.Row{
		{"Historical", money.FormatUSD(result.Historical.Value)},
		{"Parametric", money.FormatUSD(result.Parametric.Value)},
	})

	rolling := result.RollingReturns.Values
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d-day returns: %d", result.RollingReturns.Window, len(rolling)),
		fmt.Sprintf("mean %.4f%%, sd %.4f%%", 100*formulas.Mean(rolling), 100*formulas.StdDev(rolling)),
	})
	return t
}

func writeCharts(result risk.Result, dir string, log zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	renderer := charts.NewRenderer(charts.DefaultBins, log)
	for _, method := range []risk.Method{risk.MethodHistorical, risk.MethodParametric} {
		img, err := renderer.RenderDistribution(result, method)
		if err != nil {
			return fmt.Errorf("failed to render %s chart: %w", method, err)
		}
		path := filepath.Join(dir, string(method)+".png")
		if err := os.WriteFile(path, img, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}
