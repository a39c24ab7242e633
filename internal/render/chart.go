package render

import (
	"fmt"
	"image/color"
	"io"

	"epigrid/internal/core"
	"epigrid/internal/sims/sir"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartOptions controls the time-series chart.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
	// Cells fixes the top of the y axis; zero uses the mean's own maximum.
	Cells int
	// RecoveryLabel names the recovery rate in the title, "alpha" by default.
	RecoveryLabel string
}

func (o ChartOptions) normalized() ChartOptions {
	if o.Width <= 0 {
		o.Width = 900
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	if o.RecoveryLabel == "" {
		o.RecoveryLabel = "alpha"
	}
	return o
}

func chartColor(c color.RGBA, alpha uint8) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: alpha}
}

// WriteChart renders the mean S/I/R trajectory as a PNG. When visible is
// non-empty its series are drawn faintly underneath the means.
func WriteChart(w io.Writer, p sir.Params, mean sir.AggregateResult, visible []core.StepRecord, opts ChartOptions) error {
	if len(mean.Steps) == 0 {
		return fmt.Errorf("chart: empty mean trajectory")
	}
	opts = opts.normalized()

	n := len(mean.Steps)
	xs := make([]float64, n)
	cols := [core.NumStates][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	for k, m := range mean.Steps {
		xs[k] = float64(m.T)
		cols[core.Susceptible][k] = m.S
		cols[core.Infected][k] = m.I
		cols[core.Recovered][k] = m.R
	}

	yMax := float64(opts.Cells)
	if yMax <= 0 {
		for _, col := range cols {
			for _, v := range col {
				yMax = max(yMax, v)
			}
		}
	}
	xMax := max(xs[n-1], 1)

	var series []chart.Series
	names := [core.NumStates]string{"S", "I", "R"}
	colors := StateColors()
	if len(visible) > 0 {
		vx := make([]float64, len(visible))
		vcols := [core.NumStates][]float64{make([]float64, len(visible)), make([]float64, len(visible)), make([]float64, len(visible))}
		for k, rec := range visible {
			vx[k] = float64(rec.T)
			vcols[core.Susceptible][k] = float64(rec.S)
			vcols[core.Infected][k] = float64(rec.I)
			vcols[core.Recovered][k] = float64(rec.R)
		}
		for s := range vcols {
			series = append(series, chart.ContinuousSeries{
				Name:    names[s] + " (run 0)",
				XValues: vx,
				YValues: vcols[s],
				Style: chart.Style{
					StrokeColor: chartColor(colors[s], 70),
					StrokeWidth: 1.5,
				},
			})
		}
	}
	for s := range cols {
		series = append(series, chart.ContinuousSeries{
			Name:    names[s] + " mean",
			XValues: xs,
			YValues: cols[s],
			Style: chart.Style{
				StrokeColor: chartColor(colors[s], 255),
				StrokeWidth: 3,
			},
		})
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("SIR %dx%d r=%d beta=%.3g %s=%.3g", p.Rows, p.Cols, p.Radius, p.Beta, opts.RecoveryLabel, p.Alpha)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  "t",
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "cells",
			Range: &chart.ContinuousRange{Min: 0, Max: max(yMax, 1)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
