package chart

import (
	"fmt"

	"tradescape/internal/indicator"
	"tradescape/internal/model"
)

const panelGap = 0.03

// minShapeWidth is the stroke floor applied to every redrawn annotation so
// user-drawn shapes stay crisp at any zoom level.
const minShapeWidth = 2.0

// Build assembles the multi-panel figure from the computed series, the
// indicator columns, and the workspace (settings, shapes, view state).
//
// Panel order is fixed: price first, then RSI when requested, then MACD.
func Build(series *model.TimeSeries, ind model.IndicatorSet, ws model.Workspace) *Figure {
	st := ws.Settings
	hasRSI := st.HasIndicator(indicator.CodeRSI)
	hasMACD := st.HasIndicator(indicator.CodeMACD)

	panels := 1
	if hasRSI {
		panels++
	}
	if hasMACD {
		panels++
	}
	domains := panelDomains(panels)

	x := formatTimes(series)
	fig := &Figure{}
	fig.Layout = Layout{
		Title:       fmt.Sprintf("%s - %s @ %s", st.Stock, st.TimePeriod, st.Interval),
		ShowLegend:  true,
		PlotBGColor: st.BGColor,
		UIRevision:  "static",
		XAxis: &Axis{
			Title:      "Date and Time",
			Type:       "date",
			TickFormat: "%Y-%m-%d %H:%M",
		},
	}

	// Price panel axis. With position "both" the left axis keeps the grid
	// and a second grid-less axis overlays it on the right.
	priceAxis := &Axis{
		Title:  "Stock Price",
		Side:   "left",
		Dtick:  float64(st.YAxisDtick),
		Domain: domains[0],
		Anchor: "x",
	}
	if st.YAxisPosition == "right" {
		priceAxis.Side = "right"
	}
	axes := []*Axis{priceAxis}

	fig.Data = append(fig.Data, priceTrace(st.ChartType, x, series))
	fig.Data = append(fig.Data, overlayTraces(st, x, ind)...)

	titles := []Annotation{panelTitle("Price Chart", domains[0])}

	if hasRSI {
		axisIdx := len(axes)
		axes = append(axes, &Axis{
			Domain: domains[axisIdx],
			Range:  []float64{0, 100},
			Anchor: "x",
		})
		fig.Data = append(fig.Data, Trace{
			Type:  "scatter",
			Name:  "RSI",
			X:     x,
			Y:     nullable(ind[indicator.ColRSI]),
			Mode:  "lines",
			YAxis: axisRef(axisIdx),
			Line:  &LineStyle{Color: "magenta", Width: 2, Shape: "linear"},
		})
		titles = append(titles, panelTitle("RSI", domains[axisIdx]))
	}

	if hasMACD {
		axisIdx := len(axes)
		axes = append(axes, &Axis{Domain: domains[axisIdx], Anchor: "x"})
		fig.Data = append(fig.Data,
			Trace{
				Type:  "scatter",
				Name:  "MACD",
				X:     x,
				Y:     nullable(ind[indicator.ColMACD]),
				Mode:  "lines",
				YAxis: axisRef(axisIdx),
				Line:  &LineStyle{Color: "brown", Width: 2, Shape: "linear"},
			},
			Trace{
				Type:  "scatter",
				Name:  "MACD Signal",
				X:     x,
				Y:     nullable(ind[indicator.ColMACDSignal]),
				Mode:  "lines",
				YAxis: axisRef(axisIdx),
				Line:  &LineStyle{Color: "grey", Dash: "dot", Width: 2, Shape: "linear"},
			},
		)
		titles = append(titles, panelTitle("MACD", domains[axisIdx]))
	}

	if st.YAxisPosition == "both" {
		axes = append(axes, &Axis{
			Title:      "Stock Price",
			Side:       "right",
			Overlaying: "y",
			ShowGrid:   boolPtr(false),
			Dtick:      float64(st.YAxisDtick),
		})
	}
	for i, axis := range axes {
		setAxis(&fig.Layout, i, axis)
	}

	// Average reference line: a horizontal layout shape, not a trace.
	if st.HasIndicator(indicator.CodeAverage) && series.Len() > 0 {
		avg := indicator.AverageClose(series)
		fig.Layout.Shapes = append(fig.Layout.Shapes, model.Shape{
			Type: "line",
			XRef: "paper",
			YRef: "y",
			X0:   0.0,
			X1:   1.0,
			Y0:   avg,
			Y1:   avg,
			Line: model.ShapeLine{Color: "black", Dash: "dash"},
		})
		titles = append(titles, Annotation{Text: "Average", X: 1, Y: avg, XRef: "paper", YRef: "y"})
	}

	// Persisted annotations redraw on top of the price panel with the
	// stroke floor pinned, regardless of the stored width.
	for _, shape := range ws.Shapes {
		shape.Line.Width = minShapeWidth
		fig.Layout.Shapes = append(fig.Layout.Shapes, shape)
	}

	fig.Layout.Annotations = titles
	// The stored view state wins over every default above.
	fig.Layout.ViewState = ws.GraphState
	return fig
}

// ErrorFigure is the placeholder emitted when a fetch fails; the message
// is surfaced in the title and no data is plotted.
func ErrorFigure(msg string) *Figure {
	return &Figure{
		Data:   []Trace{},
		Layout: Layout{Title: "Error fetching data: " + msg},
	}
}

func priceTrace(chartType string, x []string, series *model.TimeSeries) Trace {
	switch chartType {
	case "bar":
		return Trace{Type: "bar", Name: "Bar Chart", X: x, Y: nullable(series.Closes())}
	case "line":
		return Trace{
			Type: "scatter", Name: "Line Chart", X: x, Y: nullable(series.Closes()),
			Mode: "lines", Line: &LineStyle{Width: 2, Shape: "linear"},
		}
	case "area":
		return Trace{
			Type: "scatter", Name: "Area Chart", X: x, Y: nullable(series.Closes()),
			Mode: "lines", Fill: "tozeroy", Line: &LineStyle{Width: 2, Shape: "linear"},
		}
	default:
		tr := Trace{Type: "candlestick", Name: "Candlestick", X: x}
		tr.Open = make([]float64, series.Len())
		tr.High = make([]float64, series.Len())
		tr.Low = make([]float64, series.Len())
		tr.Close = make([]float64, series.Len())
		for i, b := range series.Bars {
			tr.Open[i] = b.Open
			tr.High[i] = b.High
			tr.Low[i] = b.Low
			tr.Close[i] = b.Close
		}
		tr.Increasing = &Direction{Line: LineStyle{Color: "green"}}
		tr.Decreasing = &Direction{Line: LineStyle{Color: "red"}}
		return tr
	}
}

// overlayTraces returns the moving-average and Bollinger overlays, which
// live on the price panel only.
func overlayTraces(st model.Settings, x []string, ind model.IndicatorSet) []Trace {
	var traces []Trace
	if st.HasIndicator(indicator.CodeMA) {
		traces = append(traces,
			Trace{
				Type: "scatter", Name: "Short SMA", X: x, Y: nullable(ind[indicator.ColSMAShort]),
				Mode: "lines", Line: &LineStyle{Color: "blue", Dash: "dot", Width: 2, Shape: "linear"},
			},
			Trace{
				Type: "scatter", Name: "Long SMA", X: x, Y: nullable(ind[indicator.ColSMALong]),
				Mode: "lines", Line: &LineStyle{Color: "orange", Dash: "dot", Width: 2, Shape: "linear"},
			},
		)
	}
	if st.HasIndicator(indicator.CodeBoll) {
		traces = append(traces,
			Trace{
				Type: "scatter", Name: "Upper Bollinger Band", X: x, Y: nullable(ind[indicator.ColUpperBand]),
				Mode: "lines", Line: &LineStyle{Color: "purple", Dash: "dot", Width: 2, Shape: "linear"},
			},
			Trace{
				Type: "scatter", Name: "Lower Bollinger Band", X: x, Y: nullable(ind[indicator.ColLowerBand]),
				Mode: "lines", Line: &LineStyle{Color: "purple", Dash: "dot", Width: 2, Shape: "linear"},
			},
		)
	}
	return traces
}

// panelDomains splits the [0,1] vertical range into n stacked panels, top
// down, with a small gap between panels.
func panelDomains(n int) [][]float64 {
	h := (1.0 - panelGap*float64(n-1)) / float64(n)
	out := make([][]float64, n)
	top := 1.0
	for i := 0; i < n; i++ {
		out[i] = []float64{top - h, top}
		top -= h + panelGap
	}
	return out
}

func panelTitle(text string, domain []float64) Annotation {
	return Annotation{Text: text, X: 0.5, Y: domain[1], XRef: "paper", YRef: "paper"}
}

// axisRef names the i-th logical y-axis the way traces reference it.
func axisRef(i int) string {
	if i == 0 {
		return "y"
	}
	return fmt.Sprintf("y%d", i+1)
}

func setAxis(l *Layout, i int, axis *Axis) {
	switch i {
	case 0:
		l.YAxis = axis
	case 1:
		l.YAxis2 = axis
	case 2:
		l.YAxis3 = axis
	case 3:
		l.YAxis4 = axis
	}
}

func formatTimes(series *model.TimeSeries) []string {
	out := make([]string, series.Len())
	for i, b := range series.Bars {
		out[i] = b.Time.Format("2006-01-02 15:04")
	}
	return out
}
