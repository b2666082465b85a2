package chart

import (
	"encoding/json"
	"math"

	"tradescape/internal/model"
)

// Figure is the render-ready description handed to the presentation layer.
// The shape mirrors a plotly figure: a flat trace list plus a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// LineStyle describes a trace or shape stroke.
type LineStyle struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
	Shape string  `json:"shape,omitempty"`
}

// Direction styles one side of a candlestick.
type Direction struct {
	Line LineStyle `json:"line"`
}

// Trace is one plotted series. Y values use pointers so undefined points
// serialize as null rather than an invalid NaN literal.
type Trace struct {
	Type       string     `json:"type"`
	Name       string     `json:"name,omitempty"`
	X          []string   `json:"x,omitempty"`
	Y          []*float64 `json:"y,omitempty"`
	Open       []float64  `json:"open,omitempty"`
	High       []float64  `json:"high,omitempty"`
	Low        []float64  `json:"low,omitempty"`
	Close      []float64  `json:"close,omitempty"`
	Mode       string     `json:"mode,omitempty"`
	Fill       string     `json:"fill,omitempty"`
	Line       *LineStyle `json:"line,omitempty"`
	Increasing *Direction `json:"increasing,omitempty"`
	Decreasing *Direction `json:"decreasing,omitempty"`
	XAxis      string     `json:"xaxis,omitempty"`
	YAxis      string     `json:"yaxis,omitempty"`
}

// Axis describes one logical axis.
type Axis struct {
	Title      string     `json:"title,omitempty"`
	Side       string     `json:"side,omitempty"`
	Dtick      float64    `json:"dtick,omitempty"`
	Overlaying string     `json:"overlaying,omitempty"`
	ShowGrid   *bool      `json:"showgrid,omitempty"`
	Domain     []float64  `json:"domain,omitempty"`
	Range      []float64  `json:"range,omitempty"`
	Type       string     `json:"type,omitempty"`
	TickFormat string     `json:"tickformat,omitempty"`
	Anchor     string     `json:"anchor,omitempty"`
}

// Annotation is a fixed text label, used for panel titles and the average
// reference line.
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref,omitempty"`
	YRef      string  `json:"yref,omitempty"`
	ShowArrow bool    `json:"showarrow"`
}

// Layout holds the panel, axis, and annotation description. ViewState is
// the user's stored pan/zoom mapping; it is merged wholesale over the
// defaults at serialization time so user interaction survives a refresh.
type Layout struct {
	Title       string               `json:"title,omitempty"`
	ShowLegend  bool                 `json:"showlegend"`
	PlotBGColor string               `json:"plot_bgcolor,omitempty"`
	UIRevision  string               `json:"uirevision,omitempty"`
	XAxis       *Axis                `json:"xaxis,omitempty"`
	YAxis       *Axis                `json:"yaxis,omitempty"`
	YAxis2      *Axis                `json:"yaxis2,omitempty"`
	YAxis3      *Axis                `json:"yaxis3,omitempty"`
	YAxis4      *Axis                `json:"yaxis4,omitempty"`
	Shapes      []model.Shape        `json:"shapes,omitempty"`
	Annotations []Annotation         `json:"annotations,omitempty"`
	ViewState   model.GraphViewState `json:"-"`
}

// MarshalJSON serializes the layout defaults, then overlays the stored
// view state keys on top.
func (l Layout) MarshalJSON() ([]byte, error) {
	type plain Layout
	base, err := json.Marshal(plain(l))
	if err != nil {
		return nil, err
	}
	if len(l.ViewState) == 0 {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range l.ViewState {
		m[k] = v
	}
	return json.Marshal(m)
}

// nullable converts a column into pointer form, mapping NaN to nil.
func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
