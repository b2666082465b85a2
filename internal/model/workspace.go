package model

// ShapeLine is the stroke style of an annotation shape.
type ShapeLine struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Shape is a user-drawn chart annotation. Coordinates are in chart space;
// the x values may be date strings and the y values numbers, so both sides
// are kept as decoded JSON values. Shape order is z-order.
type Shape struct {
	Type     string    `json:"type"`
	XRef     string    `json:"xref,omitempty"`
	YRef     string    `json:"yref,omitempty"`
	X0       any       `json:"x0,omitempty"`
	Y0       any       `json:"y0,omitempty"`
	X1       any       `json:"x1,omitempty"`
	Y1       any       `json:"y1,omitempty"`
	Path     string    `json:"path,omitempty"`
	Editable bool      `json:"editable,omitempty"`
	Line     ShapeLine `json:"line"`
}

// GraphViewState is the opaque pan/zoom/axis-override mapping produced by
// user interaction. It is merged wholesale into the layout on each render.
type GraphViewState map[string]any

// Settings holds the current chart configuration. Defaults mirror the
// workspace file format; list-valued flags carry their enabling token
// ("extended", "enabled") by presence.
type Settings struct {
	DataSource    string   `json:"data_source" default:"yahoo" validate:"oneof=yahoo alpha_vantage"`
	Stock         string   `json:"stock" default:"AAPL" validate:"required"`
	TimePeriod    string   `json:"time_period" default:"6mo" validate:"oneof=1d 5d 1wk 1mo 3mo 6mo 1y 5y max"`
	Interval      string   `json:"interval" default:"1d" validate:"oneof=5m 10m 1h 1d 1wk 1mo"`
	ChartType     string   `json:"chart_type" default:"candlestick" validate:"oneof=candlestick bar line area"`
	ExtendedHours []string `json:"extended_hours"`
	Indicators    []string `json:"indicators" default:"[\"ma\"]"`
	YAxisPosition string   `json:"yaxis_position" default:"both" validate:"oneof=left right both"`
	BGColor       string   `json:"bg_color" default:"white"`
	YAxisDtick    int      `json:"yaxis_dtick" default:"10" validate:"min=1,max=100"`
	AutoRefresh   []string `json:"auto_refresh" default:"[\"enabled\"]"`
}

// ExtendedHoursEnabled reports whether pre/post market data is requested.
func (s *Settings) ExtendedHoursEnabled() bool { return contains(s.ExtendedHours, "extended") }

// AutoRefreshEnabled reports whether timer-driven refresh is active.
func (s *Settings) AutoRefreshEnabled() bool { return contains(s.AutoRefresh, "enabled") }

// HasIndicator reports whether the given indicator code is selected.
func (s *Settings) HasIndicator(code string) bool { return contains(s.Indicators, code) }

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Workspace is the unit of persistence: settings, free-text notes, the
// ordered annotation list, and the opaque view state.
type Workspace struct {
	Settings
	Notes      string         `json:"notes"`
	GraphState GraphViewState `json:"graph_state"`
	Shapes     []Shape        `json:"shapes"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing internal state to mutation.
func (w *Workspace) Clone() Workspace {
	out := *w
	out.ExtendedHours = append([]string(nil), w.ExtendedHours...)
	out.Indicators = append([]string(nil), w.Indicators...)
	out.AutoRefresh = append([]string(nil), w.AutoRefresh...)
	out.Shapes = append([]Shape(nil), w.Shapes...)
	out.GraphState = cloneMap(w.GraphState)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
