package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"tradescape/internal/chart"
	"tradescape/internal/indicator"
	"tradescape/internal/metrics"
	"tradescape/internal/model"
	"tradescape/internal/provider"
	"tradescape/internal/recorder"
	"tradescape/internal/workspace"
)

// Trigger is a named external input. Every setting has one, plus the
// shape list and the auto-refresh timer.
type Trigger string

const (
	TriggerDataSource    Trigger = "data_source"
	TriggerStock         Trigger = "stock"
	TriggerPeriod        Trigger = "time_period"
	TriggerInterval      Trigger = "interval"
	TriggerChartType     Trigger = "chart_type"
	TriggerIndicators    Trigger = "indicators"
	TriggerYAxisPosition Trigger = "yaxis_position"
	TriggerBGColor       Trigger = "bg_color"
	TriggerExtendedHours Trigger = "extended_hours"
	TriggerDtick         Trigger = "yaxis_dtick"
	TriggerShapes        Trigger = "shapes"
	TriggerAutoRefresh   Trigger = "auto_refresh"
	TriggerTimer         Trigger = "timer"
	TriggerWorkspaceLoad Trigger = "workspace_load"
)

// Output names one observable effect of an evaluation.
type Output string

const (
	OutputConfig Output = "config" // settings persisted to the repository
	OutputFigure Output = "figure" // chart recomputed
)

// Effects is the statically declared dataflow: which outputs each trigger
// affects. Evaluate consults it to decide what an evaluation touches;
// there is no framework-managed reactive graph behind it.
var Effects = map[Trigger][]Output{
	TriggerDataSource:    {OutputConfig, OutputFigure},
	TriggerStock:         {OutputConfig, OutputFigure},
	TriggerPeriod:        {OutputConfig, OutputFigure},
	TriggerInterval:      {OutputConfig, OutputFigure},
	TriggerChartType:     {OutputConfig, OutputFigure},
	TriggerIndicators:    {OutputConfig, OutputFigure},
	TriggerYAxisPosition: {OutputConfig, OutputFigure},
	TriggerBGColor:       {OutputConfig, OutputFigure},
	TriggerExtendedHours: {OutputConfig, OutputFigure},
	TriggerDtick:         {OutputConfig, OutputFigure},
	TriggerShapes:        {OutputConfig, OutputFigure},
	TriggerAutoRefresh:   {OutputConfig, OutputFigure},
	TriggerWorkspaceLoad: {OutputConfig, OutputFigure},
	TriggerTimer:         {OutputConfig, OutputFigure},
}

// ProviderFactory resolves a provider kind to a concrete provider.
type ProviderFactory func(kind provider.Kind) (provider.Provider, error)

// Coordinator is the trigger-driven evaluation engine. Evaluations run one
// at a time to completion; there is no cross-trigger interleaving.
type Coordinator struct {
	mu      sync.Mutex
	factory ProviderFactory
	store   *workspace.Store
	repo    workspace.Repository
	rec     recorder.Recorder
	indCfg  indicator.Config
	last    *chart.Figure
}

// New creates a Coordinator over the given collaborators.
func New(factory ProviderFactory, store *workspace.Store, repo workspace.Repository, rec recorder.Recorder, indCfg indicator.Config) *Coordinator {
	return &Coordinator{
		factory: factory,
		store:   store,
		repo:    repo,
		rec:     rec,
		indCfg:  indCfg,
	}
}

// Store exposes the workspace state store for direct save/load triggers
// that bypass the fetch path.
func (c *Coordinator) Store() *workspace.Store { return c.store }

// Figure returns the output of the most recent evaluation.
func (c *Coordinator) Figure() *chart.Figure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Evaluate runs one synchronous evaluation for the active trigger set:
// persist settings, fetch, compute indicators, compose the figure. A
// timer-only evaluation with auto-refresh disabled is a no-op and returns
// the previous figure unchanged. Provider failures become a placeholder
// error figure; nothing terminates the evaluation loop.
func (c *Coordinator) Evaluate(ctx context.Context, triggers ...Trigger) *chart.Figure {
	c.mu.Lock()
	defer c.mu.Unlock()

	ws := c.store.Export()
	if onlyTimer(triggers) && !ws.AutoRefreshEnabled() {
		metrics.Evaluations.WithLabelValues("skipped").Inc()
		return c.last
	}

	// Persist when any active trigger declares the config output. The
	// write is fire-and-forget: a failure never blocks the recompute.
	if wants(triggers, OutputConfig) {
		if err := c.repo.Save(ws); err != nil {
			log.Printf("[WARN] persist workspace: %v", err)
		}
	}

	fig, evt := c.rebuild(ctx, ws)
	c.last = fig
	if err := c.rec.RecordEvaluation(evt); err != nil {
		log.Printf("[ERROR] record evaluation: %v", err)
	}
	return fig
}

func (c *Coordinator) rebuild(ctx context.Context, ws model.Workspace) (*chart.Figure, *recorder.Evaluation) {
	st := ws.Settings
	evt := &recorder.Evaluation{
		Provider: st.DataSource,
		Symbol:   st.Stock,
		Period:   st.TimePeriod,
		Interval: st.Interval,
	}

	p, err := c.factory(provider.Kind(st.DataSource))
	if err != nil {
		log.Printf("[ERROR] resolve provider: %v", err)
		metrics.Evaluations.WithLabelValues("error").Inc()
		evt.Error = err.Error()
		return chart.ErrorFigure(err.Error()), evt
	}

	start := time.Now()
	series, err := p.Fetch(ctx, provider.Request{
		Symbol:        st.Stock,
		Period:        st.TimePeriod,
		Interval:      st.Interval,
		ExtendedHours: st.ExtendedHoursEnabled(),
	})
	metrics.FetchDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	evt.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("[ERROR] fetch %s from %s: %v", st.Stock, p.Name(), err)
		metrics.Evaluations.WithLabelValues("error").Inc()
		evt.Error = err.Error()
		return chart.ErrorFigure(err.Error()), evt
	}
	evt.Bars = series.Len()

	ind := indicator.Compute(series, st.Indicators, c.indCfg)
	fig := chart.Build(series, ind, ws)
	metrics.Evaluations.WithLabelValues("ok").Inc()
	return fig, evt
}

// ApplyShapeAction runs a shape-store mutation. It touches only the
// workspace store; callers rebuild separately via Evaluate(TriggerShapes).
func (c *Coordinator) ApplyShapeAction(a workspace.Action) {
	c.store.Apply(a)
	metrics.ShapeActions.WithLabelValues(actionLabel(a.Kind)).Inc()
}

// ImportWorkspace replaces the whole workspace from an uploaded payload.
// A decode or validation failure leaves the current state untouched.
func (c *Coordinator) ImportWorkspace(data []byte) error {
	ws, err := workspace.Decode(data)
	if err != nil {
		log.Printf("[WARN] workspace upload rejected: %v", err)
		return err
	}
	c.store.Import(ws)
	return nil
}

// ExportWorkspace produces the downloadable workspace file and its fixed
// filename.
func (c *Coordinator) ExportWorkspace() ([]byte, string, error) {
	data, err := workspace.Encode(c.store.Export())
	if err != nil {
		return nil, "", err
	}
	return data, workspace.DownloadFilename, nil
}

// wants reports whether any active trigger declares the given output in
// the Effects table.
func wants(triggers []Trigger, out Output) bool {
	for _, t := range triggers {
		for _, o := range Effects[t] {
			if o == out {
				return true
			}
		}
	}
	return false
}

func onlyTimer(triggers []Trigger) bool {
	if len(triggers) == 0 {
		return false
	}
	for _, t := range triggers {
		if t != TriggerTimer {
			return false
		}
	}
	return true
}

func actionLabel(k workspace.ActionKind) string {
	switch k {
	case workspace.ActionDeleteAt:
		return "delete"
	case workspace.ActionClearAll:
		return "clear"
	default:
		return "relayout"
	}
}
