package coordinator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tradescape/internal/indicator"
	"tradescape/internal/model"
	"tradescape/internal/provider"
	"tradescape/internal/recorder"
	"tradescape/internal/workspace"
)

type fakeProvider struct {
	fetches int
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(_ context.Context, req provider.Request) (*model.TimeSeries, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	s := &model.TimeSeries{Symbol: req.Symbol}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		c := 100 + float64(i)
		s.Bars = append(s.Bars, model.Bar{
			Time: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c,
		})
	}
	return s, nil
}

type memRepo struct {
	saves int
	last  model.Workspace
}

func (r *memRepo) Load() (model.Workspace, error) { return r.last, nil }
func (r *memRepo) Save(ws model.Workspace) error {
	r.saves++
	r.last = ws
	return nil
}

type memRecorder struct {
	events []*recorder.Evaluation
}

func (r *memRecorder) RecordEvaluation(evt *recorder.Evaluation) error {
	r.events = append(r.events, evt)
	return nil
}
func (r *memRecorder) Close() error { return nil }

func newTestCoordinator(p provider.Provider) (*Coordinator, *memRepo, *memRecorder) {
	repo := &memRepo{}
	rec := &memRecorder{}
	factory := func(provider.Kind) (provider.Provider, error) { return p, nil }
	store := workspace.NewStore(workspace.Default())
	return New(factory, store, repo, rec, indicator.DefaultConfig()), repo, rec
}

func TestEvaluate_ProducesFigure(t *testing.T) {
	p := &fakeProvider{}
	c, repo, rec := newTestCoordinator(p)

	fig := c.Evaluate(context.Background(), TriggerStock)
	if fig == nil {
		t.Fatal("expected figure")
	}
	if len(fig.Data) == 0 {
		t.Error("expected traces in figure")
	}
	if p.fetches != 1 {
		t.Errorf("expected 1 fetch, got %d", p.fetches)
	}
	if repo.saves != 1 {
		t.Errorf("expected settings persisted once, got %d saves", repo.saves)
	}
	if len(rec.events) != 1 || rec.events[0].Bars != 30 || rec.events[0].Error != "" {
		t.Errorf("unexpected evaluation record: %+v", rec.events)
	}
	if c.Figure() != fig {
		t.Error("expected Figure() to return the last evaluation output")
	}
}

func TestEvaluate_TimerSkippedWhenAutoRefreshDisabled(t *testing.T) {
	p := &fakeProvider{}
	c, repo, _ := newTestCoordinator(p)

	first := c.Evaluate(context.Background(), TriggerStock)
	if p.fetches != 1 {
		t.Fatalf("expected 1 fetch, got %d", p.fetches)
	}

	st := c.Store().Settings()
	st.AutoRefresh = nil
	c.Store().SetSettings(st)
	savesBefore := repo.saves

	got := c.Evaluate(context.Background(), TriggerTimer)
	if p.fetches != 1 {
		t.Errorf("timer tick with auto-refresh off must not fetch, got %d fetches", p.fetches)
	}
	if got != first {
		t.Error("expected previous figure returned unchanged")
	}
	if repo.saves != savesBefore {
		t.Error("skipped evaluation must not persist")
	}
}

func TestEvaluate_TimerRunsAndPersistsWhenAutoRefreshEnabled(t *testing.T) {
	p := &fakeProvider{}
	c, repo, _ := newTestCoordinator(p)

	// Workspace state set between settings triggers must survive a
	// timer-driven refresh.
	c.Store().SetNotes("written before the tick")

	c.Evaluate(context.Background(), TriggerTimer)
	if p.fetches != 1 {
		t.Errorf("expected timer fetch with auto-refresh on, got %d", p.fetches)
	}
	if repo.saves != 1 {
		t.Fatalf("expected enabled timer tick to persist, got %d saves", repo.saves)
	}
	if repo.last.Notes != "written before the tick" {
		t.Errorf("expected notes persisted by timer tick, got %q", repo.last.Notes)
	}
}

func TestEvaluate_TimerWithOtherTriggerAlwaysRuns(t *testing.T) {
	p := &fakeProvider{}
	c, _, _ := newTestCoordinator(p)

	st := c.Store().Settings()
	st.AutoRefresh = nil
	c.Store().SetSettings(st)

	c.Evaluate(context.Background(), TriggerTimer, TriggerStock)
	if p.fetches != 1 {
		t.Errorf("expected mixed trigger set to fetch, got %d", p.fetches)
	}
}

func TestEvaluate_FetchErrorYieldsErrorFigure(t *testing.T) {
	p := &fakeProvider{err: errors.New("no such symbol")}
	c, _, rec := newTestCoordinator(p)

	fig := c.Evaluate(context.Background(), TriggerStock)
	if len(fig.Data) != 0 {
		t.Errorf("expected empty error figure, got %d traces", len(fig.Data))
	}
	if !strings.Contains(fig.Layout.Title, "no such symbol") {
		t.Errorf("expected error surfaced in title, got %q", fig.Layout.Title)
	}
	if len(rec.events) != 1 || rec.events[0].Error == "" {
		t.Errorf("expected failed evaluation recorded: %+v", rec.events)
	}
}

func TestEvaluate_UnknownProviderYieldsErrorFigure(t *testing.T) {
	repo := &memRepo{}
	factory := func(kind provider.Kind) (provider.Provider, error) {
		return nil, errors.New("unknown provider kind")
	}
	c := New(factory, workspace.NewStore(workspace.Default()), repo, &memRecorder{}, indicator.DefaultConfig())

	fig := c.Evaluate(context.Background(), TriggerDataSource)
	if !strings.Contains(fig.Layout.Title, "unknown provider kind") {
		t.Errorf("expected factory error surfaced, got %q", fig.Layout.Title)
	}
}

func TestImportWorkspace_InvalidPayloadLeavesStateUntouched(t *testing.T) {
	p := &fakeProvider{}
	c, _, _ := newTestCoordinator(p)
	c.Store().SetNotes("keep me")

	err := c.ImportWorkspace([]byte(`{"interval": "17m"}`))
	if err == nil {
		t.Fatal("expected error for invalid interval")
	}
	var pe *workspace.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if got := c.Store().Export().Notes; got != "keep me" {
		t.Errorf("failed import must not touch state, notes now %q", got)
	}
}

func TestImportWorkspace_ReplacesState(t *testing.T) {
	p := &fakeProvider{}
	c, _, _ := newTestCoordinator(p)

	if err := c.ImportWorkspace([]byte(`{"stock": "AMD", "notes": "imported"}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	ws := c.Store().Export()
	if ws.Stock != "AMD" || ws.Notes != "imported" {
		t.Errorf("expected imported state, got %+v", ws)
	}
}

func TestExportWorkspace_FixedFilename(t *testing.T) {
	p := &fakeProvider{}
	c, _, _ := newTestCoordinator(p)

	data, name, err := c.ExportWorkspace()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "saved_work.json" {
		t.Errorf("expected fixed filename, got %q", name)
	}
	if _, err := workspace.Decode(data); err != nil {
		t.Errorf("exported payload must round trip: %v", err)
	}
}

func TestApplyShapeAction(t *testing.T) {
	p := &fakeProvider{}
	c, _, _ := newTestCoordinator(p)

	c.ApplyShapeAction(workspace.Action{
		Kind:      workspace.ActionRelayout,
		Shapes:    []model.Shape{{Type: "line", X0: "2024-01-05"}},
		HasShapes: true,
	})
	if got := len(c.Store().Export().Shapes); got != 1 {
		t.Fatalf("expected 1 shape, got %d", got)
	}
	c.ApplyShapeAction(workspace.Action{Kind: workspace.ActionClearAll})
	if got := len(c.Store().Export().Shapes); got != 0 {
		t.Errorf("expected cleared shapes, got %d", got)
	}
}

func TestEffects_EveryTriggerRecomputesFigure(t *testing.T) {
	for trig, outs := range Effects {
		found := false
		for _, o := range outs {
			if o == OutputFigure {
				found = true
			}
		}
		if !found {
			t.Errorf("trigger %s missing figure output", trig)
		}
	}
	if !wants([]Trigger{TriggerTimer}, OutputConfig) {
		t.Error("timer trigger must declare the config output")
	}
}
