package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault_MatchesDocumentedDefaults(t *testing.T) {
	w := Default()
	if w.DataSource != "yahoo" {
		t.Errorf("data_source: expected yahoo, got %q", w.DataSource)
	}
	if w.Stock != "AAPL" {
		t.Errorf("stock: expected AAPL, got %q", w.Stock)
	}
	if w.TimePeriod != "6mo" || w.Interval != "1d" || w.ChartType != "candlestick" {
		t.Errorf("unexpected defaults: %q %q %q", w.TimePeriod, w.Interval, w.ChartType)
	}
	if !reflect.DeepEqual(w.Indicators, []string{"ma"}) {
		t.Errorf("indicators: expected [ma], got %v", w.Indicators)
	}
	if w.YAxisDtick != 10 {
		t.Errorf("yaxis_dtick: expected 10, got %d", w.YAxisDtick)
	}
	if !w.AutoRefreshEnabled() {
		t.Error("expected auto refresh enabled by default")
	}
	if w.ExtendedHoursEnabled() {
		t.Error("expected extended hours disabled by default")
	}
	if w.Shapes == nil || w.GraphState == nil {
		t.Error("expected initialized shapes and graph state")
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	w := Default()
	w.Stock = "TSLA"
	w.Interval = "1h"
	w.Notes = "watching the gap"
	w.GraphState = map[string]any{"xaxis.range[0]": "2024-01-01"}

	data, err := Encode(w)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stock != "TSLA" || got.Interval != "1h" || got.Notes != "watching the gap" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.GraphState["xaxis.range[0]"] != "2024-01-01" {
		t.Errorf("round trip lost graph state: %v", got.GraphState)
	}
}

func TestDecode_MissingFieldsFallBackToDefaults(t *testing.T) {
	got, err := Decode([]byte(`{"stock": "NVDA"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stock != "NVDA" {
		t.Errorf("expected NVDA, got %q", got.Stock)
	}
	if got.Interval != "1d" {
		t.Errorf("expected default interval, got %q", got.Interval)
	}
	if got.Shapes == nil || len(got.Shapes) != 0 {
		t.Errorf("expected empty shape list, got %v", got.Shapes)
	}
}

func TestDecode_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"stock": "AAPL`},
		{"bad interval", `{"interval": "2m"}`},
		{"bad data source", `{"data_source": "bloomberg"}`},
		{"dtick out of range", `{"yaxis_dtick": 0}`},
		{"dtick too large", `{"yaxis_dtick": 500}`},
	}
	for _, tt := range tests {
		_, err := Decode([]byte(tt.payload))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %T", tt.name, err)
		}
	}
}

func TestFileRepository_MissingFileYieldsDefaults(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "absent.json"))
	ws, err := repo.Load()
	if err != nil {
		t.Fatalf("expected nil error for missing file, got %v", err)
	}
	if ws.Stock != "AAPL" {
		t.Errorf("expected defaults, got %q", ws.Stock)
	}
}

func TestFileRepository_CorruptFileDegradesWithError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	repo := NewFileRepository(path)
	ws, err := repo.Load()
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if ws.Stock != "AAPL" {
		t.Errorf("expected defaults despite error, got %q", ws.Stock)
	}
}

func TestFileRepository_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.json")
	repo := NewFileRepository(path)

	w := Default()
	w.Stock = "GOOG"
	w.Notes = "earnings week"
	if err := repo.Save(w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Stock != "GOOG" || got.Notes != "earnings week" {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestDownloadFilenameIsFixed(t *testing.T) {
	if DownloadFilename != "saved_work.json" {
		t.Errorf("expected saved_work.json, got %q", DownloadFilename)
	}
}
