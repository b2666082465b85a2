package model

import (
	"math"
	"sort"
	"time"
)

// Bar represents a single candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TimeSeries is an ordered run of bars. After Normalize, timestamps are
// strictly increasing, unique, and timezone-naive.
type TimeSeries struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s *TimeSeries) Len() int { return len(s.Bars) }

// Closes extracts the close column.
func (s *TimeSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Timestamps extracts the time column.
func (s *TimeSeries) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		ts[i] = b.Time
	}
	return ts
}

// Normalize sorts bars chronologically, strips timezone information from
// every timestamp, and drops duplicates so the index is strictly increasing.
func (s *TimeSeries) Normalize() {
	for i := range s.Bars {
		s.Bars[i].Time = StripZone(s.Bars[i].Time)
	}
	sort.Slice(s.Bars, func(i, j int) bool { return s.Bars[i].Time.Before(s.Bars[j].Time) })
	out := s.Bars[:0]
	var prev time.Time
	for _, b := range s.Bars {
		if len(out) > 0 && !b.Time.After(prev) {
			continue
		}
		out = append(out, b)
		prev = b.Time
	}
	s.Bars = out
}

// StripZone reinterprets the wall-clock reading of t as UTC, discarding
// the source timezone.
func StripZone(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// IndicatorSet maps indicator column names to derived series aligned 1:1
// with the owning TimeSeries. NaN marks points with insufficient lookback.
type IndicatorSet map[string][]float64

// Defined reports whether v carries a real value.
func Defined(v float64) bool { return !math.IsNaN(v) }
