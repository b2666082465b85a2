package indicator

import (
	"math"

	"tradescape/internal/model"
)

// Column names added by the engine. These match the workspace indicator
// vocabulary the chart builder consumes.
const (
	ColSMAShort   = "SMA_Short"
	ColSMALong    = "SMA_Long"
	ColSMA        = "SMA"
	ColUpperBand  = "UpperBand"
	ColLowerBand  = "LowerBand"
	ColRSI        = "RSI"
	ColMACD       = "MACD"
	ColMACDSignal = "MACD_Signal"
)

// Indicator codes as stored in workspace settings.
const (
	CodeMA      = "ma"
	CodeBoll    = "bb"
	CodeRSI     = "rsi"
	CodeMACD    = "macd"
	CodeAverage = "avg"
)

// Config carries the engine windows and spans. Callers override them only
// through configuration, never per call.
type Config struct {
	ShortWindow   int     `yaml:"short_window"`
	LongWindow    int     `yaml:"long_window"`
	BollWindow    int     `yaml:"boll_window"`
	BollStdFactor float64 `yaml:"boll_std_factor"`
	RSIWindow     int     `yaml:"rsi_window"`
	MACDFast      int     `yaml:"macd_fast"`
	MACDSlow      int     `yaml:"macd_slow"`
	MACDSignal    int     `yaml:"macd_signal"`
}

// DefaultConfig returns the standard windows.
func DefaultConfig() Config {
	return Config{
		ShortWindow:   20,
		LongWindow:    50,
		BollWindow:    20,
		BollStdFactor: 2,
		RSIWindow:     14,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
	}
}

// Compute derives the indicator columns selected by codes from the series.
// The input series is never mutated; every output column is aligned 1:1
// with the series index, with NaN marking insufficient lookback.
func Compute(series *model.TimeSeries, codes []string, cfg Config) model.IndicatorSet {
	closes := series.Closes()
	out := model.IndicatorSet{}
	for _, code := range codes {
		switch code {
		case CodeMA:
			out[ColSMAShort] = SMA(closes, cfg.ShortWindow)
			out[ColSMALong] = SMA(closes, cfg.LongWindow)
		case CodeBoll:
			mid, upper, lower := Bollinger(closes, cfg.BollWindow, cfg.BollStdFactor)
			out[ColSMA] = mid
			out[ColUpperBand] = upper
			out[ColLowerBand] = lower
		case CodeRSI:
			out[ColRSI] = RSI(closes, cfg.RSIWindow)
		case CodeMACD:
			macd, sig := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
			out[ColMACD] = macd
			out[ColMACDSignal] = sig
		}
	}
	return out
}

// AverageClose returns the scalar mean of close over the whole series,
// used as a single horizontal reference line. NaN for an empty series.
func AverageClose(series *model.TimeSeries) float64 {
	if series.Len() == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, b := range series.Bars {
		sum += b.Close
	}
	return sum / float64(series.Len())
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
