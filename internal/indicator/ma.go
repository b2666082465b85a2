package indicator

import "math"

// SMA computes the simple rolling mean over the given window. The first
// window-1 points are NaN; a series shorter than the window is all NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd computes the rolling population standard deviation over the
// given window, NaN during warmup.
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window))
	}
	return out
}

// Bollinger returns the rolling mean plus upper and lower bands offset by
// factor times the rolling standard deviation.
func Bollinger(values []float64, window int, factor float64) (mid, upper, lower []float64) {
	mid = SMA(values, window)
	std := RollingStd(values, window)
	upper = nanSlice(len(values))
	lower = nanSlice(len(values))
	for i := range values {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mid[i] + factor*std[i]
		lower[i] = mid[i] - factor*std[i]
	}
	return mid, upper, lower
}

// EMA computes the recursive exponential moving average with smoothing
// 2/(span+1) and no bias adjustment. It is seeded with the first value, so
// every point is defined for a non-empty input.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 || len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}
