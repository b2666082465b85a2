package indicator

import "math"

// RSI computes the Relative Strength Index using a simple rolling mean of
// average gain and loss, not the conventional Wilder smoothing. The simple
// mean is intentional and must not be "corrected".
//
// The first delta is undefined, so the first `window` points are NaN.
// When the average loss is zero the index saturates at exactly 100; when
// both averages are zero (a flat series) the point stays NaN.
func RSI(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window+1 {
		return out
	}

	gains := nanSlice(len(values))
	losses := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
			losses[i] = 0
		} else {
			gains[i] = 0
			losses[i] = -delta
		}
	}

	avgGain := SMA(gains[1:], window)
	avgLoss := SMA(losses[1:], window)

	for i := range avgGain {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		idx := i + 1 // realign after dropping the first undefined delta
		if l == 0 {
			if g == 0 {
				continue // flat window: no direction, no value
			}
			out[idx] = 100
			continue
		}
		rs := g / l
		out[idx] = 100 - 100/(1+rs)
	}
	return out
}
