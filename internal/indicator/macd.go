package indicator

// MACD computes the Moving Average Convergence Divergence line as
// EMA(fast) - EMA(slow) of the input, and the signal line as
// EMA(signalSpan) of the MACD line itself.
func MACD(values []float64, fast, slow, signalSpan int) (macd, signal []float64) {
	emaFast := EMA(values, fast)
	emaSlow := EMA(values, slow)
	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signal = EMA(macd, signalSpan)
	return macd, signal
}
