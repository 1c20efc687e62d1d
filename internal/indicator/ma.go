package indicator

// SMASeries computes the simple trailing moving average over close prices.
// out[i] is the arithmetic mean of the window closes ending at i inclusive,
// or NaN while fewer than window observations exist. The first defined value
// is at index window-1.
func SMASeries(closes []float64, window int) []float64 {
	out := nanSeries(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += closes[i]
	}

	out[window-1] = sum / float64(window)

	for i := window; i < len(closes); i++ {
		sum += closes[i] - closes[i-window]
		out[i] = sum / float64(window)
	}

	return out
}
