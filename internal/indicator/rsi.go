package indicator

import "math"

// RSISeries computes the Wilder RSI over close prices. The result is aligned
// with closes: out[i] is the RSI at closes[i], or NaN while the lookback is
// still warming up. The first defined value is at index window, seeded with
// the simple average of the first window gains and losses; every later value
// uses Wilder smoothing:
//
//	avg = (prev*(window-1) + current) / window
//
// A window with zero average loss yields RSI 100.
func RSISeries(closes []float64, window int) []float64 {
	out := nanSeries(len(closes))
	if window <= 0 || len(closes) <= window {
		return out
	}

	var gainSum, lossSum float64

	for i := 1; i <= window; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}

	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)
	out[window] = rsiFrom(avgGain, avgLoss)

	for i := window + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]

		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiFrom(avgGain, avgLoss)
	}

	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
