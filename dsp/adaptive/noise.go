package adaptive

import "math"

// DefaultNoiseWindow is the number of samples between Kalman noise
// re-estimates.
const DefaultNoiseWindow = 50

// noiseTuner re-derives the Kalman noise parameters from the last window
// of observed x² and e² values.
//
// Measurement noise follows the spread of the observations; process noise
// follows how far their level moved across the window, measured as the
// difference between the mean of the last fifth and the first fifth.
type noiseTuner struct {
	kalman  *KalmanEstimator
	signal  []float64
	err     []float64
	pos     int
	updates int
}

func newNoiseTuner(k *KalmanEstimator, window int) *noiseTuner {
	if window < 5 {
		window = DefaultNoiseWindow
	}
	return &noiseTuner{
		kalman: k,
		signal: make([]float64, window),
		err:    make([]float64, window),
	}
}

func (t *noiseTuner) observe(signalSq, errorSq float64) {
	t.signal[t.pos] = signalSq
	t.err[t.pos] = errorSq
	t.pos++
	if t.pos < len(t.signal) {
		return
	}
	t.pos = 0
	t.retune()
}

func (t *noiseTuner) retune() {
	sigVar, sigTrend := windowStats(t.signal)
	errVar, errTrend := windowStats(t.err)

	trend := math.Max(math.Abs(sigTrend), math.Abs(errTrend))
	q := trend * trend / float64(len(t.signal))
	r := 0.5 * (sigVar + errVar)

	t.kalman.SetNoise(q, r)
	t.updates++
}

func (t *noiseTuner) reset() {
	clear(t.signal)
	clear(t.err)
	t.pos = 0
	t.updates = 0
}

// windowStats returns the variance of w and the trend, mean(last fifth)
// minus mean(first fifth). w is in chronological order.
func windowStats(w []float64) (variance, trend float64) {
	n := len(w)
	var sum, sumSq float64
	for _, v := range w {
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)
	variance = math.Max(sumSq/float64(n)-mean*mean, 0)

	fifth := max(n/5, 1)
	var head, tail float64
	for i := range fifth {
		head += w[i]
		tail += w[n-fifth+i]
	}
	trend = (tail - head) / float64(fifth)

	return variance, trend
}
