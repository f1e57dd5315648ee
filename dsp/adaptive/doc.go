// Package adaptive provides a single-reference LMS/NLMS transversal
// predictor for feedback suppression.
//
// A [Predictor] has no external reference signal. It predicts each input
// sample from the previous order samples and returns the prediction
// error. A sustained feedback tone is far more predictable than speech,
// so the weights converge onto the tone and the error carries the
// unpredictable program material through.
//
// Per sample:
//
//	y = sum_i w[i] * h[(idx-i+order) mod order]
//	e = x - y                         (returned)
//	w[i] = gamma*w[i] + mu_eff*e*h[tap i]
//	h[idx] = x; idx = (idx+1) mod order
//
// The step size mu_eff and leakage gamma are fixed by default. Options
// compose the variants at construction: power normalisation (NLMS),
// SNR-driven step size over an exponential or Kalman variance estimate,
// periodic re-estimation of the Kalman noise parameters, and
// error-driven leakage.
package adaptive
