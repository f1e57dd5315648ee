// Package biquad provides the second-order IIR runtime and the notch
// coefficient designs used by the feedback canceller.
//
// A [Section] runs the Direct Form I recursion
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
//
// keeping the last two inputs and outputs as its state, so that a notch can
// be re-tuned between samples without a transient in the stored signal
// history. [Notch] and [NotchPoleRadius] compute [Coefficients] for a
// band-stop centred on a frequency.
package biquad
