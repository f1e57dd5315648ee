// Package notch provides a tunable second-order band-stop filter.
//
// A [Filter] is described by a centre frequency and a selectivity (Q).
// Every setter clamps its argument into the safe range and recomputes the
// biquad coefficients immediately, so the coefficients always match the
// last (frequency, selectivity) pair and the poles stay inside the unit
// circle.
//
// Basic usage:
//
//	f, err := notch.New(2750, 10, 44100)
//	if err != nil {
//	    return err
//	}
//	for i, x := range buf {
//	    buf[i] = f.ProcessSample(x)
//	}
package notch
