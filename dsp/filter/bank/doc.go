// Package bank provides a bounded cascade of notch filters re-tuned from
// detected feedback frequencies.
//
// A [Bank] owns [MaxNotch] pre-allocated [notch.Filter] slots and an active
// count. Processing cascades the active slots in series; [Bank.Retune]
// replaces the active set wholesale from a ranked frequency list:
//
//	f_i = clamp(freq_i, minFreq, maxFreq)
//	Q_i = minQ + (maxQ - minQ) * (f_i - minFreq) / (maxFreq - minFreq)
//
// so higher frequencies get narrower notches. Slots beyond the new count
// are deactivated rather than freed, and an empty list leaves the bank at
// its last tuning.
//
// Basic usage:
//
//	b, _ := bank.New(44100)
//	b.Retune(detector.Frequencies())
//	y := b.ProcessSample(x)
package bank
