// Package feedback locates self-sustaining feedback tones in a mono
// stream.
//
// A Detector keeps a circular window of raw samples. Each time the window
// fills it computes the unbiased autocorrelation over lags [0, B/2), picks
// local maxima above a fraction of the zero-lag power and reports the
// strongest ones as frequencies Fs/lag, strongest first. The analysis can
// run directly or through an FFT (Wiener–Khinchin); both give the same list.
package feedback
