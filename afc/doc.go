// Package afc assembles the acoustic feedback canceller.
//
// A Canceller feeds every input sample to a feedback.Detector and to an
// Orchestrator that combines a notch bank with an adaptive predictor in
// one of four modes. The detector's candidate list re-tunes the bank once
// per analysis window. Gain, mute, bypass and clamping are applied last.
//
// A Canceller is owned by a single goroutine, normally the audio callback.
// Control changes coming from elsewhere must be serialised into that
// goroutine; see internal/control.
package afc
