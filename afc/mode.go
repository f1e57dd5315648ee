package afc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode selects how the notch bank and the adaptive predictor combine.
type Mode int

const (
	// NotchFirst runs the notch bank, then the predictor.
	NotchFirst Mode = iota
	// LMSFirst runs the predictor, then the notch bank.
	LMSFirst
	// Parallel runs both on the same input and averages them.
	Parallel
	// Adaptive picks one of the fixed modes per sample from the
	// signal-to-error ratio.
	Adaptive
)

// ErrInvalidMode is returned for a mode name or index that does not exist.
var ErrInvalidMode = errors.New("afc: invalid mode")

// SER thresholds used by SelectMode.
const (
	ParallelSER   = 10.0
	NotchFirstSER = 2.0
)

var modeNames = [...]string{
	NotchFirst: "notch-first",
	LMSFirst:   "lms-first",
	Parallel:   "parallel",
	Adaptive:   "adaptive",
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Valid reports whether m is one of the four modes.
func (m Mode) Valid() bool { return m >= NotchFirst && m <= Adaptive }

// ParseMode accepts a mode name in any case, with '-' or '_' separators,
// or its index 0..3.
func ParseMode(s string) (Mode, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	if i, err := strconv.Atoi(name); err == nil && Mode(i).Valid() {
		return Mode(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// SelectMode maps a signal-to-error ratio onto a fixed mode: a well
// converged canceller runs in parallel, a struggling one puts the notches
// first.
func SelectMode(ser float64) Mode {
	switch {
	case ser > ParallelSER:
		return Parallel
	case ser < NotchFirstSER:
		return NotchFirst
	default:
		return LMSFirst
	}
}
