package control

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moukito/SON-project/afc"
	"github.com/moukito/SON-project/dsp/adaptive"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newCanceller(t *testing.T) *afc.Canceller {
	t.Helper()
	c, err := afc.New(afc.WithSampleRate(48000), afc.WithLogger(quietLogger()))
	require.NoError(t, err)
	return c
}

func apply(t *testing.T, c Target, line string) []string {
	t.Helper()
	cmd, err := Parse(line)
	require.NoError(t, err)
	lines, err := Apply(c, cmd)
	require.NoError(t, err)
	return lines
}

func TestApplySetters(t *testing.T) {
	c := newCanceller(t)

	assert.Equal(t, []string{"DATA:GAIN:0.80"}, apply(t, c, "SET:GAIN:0.8"))
	assert.Equal(t, 0.8, c.Gain())

	assert.Equal(t, []string{"DATA:GAIN:10.00"}, apply(t, c, "SET:GAIN:50"))

	assert.Equal(t, []string{"DATA:LMS:OFF"}, apply(t, c, "SET:LMS:OFF"))
	assert.False(t, c.Status().AdaptiveEnabled)

	assert.Equal(t, []string{"DATA:NOTCH:OFF"}, apply(t, c, "SET:NOTCH:OFF"))
	assert.False(t, c.Status().NotchEnabled)

	assert.Equal(t, []string{"DATA:MUTE:ON"}, apply(t, c, "SET:MUTE:ON"))
	assert.True(t, c.Muted())

	assert.Equal(t, []string{"DATA:MODE:INACTIVE"}, apply(t, c, "SET:BYPASS:ON"))
	assert.Equal(t, []string{"DATA:MODE:ACTIVE"}, apply(t, c, "TOGGLE:BYPASS"))
	assert.False(t, c.Bypass())

	assert.Equal(t, []string{"DATA:STRATEGY:parallel"}, apply(t, c, "SET:STRATEGY:2"))
	assert.Equal(t, afc.Parallel, c.Status().Mode)

	assert.Equal(t, []string{"DATA:MU:0.002"}, apply(t, c, "SET:MU:0.002"))
	assert.Equal(t, 0.002, c.Predictor().StepSize())
}

func TestApplyResetLMS(t *testing.T) {
	c := newCanceller(t)
	for i := range 300 {
		c.ProcessSample(0.5 * math.Sin(float64(i)))
	}
	require.NotZero(t, c.Predictor().Power())

	assert.Equal(t, []string{"DATA:LMS:RESET"}, apply(t, c, "RESET:LMS"))
	assert.Zero(t, c.Predictor().Power())
}

func TestApplyStepSizeError(t *testing.T) {
	c := newCanceller(t)
	_, err := Apply(c, Command{Kind: SetStepSize, Value: -1})
	assert.ErrorIs(t, err, adaptive.ErrInvalidStepSize)

	_, err = Apply(c, Command{Kind: Kind(99)})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestStatusLine(t *testing.T) {
	c := newCanceller(t)
	c.SetGain(0.5)
	c.SetMute(true)

	lines := apply(t, c, "GET:STATUS")
	require.Len(t, lines, 1)
	assert.Equal(t,
		"DATA:STATUS:GAIN:0.50,LMS:ON,NOTCH:ON,MUTE:ON,BYPASS:OFF,STRATEGY:adaptive,EFFECTIVE:notch-first,NOTCHES:1,SER:1.00",
		lines[0])
}

func TestFreqLines(t *testing.T) {
	c := newCanceller(t)

	// Before any detection the initial notch is reported.
	assert.Equal(t, []string{"DATA:FREQ:2750.0,0.0000"}, apply(t, c, "GET:FREQ"))

	for i := range 512 {
		c.ProcessSample(0.5 * math.Sin(2*math.Pi*300*float64(i)/48000))
	}
	lines := apply(t, c, "GET:FREQ")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "DATA:FREQ:300.0,")
}

func TestInitLine(t *testing.T) {
	c := newCanceller(t)
	assert.Equal(t, "DATA:INIT:48000Hz,adaptive", InitLine(c.Status(), c.SampleRate()))
}
