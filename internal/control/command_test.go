package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moukito/SON-project/afc"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"SET:GAIN:0.8", Command{Kind: SetGain, Value: 0.8}},
		{"set:gain:1.25\r\n", Command{Kind: SetGain, Value: 1.25}},
		{"SET:MU:0.005", Command{Kind: SetStepSize, Value: 0.005}},
		{"SET:LMS:ON", Command{Kind: SetLMS, On: true}},
		{"SET:LMS:OFF", Command{Kind: SetLMS}},
		{"SET:NOTCH:on", Command{Kind: SetNotch, On: true}},
		{"SET:MUTE:1", Command{Kind: SetMute, On: true}},
		{"SET:BYPASS:false", Command{Kind: SetBypass}},
		{"TOGGLE:BYPASS", Command{Kind: ToggleBypass}},
		{"SET:STRATEGY:2", Command{Kind: SetStrategy, Mode: afc.Parallel}},
		{"SET:STRATEGY:lms_first", Command{Kind: SetStrategy, Mode: afc.LMSFirst}},
		{"RESET:LMS", Command{Kind: ResetLMS}},
		{" GET:STATUS ", Command{Kind: GetStatus}},
		{"GET:FREQ", Command{Kind: GetFreq}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestParseErrors(t *testing.T) {
	unknown := []string{"", "HELLO", "SET:VOLUME:3", "GET:STATUS:NOW", "RESET:NOTCH", "SET:GAIN:1:2"}
	for _, line := range unknown {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrUnknownCommand, line)
	}

	invalid := []string{"SET:GAIN:", "SET:GAIN:loud", "SET:LMS:MAYBE", "SET:STRATEGY:9", "SET:MU:x"}
	for _, line := range invalid {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrInvalidArgument, line)
	}
}

func TestCommandRoundTrip(t *testing.T) {
	cmds := []Command{
		{Kind: SetGain, Value: 0.8},
		{Kind: SetGain, Value: 3},
		{Kind: SetStepSize, Value: 1e-4},
		{Kind: SetLMS, On: true},
		{Kind: SetLMS},
		{Kind: SetNotch, On: true},
		{Kind: SetMute},
		{Kind: SetBypass, On: true},
		{Kind: ToggleBypass},
		{Kind: SetStrategy, Mode: afc.NotchFirst},
		{Kind: SetStrategy, Mode: afc.Adaptive},
		{Kind: ResetLMS},
		{Kind: GetStatus},
		{Kind: GetFreq},
	}

	for _, cmd := range cmds {
		back, err := Parse(cmd.String())
		require.NoError(t, err, cmd.String())
		assert.Equal(t, cmd, back, cmd.String())
	}
}
