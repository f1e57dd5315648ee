package control

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moukito/SON-project/afc"
)

// Target is the control surface of a canceller.
type Target interface {
	SetGain(g float64)
	Gain() float64
	SetMute(on bool)
	SetNotchEnabled(on bool)
	SetAdaptiveEnabled(on bool)
	SetBypass(on bool)
	ToggleBypass() bool
	SetMode(m afc.Mode) error
	SetStepSize(mu float64) error
	ResetAdaptive()
	Status() afc.Status
}

// Apply executes cmd on t and returns the reply lines.
func Apply(t Target, cmd Command) ([]string, error) {
	switch cmd.Kind {
	case SetGain:
		t.SetGain(cmd.Value)
		return []string{gainLine(t.Gain())}, nil
	case SetStepSize:
		if err := t.SetStepSize(cmd.Value); err != nil {
			return nil, err
		}
		return []string{"DATA:MU:" + formatFloat(cmd.Value)}, nil
	case SetLMS:
		t.SetAdaptiveEnabled(cmd.On)
		return []string{"DATA:LMS:" + onOff(cmd.On)}, nil
	case SetNotch:
		t.SetNotchEnabled(cmd.On)
		return []string{"DATA:NOTCH:" + onOff(cmd.On)}, nil
	case SetMute:
		t.SetMute(cmd.On)
		return []string{"DATA:MUTE:" + onOff(cmd.On)}, nil
	case SetBypass:
		t.SetBypass(cmd.On)
		return []string{modeLine(cmd.On)}, nil
	case ToggleBypass:
		return []string{modeLine(t.ToggleBypass())}, nil
	case SetStrategy:
		if err := t.SetMode(cmd.Mode); err != nil {
			return nil, err
		}
		return []string{"DATA:STRATEGY:" + cmd.Mode.String()}, nil
	case ResetLMS:
		t.ResetAdaptive()
		return []string{"DATA:LMS:RESET"}, nil
	case GetStatus:
		return []string{StatusLine(t.Status())}, nil
	case GetFreq:
		return FreqLines(t.Status()), nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrUnknownCommand, int(cmd.Kind))
}

// StatusLine renders a status snapshot as a single DATA:STATUS line.
func StatusLine(s afc.Status) string {
	var b strings.Builder
	b.WriteString("DATA:STATUS:")
	fmt.Fprintf(&b, "GAIN:%.2f", s.Gain)
	b.WriteString(",LMS:" + onOff(s.AdaptiveEnabled))
	b.WriteString(",NOTCH:" + onOff(s.NotchEnabled))
	b.WriteString(",MUTE:" + onOff(s.Muted))
	b.WriteString(",BYPASS:" + onOff(s.Bypass))
	b.WriteString(",STRATEGY:" + s.Mode.String())
	b.WriteString(",EFFECTIVE:" + s.EffectiveMode.String())
	b.WriteString(",NOTCHES:" + strconv.Itoa(len(s.Notches)))
	fmt.Fprintf(&b, ",SER:%.2f", s.SER)
	return b.String()
}

// FreqLines reports the detected candidates, one DATA:FREQ line each,
// strongest first. With nothing detected the active notch centres are
// reported with zero magnitude.
func FreqLines(s afc.Status) []string {
	if len(s.Detected) > 0 {
		lines := make([]string, len(s.Detected))
		for i, p := range s.Detected {
			lines[i] = fmt.Sprintf("DATA:FREQ:%.1f,%.4f", p.Frequency, p.Magnitude)
		}
		return lines
	}
	lines := make([]string, len(s.Notches))
	for i, n := range s.Notches {
		lines[i] = fmt.Sprintf("DATA:FREQ:%.1f,%.4f", n.Frequency, 0.0)
	}
	return lines
}

// InitLine is the greeting sent once the canceller is running.
func InitLine(s afc.Status, sampleRate float64) string {
	return fmt.Sprintf("DATA:INIT:%.0fHz,%s", sampleRate, s.Mode)
}

func gainLine(g float64) string {
	return fmt.Sprintf("DATA:GAIN:%.2f", g)
}

// modeLine reports whether processing is active, i.e. not bypassed.
func modeLine(bypass bool) string {
	if bypass {
		return "DATA:MODE:INACTIVE"
	}
	return "DATA:MODE:ACTIVE"
}
