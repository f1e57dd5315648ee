// Package control implements the line-oriented control protocol of the
// canceller.
//
// Requests look like SET:GAIN:0.8, SET:LMS:ON or GET:STATUS. Replies are
// DATA:<TYPE>:<VALUE> lines, for example DATA:MUTE:ON or
// DATA:FREQ:2750.0,0.1234.
package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/moukito/SON-project/afc"
)

var (
	// ErrUnknownCommand is returned for a request that names no command.
	ErrUnknownCommand = errors.New("control: unknown command")
	// ErrInvalidArgument is returned when a command argument does not parse.
	ErrInvalidArgument = errors.New("control: invalid argument")
)

// Kind identifies a command.
type Kind int

const (
	SetGain Kind = iota
	SetLMS
	SetNotch
	SetMute
	SetBypass
	ToggleBypass
	SetStrategy
	SetStepSize
	ResetLMS
	GetStatus
	GetFreq
)

// Command is one parsed request.
type Command struct {
	Kind  Kind
	Value float64
	On    bool
	Mode  afc.Mode
}

// Parse reads one request line. Keywords are case-insensitive and
// surrounding whitespace is ignored.
func Parse(line string) (Command, error) {
	parts := strings.Split(strings.TrimSpace(line), ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	verb := strings.ToUpper(parts[0])
	var target, arg string
	if len(parts) > 1 {
		target = strings.ToUpper(parts[1])
	}
	if len(parts) > 2 {
		arg = parts[2]
	}
	if len(parts) > 3 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	switch verb + ":" + target {
	case "SET:GAIN":
		v, err := parseFloat(arg)
		return Command{Kind: SetGain, Value: v}, err
	case "SET:MU":
		v, err := parseFloat(arg)
		return Command{Kind: SetStepSize, Value: v}, err
	case "SET:LMS":
		on, err := parseSwitch(arg)
		return Command{Kind: SetLMS, On: on}, err
	case "SET:NOTCH":
		on, err := parseSwitch(arg)
		return Command{Kind: SetNotch, On: on}, err
	case "SET:MUTE":
		on, err := parseSwitch(arg)
		return Command{Kind: SetMute, On: on}, err
	case "SET:BYPASS":
		on, err := parseSwitch(arg)
		return Command{Kind: SetBypass, On: on}, err
	case "SET:STRATEGY":
		m, err := afc.ParseMode(arg)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		return Command{Kind: SetStrategy, Mode: m}, nil
	}

	if arg != "" {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}

	switch verb + ":" + target {
	case "TOGGLE:BYPASS":
		return Command{Kind: ToggleBypass}, nil
	case "RESET:LMS":
		return Command{Kind: ResetLMS}, nil
	case "GET:STATUS":
		return Command{Kind: GetStatus}, nil
	case "GET:FREQ":
		return Command{Kind: GetFreq}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidArgument, s)
	}
	return v, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "ON", "1", "TRUE":
		return true, nil
	case "OFF", "0", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidArgument, s)
}

// String renders the command in request syntax; Parse(c.String()) == c.
func (c Command) String() string {
	switch c.Kind {
	case SetGain:
		return "SET:GAIN:" + formatFloat(c.Value)
	case SetStepSize:
		return "SET:MU:" + formatFloat(c.Value)
	case SetLMS:
		return "SET:LMS:" + onOff(c.On)
	case SetNotch:
		return "SET:NOTCH:" + onOff(c.On)
	case SetMute:
		return "SET:MUTE:" + onOff(c.On)
	case SetBypass:
		return "SET:BYPASS:" + onOff(c.On)
	case ToggleBypass:
		return "TOGGLE:BYPASS"
	case SetStrategy:
		return "SET:STRATEGY:" + c.Mode.String()
	case ResetLMS:
		return "RESET:LMS"
	case GetStatus:
		return "GET:STATUS"
	case GetFreq:
		return "GET:FREQ"
	}
	return "Kind(" + strconv.Itoa(int(c.Kind)) + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
