// Command afclive runs the feedback canceller on a live PortAudio duplex
// stream.
//
// Control requests are read line by line from stdin (SET:GAIN:0.8,
// SET:LMS:OFF, GET:STATUS, ...) and applied at the next block boundary.
// Replies are written to stdout as DATA: lines.
//
// Usage:
//
//	afclive [flags]
//
// Examples:
//
//	afclive -list-devices
//	afclive -rate 48000 -block 256 -in 2 -out 3
//	afclive -mode parallel -status 5s
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"github.com/moukito/SON-project/afc"
	"github.com/moukito/SON-project/internal/cli"
	"github.com/moukito/SON-project/internal/control"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("afclive", flag.ContinueOnError)
	flags := cli.Register(fs, true)
	inDev := fs.Int("in", -1, "input device index (-1 for the default)")
	outDev := fs.Int("out", -1, "output device index (-1 for the default)")
	list := fs.Bool("list-devices", false, "list audio devices and exit")
	statusEvery := fs.Duration("status", 0, "print a status line at this interval (0 disables)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := cli.NewLogger(flags.LogLevel, flags.LogJSON)
	if err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	if *list {
		return listDevices(os.Stdout)
	}

	c, err := flags.NewCanceller(0, logger)
	if err != nil {
		return err
	}

	// Mutators run inside the audio callback from here on.
	c.SetLogger(nil)

	ctl := logger.WithField("component", "control")
	queue := control.NewQueue(control.DefaultQueueSize, ctl)
	fmt.Println(control.InitLine(c.Status(), c.SampleRate()))

	stream, err := openStream(c, queue, *inDev, *outDev)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"sample_rate": c.SampleRate(),
		"block_size":  c.BlockSize(),
	}).Info("Stream started")

	go func() {
		if err := control.ReadRequests(os.Stdin, queue, os.Stdout, logger); err != nil {
			logger.WithError(err).Error("Control input failed")
		}
	}()
	go control.WriteReplies(queue.Replies(), os.Stdout, ctl)

	var tick <-chan time.Time
	if *statusEvery > 0 {
		t := time.NewTicker(*statusEvery)
		defer t.Stop()
		tick = t.C
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			logger.Info("Stopping")
			return stream.Stop()
		case <-tick:
			queue.Submit(control.Command{Kind: control.GetStatus})
		}
	}
}

// openStream opens a mono int16 duplex stream whose callback drains the
// control queue and runs the canceller.
func openStream(c *afc.Canceller, queue *control.Queue, inIdx, outIdx int) (*portaudio.Stream, error) {
	callback := func(in, out []int16) {
		queue.Drain(c)
		c.ProcessInt16(out, in)
	}

	if inIdx < 0 && outIdx < 0 {
		return portaudio.OpenDefaultStream(1, 1, c.SampleRate(), c.BlockSize(), callback)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	inputDev, err := resolveDevice(devices, inIdx, portaudio.DefaultInputDevice)
	if err != nil {
		return nil, err
	}
	outputDev, err := resolveDevice(devices, outIdx, portaudio.DefaultOutputDevice)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(inputDev, outputDev)
	params.Input.Channels = 1
	params.Output.Channels = 1
	params.SampleRate = c.SampleRate()
	params.FramesPerBuffer = c.BlockSize()

	return portaudio.OpenStream(params, callback)
}

// resolveDevice returns the device at idx if valid, otherwise calls fallback.
func resolveDevice(devices []*portaudio.DeviceInfo, idx int, fallback func() (*portaudio.DeviceInfo, error)) (*portaudio.DeviceInfo, error) {
	if idx >= 0 && idx < len(devices) {
		return devices[idx], nil
	}
	return fallback()
}

func listDevices(w io.Writer) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}
	for i, d := range devices {
		fmt.Fprintf(w, "%d\t%s\tin=%d\tout=%d\t%.0f Hz\n",
			i, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate)
	}
	return nil
}
