// Command afcfile runs a WAV recording through the feedback canceller.
//
// Usage:
//
//	afcfile [flags] input.wav output.wav
//
// Multi-channel input is reduced to its first channel. The output keeps
// the input sample rate and bit depth.
//
// Examples:
//
//	afcfile howl.wav clean.wav
//	afcfile -mode lms-first -order 32 -mu 0.01 howl.wav clean.wav
//	afcfile -fft -window 1024 -status howl.wav clean.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/moukito/SON-project/afc"
	"github.com/moukito/SON-project/internal/cli"
	"github.com/moukito/SON-project/internal/control"
	"github.com/moukito/SON-project/stats/level"
)

var errUsage = errors.New("usage: afcfile [flags] input.wav output.wav")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("afcfile", flag.ContinueOnError)
	flags := cli.Register(fs, false)
	status := fs.Bool("status", false, "print the final status and detected frequencies")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: afcfile [flags] input.wav output.wav\n\n")
		fmt.Fprintf(fs.Output(), "Runs a WAV recording through the feedback canceller.\n\n")
		fmt.Fprintf(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}

	logger, err := cli.NewLogger(flags.LogLevel, flags.LogJSON)
	if err != nil {
		return err
	}

	in, err := readWAV(fs.Arg(0))
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"file":        fs.Arg(0),
		"sample_rate": in.sampleRate,
		"bit_depth":   in.bitDepth,
		"channels":    in.channels,
		"samples":     len(in.samples),
	}).Info("Input loaded")

	c, err := flags.NewCanceller(float64(in.sampleRate), logger)
	if err != nil {
		return err
	}

	out := process(c, in.samples)

	if err := writeWAV(fs.Arg(1), out, in.sampleRate, in.bitDepth); err != nil {
		return err
	}

	s := c.Status()
	inLevel, outLevel := level.Measure(in.samples), level.Measure(out)
	logger.WithFields(logrus.Fields{
		"file":         fs.Arg(1),
		"input_dbfs":   inLevel.RMSdB,
		"output_dbfs":  outLevel.RMSdB,
		"reduction_db": level.ReductionDB(inLevel, outLevel),
		"clipped":      outLevel.Clipped,
		"retunes":      s.Retunes,
		"notches":      len(s.Notches),
		"mode":         s.EffectiveMode.String(),
	}).Info("Output written")

	if *status {
		fmt.Fprintln(stdout, control.StatusLine(s))
		for _, l := range control.FreqLines(s) {
			fmt.Fprintln(stdout, l)
		}
	}
	return nil
}

// process runs samples through c one block at a time.
func process(c *afc.Canceller, samples []float64) []float64 {
	out := make([]float64, len(samples))
	block := c.BlockSize()
	for off := 0; off < len(samples); off += block {
		end := min(off+block, len(samples))
		c.ProcessBlock(out[off:end], samples[off:end])
	}
	return out
}

type recording struct {
	samples    []float64
	sampleRate int
	bitDepth   int
	channels   int
}

func readWAV(path string) (*recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rec := &recording{
		sampleRate: int(dec.SampleRate),
		bitDepth:   int(dec.BitDepth),
		channels:   buf.Format.NumChannels,
	}
	if rec.channels < 1 {
		rec.channels = 1
	}
	if rec.bitDepth != 16 && rec.bitDepth != 24 && rec.bitDepth != 32 {
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, rec.bitDepth)
	}

	scale := fullScale(rec.bitDepth)
	n := len(buf.Data) / rec.channels
	rec.samples = make([]float64, n)
	for i := range n {
		rec.samples[i] = float64(buf.Data[i*rec.channels]) / scale
	}
	return rec, nil
}

func writeWAV(path string, samples []float64, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scale := fullScale(bitDepth)
	data := make([]int, len(samples))
	for i, x := range samples {
		data[i] = int(math.Round(x * scale))
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// fullScale returns the largest positive sample value for bitDepth.
func fullScale(bitDepth int) float64 {
	return float64(int64(1)<<(bitDepth-1) - 1)
}
