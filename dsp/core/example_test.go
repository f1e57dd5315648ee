package core_test

import (
	"fmt"

	"github.com/moukito/SON-project/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(48000),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d period=%.2fms\n",
		cfg.SampleRate, cfg.BlockSize, cfg.BlockPeriod()*1000)

	// Output:
	// sampleRate=48000 blockSize=256 period=5.33ms
}

func ExampleLerp() {
	// Map an SNR of 6 onto a step size between 0.001 and 0.01 over [2, 10].
	fmt.Printf("%.4f\n", core.Lerp(6, 2, 10, 0.001, 0.01))

	// Output:
	// 0.0055
}
