package indicator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

type cueKind int

const (
	cueStart cueKind = iota + 1
	cueEndingSoon
	cueComplete
)

const (
	cueSampleRate = 16000
	cueGap        = 22 * time.Millisecond
)

type tone struct {
	hz     float64
	length time.Duration
	volume float64
}

var cues = map[cueKind][]int16{
	cueStart: synthesize(
		tone{hz: 660, length: 70 * time.Millisecond, volume: 0.18},
		tone{hz: 880, length: 90 * time.Millisecond, volume: 0.18},
	),
	cueEndingSoon: synthesize(
		tone{hz: 988, length: 80 * time.Millisecond, volume: 0.2},
		tone{hz: 988, length: 80 * time.Millisecond, volume: 0.2},
		tone{hz: 988, length: 80 * time.Millisecond, volume: 0.2},
	),
	cueComplete: synthesize(
		tone{hz: 880, length: 70 * time.Millisecond, volume: 0.18},
		tone{hz: 740, length: 70 * time.Millisecond, volume: 0.18},
		tone{hz: 587, length: 120 * time.Millisecond, volume: 0.18},
	),
}

// emitCue plays the cue through the PulseAudio (or PipeWire-pulse) server.
func emitCue(ctx context.Context, kind cueKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	samples := cues[kind]
	if len(samples) == 0 {
		return fmt.Errorf("unknown cue %d", kind)
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("raybot"),
		pulse.ClientApplicationIconName("audio-speakers"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if ctx.Err() != nil {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("raybot cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return ctx.Err()
}

// synthesize renders tones back to back with a short silence between them.
func synthesize(tones ...tone) []int16 {
	gap := sampleCount(cueGap)
	var pcm []int16
	for i, t := range tones {
		if i > 0 {
			pcm = append(pcm, make([]int16, gap)...)
		}
		pcm = append(pcm, render(t)...)
	}
	return pcm
}

// render is a sine with a linear attack and release of at most 5ms, which
// keeps the cue from clicking.
func render(t tone) []int16 {
	n := sampleCount(t.length)
	if n <= 0 || t.hz <= 0 || t.volume <= 0 {
		return nil
	}

	ramp := min(max(n/10, 1), cueSampleRate/200)
	pcm := make([]int16, n)
	for i := range n {
		envelope := min(1.0, float64(i)/float64(ramp), float64(n-i-1)/float64(ramp))
		sample := math.Sin(2 * math.Pi * t.hz * float64(i) / cueSampleRate)
		pcm[i] = int16(math.Round(sample * t.volume * envelope * math.MaxInt16))
	}
	return pcm
}

func sampleCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
