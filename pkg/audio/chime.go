// Package audio plays the short reminder chime.
package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	xlog "github.com/borgmon/dayplan/pkg/log"
)

const (
	sampleRate = 44100
	channels   = 1
)

// Global audio context singleton
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	audioCtxReady      bool
)

func initAudioContext() {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			xlog.WithComponent("audio").Warn().Err(err).Msg("failed to initialize audio context")
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		audioCtxReady = true
	})
}

// PlayChime plays a short two-note chime without blocking the caller.
func PlayChime() {
	initAudioContext()
	if !audioCtxReady || globalAudioCtx == nil {
		return
	}

	pcm := chimeSamples()

	go func() {
		player := globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
		player.Play()

		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}

		if err := player.Close(); err != nil {
			xlog.WithComponent("audio").Warn().Err(err).Msg("failed to close audio player")
		}
	}()
}

// chimeSamples synthesizes the chime: two sine notes with an exponential
// decay envelope, encoded as signed 16-bit little-endian PCM.
func chimeSamples() []byte {
	notes := []struct {
		freq     float64
		duration time.Duration
	}{
		{880, 180 * time.Millisecond},
		{1174.66, 260 * time.Millisecond},
	}

	var buf bytes.Buffer
	for _, note := range notes {
		n := int(float64(sampleRate) * note.duration.Seconds())
		for i := 0; i < n; i++ {
			t := float64(i) / sampleRate
			envelope := math.Exp(-6 * t / note.duration.Seconds())
			sample := math.Sin(2*math.Pi*note.freq*t) * envelope * 0.4
			_ = binary.Write(&buf, binary.LittleEndian, int16(sample*math.MaxInt16))
		}
	}
	return buf.Bytes()
}
