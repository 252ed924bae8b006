// Package audio wires a render.Renderer (or any SampleSource) into an
// ebiten audio.Context-backed device player.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource produces interleaved stereo f32 frames on demand. A
// render.Renderer satisfies this directly.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource into an io.Reader the ebiten audio
// context can stream from: every Read pulls exactly enough frames out of
// source to fill p.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

// NewStreamReader wraps source.
func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

// Read implements io.Reader. p's length must be a multiple of 8 bytes (one
// stereo f32 frame); any remainder is dropped for that call.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	return frames * 8, nil
}

// Close is a no-op; StreamReader owns no resources beyond its scratch
// buffer.
func (r *StreamReader) Close() error { return nil }

// Player owns a single ebiten audio player streaming from a
// StreamReader.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

// sharedAudioContext lazily creates the process-wide ebiten audio
// context. ebiten permits only one context per process, so every Player
// in the engine shares it.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens a streaming player over source at sampleRate.
func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()           { p.player.Play() }
func (p *Player) Pause()          { p.player.Pause() }
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position returns how much audio has actually been heard so far.
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Stop pauses and releases the underlying device player and its reader.
func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
