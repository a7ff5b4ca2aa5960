// Package audio drives live playback of a Renderer's int16 PCM output
// through ebiten's audio context, converting to the float32 stream the
// context expects at the last possible moment.
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

// Renderer produces stereo int16 PCM a block at a time, following
// engine.Generator's Run signature: out holds bufLen*2 interleaved
// samples, ongoing reports whether a further call would produce more
// audio.
type Renderer interface {
	Run(out []int16, bufLen int, stereo bool) (ongoing bool, outLen int)
}

// rendererSource adapts a Renderer to the float32 stream ebiten's audio
// context consumes, pulling int16 blocks and converting them in place.
type rendererSource struct {
	r        Renderer
	i16      []int16
	done     bool
}

func newRendererSource(r Renderer) *rendererSource {
	return &rendererSource{r: r}
}

// Process fills dst (interleaved L,R float32 pairs) from the renderer,
// zero-padding the tail once the renderer reports it is finished.
func (s *rendererSource) Process(dst []float32) {
	frames := len(dst) / 2
	if cap(s.i16) < frames*2 {
		s.i16 = make([]int16, frames*2)
	}
	buf := s.i16[:frames*2]
	if s.done {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	ongoing, n := s.r.Run(buf, frames, true)
	for i := 0; i < n*2; i++ {
		dst[i] = float32(buf[i]) / 32768
	}
	for i := n * 2; i < len(dst); i++ {
		dst[i] = 0
	}
	if !ongoing {
		s.done = true
	}
}

func (s *rendererSource) Finished() bool { return s.done }

// SampleSource is the lower-level interface StreamReader pulls from;
// rendererSource (and anything else shaped like it) satisfies it.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has
// ended. When Finished returns true, the stream returns io.EOF on the
// next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

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
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

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

// NewPlayer starts live playback of r through the shared ebiten audio
// context at sampleRate.
func NewPlayer(sampleRate int, r Renderer) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(newRendererSource(r))
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player: pl,
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener
// actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
