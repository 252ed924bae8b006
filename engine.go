// Package takyon wires the node graph, voice subsystem, renderer, script
// host, and file watcher into one live-codeable synthesizer.
package takyon

import (
	"errors"
	"io"
	"sync"

	"github.com/aaratha/takyon/audio"
	"github.com/aaratha/takyon/dsp"
	"github.com/aaratha/takyon/graph"
	"github.com/aaratha/takyon/render"
	"github.com/aaratha/takyon/script"
	"github.com/aaratha/takyon/voice"
	"github.com/aaratha/takyon/watch"
)

// Option configures a new Engine.
type Option func(*config)

type config struct {
	sampleRate     int
	maxVoices      int
	scriptPath     string
	runtimePrelude string
}

func defaultConfig() config {
	return config{sampleRate: int(dsp.SampleRate), maxVoices: 32}
}

// WithSampleRate overrides the device sample rate (default dsp.SampleRate).
func WithSampleRate(hz int) Option {
	return func(c *config) { c.sampleRate = hz }
}

// WithMaxVoices sets the voice.Manager's fixed slot count (default 32).
func WithMaxVoices(n int) Option {
	return func(c *config) { c.maxVoices = n }
}

// WithScriptPath loads and runs path on startup and registers it with the
// hot-reload watcher.
func WithScriptPath(path string) Option {
	return func(c *config) { c.scriptPath = path }
}

// WithRuntimePrelude runs code in the script host before the script named
// by WithScriptPath.
func WithRuntimePrelude(code string) Option {
	return func(c *config) { c.runtimePrelude = code }
}

// Engine owns one graph, its voice manager, renderer, script host, audio
// device player, and (if a script path was given) its file watcher.
type Engine struct {
	mu sync.Mutex

	Graph    *graph.Graph
	Voices   *voice.Manager
	Renderer *render.Renderer
	Script   *script.Host

	watcher    *watch.Watcher
	scriptPath string
	prelude    string
	audio      *audio.Player
}

// New builds an Engine from opts. If WithScriptPath was given, the script
// is run immediately and a Watcher is armed (but not started — Play
// starts it). If the audio device player cannot be opened, New returns
// that error; there is no audio-disabled fallback.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, errors.New("takyon: sample rate must be positive")
	}
	if cfg.maxVoices <= 0 {
		return nil, errors.New("takyon: maxVoices must be positive")
	}

	g := graph.New()
	e := &Engine{
		Graph:      g,
		Voices:     voice.NewManager(g, cfg.maxVoices),
		Renderer:   render.New(g),
		Script:     script.NewHost(g),
		scriptPath: cfg.scriptPath,
		prelude:    cfg.runtimePrelude,
	}

	if e.prelude != "" {
		if err := e.Script.RunString(e.prelude); err != nil {
			return nil, err
		}
	}
	if e.scriptPath != "" {
		if err := e.Script.RunFile(e.scriptPath); err != nil {
			return nil, err
		}
		e.watcher = watch.New(e.scriptPath, e.reload)
	}

	backend, err := audio.NewPlayer(cfg.sampleRate, e.Renderer)
	if err != nil {
		return nil, err
	}
	e.audio = backend
	return e, nil
}

// reload clears the graph, recreates the script host, re-runs the
// runtime prelude, then re-runs the watched file.
func (e *Engine) reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Graph.Clear()
	e.Voices.FreeAllVoices()
	e.Script.Close()
	e.Script = script.NewHost(e.Graph)

	if e.prelude != "" {
		if err := e.Script.RunString(e.prelude); err != nil {
			return err
		}
	}
	return e.Script.RunFile(e.scriptPath)
}

// Play starts the audio device and, if a script path was configured, the
// hot-reload watcher.
func (e *Engine) Play() {
	e.audio.Play()
	if e.watcher != nil {
		e.watcher.Start()
	}
}

// Pause pauses device output without tearing anything down.
func (e *Engine) Pause() {
	e.audio.Pause()
}

// Stop stops the watcher (if running) and the audio device.
func (e *Engine) Stop() error {
	if e.watcher != nil {
		e.watcher.Stop()
	}
	return e.audio.Stop()
}

// RunString runs one line of script against the live engine.
func (e *Engine) RunString(code string) error {
	return e.Script.RunString(code)
}

// REPL reads one script expression per line from r until EOF or "exit".
func (e *Engine) REPL(r io.Reader, w io.Writer) {
	e.Script.Loop(r, w)
}
