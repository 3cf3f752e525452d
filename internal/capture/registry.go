package capture

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Params carries everything a source constructor may need.
type Params struct {
	SampleRate float64
	FrameSize  int
	Queue      int
	Bias       float64
	Seed       uint64
	Path       string
	// Realtime paces synthetic and file sources at SampleRate.
	Realtime bool
	Limit    int
	Log      *zap.Logger
}

// Interval is the frame period at SampleRate, or zero when not paced.
func (p Params) Interval() time.Duration {
	if !p.Realtime || p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) * float64(p.FrameSize) / p.SampleRate)
}

type Registry struct {
	sources map[string]func(Params) (Source, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]func(Params) (Source, error)),
	}

	r.sources["portaudio"] = func(p Params) (Source, error) {
		return NewPortAudio(p.SampleRate, p.FrameSize, p.Queue, p.Log), nil
	}
	r.sources["synthetic"] = func(p Params) (Source, error) {
		return NewSynthetic(SyntheticOptions{
			Bias:      p.Bias,
			Seed:      p.Seed,
			FrameSize: p.FrameSize,
			Interval:  p.Interval(),
			Limit:     p.Limit,
			Queue:     p.Queue,
		}), nil
	}
	r.sources["file"] = func(p Params) (Source, error) {
		if p.Path == "" {
			return nil, fmt.Errorf("capture: file source needs a path")
		}
		f, err := os.Open(p.Path)
		if err != nil {
			return nil, fmt.Errorf("capture: open %s: %w", p.Path, err)
		}
		return NewReader(f, p.FrameSize, p.Interval(), p.Log), nil
	}

	return r
}

// Register adds or replaces a source constructor.
func (r *Registry) Register(name string, fn func(Params) (Source, error)) {
	r.sources[name] = fn
}

func (r *Registry) Get(name string, p Params) (Source, error) {
	fn, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownSource, name, r.Names())
	}
	return fn(p)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.sources[name]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
