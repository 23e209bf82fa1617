// Package anneal implements a generic Metropolis simulated annealer over any
// reversibly-mutable solution type, per spec §4.7. The annealer owns an
// exclusive mutable reference to the current solution: mutation is in-place,
// Undo restores the exact pre-mutation state, and the best-so-far solution
// is a deep snapshot taken only when strictly improving.
package anneal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/nocmesh/internal/logx"
)

// Sentinel errors for annealer construction and execution.
var (
	// ErrBadTemperatureBounds indicates T_max <= T_min, or either <= 0.
	ErrBadTemperatureBounds = errors.New("anneal: require T_max > T_min > 0")

	// ErrBadChainLength indicates L < 1.
	ErrBadChainLength = errors.New("anneal: chain length L must be >= 1")

	// ErrNaNObjective indicates the objective function returned NaN,
	// aborting the run per spec §4.7's failure modes.
	ErrNaNObjective = errors.New("anneal: objective function returned NaN")
)

const (
	relTol = 1e-9
	absTol = 1e-30
)

// Mutable is the contract a solution type must satisfy to be annealed: an
// in-place reversible mutation, and a deep clone for best-so-far snapshots.
type Mutable[S any] interface {
	// Mutate applies one random, reversible change in place.
	Mutate(rng *rand.Rand)
	// Undo reverses the most recent Mutate call.
	Undo() error
	// Clone returns a deep, independent copy.
	Clone() S
}

// Objective scores a solution; lower is better. Must be total: any value
// reachable by Mutate/Undo must produce a finite score or the run aborts.
type Objective[S any] func(x S) float64

// Option configures an SA's cooling and stopping parameters via functional
// arguments, mirroring the corpus's Option/DefaultOptions convention.
type Option func(*Options)

// Options holds the SA parameters of spec §4.7.
type Options struct {
	// TMax, TMin bound the cooling schedule; require TMax > TMin > 0.
	TMax, TMin float64
	// L is the inner chain length (mutations per outer iteration).
	L int
	// MaxStay is the number of stalled outer iterations tolerated before
	// terminating on convergence.
	MaxStay int
	// Silent suppresses OnIteration calls and outer-iteration log lines
	// when true.
	Silent bool
	// OnIteration is invoked once per inner-loop step (when !Silent) with
	// the current iteration cycle, temperature, and running/best objective
	// values, for telemetry/logging hookup without SA depending on either.
	OnIteration func(iterCycle int, temperature, yCurrent, yBest float64)
	// Logger receives one structured Debug event per outer iteration (when
	// !Silent), the Go analogue of the original's
	// print("temperature:", ..., "y_value:", ..., "stay_counter:", ...).
	// Defaults to a discarding logger.
	Logger *logx.Logger
}

// DefaultOptions returns sane SA defaults: T_max=100, T_min=1e-3, L=1,
// MaxStay=50, Silent=true, no-op OnIteration, discarding Logger.
func DefaultOptions() Options {
	return Options{
		TMax:        100,
		TMin:        1e-3,
		L:           1,
		MaxStay:     50,
		Silent:      true,
		OnIteration: func(int, float64, float64, float64) {},
		Logger:      logx.Discard(),
	}
}

// WithTemperatureBounds sets T_max and T_min.
func WithTemperatureBounds(tMax, tMin float64) Option {
	return func(o *Options) { o.TMax, o.TMin = tMax, tMin }
}

// WithChainLength sets the inner chain length L.
func WithChainLength(l int) Option {
	return func(o *Options) { o.L = l }
}

// WithMaxStay sets the convergence patience.
func WithMaxStay(n int) Option {
	return func(o *Options) { o.MaxStay = n }
}

// WithSilent toggles whether OnIteration is invoked.
func WithSilent(silent bool) Option {
	return func(o *Options) { o.Silent = silent }
}

// WithOnIteration registers a progress hook.
func WithOnIteration(fn func(iterCycle int, temperature, yCurrent, yBest float64)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnIteration = fn
		}
	}
}

// WithLogger registers the Logger that receives one Debug event per outer
// iteration (subject to Silent).
func WithLogger(l *logx.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// SA is a generic Metropolis-with-undo simulated annealer over a Mutable
// solution type S.
type SA[S Mutable[S]] struct {
	x         S
	objective Objective[S]
	rng       *rand.Rand
	opts      Options

	yCurrent float64
	yBest    float64
	best     S

	temperature float64
	iterCycle   int
	stayCounter int
	history     []float64
}

// New constructs an SA seeded at x0, scored by objective, driven by rng.
// Returns ErrBadTemperatureBounds or ErrBadChainLength on invalid Options.
func New[S Mutable[S]](x0 S, objective Objective[S], rng *rand.Rand, opts ...Option) (*SA[S], error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.TMax <= 0 || o.TMin <= 0 || o.TMax <= o.TMin {
		return nil, ErrBadTemperatureBounds
	}
	if o.L < 1 {
		return nil, ErrBadChainLength
	}

	y0 := objective(x0)
	if math.IsNaN(y0) {
		return nil, ErrNaNObjective
	}

	return &SA[S]{
		x:           x0,
		objective:   objective,
		rng:         rng,
		opts:        o,
		yCurrent:    y0,
		yBest:       y0,
		best:        x0.Clone(),
		temperature: o.TMax,
	}, nil
}

// Best returns the best-so-far deep snapshot and its objective value.
func (sa *SA[S]) Best() (S, float64) { return sa.best, sa.yBest }

// History returns the best-y-per-outer-iteration trace recorded so far.
func (sa *SA[S]) History() []float64 { return append([]float64(nil), sa.history...) }

// StayCounter returns the number of consecutive stalled outer iterations
// observed so far (telemetry/diagnostics; also the convergence counter
// compared against Options.MaxStay).
func (sa *SA[S]) StayCounter() int { return sa.stayCounter }

// Run drives the annealer until T < T_min or stay_counter > max_stay,
// checking ctx once per outer iteration (mirroring bfs.walker.loop's single
// cancellation point per pass). Returns the best-so-far snapshot, its
// objective value, and the per-iteration history.
func (sa *SA[S]) Run(ctx context.Context) (S, float64, []float64, error) {
	for {
		select {
		case <-ctx.Done():
			return sa.best, sa.yBest, sa.History(), ctx.Err()
		default:
		}

		if err := sa.innerChain(); err != nil {
			return sa.best, sa.yBest, sa.History(), err
		}

		sa.iterCycle++
		sa.temperature = sa.opts.TMax / (1 + math.Log(1+float64(sa.iterCycle)))
		sa.history = append(sa.history, sa.yBest)
		sa.updateStayCounter()

		if !sa.opts.Silent && sa.opts.Logger != nil {
			sa.opts.Logger.Debug("anneal: outer iteration",
				"iter_cycle", sa.iterCycle,
				"temperature", sa.temperature,
				"y_best", sa.yBest,
				"stay_counter", sa.stayCounter,
			)
		}

		if sa.temperature < sa.opts.TMin || sa.stayCounter > sa.opts.MaxStay {
			return sa.best, sa.yBest, sa.History(), nil
		}
	}
}

// innerChain runs the L-step Metropolis chain of one outer iteration.
func (sa *SA[S]) innerChain() error {
	for i := 0; i < sa.opts.L; i++ {
		sa.x.Mutate(sa.rng)
		yNew := sa.objective(sa.x)
		if math.IsNaN(yNew) {
			return ErrNaNObjective
		}

		df := yNew - sa.yCurrent
		accept := df < 0 || math.Exp(-df/sa.temperature) > sa.rng.Float64()
		if accept {
			sa.yCurrent = yNew
			if yNew < sa.yBest {
				sa.yBest = yNew
				sa.best = sa.x.Clone()
			}
		} else if err := sa.x.Undo(); err != nil {
			return fmt.Errorf("anneal: undo failed: %w", err)
		}

		if !sa.opts.Silent {
			sa.opts.OnIteration(sa.iterCycle, sa.temperature, sa.yCurrent, sa.yBest)
		}
	}

	return nil
}

// updateStayCounter compares the last two history entries within a
// combined relative/absolute tolerance (1e-9 relative, 1e-30 absolute).
func (sa *SA[S]) updateStayCounter() {
	if len(sa.history) < 2 {
		sa.stayCounter = 0
		return
	}
	prev, last := sa.history[len(sa.history)-2], sa.history[len(sa.history)-1]
	tol := absTol + relTol*math.Abs(prev)
	if math.Abs(last-prev) <= tol {
		sa.stayCounter++
	} else {
		sa.stayCounter = 0
	}
}
