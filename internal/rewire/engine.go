package rewire

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/befsim/internal/params"
)

type Phase int

const (
	Active Phase = iota
	CheckPending
	Rewiring
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case CheckPending:
		return "check-pending"
	case Rewiring:
		return "rewiring"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Extinction records when a species was first seen at or below the
// extinction threshold.
type Extinction struct {
	Species int     `json:"species"`
	Time    float64 `json:"time"`
}

// Event is what a Method sees when rewiring.
type Event struct {
	Time float64
	// Before is the network as it was at the previous checkpoint.
	Before   *params.Network
	Biomass  []float64
	Extinct  []bool
	Newly    []int
	Affected []int
	Rand     *rand.Rand
}

func (e Event) alive(k int) bool { return !e.Extinct[k] }

// Method rewires the rows of affected consumers in net. It must not link to
// extinct species nor touch other rows.
type Method interface {
	Name() params.RewireMethod
	Rewire(net *params.Network, ev Event)
}

// NewMethod returns the configured method, or nil for none.
func NewMethod(p *params.Parameters) Method {
	switch p.Rewire.Method {
	case params.RewireADBM:
		return &ADBM{p: p, opts: p.Rewire.ADBM}
	case params.RewireGilljam:
		return &Gilljam{p: p, opts: p.Rewire.Gilljam}
	case params.RewireStaniczenko:
		return &Staniczenko{p: p}
	}
	return nil
}

// Outcome is the result of one checkpoint.
type Outcome struct {
	Biomass []float64
	Network *params.Network
	Newly   []int
	Rewired bool
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMethod overrides the method chosen from the parameters.
func WithMethod(m Method) Option {
	return func(e *Engine) { e.method = m }
}

// WithPhaseHook is called on every phase change.
func WithPhaseHook(fn func(from, to Phase)) Option {
	return func(e *Engine) { e.hook = fn }
}

type Engine struct {
	p      *params.Parameters
	method Method
	rng    *rand.Rand
	log    *slog.Logger
	hook   func(from, to Phase)

	phase     Phase
	extinct   []bool
	events    []Extinction
	rewirings int
}

func NewEngine(p *params.Parameters, rng *rand.Rand, opts ...Option) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	e := &Engine{
		p:       p,
		method:  NewMethod(p),
		rng:     rng,
		log:     slog.Default(),
		extinct: make([]bool, p.S),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Extinct() []bool { return append([]bool(nil), e.extinct...) }

func (e *Engine) Extinctions() []Extinction { return append([]Extinction(nil), e.events...) }

func (e *Engine) Rewirings() int { return e.rewirings }

// AllExtinct reports whether no species survives.
func (e *Engine) AllExtinct() bool {
	for _, x := range e.extinct {
		if !x {
			return false
		}
	}
	return true
}

func (e *Engine) enter(to Phase) {
	from := e.phase
	e.phase = to
	if e.hook != nil && from != to {
		e.hook(from, to)
	}
}

// Checkpoint marks species at or below the threshold extinct, zeroes their
// biomass and removes their links. When a method is configured, consumers
// that lost prey are rewired. net is not modified.
func (e *Engine) Checkpoint(t float64, b []float64, net *params.Network) Outcome {
	e.enter(CheckPending)
	defer e.enter(Active)

	out := Outcome{Biomass: make([]float64, len(b)), Network: net.Clone()}
	for i, v := range b {
		if v < 0 {
			v = 0
		}
		if !e.extinct[i] && v <= e.p.ExtinctionThreshold {
			e.extinct[i] = true
			e.events = append(e.events, Extinction{Species: i, Time: t})
			out.Newly = append(out.Newly, i)
			e.log.Debug("species extinct", "species", i, "t", t)
		}
		if e.extinct[i] {
			v = 0
		}
		out.Biomass[i] = v
	}
	if len(out.Newly) == 0 {
		return out
	}

	for _, j := range out.Newly {
		out.Network.ClearRow(j)
		out.Network.ClearColumn(j)
	}
	affected := e.affected(net, out.Newly)
	if e.method == nil || len(affected) == 0 {
		return out
	}

	e.enter(Rewiring)
	e.method.Rewire(out.Network, Event{
		Time:     t,
		Before:   net,
		Biomass:  out.Biomass,
		Extinct:  e.Extinct(),
		Newly:    out.Newly,
		Affected: affected,
		Rand:     e.rng,
	})
	e.rewirings++
	out.Rewired = true
	e.log.Info("rewired food web", "method", e.method.Name(), "t", t,
		"extinct", out.Newly, "consumers", affected)
	return out
}

// affected lists surviving consumers that ate a newly extinct species.
func (e *Engine) affected(before *params.Network, newly []int) []int {
	var out []int
	for i, row := range before.A {
		if e.extinct[i] {
			continue
		}
		for _, j := range newly {
			if j != i && row[j] == 1 {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// setDiet replaces consumer i's row with diet under uniform preference. An
// existing cannibalistic link is kept.
func setDiet(p *params.Parameters, net *params.Network, before *params.Network, i int, diet []int) {
	if net.A[i][i] == 1 {
		diet = append(diet[:len(diet):len(diet)], i)
	}
	net.ClearRow(i)
	for _, j := range diet {
		net.A[i][j] = 1
		net.Efficiency[i][j] = p.BaseEfficiency(j)
		net.Novel[i][j] = before.A[i][j] == 0 || before.Novel[i][j]
	}
	net.NormalizePreference(i)
}
