// Package telemetry exposes Prometheus gauges for simulated-annealing
// progress — the optimizer-observability surface the Python original only
// had via bare print statements. Wired into anneal.SA through its
// OnIteration hook; the annealer itself never imports this package.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// SAGauges groups the four gauges tracked per SA run: temperature, best
// objective value, outer-iteration count, and stay counter.
type SAGauges struct {
	Temperature prometheus.Gauge
	BestY       prometheus.Gauge
	IterCycle   prometheus.Gauge
	StayCounter prometheus.Gauge
}

// NewSAGauges registers a fresh set of gauges labeled by run into reg. Each
// SA run (layout or routing, possibly concurrent) should register its own
// set with a distinct run label to avoid collector collisions.
func NewSAGauges(reg prometheus.Registerer, run string) *SAGauges {
	g := &SAGauges{
		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nocmesh",
			Subsystem:   "anneal",
			Name:        "temperature",
			Help:        "Current simulated-annealing temperature.",
			ConstLabels: prometheus.Labels{"run": run},
		}),
		BestY: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nocmesh",
			Subsystem:   "anneal",
			Name:        "best_objective",
			Help:        "Best-so-far objective value.",
			ConstLabels: prometheus.Labels{"run": run},
		}),
		IterCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nocmesh",
			Subsystem:   "anneal",
			Name:        "iteration_cycle",
			Help:        "Outer iteration count.",
			ConstLabels: prometheus.Labels{"run": run},
		}),
		StayCounter: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nocmesh",
			Subsystem:   "anneal",
			Name:        "stay_counter",
			Help:        "Consecutive outer iterations with no meaningful improvement.",
			ConstLabels: prometheus.Labels{"run": run},
		}),
	}
	reg.MustRegister(g.Temperature, g.BestY, g.IterCycle, g.StayCounter)

	return g
}

// OnIteration adapts SAGauges to anneal.Options.OnIteration's signature.
func (g *SAGauges) OnIteration(iterCycle int, temperature, _, yBest float64) {
	g.Temperature.Set(temperature)
	g.BestY.Set(yBest)
	g.IterCycle.Set(float64(iterCycle))
}

// SetStayCounter records the outer-loop stay counter, tracked separately
// from OnIteration since it is outer-iteration state, not inner-chain state.
func (g *SAGauges) SetStayCounter(n int) {
	g.StayCounter.Set(float64(n))
}
