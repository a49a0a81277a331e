// Package metrics instruments the frame driver with Prometheus collectors.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the sandbox collectors
type Metrics struct {
	// Ticks counts simulation steps
	Ticks prometheus.Counter

	// Deliveries counts edge windows that completed and copied a value
	Deliveries prometheus.Counter

	// InFlight is the number of edges counting down after the last tick
	InFlight prometheus.Gauge

	// Entities tracks live nodes, edges and gates
	Entities *prometheus.GaugeVec

	// TickDuration measures the wall time of one Tick call
	TickDuration prometheus.Histogram

	// Gestures counts completed pointer gestures by kind
	Gestures *prometheus.CounterVec

	// SweepRemoved counts entities removed by the consistency sweep
	SweepRemoved *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatesim_ticks_total",
			Help: "Total number of simulation ticks",
		}),
		Deliveries: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatesim_edge_deliveries_total",
			Help: "Total number of values delivered by edges",
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gatesim_edges_in_flight",
			Help: "Edges whose delay window is running",
		}),
		Entities: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gatesim_entities",
				Help: "Live circuit entities",
			},
			[]string{"kind"},
		),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "gatesim_tick_duration_seconds",
			Help: "Wall time spent in one tick",
			// A 60 TPS frame is about 16ms
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.016},
		}),
		Gestures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatesim_gestures_total",
				Help: "Completed pointer gestures",
			},
			[]string{"gesture"},
		),
		SweepRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatesim_sweep_removed_total",
				Help: "Entities removed by the consistency sweep",
			},
			[]string{"kind"},
		),
	}
}

// ObserveTick records one propagation step
func (m *Metrics) ObserveTick(delivered, inFlight int, took time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.Deliveries.Add(float64(delivered))
	m.InFlight.Set(float64(inFlight))
	m.TickDuration.Observe(took.Seconds())
}

// ObserveGestures counts each completed gesture
func (m *Metrics) ObserveGestures(gestures []string) {
	if m == nil {
		return
	}
	for _, g := range gestures {
		m.Gestures.WithLabelValues(g).Inc()
	}
}

// ObserveSweep counts entities removed by a sweep
func (m *Metrics) ObserveSweep(edges, gates int) {
	if m == nil {
		return
	}
	if edges > 0 {
		m.SweepRemoved.WithLabelValues("edge").Add(float64(edges))
	}
	if gates > 0 {
		m.SweepRemoved.WithLabelValues("gate").Add(float64(gates))
	}
}

// SetEntities records the live entity counts
func (m *Metrics) SetEntities(nodes, edges, gates int) {
	if m == nil {
		return
	}
	m.Entities.WithLabelValues("node").Set(float64(nodes))
	m.Entities.WithLabelValues("edge").Set(float64(edges))
	m.Entities.WithLabelValues("gate").Set(float64(gates))
}
