package driver

import (
	"strings"

	"github.com/heyfey/priosched/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// driverMetrics mirrors the teacher's pattern of one struct of
// promauto-registered collectors per component, built once at construction
// time (pkg/scheduler/scheduler/metrics.go, pkg/placement/metrics.go).
type driverMetrics struct {
	ticksTotal             prometheus.Counter
	tickDuration           prometheus.Summary
	bindsTotal             prometheus.Counter
	bindFailuresTotal      prometheus.Counter
	evictionsTotal         prometheus.Counter
	evictionFailuresTotal  prometheus.Counter
	pendingPodsGaugeFunc   prometheus.GaugeFunc
	occupiedNodesGaugeFunc prometheus.GaugeFunc
}

func (d *Driver) initDriverMetrics() driverMetrics {
	subsystem := strings.Replace(d.SchedulerName, "-", "_", -1)
	namespace := strings.Replace(config.Namespace(), "-", "_", -1)

	return driverMetrics{
		ticksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:      "driver_ticks_total",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Counts the number of scheduling ticks run.",
		}),
		tickDuration: promauto.NewSummary(prometheus.SummaryOpts{
			Name:      "driver_tick_duration_seconds",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "A summary of the duration of a tick (snapshot + schedule + apply).",
		}),
		bindsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:      "driver_binds_total",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Counts successfully applied binds.",
		}),
		bindFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:      "driver_bind_failures_total",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Counts binds that failed to apply.",
		}),
		evictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:      "driver_evictions_total",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Counts successfully applied evictions.",
		}),
		evictionFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name:      "driver_eviction_failures_total",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Counts evictions that failed to apply.",
		}),
		pendingPodsGaugeFunc: promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name:      "driver_pods_pending",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Number of pending-unbound pods as of the last snapshot.",
		}, d.getNumPendingPods),
		occupiedNodesGaugeFunc: promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name:      "driver_nodes_occupied",
			Subsystem: subsystem,
			Namespace: namespace,
			Help:      "Number of nodes occupied by a bound-active pod as of the last snapshot.",
		}, d.getNumOccupiedNodes),
	}
}

func (d *Driver) startTickTimer() *prometheus.Timer {
	return prometheus.NewTimer(d.metrics.tickDuration)
}

// getNumPendingPods and getNumOccupiedNodes back the gauge funcs above. Like
// the teacher's equivalents, they acquire the read lock and recompute from
// the last snapshot rather than maintaining a running counter.
func (d *Driver) getNumPendingPods() float64 {
	d.SchedulerLock.RLock()
	defer d.SchedulerLock.RUnlock()

	count := 0
	for _, p := range d.lastSnapshot.Pods {
		if p.PendingUnbound() {
			count++
		}
	}
	return float64(count)
}

func (d *Driver) getNumOccupiedNodes() float64 {
	d.SchedulerLock.RLock()
	defer d.SchedulerLock.RUnlock()

	occupied := map[string]bool{}
	for _, p := range d.lastSnapshot.Pods {
		if p.BoundActive() {
			occupied[p.NodeName] = true
		}
	}
	return float64(len(occupied))
}
