// Package metrics exposes device counters on the default Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"datadog_lighthouse/internal/models"
)

var (
	pollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighthouse_polls_total",
			Help: "Total number of health polls by reduced status.",
		},
		[]string{"result"},
	)
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lighthouse_state_transitions_total",
			Help: "Total number of connectivity transitions by target phase.",
		},
		[]string{"to"},
	)
	deviceStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lighthouse_device_status",
			Help: "Current device status code (0 unknown, 1 ok, 2 warn, 3 alert, 4 no_data, 5 provisioning).",
		},
	)
	framesRendered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lighthouse_frames_rendered_total",
			Help: "Total number of frames pushed to the strip.",
		},
	)
	bootCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lighthouse_boot_count",
			Help: "Consecutive unconfirmed boots as read at startup.",
		},
	)
)

func init() {
	prometheus.MustRegister(pollsTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(deviceStatus)
	prometheus.MustRegister(framesRendered)
	prometheus.MustRegister(bootCount)
}

// ObservePoll counts one completed poll.
func ObservePoll(s models.DeviceStatus) {
	pollsTotal.WithLabelValues(s.String()).Inc()
}

// ObserveTransition counts a move into phase.
func ObserveTransition(to models.ConnectionPhase) {
	transitionsTotal.WithLabelValues(string(to)).Inc()
}

// SetStatus records the published device status.
func SetStatus(s models.DeviceStatus) {
	deviceStatus.Set(float64(s))
}

// FrameRendered counts one strip update.
func FrameRendered() {
	framesRendered.Inc()
}

// SetBootCount records the boot counter value.
func SetBootCount(n int) {
	bootCount.Set(float64(n))
}
