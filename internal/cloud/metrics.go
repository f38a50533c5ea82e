package cloud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus instruments.
type Metrics struct {
	SyncOps    *prometheus.CounterVec
	Heartbeats prometheus.Counter
	PushStaged prometheus.Counter
}

// NewMetrics registers the server metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SyncOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sshdeck_sync_operations_total",
			Help: "Configuration sync operations by kind.",
		}, []string{"op"}),
		Heartbeats: factory.NewCounter(prometheus.CounterOpts{
			Name: "sshdeck_device_heartbeats_total",
			Help: "Device heartbeats received.",
		}),
		PushStaged: factory.NewCounter(prometheus.CounterOpts{
			Name: "sshdeck_push_staged_total",
			Help: "Push-to-device staging requests.",
		}),
	}
}
