// Package metrics defines the five Prometheus gauges the consensus
// replication queue exposes: total_num_ops, num_all_done_ops,
// num_majority_done_ops, num_in_progress_ops, and queue_size_bytes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "consensus"
	subsystem = "queue"
)

// queueGaugeVecs is the process-wide set of gauge vectors every queue's
// metrics are carved out of, one label value ("queue") per tablet/queue
// instance.
type queueGaugeVecs struct {
	totalNumOps        *prometheus.GaugeVec
	numAllDoneOps      *prometheus.GaugeVec
	numMajorityDoneOps *prometheus.GaugeVec
	numInProgressOps   *prometheus.GaugeVec
	queueSizeBytes     *prometheus.GaugeVec
}

var global = newQueueGaugeVecs()

func newQueueGaugeVecs() *queueGaugeVecs {
	labels := []string{"queue"}
	return &queueGaugeVecs{
		totalNumOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "total_num_ops",
			Help:      "Total number of queued operations in the leader queue.",
		}, labels),
		numAllDoneOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "num_all_done_ops",
			Help:      "Number of operations in the leader queue ack'd by all peers.",
		}, labels),
		numMajorityDoneOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "num_majority_done_ops",
			Help:      "Number of operations in the leader queue ack'd by a majority but not all peers.",
		}, labels),
		numInProgressOps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "num_in_progress_ops",
			Help:      "Number of operations in the leader queue ack'd by a minority of peers.",
		}, labels),
		queueSizeBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_size_bytes",
			Help:      "Size of the leader queue, in bytes.",
		}, labels),
	}
}

// PrometheusCollectors returns every collector backing this package's
// gauges, for registration with a prometheus.Registerer.
func PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		global.totalNumOps,
		global.numAllDoneOps,
		global.numMajorityDoneOps,
		global.numInProgressOps,
		global.queueSizeBytes,
	}
}

// QueueMetrics holds the five gauge handles scoped to a single queue
// instance (identified by its metric label value).
type QueueMetrics struct {
	TotalNumOps        prometheus.Gauge
	NumAllDoneOps      prometheus.Gauge
	NumMajorityDoneOps prometheus.Gauge
	NumInProgressOps   prometheus.Gauge
	QueueSizeBytes     prometheus.Gauge
}

// NewQueueMetrics returns gauge handles scoped to label, with all five
// gauges instantiated at zero.
func NewQueueMetrics(label string) *QueueMetrics {
	l := prometheus.Labels{"queue": label}
	m := &QueueMetrics{
		TotalNumOps:        global.totalNumOps.With(l),
		NumAllDoneOps:      global.numAllDoneOps.With(l),
		NumMajorityDoneOps: global.numMajorityDoneOps.With(l),
		NumInProgressOps:   global.numInProgressOps.With(l),
		QueueSizeBytes:     global.queueSizeBytes.With(l),
	}
	m.TotalNumOps.Set(0)
	m.NumAllDoneOps.Set(0)
	m.NumMajorityDoneOps.Set(0)
	m.NumInProgressOps.Set(0)
	m.QueueSizeBytes.Set(0)
	return m
}
