package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics регистрируется в переданном Registerer, чтобы тесты и несколько
// экземпляров приложения не делили глобальный реестр.
type Metrics struct {
	usersRegistered *prometheus.CounterVec
	signIns         *prometheus.CounterVec
	taskOps         *prometheus.CounterVec
	tagOps          *prometheus.CounterVec
	taskOpDuration  *prometheus.HistogramVec
	taskTitleLength prometheus.Histogram
}

// NewMetrics с nil Registerer создаёт незарегистрированные метрики
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		usersRegistered: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_users_registered_total",
				Help: "Total number of Register operations",
			},
			[]string{"status"},
		),
		signIns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_sign_ins_total",
				Help: "Total number of SignIn operations",
			},
			[]string{"status"},
		),
		taskOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_task_operations_total",
				Help: "Total number of task operations",
			},
			[]string{"op", "status"},
		),
		tagOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todoapi_tag_operations_total",
				Help: "Total number of tag operations",
			},
			[]string{"op", "status"},
		),
		taskOpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todoapi_task_operation_duration_seconds",
				Help:    "Duration of task operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		taskTitleLength: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "todoapi_task_title_length_bytes",
				Help:    "Length distribution of task titles",
				Buckets: []float64{10, 25, 50, 100, 200},
			},
		),
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) observeTask(op string, start time.Time, err error) {
	m.taskOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.taskOps.WithLabelValues(op, statusLabel(err)).Inc()
}

func (m *Metrics) observeTag(op string, err error) {
	m.tagOps.WithLabelValues(op, statusLabel(err)).Inc()
}
