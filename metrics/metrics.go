// Package metrics 求解过程的 prometheus 指标。
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"poiseuille/types"
)

// Registry 求解指标
type Registry struct {
	registry *prometheus.Registry

	SolvesTotal   *prometheus.CounterVec
	Iterations    *prometheus.HistogramVec
	Residual      *prometheus.GaugeVec
	SolveDuration *prometheus.HistogramVec
	BatchSize     prometheus.Gauge
}

// NewRegistry 创建独立的指标注册表
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "poiseuille_solves_total",
			Help: "Total number of network solves",
		},
		[]string{"method", "state"},
	)
	r.Iterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poiseuille_solve_iterations",
			Help:    "Number of linear solves per network solve",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		},
		[]string{"method"},
	)
	r.Residual = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poiseuille_solve_residual",
			Help: "Final residual infinity norm of the last solve",
		},
		[]string{"method"},
	)
	r.SolveDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poiseuille_solve_duration_seconds",
			Help:    "Network solve duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"method"},
	)
	r.BatchSize = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "poiseuille_batch_size",
			Help: "Number of networks in the last batch",
		},
	)
	return r
}

// ObserveSolve 记录一次求解
func (r *Registry) ObserveSolve(method types.Method, state types.State, iterations int, residual float64, elapsed time.Duration) {
	r.SolvesTotal.WithLabelValues(method.String(), state.String()).Inc()
	r.Iterations.WithLabelValues(method.String()).Observe(float64(iterations))
	r.Residual.WithLabelValues(method.String()).Set(residual)
	r.SolveDuration.WithLabelValues(method.String()).Observe(elapsed.Seconds())
}

// Gatherer 底层注册表
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler HTTP 导出
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteText 以文本格式输出全部指标
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
