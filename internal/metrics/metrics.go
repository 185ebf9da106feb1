// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

const namespace = "kostal"

// Metrics implements poller.Recorder with Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	cycles     prometheus.Counter
	publishes  *prometheus.CounterVec
	failures   *prometheus.CounterVec
	errorCount prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Number of poll rounds started.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Number of snapshots handed to the broker client.",
		}, []string{"unit"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Number of failed identity or snapshot reads.",
		}, []string{"unit", "op"}),
		errorCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consecutive_errors",
			Help:      "Current value of the global consecutive error counter.",
		}),
	}

	m.registry.MustRegister(m.cycles, m.publishes, m.failures, m.errorCount)
	return m
}

func (m *Metrics) ObserveCycle() {
	m.cycles.Inc()
}

func (m *Metrics) ObservePublish(unitID uint8) {
	m.publishes.WithLabelValues(unit(unitID)).Inc()
}

func (m *Metrics) ObserveFailure(unitID uint8, op string) {
	m.failures.WithLabelValues(unit(unitID), op).Inc()
}

func (m *Metrics) SetErrorCount(n uint) {
	m.errorCount.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
// A listen failure is returned at once.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return m.serve(ctx, ln)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	klog.Infof("metrics listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func unit(id uint8) string {
	return strconv.Itoa(int(id))
}
