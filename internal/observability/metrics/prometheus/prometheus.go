package prometheus

import (
	"context"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var reqDuration = prom.NewHistogramVec(
	prom.HistogramOpts{
		Name:    "shop_request_duration_seconds",
		Help:    "Request processing time by operation and status.",
		Buckets: prom.DefBuckets,
	}, []string{"op", "status"},
)

var reqCount = prom.NewCounterVec(
	prom.CounterOpts{
		Name: "shop_requests_total",
		Help: "Requests handled by operation and status.",
	}, []string{"op", "status"},
)

func init() {
	prom.MustRegister(reqDuration, reqCount)
}

func ObserveRequest(d time.Duration, status, op string) {
	labels := prom.Labels{"op": op, "status": status}
	reqCount.With(labels).Inc()
	reqDuration.With(labels).Observe(d.Seconds())
}

type Metric struct {
	srv *http.Server
}

func New(port int) *Metric {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Metric{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%v", port),
			Handler: mux,
		},
	}
}

func (m *Metric) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		if err := m.srv.Shutdown(context.Background()); err != nil {
			zap.L().Debug("Metrics server shutdown error", zap.Error(err))
		}
	}()

	zap.L().Info("Metrics server started", zap.String("addr", m.srv.Addr))
	err := m.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		zap.L().Debug("Metrics server error", zap.Error(err))
	}
}
