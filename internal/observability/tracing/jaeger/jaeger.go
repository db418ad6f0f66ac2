package jaeger

import (
	"context"

	"github.com/opentracing/opentracing-go"
	conf "github.com/sta4888/TZL/internal/config"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"
)

// Start installs the global tracer and blocks until ctx is cancelled.
// Tracing failures are never fatal; the noop tracer stays in place.
func Start(ctx context.Context, serviceName string, conf conf.JaegerConfig) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  conf.Sampler.Type,
			Param: conf.Sampler.Param,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           conf.Reporter.LogSpans,
			LocalAgentHostPort: conf.Reporter.LocalAgentHostPort,
		},
	}

	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		zap.L().Debug("Failed to init tracer", zap.Error(err))
		return
	}
	opentracing.SetGlobalTracer(tracer)
	zap.L().Info("Tracer started")

	<-ctx.Done()
	if err = closer.Close(); err != nil {
		zap.L().Debug("Failed to close tracer", zap.Error(err))
	}
	zap.L().Info("Tracer stopped")
}
