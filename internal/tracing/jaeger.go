package tracing

import (
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"

	"github.com/customeros/recipestack/internal/logger"
)

type JaegerConfig struct {
	Enabled             bool    `env:"JAEGER_ENABLED" envDefault:"false"`
	ServiceName         string  `env:"JAEGER_SERVICE_NAME" envDefault:"recipestack"`
	CollectorEndpoint   string  `env:"JAEGER_ENDPOINT"`
	AgentHost           string  `env:"JAEGER_AGENT_HOST" envDefault:"localhost"`
	AgentPort           string  `env:"JAEGER_AGENT_PORT" envDefault:"6831"`
	SamplerType         string  `env:"JAEGER_SAMPLER_TYPE" envDefault:"const"`
	SamplerParam        float64 `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
	LogSpans            bool    `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
	FlushIntervalMillis int     `env:"JAEGER_REPORTER_FLUSH_INTERVAL_MS" envDefault:"1000"`
}

// NewJaegerTracer returns a no-op tracer when tracing is disabled, so span calls stay cheap
// and the returned closer is always safe to call.
func NewJaegerTracer(jaegerConfig *JaegerConfig, log logger.Logger) (opentracing.Tracer, io.Closer, error) {
	if jaegerConfig == nil || !jaegerConfig.Enabled {
		return opentracing.NoopTracer{}, io.NopCloser(nil), nil
	}

	cfg := &config.Configuration{
		ServiceName: jaegerConfig.ServiceName,
		Sampler: &config.SamplerConfig{
			Type:  jaegerConfig.SamplerType,
			Param: jaegerConfig.SamplerParam,
		},
		Reporter: &config.ReporterConfig{
			LogSpans:            jaegerConfig.LogSpans,
			BufferFlushInterval: time.Duration(jaegerConfig.FlushIntervalMillis) * time.Millisecond,
		},
		Tags: []opentracing.Tag{
			{Key: "app", Value: jaegerConfig.ServiceName},
		},
	}

	if jaegerConfig.CollectorEndpoint != "" {
		cfg.Reporter.CollectorEndpoint = jaegerConfig.CollectorEndpoint
	} else {
		cfg.Reporter.LocalAgentHostPort = jaegerConfig.AgentHost + ":" + jaegerConfig.AgentPort
	}

	return cfg.NewTracer(config.Logger(jaegerzap.NewLogger(log.Logger())))
}
