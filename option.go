package rtsched

import (
	"github.com/go-logr/logr"
	"github.com/viant/afs/storage"
	"github.com/viant/rtsched/progress"
	"github.com/viant/rtsched/service/timer"
	"github.com/viant/rtsched/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig sets the configuration; zero fields keep their defaults.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the diagnostic sink
func WithLogger(logger logr.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFault sets the collaborator notified before scheduling halts
func WithFault(fault func(err error)) Option {
	return func(s *Service) {
		s.fault = fault
	}
}

// WithMonotonic replaces the host timer driver
func WithMonotonic(clock timer.Monotonic) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithDevice sets the peripheral handle passed to the init routine
func WithDevice(device any) Option {
	return func(s *Service) {
		s.device = device
	}
}

// WithProgress sets the counters tracker
func WithProgress(p *progress.Progress) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// spans are written to stdout.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.logger.Error(err, "failed to initialise tracing")
			return
		}
		s.tracing = true
	}
}

// WithTracingExporter configures tracing with a caller supplied exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.logger.Error(err, "failed to initialise tracing")
			return
		}
		s.tracing = true
	}
}

// WithMetaBaseURL sets the base URL used to resolve declaration locations
func WithMetaBaseURL(url string) Option {
	return func(s *Service) {
		s.metaBaseURL = url
	}
}

// WithMetaFsOptions with meta file system options
func WithMetaFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.metaFsOptions = options
	}
}
