package elop

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/elop/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithFS sets the file system used to read source documents
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithBaseURL sets the location relative source URLs are resolved against
func WithBaseURL(URL string) Option {
	return func(s *Service) {
		s.baseURL = URL
	}
}

// WithFsOptions with file system storage options, e.g. credentials
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCacheSize sets how many loaded environments are kept; zero disables caching
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithICDDelimiter sets the ICD field delimiter
func WithICDDelimiter(delimiter rune) Option {
	return func(s *Service) {
		s.icdComma = delimiter
	}
}

// WithICDComment sets the ICD comment character
func WithICDComment(comment rune) Option {
	return func(s *Service) {
		s.icdComment = comment
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty traces go to stdout. The first successful
// initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErr = err
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter,
// e.g. OTLP. The first successful initialisation wins.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErr = err
		}
	}
}
