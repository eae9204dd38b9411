package elop

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/viant/afs"
	"github.com/viant/elop/service/meta"
)

// Config is a serialisable representation of an ELOP project: where the
// three source documents live and how they are read. It is usually kept in an
// elop.yaml file next to the sources.
type Config struct {
	Sources Sources       `json:"sources" yaml:"sources"`
	ICD     ICDConfig     `json:"icd" yaml:"icd"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// Sources locates the ICD, schedule and state machine documents. Relative
// locations are resolved against BaseURL.
type Sources struct {
	BaseURL      string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	ICD          string `json:"icd" yaml:"icd" validate:"required"`
	Schedule     string `json:"schedule" yaml:"schedule" validate:"required"`
	StateMachine string `json:"stateMachine" yaml:"stateMachine" validate:"required"`
}

// ICDConfig controls how the interface control document is parsed.
type ICDConfig struct {
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty" validate:"omitempty,len=1"`
	Comment   string `json:"comment,omitempty" yaml:"comment,omitempty" validate:"omitempty,len=1,nefield=Delimiter"`
}

// CacheConfig sizes the loaded environment cache.
type CacheConfig struct {
	// Size is the number of loaded environments kept; zero disables caching.
	Size int `json:"size" yaml:"size" validate:"gte=0"`
}

// TracingConfig enables OpenTelemetry spans around loading.
type TracingConfig struct {
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" validate:"required_if=Enabled true"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// fill in Sources before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		ICD:   ICDConfig{Delimiter: ","},
		Cache: CacheConfig{Size: 16},
		Tracing: TracingConfig{
			ServiceName:    "elop",
			ServiceVersion: Version,
		},
	}
}

var configValidate = validator.New()

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config was nil")
	}
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a project file on top of DefaultConfig. ${env.KEY}
// expressions in the file are expanded first.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	cfg := DefaultConfig()
	if err := meta.New(afs.New(), "").Load(ctx, URL, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	return cfg, nil
}

func firstRune(value string) rune {
	for _, r := range value {
		return r
	}
	return 0
}
