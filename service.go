package elop

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/elop/internal/clock"
	"github.com/viant/elop/internal/idgen"
	"github.com/viant/elop/model"
	"github.com/viant/elop/service/dao/icd"
	"github.com/viant/elop/service/dao/schedule"
	"github.com/viant/elop/service/dao/ssm"
	"github.com/viant/elop/service/meta"
	"github.com/viant/elop/tracing"
)

// Service loads ELOP environments from their source documents. Loaded
// environments are immutable and cached by source location.
type Service struct {
	fs         afs.Service
	baseURL    string
	fsOptions  []storage.Option
	logger     *slog.Logger
	cacheSize  int
	icdComma   rune
	icdComment rune
	initErr    error

	metaService     *meta.Service
	icdService      *icd.Service
	scheduleService *schedule.Service
	ssmService      *ssm.Service
	cache           *lru.Cache[model.Source, *model.Environment]
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	s.icdService = icd.New(
		icd.WithMetaService(s.metaService),
		icd.WithComma(s.icdComma),
		icd.WithComment(s.icdComment))
	s.scheduleService = schedule.New(schedule.WithMetaService(s.metaService))
	s.ssmService = ssm.New(ssm.WithMetaService(s.metaService))
	if s.cacheSize > 0 {
		s.cache, _ = lru.New[model.Source, *model.Environment](s.cacheSize)
	}
	if s.initErr != nil {
		s.logger.Warn("tracing initialisation failed", "error", s.initErr)
	}
}

func (s *Service) ensureBaseSetup() {
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.metaService == nil {
		s.metaService = meta.New(s.fs, s.baseURL, s.fsOptions...)
	}
}

// Load reads the ICD, schedule and state machine documents and returns the
// environment they describe. A missing document fails with model.ErrNotFound
// naming its location; no partial environment is returned.
func (s *Service) Load(ctx context.Context, icdURL, scheduleURL, stateMachineURL string) (env *model.Environment, err error) {
	source := model.Source{
		ICD:          s.metaService.URL(icdURL),
		Schedule:     s.metaService.URL(scheduleURL),
		StateMachine: s.metaService.URL(stateMachineURL),
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(source); ok {
			s.logger.Debug("environment cache hit", "id", cached.ID, "icd", source.ICD)
			return cached, nil
		}
	}

	ctx, span := tracing.StartSpan(ctx, "elop.load")
	span.WithAttributes(map[string]string{
		"icd":          source.ICD,
		"schedule":     source.Schedule,
		"stateMachine": source.StateMachine,
	})
	defer func() { tracing.EndSpan(span, err) }()

	signals, err := s.icdService.Load(ctx, source.ICD)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("icd loaded", "url", source.ICD, "signals", len(signals))
	for _, signal := range signals {
		if signal.Err() != nil {
			s.logger.Warn("malformed icd row", "url", source.ICD, "signal", signal.Name, "error", signal.Err())
		}
	}
	sch, err := s.scheduleService.Load(ctx, source.Schedule)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("schedule loaded", "url", source.Schedule, "lew", sch.Defs.LEW, "slots", len(sch.Queue))
	if sch.Err() != nil {
		s.logger.Warn("malformed schedule", "url", source.Schedule, "error", sch.Err())
	}
	machine, err := s.ssmService.Load(ctx, source.StateMachine)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("state machine loaded", "url", source.StateMachine, "states", len(machine.States))
	if machine.Err() != nil {
		s.logger.Warn("malformed state machine", "url", source.StateMachine, "error", machine.Err())
	}

	env = model.NewEnvironment(signals, sch, machine)
	env.ID = idgen.New()
	env.LoadedAt = clock.Now()
	env.Source = &model.Source{ICD: source.ICD, Schedule: source.Schedule, StateMachine: source.StateMachine}
	span.WithAttributes(map[string]string{"id": env.ID})
	if s.cache != nil {
		s.cache.Add(source, env)
	}
	s.logger.Info("environment loaded", "id", env.ID,
		"signals", len(signals), "slots", len(sch.Queue), "states", len(machine.States))
	return env, nil
}

// LoadSources loads the environment described by sources. Relative locations
// are resolved against sources.BaseURL when set.
func (s *Service) LoadSources(ctx context.Context, sources Sources) (*model.Environment, error) {
	resolve := func(location string) string {
		if sources.BaseURL == "" || !url.IsRelative(location) {
			return location
		}
		return url.Join(sources.BaseURL, location)
	}
	return s.Load(ctx, resolve(sources.ICD), resolve(sources.Schedule), resolve(sources.StateMachine))
}

// Refresh discards the cached environment loaded from the given locations so
// that the next Load reads the documents again. It reports whether an entry
// was evicted.
func (s *Service) Refresh(icdURL, scheduleURL, stateMachineURL string) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Remove(model.Source{
		ICD:          s.metaService.URL(icdURL),
		Schedule:     s.metaService.URL(scheduleURL),
		StateMachine: s.metaService.URL(stateMachineURL),
	})
}

// New creates a Service.
func New(options ...Option) *Service {
	ret := &Service{icdComma: ',', cacheSize: DefaultConfig().Cache.Size}
	ret.init(options)
	return ret
}

// NewFromConfig validates cfg and creates a Service from it. Additional
// options are applied after the ones derived from cfg.
func NewFromConfig(cfg *Config, options ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	derived := []Option{WithCacheSize(cfg.Cache.Size)}
	if cfg.ICD.Delimiter != "" {
		derived = append(derived, WithICDDelimiter(firstRune(cfg.ICD.Delimiter)))
	}
	if cfg.ICD.Comment != "" {
		derived = append(derived, WithICDComment(firstRune(cfg.ICD.Comment)))
	}
	if cfg.Tracing.Enabled {
		derived = append(derived, WithTracing(cfg.Tracing.ServiceName, cfg.Tracing.ServiceVersion, cfg.Tracing.OutputFile))
	}
	return New(append(derived, options...)...), nil
}

// Load reads an environment from the three source locations using a
// Service built from options.
func Load(ctx context.Context, icdURL, scheduleURL, stateMachineURL string, options ...Option) (*model.Environment, error) {
	env, err := New(append([]Option{WithCacheSize(0)}, options...)...).Load(ctx, icdURL, scheduleURL, stateMachineURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return env, nil
}
