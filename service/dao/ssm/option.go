package ssm

import "github.com/viant/elop/service/meta"

type Option func(*Service)

// WithMetaService sets the document service used to open state machine documents
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}
