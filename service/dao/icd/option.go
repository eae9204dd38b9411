package icd

import "github.com/viant/elop/service/meta"

type Option func(*Service)

// WithMetaService sets the document service used to open ICD files
func WithMetaService(meta *meta.Service) Option {
	return func(s *Service) {
		s.metaService = meta
	}
}

// WithComma sets the field delimiter, ',' by default
func WithComma(comma rune) Option {
	return func(s *Service) {
		s.comma = comma
	}
}

// WithComment sets the comment character; zero disables comments
func WithComment(comment rune) Option {
	return func(s *Service) {
		s.comment = comment
	}
}
