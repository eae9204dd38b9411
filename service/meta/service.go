package meta

import (
	"context"
	"fmt"
	"io"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/elop/model"
	"gopkg.in/yaml.v3"
)

// Service gives scoped access to source documents on any afs backed storage.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// URL resolves location against the base URL when it is relative.
func (s *Service) URL(location string) string {
	if s.baseURL == "" || !url.IsRelative(location) {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Exists reports whether the document at URL exists.
func (s *Service) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(URL), s.options...)
}

// Read opens the document at URL, hands it to fn and closes it whatever fn
// returns. A missing document fails with model.ErrNotFound naming the URL.
func (s *Service) Read(ctx context.Context, URL string, fn func(reader io.Reader) error) (err error) {
	URL = s.URL(URL)
	exists, err := s.fs.Exists(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", URL, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", model.ErrNotFound, URL)
	}
	reader, err := s.fs.OpenURL(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", URL, err)
	}
	defer func() {
		if cErr := reader.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", URL, cErr)
		}
	}()
	return fn(reader)
}

// Load decodes the YAML document at URL into target after expanding
// ${env.KEY} expressions.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	return s.Read(ctx, URL, func(reader io.Reader) error {
		data, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal([]byte(expandEnvExpr(string(data))), target); err != nil {
			return fmt.Errorf("failed to decode %s: %w", s.URL(URL), err)
		}
		return nil
	})
}

// New creates a document service; baseURL may be empty.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
