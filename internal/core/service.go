package core

import (
	"context"
	"errors"
	"time"

	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/config"
	"github.com/jules-12/card-creator-pro/internal/extract"
	"github.com/jules-12/card-creator-pro/internal/store"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrCardSetNotFound = errors.New("card set not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrNameRequired    = errors.New("card set name is required")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Deps are the collaborators of a Service.
type Deps struct {
	Store    store.Store
	Exporter *card.Exporter
	Import   config.ImportConfig

	// Extractor defaults to extract.New().
	Extractor *extract.Extractor
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements imports, card sets and exports.
type Service struct {
	store     store.Store
	extractor *extract.Extractor
	exporter  *card.Exporter
	limiter   *ImportLimiter
	importCfg config.ImportConfig
	now       func() time.Time
}

// NewService creates a Service.
func NewService(d Deps) (*Service, error) {
	if d.Store == nil {
		return nil, errors.New("core: store is required")
	}
	if d.Exporter == nil {
		return nil, errors.New("core: exporter is required")
	}

	s := &Service{
		store:     d.Store,
		extractor: d.Extractor,
		exporter:  d.Exporter,
		limiter:   NewImportLimiter(d.Import.MaxConcurrent, d.Import.MaxPerAccount, d.Import.MaxWaitTime),
		importCfg: d.Import,
		now:       d.Now,
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
