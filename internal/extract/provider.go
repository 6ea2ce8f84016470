package extract

import (
	"context"
	"log/slog"
	"sync"
)

// Factory constructs a new Extractor. Called once per request or once per
// process, depending on the Provider's policy.
type Factory func(ctx context.Context) (Extractor, error)

// Provider hands out extractor handles. In per-request mode every Acquire
// constructs a fresh handle and Release closes it, keeping the steady-state
// memory footprint small at the cost of per-request latency. In cached mode
// the first Acquire constructs the handle, which is then shared across
// requests until Close.
type Provider struct {
	factory Factory
	cache   bool

	mu     sync.Mutex
	cached Extractor
}

func NewProvider(factory Factory, cache bool) *Provider {
	return &Provider{factory: factory, cache: cache}
}

// Acquire returns an extractor handle according to the configured policy.
func (p *Provider) Acquire(ctx context.Context) (Extractor, error) {
	if !p.cache {
		return p.factory(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return p.cached, nil
	}
	ex, err := p.factory(ctx)
	if err != nil {
		return nil, err
	}
	p.cached = ex
	return ex, nil
}

// Release closes the handle in per-request mode. Cached handles stay open
// until Provider.Close.
func (p *Provider) Release(ex Extractor) {
	if p.cache || ex == nil {
		return
	}
	if err := ex.Close(); err != nil {
		slog.Warn("close extractor", "error", err)
	}
}

// Close releases the cached handle, if any.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached == nil {
		return nil
	}
	err := p.cached.Close()
	p.cached = nil
	return err
}
