package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"subsync/internal/logging"
	"subsync/internal/services"
)

// Registry holds the enabled providers keyed by kind.
type Registry struct {
	providers map[Kind]Provider
	order     []Kind
	logger    *slog.Logger
}

// NewRegistry registers providers in the given order; nil entries are skipped.
func NewRegistry(logger *slog.Logger, providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[Kind]Provider, len(providers)),
		logger:    logging.NewComponentLogger(logger, "providers"),
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		if _, exists := r.providers[p.Kind()]; !exists {
			r.order = append(r.order, p.Kind())
		}
		r.providers[p.Kind()] = p
	}
	return r
}

// Kinds lists registered providers in registration order.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.order...)
}

// Get returns the provider for kind.
func (r *Registry) Get(kind Kind) (Provider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "providers", "lookup", fmt.Sprintf("provider %q is not enabled", kind), nil)
	}
	return p, nil
}

// Search queries the selected providers (all when kinds is empty)
// concurrently. A failing provider is logged and skipped; an error is returned
// only when every selected provider fails. Results keep provider order.
func (r *Registry) Search(ctx context.Context, query Query, kinds []Kind) ([]Result, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	selected := r.order
	if len(kinds) > 0 {
		selected = make([]Kind, 0, len(kinds))
		for _, kind := range kinds {
			if _, err := r.Get(kind); err != nil {
				return nil, err
			}
			if !slices.Contains(selected, kind) {
				selected = append(selected, kind)
			}
		}
	}
	if len(selected) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "providers", "search", "no subtitle providers are enabled", nil)
	}

	perProvider := make([][]Result, len(selected))
	var (
		mu   sync.Mutex
		errs []error
	)
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range selected {
		provider := r.providers[kind]
		group.Go(func() error {
			pctx := services.WithProvider(groupCtx, string(kind))
			results, err := provider.Search(pctx, query)
			if err != nil {
				logging.WarnWithContext(logging.WithContext(pctx, r.logger), "provider search failed", "provider_search_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "results from this provider are omitted"),
				)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", kind, err))
				mu.Unlock()
				return nil
			}
			perProvider[i] = results
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) == len(selected) {
		return nil, services.Wrap(services.ErrUpstream, "providers", "search", "all providers failed", errors.Join(errs...))
	}

	var merged []Result
	for _, results := range perProvider {
		merged = append(merged, results...)
	}
	r.logger.DebugContext(ctx, "search complete",
		slog.Int("results", len(merged)),
		slog.Int("providers", len(selected)),
		slog.Int("failed", len(errs)),
	)
	return merged, nil
}

// Download fetches the subtitle behind ref from its provider.
func (r *Registry) Download(ctx context.Context, ref Ref) (Payload, error) {
	provider, err := r.Get(ref.Provider)
	if err != nil {
		return Payload{}, err
	}
	return provider.Download(services.WithProvider(ctx, string(ref.Provider)), ref)
}
