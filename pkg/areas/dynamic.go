package areas

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Lookuper finds stored area names by slug. It is implemented by the
// listings store.
type Lookuper interface {
	// LookupArea returns the stored name whose slug equals slug for the
	// given type, and false when there is none.
	LookupArea(ctx context.Context, t Type, slug string) (string, bool, error)
	// DistinctCities returns the cities present in resolved listings.
	DistinctCities(ctx context.Context) ([]string, error)
}

// DynamicProvider treats the data store as the source of truth for which
// areas exist and what they are called.
type DynamicProvider struct {
	store  Lookuper
	logger *zap.Logger
}

func NewDynamicProvider(store Lookuper, logger *zap.Logger) *DynamicProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamicProvider{store: store, logger: logger}
}

// Resolve tries the expected type first, then every type in LookupOrder.
// Store failures are returned as-is so they are not mistaken for "not found".
func (p *DynamicProvider) Resolve(ctx context.Context, ref Ref) (*Profile, error) {
	slug := strings.ToLower(strings.TrimSpace(ref.ID))
	if slug == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}

	for _, t := range typesFor(ref) {
		name, ok, err := p.store.LookupArea(ctx, t, slug)
		if err != nil {
			return nil, fmt.Errorf("lookup %s %q: %w", t, slug, err)
		}
		if !ok {
			continue
		}
		if ref.Type != "" && t != ref.Type {
			p.logger.Debug("Area resolved under a different type",
				zap.String("area", slug),
				zap.String("expected", string(ref.Type)),
				zap.String("resolved", string(t)))
		}
		profile := NewProfile(slug, t, name)
		return &profile, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.ID)
}

// List returns one city profile per distinct stored city.
func (p *DynamicProvider) List(ctx context.Context) ([]Profile, error) {
	cities, err := p.store.DistinctCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	out := make([]Profile, 0, len(cities))
	for _, city := range cities {
		out = append(out, NewProfile(Slugify(city), TypeCity, city))
	}
	return out, nil
}

// ChainedProvider consults providers in order, moving on only when a
// provider reports ErrNotFound.
type ChainedProvider struct {
	providers []Provider
}

func NewChainedProvider(providers ...Provider) *ChainedProvider {
	return &ChainedProvider{providers: providers}
}

func (c *ChainedProvider) Resolve(ctx context.Context, ref Ref) (*Profile, error) {
	for _, p := range c.providers {
		profile, err := p.Resolve(ctx, ref)
		if err == nil {
			return profile, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.ID)
}

// List merges the providers' profiles; earlier providers win on id clashes.
func (c *ChainedProvider) List(ctx context.Context) ([]Profile, error) {
	seen := make(map[string]bool)
	var out []Profile
	for _, p := range c.providers {
		profiles, err := p.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			if seen[profile.ID] {
				continue
			}
			seen[profile.ID] = true
			out = append(out, profile)
		}
	}
	return out, nil
}
