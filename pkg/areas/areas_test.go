package areas

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseType(t *testing.T) {
	for _, token := range []string{"city", "Development", " zone ", "region", "subdivision", "lifestyle", ""} {
		_, err := ParseType(token)
		assert.NoError(t, err, token)
	}

	_, err := ParseType("county")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Contains(t, err.Error(), "county")
}

func TestSlugHelpers(t *testing.T) {
	assert.Equal(t, "west-palm-beach", Slugify(" West Palm Beach "))
	assert.Equal(t, "West Palm Beach", TitleFromSlug("west-palm-beach"))
	assert.Equal(t, "Bears Club", TitleFromSlug("bears-club"))

	assert.Equal(t, "Juno Beach", CityName("juno-beach"))
	assert.Equal(t, "Juno Beach", CityName("Juno Beach"))
	assert.Equal(t, "Lake Park", CityName("lake-park"))
	assert.Equal(t, "PALM BEACH GARDENS", CityName("PALM BEACH GARDENS"))
}

func TestStaticProviderDefaults(t *testing.T) {
	p, err := LoadStaticProvider("")
	require.NoError(t, err)

	ctx := context.Background()
	profile, err := p.Resolve(ctx, Ref{ID: "Admirals-Cove"})
	require.NoError(t, err)
	assert.Equal(t, TypeDevelopment, profile.Type)
	assert.Equal(t, "Admirals Cove", profile.Filters.DevelopmentName)

	lux, err := p.Resolve(ctx, Ref{ID: "jupiter-luxury"})
	require.NoError(t, err)
	assert.Equal(t, TypeLifestyle, lux.Type)
	require.NotNil(t, lux.Filters.MinPrice)
	assert.Equal(t, 2000000.0, *lux.Filters.MinPrice)

	_, err = p.Resolve(ctx, Ref{ID: "atlantis"})
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := p.List(ctx)
	require.NoError(t, err)
	var cities int
	for _, profile := range all {
		if profile.Type == TypeCity {
			cities++
		}
	}
	assert.Equal(t, 4, cities)
}

func TestParseStaticProfilesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown type", yaml: "profiles:\n  - id: x\n    name: X\n    type: county\n    filters:\n      city: X\n"},
		{name: "missing filter", yaml: "profiles:\n  - id: x\n    name: X\n    type: development\n    filters:\n      city: X\n"},
		{name: "duplicate", yaml: "profiles:\n  - id: x\n    name: X\n    type: city\n    filters:\n      city: X\n  - id: X\n    name: X\n    type: city\n    filters:\n      city: X\n"},
		{name: "unknown field", yaml: "profiles:\n  - id: x\n    name: X\n    type: city\n    colour: red\n    filters:\n      city: X\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStaticProfiles([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

type fakeLookuper struct {
	names  map[Type]map[string]string
	err    error
	calls  []Type
	cities []string
}

func (f *fakeLookuper) LookupArea(_ context.Context, t Type, slug string) (string, bool, error) {
	f.calls = append(f.calls, t)
	if f.err != nil {
		return "", false, f.err
	}
	name, ok := f.names[t][slug]
	return name, ok, nil
}

func (f *fakeLookuper) DistinctCities(_ context.Context) ([]string, error) {
	return f.cities, f.err
}

func TestDynamicProviderLookupOrder(t *testing.T) {
	store := &fakeLookuper{names: map[Type]map[string]string{
		TypeCity:        {"jupiter": "JUPITER"},
		TypeDevelopment: {"bears-club": "Bears Club"},
		TypeZone:        {"jupiter": "Jupiter"},
	}}
	p := NewDynamicProvider(store, zaptest.NewLogger(t))
	ctx := context.Background()

	profile, err := p.Resolve(ctx, Ref{ID: "bears-club"})
	require.NoError(t, err)
	assert.Equal(t, TypeDevelopment, profile.Type)
	assert.Equal(t, "Bears Club", profile.DisplayName)
	assert.Equal(t, "Bears Club development properties and market data", profile.Description)
	assert.Equal(t, []Type{TypeCity, TypeDevelopment}, store.calls)

	store.calls = nil
	profile, err = p.Resolve(ctx, Ref{ID: "jupiter", Type: TypeZone})
	require.NoError(t, err)
	assert.Equal(t, TypeZone, profile.Type)
	assert.Equal(t, []Type{TypeZone}, store.calls)

	store.calls = nil
	_, err = p.Resolve(ctx, Ref{ID: "nowhere"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, LookupOrder, store.calls)
}

func TestDynamicProviderPropagatesStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	p := NewDynamicProvider(&fakeLookuper{err: boom}, nil)

	_, err := p.Resolve(context.Background(), Ref{ID: "jupiter"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDynamicProviderList(t *testing.T) {
	p := NewDynamicProvider(&fakeLookuper{cities: []string{"Juno Beach", "Tequesta"}}, nil)
	profiles, err := p.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "juno-beach", profiles[0].ID)
	assert.Equal(t, "Juno Beach", profiles[0].Filters.City)
}

func TestChainedProvider(t *testing.T) {
	static, err := LoadStaticProvider("")
	require.NoError(t, err)
	store := &fakeLookuper{names: map[Type]map[string]string{TypeCity: {"tequesta": "Tequesta"}}}
	chained := NewChainedProvider(static, NewDynamicProvider(store, nil))
	ctx := context.Background()

	profile, err := chained.Resolve(ctx, Ref{ID: "jupiter-waterfront"})
	require.NoError(t, err)
	assert.Equal(t, TypeLifestyle, profile.Type)
	assert.Empty(t, store.calls)

	profile, err = chained.Resolve(ctx, Ref{ID: "tequesta"})
	require.NoError(t, err)
	assert.Equal(t, "Tequesta", profile.Filters.City)

	_, err = chained.Resolve(ctx, Ref{ID: "nowhere"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefAll(t *testing.T) {
	assert.True(t, Ref{}.All())
	assert.True(t, Ref{ID: "ALL"}.All())
	assert.False(t, Ref{ID: "jupiter"}.All())
}

func TestProfileValidatePriceBounds(t *testing.T) {
	lo, hi := 5.0, 1.0
	p := Profile{ID: "x", Type: TypeLifestyle, Filters: Filters{City: "X", MinPrice: &lo, MaxPrice: &hi}}
	assert.Error(t, p.Validate())
}

func TestProviderFromEnv(t *testing.T) {
	store := &fakeLookuper{}
	t.Setenv("AREA_PROFILES_FILE", "")

	t.Run("default is dynamic", func(t *testing.T) {
		t.Setenv("AREA_PROVIDER", "")
		p, err := ProviderFromEnv(store, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.IsType(t, &DynamicProvider{}, p)
	})

	t.Run("static", func(t *testing.T) {
		t.Setenv("AREA_PROVIDER", "static")
		p, err := ProviderFromEnv(store, nil)
		require.NoError(t, err)
		assert.IsType(t, &StaticProvider{}, p)
	})

	t.Run("chained", func(t *testing.T) {
		t.Setenv("AREA_PROVIDER", "chained")
		p, err := ProviderFromEnv(store, nil)
		require.NoError(t, err)
		assert.IsType(t, &ChainedProvider{}, p)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("AREA_PROVIDER", "static")
		t.Setenv("AREA_PROFILES_FILE", t.TempDir()+"/nope.yaml")
		_, err := ProviderFromEnv(store, nil)
		require.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Setenv("AREA_PROVIDER", "remote")
		_, err := ProviderFromEnv(store, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "remote")
	})
}
