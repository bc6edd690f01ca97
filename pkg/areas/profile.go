// Package areas resolves area identifiers (URL slugs such as "juno-beach" or
// "admirals-cove") into typed filter descriptors.
package areas

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the identifier matches no known area. It is distinct
	// from an area that exists but currently has no listings.
	ErrNotFound = errors.New("area not found")
	// ErrInvalidType means the area-type token is not one we understand.
	ErrInvalidType = errors.New("invalid area type")
)

// Type is the geography an area profile selects by.
type Type string

const (
	TypeCity        Type = "city"
	TypeDevelopment Type = "development"
	TypeSubdivision Type = "subdivision"
	TypeZone        Type = "zone"
	TypeRegion      Type = "region"
	TypeLifestyle   Type = "lifestyle"
)

// LookupOrder is the order in which an untyped identifier is tried against
// the store.
var LookupOrder = []Type{TypeCity, TypeDevelopment, TypeSubdivision, TypeZone, TypeRegion}

// ParseType validates an area-type token. The empty string means "any type".
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "", TypeCity, TypeDevelopment, TypeSubdivision, TypeZone, TypeRegion, TypeLifestyle:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// RequiresDevelopmentJoin reports whether listings of this type can only be
// matched through the development records table.
func (t Type) RequiresDevelopmentJoin() bool {
	switch t {
	case TypeDevelopment, TypeSubdivision, TypeZone, TypeRegion:
		return true
	}
	return false
}

// noun is used in generated descriptions.
func (t Type) noun() string {
	if t == TypeCity || t == TypeLifestyle {
		return "area"
	}
	return string(t)
}

// Filters is the predicate set of a profile. Exactly one name field is set
// for geographic types; lifestyle profiles combine a city with optional
// waterfront and price bounds.
type Filters struct {
	City            string   `yaml:"city,omitempty" json:"city,omitempty"`
	DevelopmentName string   `yaml:"development_name,omitempty" json:"development_name,omitempty"`
	SubdivisionName string   `yaml:"subdivision_name,omitempty" json:"subdivision_name,omitempty"`
	ZoneName        string   `yaml:"zone_name,omitempty" json:"zone_name,omitempty"`
	RegionName      string   `yaml:"region_name,omitempty" json:"region_name,omitempty"`
	Waterfront      bool     `yaml:"waterfront,omitempty" json:"waterfront,omitempty"`
	MinPrice        *float64 `yaml:"min_price,omitempty" json:"minPrice,omitempty"`
	MaxPrice        *float64 `yaml:"max_price,omitempty" json:"maxPrice,omitempty"`
}

// Profile is a named, typed filter descriptor.
type Profile struct {
	ID          string  `yaml:"id" json:"id"`
	DisplayName string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description"`
	Type        Type    `yaml:"type" json:"type"`
	Filters     Filters `yaml:"filters" json:"filters"`
}

// Validate checks that the filters agree with the type.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id is empty")
	}
	if _, err := ParseType(string(p.Type)); err != nil || p.Type == "" {
		return fmt.Errorf("profile %s: %w: %q", p.ID, ErrInvalidType, p.Type)
	}

	f := p.Filters
	var missing bool
	switch p.Type {
	case TypeCity, TypeLifestyle:
		missing = f.City == ""
	case TypeDevelopment:
		missing = f.DevelopmentName == ""
	case TypeSubdivision:
		missing = f.SubdivisionName == ""
	case TypeZone:
		missing = f.ZoneName == ""
	case TypeRegion:
		missing = f.RegionName == ""
	}
	if missing {
		return fmt.Errorf("profile %s: %s filter is empty", p.ID, p.Type)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("profile %s: min_price exceeds max_price", p.ID)
	}
	return nil
}

// NewProfile builds the profile for a stored area name of the given type.
func NewProfile(id string, t Type, name string) Profile {
	p := Profile{
		ID:          id,
		DisplayName: name,
		Description: fmt.Sprintf("%s %s properties and market data", name, t.noun()),
		Type:        t,
	}
	switch t {
	case TypeCity:
		p.Filters.City = name
	case TypeDevelopment:
		p.Filters.DevelopmentName = name
	case TypeSubdivision:
		p.Filters.SubdivisionName = name
	case TypeZone:
		p.Filters.ZoneName = name
	case TypeRegion:
		p.Filters.RegionName = name
	}
	return p
}

// Ref is a requested area: an identifier plus an optional expected type.
type Ref struct {
	ID   string
	Type Type
}

// All reports whether the ref means "no area filter".
func (r Ref) All() bool {
	id := strings.TrimSpace(r.ID)
	return id == "" || strings.EqualFold(id, "all")
}

func (r Ref) key() string {
	return string(r.Type) + ":" + strings.ToLower(strings.TrimSpace(r.ID))
}

// Provider resolves area identifiers. Implementations return ErrNotFound
// for unknown identifiers and never a nil profile with a nil error.
type Provider interface {
	Resolve(ctx context.Context, ref Ref) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
}

// typesFor returns the types to try for a ref, expected type first.
func typesFor(ref Ref) []Type {
	if ref.Type == "" || ref.Type == TypeLifestyle {
		return LookupOrder
	}
	out := make([]Type, 0, len(LookupOrder))
	out = append(out, ref.Type)
	for _, t := range LookupOrder {
		if t != ref.Type {
			out = append(out, t)
		}
	}
	return out
}
