package areas

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultProfiles []byte

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// StaticProvider serves profiles from a fixed table.
type StaticProvider struct {
	profiles map[string]Profile
	order    []string
}

// NewStaticProvider builds a provider from profiles, rejecting invalid or
// duplicate entries.
func NewStaticProvider(profiles []Profile) (*StaticProvider, error) {
	p := &StaticProvider{profiles: make(map[string]Profile, len(profiles))}
	for _, profile := range profiles {
		profile.ID = strings.ToLower(strings.TrimSpace(profile.ID))
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		if _, dup := p.profiles[profile.ID]; dup {
			return nil, fmt.Errorf("duplicate area profile %q", profile.ID)
		}
		if profile.Description == "" {
			profile.Description = fmt.Sprintf("%s %s properties and market data", profile.DisplayName, profile.Type.noun())
		}
		p.profiles[profile.ID] = profile
		p.order = append(p.order, profile.ID)
	}
	return p, nil
}

// LoadStaticProvider reads profiles from a YAML file. An empty path loads the
// built-in table.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	data := defaultProfiles
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read area profiles: %w", err)
		}
	}
	return ParseStaticProfiles(data)
}

// ParseStaticProfiles decodes a YAML profile table.
func ParseStaticProfiles(data []byte) (*StaticProvider, error) {
	var file profileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode area profiles: %w", err)
	}
	return NewStaticProvider(file.Profiles)
}

// Resolve matches on the identifier alone; the expected type is only a hint
// for providers that search several tables.
func (p *StaticProvider) Resolve(_ context.Context, ref Ref) (*Profile, error) {
	profile, ok := p.profiles[strings.ToLower(strings.TrimSpace(ref.ID))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.ID)
	}
	return &profile, nil
}

func (p *StaticProvider) List(_ context.Context) ([]Profile, error) {
	out := make([]Profile, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.profiles[id])
	}
	return out, nil
}
