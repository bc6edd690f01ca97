package areas

import (
	"strings"
	"unicode"
)

// cityAliases maps the slugs used by the public site to stored city names.
var cityAliases = map[string]string{
	"jupiter":           "Jupiter",
	"juno-beach":        "Juno Beach",
	"singer-island":     "Singer Island",
	"palm-beach-shores": "Palm Beach Shores",
	"tequesta":          "Tequesta",
	"palm-beach":        "Palm Beach",
	"north-palm-beach":  "North Palm Beach",
	"west-palm-beach":   "West Palm Beach",
}

// Slugify turns a stored name into its URL form, matching the
// LOWER(REPLACE(name, ' ', '-')) expression used by store lookups.
func Slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// TitleFromSlug derives a display name: "west-palm-beach" -> "West Palm Beach".
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' || unicode.IsSpace(r) })
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// CityName resolves a city slug or name to the canonical stored city name.
// Names that are already in display form pass through unchanged.
func CityName(area string) string {
	area = strings.TrimSpace(area)
	if name, ok := cityAliases[strings.ToLower(area)]; ok {
		return name
	}
	if strings.Contains(area, "-") || area == strings.ToLower(area) {
		return TitleFromSlug(area)
	}
	return area
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
