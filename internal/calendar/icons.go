package calendar

import "strings"

// DefaultIcon is used for media types that are not in the table.
const DefaultIcon = "mdi-calendar-blank"

var defaultIcons = map[string]string{
	"tv":              "mdi-television",
	"tv/radio":        "mdi-television",
	"social media":    "mdi-share-variant",
	"social-media":    "mdi-share-variant",
	"réseaux sociaux": "mdi-share-variant",
	"pharmacie":       "mdi-medical-bag",
	"pharmacy":        "mdi-medical-bag",
	"radio":           "mdi-radio",
	"print":           "mdi-newspaper",
	"presse":          "mdi-newspaper",
	"digital":         "mdi-laptop",
	"outdoor":         "mdi-billboard",
	"events":          "mdi-calendar-account",
	"webinar":         "mdi-video-account",
}

// IconTable maps media-type names to icon identifiers. Lookups are
// case-insensitive and never fail. A table is immutable once built and is
// safe for concurrent use.
type IconTable struct {
	icons    map[string]string
	fallback string
}

// NewIconTable builds the default table with overrides applied on top.
// An override with an empty icon removes the entry. The key "*" replaces
// the fallback icon.
func NewIconTable(overrides map[string]string) *IconTable {
	t := &IconTable{
		icons:    make(map[string]string, len(defaultIcons)+len(overrides)),
		fallback: DefaultIcon,
	}
	for k, v := range defaultIcons {
		t.icons[k] = v
	}
	for k, v := range overrides {
		key := iconKey(k)
		if key == "*" {
			if v != "" {
				t.fallback = v
			}
			continue
		}
		if v == "" {
			delete(t.icons, key)
			continue
		}
		t.icons[key] = v
	}
	return t
}

// DefaultIconTable returns a table without overrides.
func DefaultIconTable() *IconTable {
	return NewIconTable(nil)
}

// Icon returns the icon for the given media-type name.
func (t *IconTable) Icon(mediaType string) string {
	if t == nil {
		t = defaultTable
	}
	if icon, ok := t.icons[iconKey(mediaType)]; ok {
		return icon
	}
	return t.fallback
}

// Len returns the number of known media-type names.
func (t *IconTable) Len() int {
	return len(t.icons)
}

var defaultTable = DefaultIconTable()

func iconKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
