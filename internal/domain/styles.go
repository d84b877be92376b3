package domain

import "strings"

// Style is one of the four social-style archetypes.
type Style string

const (
	StyleExpressive Style = "Expressive"
	StyleAmiable    Style = "Amiable"
	StyleDriver     Style = "Driver"
	StyleAnalyser   Style = "Analyser"
)

// Styles lists every archetype in table order.
var Styles = []Style{StyleExpressive, StyleAmiable, StyleDriver, StyleAnalyser}

var styleTable = map[string]Style{
	"AC": StyleExpressive,
	"BC": StyleAmiable,
	"AD": StyleDriver,
	"BD": StyleAnalyser,
}

// StyleForKey returns the archetype for a two-letter key such as "AD".
func StyleForKey(key string) (Style, bool) {
	style, ok := styleTable[key]
	return style, ok
}

// ParseStyle resolves a style name case-insensitively. "Facilitator" is accepted as the
// older name of Amiable.
func ParseStyle(name string) (Style, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "Facilitator") {
		return StyleAmiable, nil
	}
	for _, style := range Styles {
		if strings.EqualFold(name, string(style)) {
			return style, nil
		}
	}
	return "", ErrUnknownStyle
}
