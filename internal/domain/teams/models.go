package teams

import "strings"

// Team represents the normalized team shape shared by matches and scorecards.
// Kept in its own package so matches, scorecards and fixtures can reference it without cycles.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	FlagURL   string `json:"flagUrl,omitempty"`
}

// ShortNameFor returns the first three characters of name, upper-cased.
func ShortNameFor(name string) string {
	runes := []rune(name)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}
