package types

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of each word and lower-cases the rest.
func TitleCase(s string) string {
	// Casers carry state and are not safe for concurrent use.
	return cases.Title(language.English).String(s)
}
