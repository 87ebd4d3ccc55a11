// Package format maps raw Paldeck fields to the display strings used in
// Discord embeds: title-cased labels, markdown wiki links, and pluralized
// field names. All functions are pure; malformed input renders as empty.
package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// WikiBaseURL is the base URL of the community wiki that type, suitability,
// and drop names link to.
const WikiBaseURL = "https://palworld.fandom.com/wiki/"

// Title converts a raw field name to title case. Words may be separated by
// spaces, underscores, or hyphens; the result is space-separated. The
// function is idempotent on already-titled input.
func Title(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	if len(fields) == 0 {
		return ""
	}
	// cases.Caser carries internal state, so a fresh one per call keeps
	// Title safe for concurrent use.
	caser := cases.Title(language.English)
	for i, f := range fields {
		fields[i] = caser.String(f)
	}
	return strings.Join(fields, " ")
}

// WikiURL returns the wiki page URL for name. The slug joins the title
// words with underscores, so the path never contains encoded spaces. An
// empty or blank name yields the empty string.
func WikiURL(name string) string {
	title := Title(name)
	if title == "" {
		return ""
	}
	return WikiBaseURL + strings.ReplaceAll(title, " ", "_")
}

// WikiLink renders name as a markdown link to its wiki page. The visible
// text is the title-cased name. An empty or blank name renders as the
// empty string.
func WikiLink(name string) string {
	title := Title(name)
	if title == "" {
		return ""
	}
	return fmt.Sprintf("[%s](%s)", title, WikiURL(name))
}

// TypesLabel returns the element-type field label for a list of n types.
func TypesLabel(n int) string {
	if n == 1 {
		return "Type"
	}
	return "Types"
}

// SuitabilityLabel returns the work-suitability field label for a list of
// n entries.
func SuitabilityLabel(n int) string {
	if n == 1 {
		return "Work Suitability"
	}
	return "Work Suitabilities"
}
