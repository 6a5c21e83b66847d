package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns an enum value such as "main_warehouse" into "Main Warehouse".
// A Caser keeps state, so each call builds its own.
func Label(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}
