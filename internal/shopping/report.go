package shopping

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const dateLayout = "2006-01-02"

// FormatReport renders the shopping list as a plain-text document with a date
// header, a numbered product section, and a numbered recipe section. Both
// section headers are present even when their sections are empty.
func FormatReport(date time.Time, rows []Row, recipeNames []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Date: %s\n", date.Format(dateLayout))
	b.WriteString("\nPRODUCTS:\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s - %d %s\n", i+1, capitalizeFirst(row.Name), row.Amount, row.MeasurementUnit)
	}
	b.WriteString("\nRECIPES:\n")
	for i, name := range recipeNames {
		fmt.Fprintf(&b, "%d. %s\n", i+1, capitalizeFirst(name))
	}

	return b.String()
}

// ReportFilename names the downloadable attachment for the given date.
func ReportFilename(date time.Time) string {
	return fmt.Sprintf("shopping_cart_%s.txt", date.Format(dateLayout))
}

// capitalizeFirst upper-cases the first rune only, leaving the rest of the
// string untouched ("молоко" -> "Молоко", "pASTA" -> "PASTA").
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError && size <= 1 {
		return s
	}
	upper := unicode.ToUpper(first)
	if upper == first {
		return s
	}
	return string(upper) + s[size:]
}
