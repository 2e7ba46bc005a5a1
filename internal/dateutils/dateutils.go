// Package dateutils provides the date layouts and parsing helpers used by the
// statement parsers.
package dateutils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Date layouts found in Russian bank statements and exports.
const (
	DateLayoutISO         = "2006-01-02"
	DateLayoutRussian     = "02.01.2006"
	DateLayoutRussianTime = "02.01.2006 15:04"
	DateLayoutRussianFull = "02.01.2006 15:04:05"
	DateLayoutExport      = "2006-01-02_15-04-05"
	DateLayoutFull        = "2006-01-02 15:04:05"
	DateLayoutUS          = "01/02/2006"
	DateLayoutSlashISO    = "2006/01/02"
	DateLayoutSlashEU     = "02/01/2006"
)

// CommonFormats is the fallback order tried after any caller-preferred layout.
var CommonFormats = []string{
	DateLayoutRussian,
	DateLayoutRussianFull,
	DateLayoutRussianTime,
	DateLayoutExport,
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutISO + "T15:04:05Z07:00",
	DateLayoutSlashISO,
	DateLayoutUS,
	DateLayoutSlashEU,
}

// ParseDate parses dateStr with the preferred layouts first, then
// CommonFormats. It returns the layout that matched.
func ParseDate(dateStr string, preferred ...string) (time.Time, string, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, "", fmt.Errorf("unable to parse date: empty")
	}

	for _, layouts := range [][]string{preferred, CommonFormats} {
		for _, layout := range layouts {
			if layout == "" {
				continue
			}
			if t, err := time.Parse(layout, clean); err == nil {
				return t, layout, nil
			}
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// MustParseRussian parses a dd.mm.yyyy token. Callers use it after a regex
// has already vetted the shape, so only impossible dates (31.02) fail.
func MustParseRussian(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayoutRussian, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
	}
	return t, nil
}

// CleanDateString trims spaces and surrounding quotes.
func CleanDateString(dateStr string) string {
	return strings.Trim(strings.TrimSpace(dateStr), `"'`)
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// ToRussianFormat formats date as DD.MM.YYYY, or "" for the zero time.
func ToRussianFormat(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutRussian)
}

// LooksLikeDate reports whether value has the shape of a date: a separator,
// at least four digits, and it parses with one of the known layouts.
func LooksLikeDate(value string, preferred ...string) bool {
	clean := CleanDateString(value)
	if !strings.ContainsAny(clean, "-./_") {
		return false
	}
	digits := 0
	for _, r := range clean {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 4 {
		return false
	}
	_, _, err := ParseDate(clean, preferred...)
	return err == nil
}
