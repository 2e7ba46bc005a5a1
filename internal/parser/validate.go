package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davidbugayov/Financeanalyzer-sub008/internal/parsererror"
	"github.com/davidbugayov/Financeanalyzer-sub008/internal/textutils"
)

// Check is one family of markers a document preview must contain.
type Check struct {
	Name  string
	match func(lines []string, joined string) bool
}

// Matches reports whether the preview satisfies the check.
func (c Check) Matches(lines []string) bool {
	return c.match(lines, strings.Join(lines, "\n"))
}

// ContainsAny is satisfied when the preview contains any of needles,
// ignoring case.
func ContainsAny(name string, needles ...string) Check {
	return Check{Name: name, match: func(_ []string, joined string) bool {
		return textutils.ContainsAnyFold(joined, needles)
	}}
}

// LineContainsAll is satisfied when a single preview line contains every one
// of needles, ignoring case.
func LineContainsAll(name string, needles ...string) Check {
	return Check{Name: name, match: func(lines []string, _ string) bool {
		for _, l := range lines {
			if textutils.ContainsAllFold(l, needles) {
				return true
			}
		}
		return false
	}}
}

// AnyLineMatches is satisfied when re matches any trimmed preview line.
func AnyLineMatches(name string, re *regexp.Regexp) Check {
	return Check{Name: name, match: func(lines []string, _ string) bool {
		for _, l := range lines {
			if re.MatchString(strings.TrimSpace(l)) {
				return true
			}
		}
		return false
	}}
}

// AnyOf is satisfied when any of checks is.
func AnyOf(name string, checks ...Check) Check {
	return Check{Name: name, match: func(lines []string, joined string) bool {
		for _, c := range checks {
			if c.match(lines, joined) {
				return true
			}
		}
		return false
	}}
}

// AllOf is satisfied when every one of checks is.
func AllOf(name string, checks ...Check) Check {
	return Check{Name: name, match: func(lines []string, joined string) bool {
		for _, c := range checks {
			if !c.match(lines, joined) {
				return false
			}
		}
		return true
	}}
}

// RequireAll returns an InvalidFormatError naming the first failed check, or
// nil when the preview satisfies every check.
func RequireAll(bank string, preview []string, checks ...Check) error {
	joined := strings.Join(preview, "\n")
	for _, c := range checks {
		if !c.match(preview, joined) {
			return &parsererror.InvalidFormatError{
				ExpectedFormat:       bank,
				ActualContentSnippet: snippet(joined, 80),
				Msg:                  fmt.Sprintf("missing %s", c.Name),
			}
		}
	}
	return nil
}

func snippet(s string, n int) string {
	s = textutils.NormalizeSpaces(s)
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
