// Package textutils holds the small string helpers shared by the statement
// parsers and handlers.
package textutils

import (
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`[\s\x{00A0}\x{2007}\x{2009}\x{202F}]+`)

// NormalizeSpaces converts every run of whitespace, including the
// non-breaking spaces PDF extraction emits, into one ASCII space and trims
// the result.
func NormalizeSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ContainsAnyFold reports whether s contains any of needles, ignoring case.
func ContainsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// ContainsAllFold reports whether s contains every one of needles, ignoring
// case.
func ContainsAllFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if !strings.Contains(lower, strings.ToLower(n)) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether s matches any of the expressions.
func MatchesAny(s string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
