// Package currencyutils normalizes the amount tokens found in bank statements
// and parses them into decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	symbolsRe = regexp.MustCompile(`(?i)(₽|руб\.?|rub|р\.|[€$£¥])`)
	spaceRe   = regexp.MustCompile(`[\s\x{00A0}\x{2007}\x{2009}\x{202F}]+`)
)

// ParseAmount parses a statement amount such as "-1 500,00", "+2 000,50 ₽",
// "1.234,56" or "1,234.56". An empty or non-numeric token is an error.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': empty", amountStr)
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount strips currency symbols, every kind of space and
// thousands separators, and turns a decimal comma into a dot. A leading
// "+" is dropped and a typographic minus becomes "-".
func StandardizeAmount(amountStr string) string {
	s := strings.ReplaceAll(amountStr, "−", "-")
	s = symbolsRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimPrefix(s, "+")

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ".") < strings.LastIndex(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// SplitSign separates an explicit leading sign from an amount token. sign is
// "+", "-" or "" when the token carries none.
func SplitSign(token string) (sign, rest string) {
	t := strings.TrimSpace(token)
	switch {
	case strings.HasPrefix(t, "+"):
		return "+", strings.TrimSpace(t[1:])
	case strings.HasPrefix(t, "-"):
		return "-", strings.TrimSpace(t[1:])
	case strings.HasPrefix(t, "−"):
		return "-", strings.TrimSpace(strings.TrimPrefix(t, "−"))
	}
	return "", t
}
