// Package currency normalizes locale-ambiguous amount strings into
// unambiguous decimal values and formats Rupiah amounts for display.
//
// The disambiguation rules are a heuristic over a genuinely ambiguous
// grammar (decimal point vs thousands separator). They match the behavior
// of historically ingested data and must not be "improved".
package currency

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// RejectFunc is invoked whenever a non-empty input is rejected and
// normalized to zero. Used to feed the ingest rejection counter.
type RejectFunc func(raw, reason string)

// Normalizer parses raw amount text into decimal values. It never
// returns an error: unrecoverable input becomes 0.0 with a warning.
type Normalizer struct {
	logger   *zap.Logger
	onReject RejectFunc
}

// NewNormalizer creates a Normalizer. onReject may be nil.
func NewNormalizer(logger *zap.Logger, onReject RejectFunc) *Normalizer {
	return &Normalizer{logger: logger, onReject: onReject}
}

// Normalize converts a raw amount string into a decimal value.
//
// Rules, in order:
//  1. currency-code words ("rp", "idr") and whitespace are stripped
//  2. dash-separated all-digit pairs are rejected as range artifacts
//  3. with both '.' and ',' present, the one occurring last is the
//     decimal point and the other marks thousands
//  4. a single ',' followed by exactly 3 digits is a thousands separator,
//     otherwise a decimal point
//  5. multiple '.' are thousands separators; a single '.' is a thousands
//     separator only when the trailing group is exactly 3 digits and the
//     leading group is at most 3 digits
func (n *Normalizer) Normalize(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	switch strings.ToLower(s) {
	case "null", "none", "-":
		return 0
	}

	cleaned := stripCurrencyTokens(s)

	// Range artifacts like "20000-60000" come from ambiguous extraction.
	// Rejecting is safer than guessing which bound was meant.
	if strings.Contains(cleaned, "-") {
		parts := splitNonEmpty(cleaned, "-")
		switch {
		case len(parts) > 2:
			return n.reject(raw, "range")
		case len(parts) == 2 && isDigitsOnly(parts[0]) && isDigitsOnly(parts[1]):
			return n.reject(raw, "range")
		case len(parts) == 0:
			return n.reject(raw, "unparsable")
		default:
			cleaned = parts[len(parts)-1]
		}
	}

	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			return r
		}
		return -1
	}, cleaned)
	if cleaned == "" {
		return n.reject(raw, "unparsable")
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// Indonesian convention: "59.385,50" -> 59385.50
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// "500,000.00" -> 500000.00
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}

	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 == 3 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else if strings.Count(cleaned, ",") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}

	case lastDot >= 0:
		if strings.Count(cleaned, ".") > 1 {
			// "6.000.000" -> 6000000
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		} else if len(cleaned)-lastDot-1 == 3 && lastDot <= 3 {
			// "59.385" -> 59385, but "1234.567" keeps its decimal point
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return n.reject(raw, "unparsable")
	}
	return value
}

func (n *Normalizer) reject(raw, reason string) float64 {
	n.logger.Warn("amount rejected",
		zap.String("raw", raw),
		zap.String("reason", reason),
	)
	if n.onReject != nil {
		n.onReject(raw, reason)
	}
	return 0
}

func stripCurrencyTokens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if hasFoldPrefix(s[i:], "idr") {
			i += 3
			continue
		}
		if hasFoldPrefix(s[i:], "rp") {
			i += 2
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// hasFoldPrefix reports whether s starts with the ASCII prefix,
// case-insensitively. Indexing by len(prefix) is safe for the callers'
// ASCII-only tokens: a multi-byte rune sliced mid-sequence never folds
// equal to an ASCII letter.
func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
