package intent

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var zeroWidth = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
)

var quotes = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

// Normalize folds text into the form every detector matches against:
// NFKC, zero-width runes removed, straight quotes, lower case, and single
// spaces.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = zeroWidth.Replace(s)
	s = quotes.Replace(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Spoofed reports whether any word mixes Latin, Cyrillic, and Greek
// letters. NFKC leaves cross-script lookalikes alone, so "аttack" with a
// Cyrillic "а" survives normalization and is caught here.
func Spoofed(text string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		var latin, cyrillic, greek bool
		for _, r := range w {
			switch {
			case unicode.Is(unicode.Latin, r):
				latin = true
			case unicode.Is(unicode.Cyrillic, r):
				cyrillic = true
			case unicode.Is(unicode.Greek, r):
				greek = true
			}
		}
		n := 0
		for _, b := range []bool{latin, cyrillic, greek} {
			if b {
				n++
			}
		}
		if n > 1 {
			return true
		}
	}
	return false
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:system|admin|debug|assistant)\s*:`),
	regexp.MustCompile(`\b(?:ignore|disregard|forget|override)\b.{0,20}\b(?:previous|prior|above|all|your)\b.{0,20}\b(?:instructions|rules|prompts?)\b`),
	regexp.MustCompile(`\[\s*(?:dm|gm|system)\s*\]`),
	regexp.MustCompile(`\bas (?:the )?(?:dm|gm|dungeon master|game master|chronicler|narrator)\b`),
	regexp.MustCompile(`\byou are now\b`),
	regexp.MustCompile(`\bi now have\b`),
	regexp.MustCompile(`\badd\b.+\bto my inventory\b`),
	regexp.MustCompile(`\b(?:i have|give me|grant me)\b.*(?:\+\d+|\blegendary\b|\bartifact\b)`),
}

// Injection reports whether normalized text impersonates the narrator,
// tries to override its instructions, or fabricates items.
func Injection(text string) bool {
	for _, re := range injectionPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// connectors split a message into segments, applied in this order.
var connectors = []string{
	" and then ",
	", then ",
	" then ",
	" while ",
	" as i ",
	" before ",
	" after ",
	", and ",
	" and ",
}

// Split breaks normalized text into its clauses. Empty clauses are dropped.
func Split(text string) []string {
	parts := []string{text}
	for _, sep := range connectors {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.Trim(p, " ,.;!"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
