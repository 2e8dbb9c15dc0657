package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Rewrite patterns shared by every rule set. Go's \s is ASCII and \p{Z}
// holds only the separator categories, so the whitespace run adds the two
// remaining Unicode whitespace controls, NEL and vertical tab, explicitly.
var (
	zeroWidthRun  = regexp.MustCompile("[\u200b\u200c\u200d\ufeff]+")
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}\x{0085}\x{000B}]+`)
	dottedLeader  = regexp.MustCompile(`\S+\.{3,}`)
	ellipsisRun   = regexp.MustCompile(`\.{3,}`)
)

// Normalize canonicalises raw document text with one ordered rewrite pass:
// compose accents, drop zero-width characters, fold whitespace runs to a
// single space, restore heading keywords, strip dotted leaders and bare
// ellipsis runs, fold again. Whitespace folds before keyword restoration so
// spaced-out keywords become single-space sequences; keywords restore before
// dot stripping because leader dots bleed into heading letters. Idempotent;
// never fails.
func (rs *RuleSet) Normalize(text string) string {
	t := norm.NFC.String(text)
	t = zeroWidthRun.ReplaceAllString(t, "")
	t = whitespaceRun.ReplaceAllString(t, " ")
	for _, kw := range rs.keywords {
		t = kw.pattern.ReplaceAllStringFunc(t, rs.restore(kw.canonical))
	}
	t = dottedLeader.ReplaceAllString(t, " ")
	t = ellipsisRun.ReplaceAllString(t, " ")
	t = whitespaceRun.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// restore returns the replacement for matches of one keyword pattern. A
// match may carry interleaved spaces and leader dots; only uppercase and
// capitalised forms are rewritten, plus lowercase when the rule set allows
// it. Anything else (mixed case) is left verbatim.
func (rs *RuleSet) restore(canonical string) func(string) string {
	return func(m string) string {
		switch letterCase(m) {
		case caseUpper, caseCapital:
			return canonical
		case caseLower:
			if rs.MatchLowercase {
				return canonical
			}
		}
		return m
	}
}

type matchCase int

const (
	caseMixed matchCase = iota
	caseUpper
	caseCapital
	caseLower
)

// letterCase classifies the casing of the letters in a keyword match,
// ignoring interleaved whitespace and dots. Capitalised means exactly one
// uppercase letter, in first position.
func letterCase(s string) matchCase {
	var upper, lower int
	firstUpper := false
	seen := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !seen {
			firstUpper = unicode.IsUpper(r)
			seen = true
		}
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		}
	}
	switch {
	case upper > 0 && lower == 0:
		return caseUpper
	case lower > 0 && upper == 0:
		return caseLower
	case firstUpper && upper == 1:
		return caseCapital
	}
	return caseMixed
}
