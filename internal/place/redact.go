package place

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const RedactedToken = "[redacted]"

// minTokenRunes keeps short catalog names like "UK" from eating ordinary
// words. It does not apply to the extra names passed to Redact.
const minTokenRunes = 3

// Redactor replaces known place names in generated text.
type Redactor struct {
	base     []string
	compiled map[string]*regexp.Regexp
}

// NewRedactor precompiles a matcher for every name in names.
func NewRedactor(names []string) *Redactor {
	r := &Redactor{compiled: make(map[string]*regexp.Regexp, len(names))}
	r.base = addTokens(nil, names, minTokenRunes)
	for _, t := range r.base {
		r.compiled[t] = compileToken(t)
	}
	return r
}

func compileToken(token string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(token))
}

func addTokens(dst, names []string, minRunes int) []string {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || utf8.RuneCountInString(n) < minRunes {
			continue
		}
		k := strings.ToLower(n)
		if slices.Contains(dst, k) {
			continue
		}
		dst = append(dst, k)
	}
	return dst
}

func (r *Redactor) matcher(token string) *regexp.Regexp {
	if re, ok := r.compiled[token]; ok {
		return re
	}
	return compileToken(token)
}

// Redact replaces every whole-word, case-insensitive occurrence of the base
// names and extra with RedactedToken, longest names first. Extra names are
// always redacted, however short.
func (r *Redactor) Redact(text string, extra ...string) string {
	tokens := addTokens(slices.Clone(r.base), extra, 1)
	slices.SortStableFunc(tokens, func(a, b string) int {
		return utf8.RuneCountInString(b) - utf8.RuneCountInString(a)
	})

	for _, t := range tokens {
		text = replaceWord(text, r.matcher(t))
	}
	return text
}

// replaceWord substitutes matches of re that sit on word boundaries. Go's \b
// is ASCII-only, so boundaries are checked against Unicode classes here.
func replaceWord(text string, re *regexp.Regexp) string {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if !atBoundary(text, start, end) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(RedactedToken)
		last = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
