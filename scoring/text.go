package scoring

import (
	"regexp"
	"strings"
)

// Stop words excluded from fuzzy token matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "to": true,
	"of": true, "in": true, "on": true, "for": true, "with": true, "by": true,
	"as": true, "at": true, "is": true, "are": true, "be": true, "when": true,
	"that": true, "this": true, "it": true, "from": true, "should": true,
	"must": true, "may": true, "can": true, "will": true, "if": true,
	"then": true, "into": true, "over": true, "under": true, "while": true,
	"both": true, "any": true, "your": true, "their": true, "its": true,
	"how": true,
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	alnumRun      = regexp.MustCompile(`[a-z0-9]+`)
)

// NormalizeForMatch applies gentle normalization to help catch paraphrases:
// lowercase, "step-by-step" collapsed to "step by step", hyphens replaced by
// spaces, whitespace runs collapsed.
func NormalizeForMatch(text string) string {
	t := strings.ToLower(text)
	t = strings.ReplaceAll(t, "step-by-step", "step by step")
	t = strings.ReplaceAll(t, "-", " ")
	t = whitespaceRun.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Tokens splits normalized text into alphanumeric tokens longer than two
// characters, excluding stop words.
func Tokens(text string) []string {
	raw := alnumRun.FindAllString(NormalizeForMatch(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) > 2 && !stopWords[tok] {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// TokenSet returns the set of content tokens in text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokens(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
