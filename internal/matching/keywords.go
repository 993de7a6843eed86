// Package matching evaluates job requirements against flattened resume evidence.
//
// Matching runs in two phases. A deterministic keyword pass resolves every
// requirement it can decide with high confidence; the remainder is escalated
// to a single batched oracle call over a reduced evidence context.
package matching

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-fit/internal/parsing"
)

// minKeywordLen is the shortest token kept, so "go", "ci" and "ml" survive.
const minKeywordLen = 2

// stopWords are filtered out of requirement and bullet text before comparison.
var stopWords = map[string]bool{
	"an": true, "as": true, "at": true, "be": true, "by": true, "do": true,
	"if": true, "in": true, "is": true, "it": true, "me": true, "my": true,
	"no": true, "of": true, "on": true, "or": true, "so": true, "to": true,
	"up": true, "us": true, "we": true,
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
	"year": true, "years": true, "experience": true, "experienced": true,
	"strong": true, "solid": true, "knowledge": true, "understanding": true,
	"ability": true, "skills": true, "skill": true, "proficiency": true,
	"proficient": true, "familiarity": true, "familiar": true, "plus": true,
	"etc": true, "including": true, "must": true, "should": true,
	"preferred": true, "required": true, "nice": true, "bonus": true,
	"any": true, "one": true, "other": true, "least": true, "demonstrated": true,
}

// Keywords extracts the ordered, de-duplicated comparison tokens of text.
// Tokens are lowercased runs of letters, digits, '+', '#' and '.', with
// trailing dots trimmed. Stop words and tokens without a letter are dropped,
// and known skill variants collapse to their canonical name (golang -> go).
func Keywords(text string) []string {
	var (
		out  []string
		seen = make(map[string]bool)
		word strings.Builder
	)
	add := func(token string) {
		if seen[token] {
			return
		}
		seen[token] = true
		out = append(out, token)
	}
	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := strings.TrimRight(word.String(), ".")
		word.Reset()
		if len([]rune(w)) < minKeywordLen || stopWords[w] || !hasLetter(w) {
			return
		}
		if canonical, ok := parsing.CanonicalSkill(w); ok {
			for _, part := range strings.Fields(strings.ToLower(canonical)) {
				add(part)
			}
			return
		}
		add(w)
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// keywordSet is the membership view of a bullet's keywords.
type keywordSet map[string]bool

func newKeywordSet(text string) keywordSet {
	kws := Keywords(text)
	set := make(keywordSet, len(kws))
	for _, kw := range kws {
		set[kw] = true
	}
	return set
}

// coverage returns the fraction of want present in set.
func (s keywordSet) coverage(want []string) float64 {
	if len(want) == 0 {
		return 0
	}
	hits := 0
	for _, kw := range want {
		if s[kw] {
			hits++
		}
	}
	return float64(hits) / float64(len(want))
}
