package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-fit/internal/cache"
)

// DefaultJobTextBudget is the per-chunk rune budget for job posting text.
const DefaultJobTextBudget = 4000

// chunkSeparator joins the two chunks so the gap is visible in the prompt.
const chunkSeparator = "\n\n[...]\n\n"

// qualificationsHeadingRe matches headings that usually open the requirements part of a posting.
var qualificationsHeadingRe = regexp.MustCompile(`(?im)^[ \t#*-]*(minimum qualifications|preferred qualifications|basic qualifications|qualifications|requirements|what you('|’)ll need|what you bring|what we('|’)re looking for|who you are|about you|you have|must haves?|nice to haves?|skills( and experience)?)\b`)

// PreparedJob is job posting text ready for the requirement extractor.
type PreparedJob struct {
	Text         string   `json:"text"`
	Chunks       []string `json:"chunks"`
	Truncated    bool     `json:"truncated"`
	StrippedHTML bool     `json:"stripped_html"`
	Hash         string   `json:"hash"`
}

// PrepareJobText strips markup, cleans the text and keeps at most two chunks of budget runes.
// The second chunk starts at the first qualifications heading past the first chunk, or directly
// after the first chunk when there is none.
func PrepareJobText(description string, budget int) PreparedJob {
	if budget <= 0 {
		budget = DefaultJobTextBudget
	}

	var prepared PreparedJob
	text := description
	if LooksLikeHTML(text) {
		if stripped, err := StripHTML(text); err == nil {
			text = stripped
			prepared.StrippedHTML = true
		}
	}
	text = CleanText(text)
	prepared.Hash = cache.TextKey(text)

	if text == "" {
		prepared.Chunks = []string{}
		return prepared
	}
	if utf8.RuneCountInString(text) <= budget {
		prepared.Text = text
		prepared.Chunks = []string{text}
		return prepared
	}

	first := cutAtLine(prefixRunes(text, budget))
	rest := text[len(first):]

	start := 0
	if loc := qualificationsHeadingRe.FindStringIndex(rest); loc != nil {
		start = loc[0]
	}
	tail := strings.TrimSpace(rest[start:])
	second := prefixRunes(tail, budget)
	if len(second) < len(tail) {
		second = cutAtLine(second)
	}

	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	prepared.Chunks = []string{first}
	if second != "" {
		prepared.Chunks = append(prepared.Chunks, second)
	}
	prepared.Text = strings.Join(prepared.Chunks, chunkSeparator)
	prepared.Truncated = strings.TrimSpace(rest[:start]) != "" || len(second) < len(tail)
	return prepared
}

// prefixRunes returns the longest prefix of s holding at most n runes.
func prefixRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// cutAtLine drops a trailing partial line when a line break exists in the second half.
func cutAtLine(s string) string {
	if idx := strings.LastIndex(s, "\n"); idx > len(s)/2 {
		return s[:idx+1]
	}
	return s
}
