// Package ingestion prepares caller-supplied resume and job posting text for analysis.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	innerSpaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// bulletMarkers open list items whose indentation carries nesting.
var bulletMarkers = []string{"- ", "* ", "• ", "· "}

// CleanText normalizes line endings and whitespace. Headings, list markers
// and leading indentation survive; runs of blank lines collapse to one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	return strings.TrimSpace(blankRunRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func cleanLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(body) == "" {
		return ""
	}
	if strings.HasPrefix(body, "#") {
		return strings.TrimRight(body, " \t")
	}

	indent := strings.Repeat(" ", len(line)-len(body))
	if isBullet(body) {
		return indent + strings.TrimRight(body, " \t")
	}
	return indent + innerSpaceRe.ReplaceAllString(strings.TrimSpace(body), " ")
}

func isBullet(body string) bool {
	for _, marker := range bulletMarkers {
		if strings.HasPrefix(body, marker) {
			return true
		}
	}
	return false
}

// ReadText reads a text file verbatim. Resume text must not be cleaned before
// structuring, so cleanup is left to the caller.
func ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}
