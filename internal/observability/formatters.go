// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-fit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProgress outputs a single pipeline step line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(category, step, message string) {
	fmt.Fprintf(p.out, "[%s/%s] %s\n", category, step, message)
}

// PrintResume outputs the sections and bullet counts of a structured resume.
func (p *Printer) PrintResume(resume *types.StructuredResume, missing []string) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sections := resume.Sections()
	if len(sections) == 0 {
		sb.WriteString("No sections recognized\n")
	}
	for _, section := range sections {
		bullets := 0
		for _, entry := range section.Entries {
			bullets += len(entry.Bullets)
		}
		sb.WriteString(fmt.Sprintf("%-16s %2d entries, %3d bullets\n", section.Name, len(section.Entries), bullets))
	}
	if len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠ Missing from parse: %s\n", strings.Join(missing, ", ")))
	}

	p.printBox("STRUCTURED RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirements outputs the extracted requirements grouped by category.
func (p *Printer) PrintRequirements(requirements []types.Requirement) {
	if len(requirements) == 0 {
		p.printBox("EXTRACTED REQUIREMENTS", "No requirements extracted")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total requirements: %d\n", len(requirements)))
	for _, category := range []types.Category{types.CategoryRequired, types.CategoryPreferred, types.CategoryNiceToHave} {
		var inCategory []types.Requirement
		for _, r := range requirements {
			if r.Category == category {
				inCategory = append(inCategory, r)
			}
		}
		if len(inCategory) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", category))
		count := min(len(inCategory), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", truncate(inCategory[i].Text, 40), inCategory[i].Importance))
		}
		if len(inCategory) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(inCategory)-maxItemsToShow))
		}
	}

	p.printBox("EXTRACTED REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

var strengthMarks = map[types.MatchStrength]string{
	types.StrengthStrong:  "●",
	types.StrengthPartial: "◐",
	types.StrengthWeak:    "○",
	types.StrengthNone:    "✗",
}

// PrintMatches outputs the requirement-by-requirement breakdown.
func (p *Printer) PrintMatches(matches []types.RequirementMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("%s %-8s %s\n", strengthMarks[m.MatchStrength], m.MatchStrength, truncate(m.Requirement.Text, 42)))
		if len(m.ResumeMatches) > 0 {
			sb.WriteString(fmt.Sprintf("    ↳ %s\n", truncate(m.ResumeMatches[0].Bullet.Text, 48)))
		}
		if i == 2*maxItemsToShow-1 && len(matches) > 2*maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more requirements\n", len(matches)-2*maxItemsToShow))
			break
		}
	}

	p.printBox("REQUIREMENT MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEdits outputs the suggested resume edits.
func (p *Printer) PrintEdits(edits []types.ResumeEdit) {
	if len(edits) == 0 {
		p.printBox("SUGGESTED EDITS", "No edits suggested")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Suggested %d edits:\n\n", len(edits)))

	count := min(len(edits), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := edits[i]
		status := "pending"
		if e.Applied {
			status = "applied"
		}
		location := e.Section
		if e.Subsection != "" {
			location += " / " + e.Subsection
		}
		if location == "" {
			location = "raw text"
		}
		sb.WriteString(fmt.Sprintf("[%s] %s in %s (%s)\n", e.Priority, e.EditType, truncate(location, 30), status))
		sb.WriteString(fmt.Sprintf("  + %s\n", truncate(e.SuggestedContent, 50)))
		if len(e.KeywordsAdded) > 0 {
			sb.WriteString(fmt.Sprintf("  [%s]\n", truncate(strings.Join(e.KeywordsAdded, ", "), 40)))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(edits) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more edits", len(edits)-maxItemsToShow))
	}

	p.printBox("SUGGESTED EDITS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFlags outputs any degradation flags that were raised.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFlags(flags types.Flags) {
	raised := raisedFlags(flags)
	if len(raised) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO FLAGS RAISED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	for _, name := range raised {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", name))
	}
	p.printBox("FLAGS", strings.TrimSuffix(sb.String(), "\n"))
}

func raisedFlags(f types.Flags) []string {
	all := []struct {
		name string
		set  bool
	}{
		{"parse_incomplete", f.ParseIncomplete},
		{"structuring_failed", f.StructuringFailed},
		{"no_requirements", f.NoRequirements},
		{"extraction_failed", f.ExtractionFailed},
		{"requirements_truncated", f.RequirementsTruncated},
		{"degraded_matching", f.DegradedMatching},
		{"edits_applied_to_raw_text", f.EditsAppliedToRawText},
		{"cannot_safely_edit", f.CannotSafelyEdit},
		{"suspicious_truncation", f.SuspiciousTruncation},
		{"low_edit_visibility", f.LowEditVisibility},
		{"from_cache", f.FromCache},
	}
	var raised []string
	for _, flag := range all {
		if flag.set {
			raised = append(raised, flag.name)
		}
	}
	return raised
}

// PrintAnalysis outputs the score, summary and breakdown of a fit analysis.
func (p *Printer) PrintAnalysis(a *types.FitAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	if a.Score != nil && a.MatchLevel != nil {
		sb.WriteString(fmt.Sprintf("Score:    %.1f / 100 (%s)\n", *a.Score, *a.MatchLevel))
	} else {
		sb.WriteString("Score:    n/a\n")
	}
	sb.WriteString(fmt.Sprintf("Matched:  %d requirements, %d bullets\n", a.Stats.Requirements, a.Stats.Bullets))
	sb.WriteString(fmt.Sprintf("Routing:  %d heuristic, %d deep\n", a.Stats.Phase1Resolved, a.Stats.Phase2Escalated))
	if a.KeywordVisibility != nil {
		sb.WriteString(fmt.Sprintf("Keywords: %.0f%% visible after edits\n", *a.KeywordVisibility*100))
	}
	writeList(&sb, "Strengths", a.Strengths)
	writeList(&sb, "Gaps", a.Gaps)
	if a.Pitch != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(a.Pitch, boxWidth-4))
		sb.WriteString("\n")
	}

	p.printBox("FIT ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintMatches(a.RequirementMatches)
	p.PrintEdits(a.ResumeEdits)
	p.PrintFlags(a.Flags)
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(items[i], 50)))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// wrap breaks text into lines of at most width runes at word boundaries.
func wrap(text string, width int) string {
	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
