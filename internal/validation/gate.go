package validation

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/types"
)

// Gate thresholds.
const (
	// MinLengthRatio is the shortest final/original length ratio accepted without a truncation flag.
	MinLengthRatio = 0.6
	// MinKeywordVisibility is the lowest share of edit keywords that must be visible in the final text.
	MinKeywordVisibility = 0.3
)

// criticalSections must survive editing whenever the original text had them.
var criticalSections = []string{types.SectionExperience, types.SectionEducation}

// GateInput is what the gate inspects: the text as received and the text about to be returned.
type GateInput struct {
	Original     string
	Final        string
	EditsApplied int
	Keywords     []string
}

// GateReport collects the non-fatal findings of the gate stages.
type GateReport struct {
	LengthRatio          float64
	SuspiciousTruncation bool
	KeywordVisibility    *float64
	LowEditVisibility    bool
	MissingKeywords      []string
	Passed               []string
}

// Stage is one check of the gate. A stage either passes, possibly recording a
// finding on the report, or returns a *GuardrailError. It never alters the text.
type Stage interface {
	Name() string
	Check(in GateInput, report *GateReport) error
}

// Gate runs its stages in order immediately before edited text is returned.
type Gate struct {
	stages []Stage
	logger *zap.Logger
}

// NewGate builds the standard gate: section preservation, length sanity, edit visibility.
func NewGate(log *zap.Logger) *Gate {
	return NewGateWithStages(log,
		SectionPreservation{},
		LengthSanity{MinRatio: MinLengthRatio},
		EditVisibility{MinVisibility: MinKeywordVisibility},
	)
}

// NewGateWithStages builds a gate from explicit stages.
func NewGateWithStages(log *zap.Logger, stages ...Stage) *Gate {
	return &Gate{stages: stages, logger: logger.Named(log, "gate")}
}

// Run executes every stage, stopping at the first hard failure.
func (g *Gate) Run(in GateInput) (*GateReport, error) {
	report := &GateReport{}
	for _, stage := range g.stages {
		if err := stage.Check(in, report); err != nil {
			g.logger.Error("output gate rejected edited resume",
				zap.String("stage", stage.Name()), zap.Error(err))
			return report, err
		}
		report.Passed = append(report.Passed, stage.Name())
	}
	g.logger.Debug("output gate passed",
		zap.Float64("length_ratio", report.LengthRatio),
		zap.Bool("suspicious_truncation", report.SuspiciousTruncation),
		zap.Bool("low_edit_visibility", report.LowEditVisibility))
	return report, nil
}

// SectionPreservation fails when experience or education content present in
// the original text is missing or emptied in the final text.
type SectionPreservation struct{}

// Name implements Stage.
func (SectionPreservation) Name() string { return "section_preservation" }

// Check implements Stage.
func (SectionPreservation) Check(in GateInput, _ *GateReport) error {
	var lost []string
	for _, section := range criticalSections {
		if !HasSectionIndicator(in.Original, section) {
			continue
		}
		if !HasSectionIndicator(in.Final, section) {
			lost = append(lost, section)
			continue
		}
		original, hadHeading := SectionBlock(in.Original, section)
		if !hadHeading || original == "" {
			continue
		}
		if final, ok := SectionBlock(in.Final, section); ok && final == "" {
			lost = append(lost, section)
		}
	}
	if len(lost) > 0 {
		return &GuardrailError{
			Stage:    SectionPreservation{}.Name(),
			Message:  "final resume lost content present in the original",
			Sections: lost,
		}
	}
	return nil
}

// LengthSanity flags a final text much shorter than the original.
type LengthSanity struct {
	MinRatio float64
}

// Name implements Stage.
func (LengthSanity) Name() string { return "length_sanity" }

// Check implements Stage.
func (s LengthSanity) Check(in GateInput, report *GateReport) error {
	originalLen := utf8.RuneCountInString(strings.TrimSpace(in.Original))
	finalLen := utf8.RuneCountInString(strings.TrimSpace(in.Final))
	if originalLen == 0 {
		report.LengthRatio = 1
		return nil
	}
	report.LengthRatio = float64(finalLen) / float64(originalLen)
	changed := in.EditsApplied > 0 || in.Final != in.Original
	if changed && report.LengthRatio < s.MinRatio {
		report.SuspiciousTruncation = true
	}
	return nil
}

// EditVisibility measures how many suggested keywords actually appear in the final text.
type EditVisibility struct {
	MinVisibility float64
}

// Name implements Stage.
func (EditVisibility) Name() string { return "edit_visibility" }

// Check implements Stage.
func (s EditVisibility) Check(in GateInput, report *GateReport) error {
	keywords := uniqueKeywords(in.Keywords)
	if len(keywords) == 0 {
		return nil
	}
	final := strings.ToLower(in.Final)
	visible := 0
	for _, kw := range keywords {
		if strings.Contains(final, kw) {
			visible++
		} else {
			report.MissingKeywords = append(report.MissingKeywords, kw)
		}
	}
	ratio := float64(visible) / float64(len(keywords))
	report.KeywordVisibility = &ratio
	report.LowEditVisibility = ratio < s.MinVisibility
	return nil
}

func uniqueKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
