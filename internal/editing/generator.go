// Package editing proposes bounded resume edits for unmet and partially met
// requirements and applies them to the resume text.
package editing

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/prompts"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
	"github.com/jonathan/resume-fit/internal/validation"
)

const (
	editsMaxTokens = 8192
)

// Config bounds the edit generator.
type Config struct {
	MaxGaps       int           `mapstructure:"max_gaps" validate:"min=1"`
	MaxPartials   int           `mapstructure:"max_partials" validate:"min=0"`
	MaxEdits      int           `mapstructure:"max_edits" validate:"min=1"`
	MaxRawPatches int           `mapstructure:"max_raw_patches" validate:"min=1"`
	MinPatchChars int           `mapstructure:"min_patch_chars" validate:"min=0"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// DefaultConfig returns the standard caps.
func DefaultConfig() Config {
	return Config{
		MaxGaps:       8,
		MaxPartials:   8,
		MaxEdits:      10,
		MaxRawPatches: 3,
		MinPatchChars: 200,
		Timeout:       40 * time.Second,
	}
}

// Input is what the generator works from.
type Input struct {
	Resume          *types.StructuredResume
	RawText         string
	ParseIncomplete bool
	Matches         []types.RequirementMatch
}

// Result is the outcome of edit generation. EditedText has passed the output gate.
type Result struct {
	Edits            []types.ResumeEdit
	EditedText       string
	CandidateCount   int
	AppliedToRawText bool
	CannotSafelyEdit bool
	Gate             *validation.GateReport
}

// Keywords returns the keywords added across all edits.
func (r Result) Keywords() []string {
	var all []string
	for _, e := range r.Edits {
		all = append(all, e.KeywordsAdded...)
	}
	return cleanKeywords(all)
}

// Generator proposes and applies resume edits.
type Generator struct {
	oracle  *llm.Oracle
	gate    *validation.Gate
	weights scoring.Weights
	config  Config
	logger  *zap.Logger
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithConfig overrides the caps.
func WithConfig(c Config) Option {
	return func(g *Generator) { g.config = c }
}

// WithWeights sets the weights used to order candidates and derive priorities.
func WithWeights(w scoring.Weights) Option {
	return func(g *Generator) { g.weights = w }
}

// WithGate replaces the output gate.
func WithGate(gate *validation.Gate) Option {
	return func(g *Generator) { g.gate = gate }
}

// NewGenerator creates a generator over oracle.
func NewGenerator(oracle *llm.Oracle, log *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		oracle:  oracle,
		weights: scoring.DefaultWeights(),
		config:  DefaultConfig(),
		logger:  logger.Named(log, "editor"),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.gate == nil {
		g.gate = validation.NewGate(log)
	}
	return g
}

// Generate proposes edits for the candidates drawn from in.Matches and runs
// the output gate on the resulting text. A *validation.GuardrailError from
// the gate and cancellation of ctx are returned; oracle failures degrade.
func (g *Generator) Generate(ctx context.Context, in Input) (Result, error) {
	candidates := SelectCandidates(in.Matches, g.weights, g.config.MaxGaps, g.config.MaxPartials)
	res := Result{
		Edits:          []types.ResumeEdit{},
		EditedText:     in.RawText,
		CandidateCount: len(candidates),
	}

	if len(candidates) > 0 {
		var err error
		if in.ParseIncomplete || in.Resume.IsMinimal() {
			err = g.patchRawText(ctx, in, candidates, &res)
		} else {
			err = g.structuralEdits(ctx, in, candidates, &res)
		}
		if err != nil {
			return Result{}, err
		}
	}

	applied := 0
	for _, e := range res.Edits {
		if e.Applied {
			applied++
		}
	}
	report, err := g.gate.Run(validation.GateInput{
		Original:     in.RawText,
		Final:        res.EditedText,
		EditsApplied: applied,
		Keywords:     res.Keywords(),
	})
	if err != nil {
		return Result{}, err
	}
	res.Gate = report
	if report.LowEditVisibility {
		g.logger.Warn("suggested keywords are not visible in the edited resume",
			zap.Strings("missing", report.MissingKeywords))
	}

	g.logger.Debug("edits generated",
		zap.Int("candidates", res.CandidateCount),
		zap.Int("edits", len(res.Edits)),
		zap.Int("applied", applied),
	)
	return res, nil
}

// structuralEdits asks for section-addressed edits and anchors them in the raw text.
func (g *Generator) structuralEdits(ctx context.Context, in Input, candidates []Candidate, res *Result) error {
	prompt, err := prompts.Render(prompts.FileEditing, "structural-edits", map[string]string{
		"Candidates": candidateLines(candidates),
		"Sections":   sectionLines(in.Resume),
		"MaxEdits":   strconv.Itoa(g.config.MaxEdits),
		"Resume":     validation.QuoteExternalContent(in.RawText, "resume"),
	})
	if err != nil {
		g.logger.Warn("edit generation skipped", zap.Error(&ProposeError{Message: "prompt", Cause: err}))
		return nil
	}

	payload, err := g.oracle.Call(ctx, llm.Call{
		Task:      llm.TaskGenerateEdits,
		Prompt:    prompt,
		Schema:    structuralSchema,
		MaxTokens: editsMaxTokens,
		Timeout:   g.config.Timeout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		g.logger.Warn("edit generation failed", zap.Error(&ProposeError{Message: "oracle call", Cause: err}))
		return nil
	}

	edits := g.collectEdits(payload.ItemsOf(editFields, "edits", "resume_edits", "suggestions"), in.Resume, candidates)
	a := &applier{text: in.RawText, resume: in.Resume}
	for i := range edits {
		if err := a.apply(&edits[i]); err != nil {
			g.logger.Debug("edit not applied", zap.Error(err))
			continue
		}
		edits[i].Applied = true
	}
	res.Edits = edits
	res.EditedText = a.text
	return nil
}

// collectEdits keeps edits that reference real sections and subsections,
// up to the configured maximum.
func (g *Generator) collectEdits(items []json.RawMessage, resume *types.StructuredResume, candidates []Candidate) []types.ResumeEdit {
	edits := []types.ResumeEdit{}
	for i, item := range items {
		if len(edits) == g.config.MaxEdits {
			break
		}
		var raw rawEdit
		if err := json.Unmarshal(item, &raw); err != nil {
			g.logger.Debug("discarding undecodable edit", zap.Int("index", i), zap.Error(err))
			continue
		}
		edit, reason := g.structuralEdit(raw, resume, candidates)
		if reason != "" {
			g.logger.Debug("discarding edit", zap.Int("index", i), zap.String("reason", reason))
			continue
		}
		edits = append(edits, edit)
	}
	return edits
}

func (g *Generator) structuralEdit(raw rawEdit, resume *types.StructuredResume, candidates []Candidate) (types.ResumeEdit, string) {
	editType := types.EditType(enumValue(raw.editType()))
	if !editType.Valid() {
		return types.ResumeEdit{}, "unknown edit type"
	}
	suggested := strings.TrimSpace(raw.SuggestedContent)
	if suggested == "" && editType != types.EditAddKeywords {
		return types.ResumeEdit{}, "empty suggestion"
	}
	current := strings.TrimSpace(raw.CurrentContent)
	if editType == types.EditModify && current == "" {
		return types.ResumeEdit{}, "modify without current content"
	}

	section := enumValue(raw.Section)
	if !resume.HasSection(section) {
		return types.ResumeEdit{}, "section not in resume"
	}
	subsection, ok := canonicalSubsection(resume, section, raw.Subsection)
	if !ok {
		return types.ResumeEdit{}, "subsection not in resume"
	}

	keywords := cleanKeywords(raw.KeywordsAdded)
	if editType == types.EditAddKeywords && len(keywords) == 0 {
		keywords = cleanKeywords(strings.Split(suggested, ","))
		if len(keywords) == 0 {
			return types.ResumeEdit{}, "no keywords"
		}
	}

	reqs := resolveRequirements(raw.RequirementIDs, candidates)
	priority := types.Priority(enumValue(raw.Priority))
	if !priority.Valid() {
		priority = priorityFor(reqs, g.weights)
	}

	return types.ResumeEdit{
		ID:                    g.newID(),
		Section:               section,
		Subsection:            subsection,
		EditType:              editType,
		Priority:              priority,
		CurrentContent:        current,
		SuggestedContent:      suggested,
		Rationale:             strings.TrimSpace(raw.Rationale),
		RequirementsAddressed: reqs,
		KeywordsAdded:         keywords,
	}, ""
}

// canonicalSubsection returns the resume's spelling of subsection within section.
func canonicalSubsection(resume *types.StructuredResume, section, subsection string) (string, bool) {
	subsection = strings.TrimSpace(subsection)
	if subsection == "" {
		return "", true
	}
	for _, s := range resume.Sections() {
		if s.Name != section {
			continue
		}
		for _, e := range s.Entries {
			if e.Context != "" && strings.EqualFold(e.Context, subsection) {
				return e.Context, true
			}
		}
	}
	return "", false
}

// sectionLines lists the sections and subsections an edit may reference.
func sectionLines(resume *types.StructuredResume) string {
	var lines []string
	for _, s := range resume.Sections() {
		named := false
		for _, e := range s.Entries {
			if e.Context == "" {
				continue
			}
			named = true
			lines = append(lines, s.Name+" :: "+e.Context)
		}
		if !named {
			lines = append(lines, s.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// patchRawText asks for literal find/replace patches against the raw text.
// Only patches whose find text occurs exactly once are applied.
func (g *Generator) patchRawText(ctx context.Context, in Input, candidates []Candidate, res *Result) error {
	if utf8.RuneCountInString(strings.TrimSpace(in.RawText)) < g.config.MinPatchChars {
		g.logger.Info("resume text too short to patch safely", zap.Int("min_chars", g.config.MinPatchChars))
		res.CannotSafelyEdit = true
		return nil
	}

	prompt, err := prompts.Render(prompts.FileEditing, "raw-patches", map[string]string{
		"Candidates": candidateLines(candidates),
		"MaxPatches": strconv.Itoa(g.config.MaxRawPatches),
		"Resume":     validation.QuoteExternalContent(in.RawText, "resume"),
	})
	if err != nil {
		g.logger.Warn("raw patching skipped", zap.Error(&ProposeError{Message: "prompt", Cause: err}))
		res.CannotSafelyEdit = true
		return nil
	}

	payload, err := g.oracle.Call(ctx, llm.Call{
		Task:      llm.TaskPatchRawText,
		Prompt:    prompt,
		Schema:    patchSchema,
		MaxTokens: editsMaxTokens,
		Timeout:   g.config.Timeout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		g.logger.Warn("raw patching failed", zap.Error(&ProposeError{Message: "oracle call", Cause: err}))
		res.CannotSafelyEdit = true
		return nil
	}

	items := payload.ItemsOf(patchFields, "patches", "edits", "replacements")
	if len(items) > g.config.MaxRawPatches {
		items = items[:g.config.MaxRawPatches]
	}

	text := in.RawText
	edits := []types.ResumeEdit{}
	for i, item := range items {
		var raw rawPatch
		if err := json.Unmarshal(item, &raw); err != nil {
			g.logger.Debug("discarding undecodable patch", zap.Int("index", i), zap.Error(err))
			continue
		}
		find := strings.TrimSpace(raw.Find)
		replace := strings.TrimSpace(raw.Replace)
		if find == "" || replace == "" || find == replace {
			g.logger.Debug("discarding empty patch", zap.Int("index", i))
			continue
		}
		if n := strings.Count(text, find); n != 1 {
			g.logger.Debug("discarding unanchored patch", zap.Int("index", i), zap.Int("occurrences", n))
			continue
		}
		text = strings.Replace(text, find, replace, 1)

		keywords := cleanKeywords(raw.KeywordsAdded)
		editType := types.EditModify
		if strings.HasPrefix(replace, find) && len(keywords) > 0 {
			editType = types.EditAddKeywords
		}
		reqs := resolveRequirements(raw.RequirementIDs, candidates)
		edits = append(edits, types.ResumeEdit{
			ID:                    g.newID(),
			EditType:              editType,
			Priority:              priorityFor(reqs, g.weights),
			CurrentContent:        find,
			SuggestedContent:      replace,
			Rationale:             strings.TrimSpace(raw.Rationale),
			RequirementsAddressed: reqs,
			KeywordsAdded:         keywords,
			Applied:               true,
		})
	}

	if len(edits) == 0 {
		res.CannotSafelyEdit = true
		return nil
	}
	res.Edits = edits
	res.EditedText = text
	res.AppliedToRawText = true
	return nil
}
