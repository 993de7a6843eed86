package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/prompts"
	"github.com/jonathan/resume-fit/internal/types"
)

const (
	// DefaultPhase1Requirements caps the requirements evaluated at all.
	DefaultPhase1Requirements = 20
	// DefaultContextBullets caps the bullets consulted in either phase.
	DefaultContextBullets = 30
	// DefaultContextChars bounds the evidence text sent to the deep pass.
	DefaultContextChars = 2500
	// DefaultDeepMatchTimeout bounds the deep pass call.
	DefaultDeepMatchTimeout = 45 * time.Second

	deepMatchMaxTokens = 8192

	explanationCapacity = "Not evaluated: the requirement is beyond the matching capacity."
	explanationNoResume = "No resume content was available to evaluate this requirement."
)

var errNoOracle = errors.New("deep match unavailable: no oracle configured")

// Limits bounds the work done per match.
type Limits struct {
	Phase1Requirements int `mapstructure:"phase1_requirements" validate:"min=1"`
	ContextBullets     int `mapstructure:"context_bullets" validate:"min=1"`
	ContextChars       int `mapstructure:"context_chars" validate:"min=100"`
}

// DefaultLimits returns the standard caps.
func DefaultLimits() Limits {
	return Limits{
		Phase1Requirements: DefaultPhase1Requirements,
		ContextBullets:     DefaultContextBullets,
		ContextChars:       DefaultContextChars,
	}
}

// Stats records how requirements were routed between the phases.
type Stats struct {
	Resolved  int
	Escalated int
	Covered   int
}

// Result is the outcome of matching. Matches has one entry per input
// requirement, in input order.
type Result struct {
	Matches        []types.RequirementMatch
	Stats          Stats
	Degraded       bool
	Truncated      bool
	NoRequirements bool
	// Evaluated counts the leading matches that went through matching;
	// the rest were skipped for capacity.
	Evaluated int
}

// Matcher runs the two-phase requirement match.
type Matcher struct {
	oracle  *llm.Oracle
	logger  *zap.Logger
	limits  Limits
	timeout time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLimits overrides the caps. Non-positive fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(m *Matcher) {
		if l.Phase1Requirements > 0 {
			m.limits.Phase1Requirements = l.Phase1Requirements
		}
		if l.ContextBullets > 0 {
			m.limits.ContextBullets = l.ContextBullets
		}
		if l.ContextChars > 0 {
			m.limits.ContextChars = l.ContextChars
		}
	}
}

// WithDeepMatchTimeout overrides the deep pass timeout.
func WithDeepMatchTimeout(d time.Duration) Option {
	return func(m *Matcher) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewMatcher creates a matcher. A nil oracle disables the deep pass, so every
// tentative requirement keeps its keyword verdict and the result is degraded.
func NewMatcher(oracle *llm.Oracle, log *zap.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		oracle:  oracle,
		logger:  logger.Named(log, "matcher"),
		limits:  DefaultLimits(),
		timeout: DefaultDeepMatchTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match evaluates requirements against bullets. Only cancellation of ctx is
// returned as an error; a failed deep pass degrades the result instead.
func (m *Matcher) Match(ctx context.Context, requirements []types.Requirement, bullets []types.ResumeBullet) (Result, error) {
	result := Result{Matches: make([]types.RequirementMatch, len(requirements))}
	if len(requirements) == 0 {
		result.NoRequirements = true
		return result, nil
	}

	evaluated := requirements
	if len(evaluated) > m.limits.Phase1Requirements {
		evaluated = evaluated[:m.limits.Phase1Requirements]
		result.Truncated = true
		for i := len(evaluated); i < len(requirements); i++ {
			result.Matches[i] = unevaluated(requirements[i], explanationCapacity)
		}
		m.logger.Info("requirements beyond capacity not evaluated",
			zap.Int("requirements", len(requirements)),
			zap.Int("limit", m.limits.Phase1Requirements),
		)
	}
	result.Evaluated = len(evaluated)

	if len(bullets) == 0 {
		for i, req := range evaluated {
			result.Matches[i] = unevaluated(req, explanationNoResume)
		}
		return result, nil
	}

	if len(bullets) > m.limits.ContextBullets {
		bullets = bullets[:m.limits.ContextBullets]
	}
	c := newCorpus(bullets)

	assessments, err := m.phase1(ctx, c, evaluated)
	if err != nil {
		return Result{}, err
	}

	var tentative []int
	for i, a := range assessments {
		result.Matches[i] = a.match
		if a.resolved() {
			result.Stats.Resolved++
		} else {
			tentative = append(tentative, i)
		}
	}
	result.Stats.Escalated = len(tentative)
	m.logger.Debug("phase 1 complete",
		zap.Int("requirements", len(evaluated)),
		zap.Int("bullets", len(bullets)),
		zap.Int("resolved", result.Stats.Resolved),
		zap.Int("escalated", result.Stats.Escalated),
	)
	if len(tentative) == 0 {
		return result, nil
	}

	deep, err := m.phase2(ctx, c, evaluated, assessments, tentative)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		m.logger.Warn("deep match failed, keeping keyword verdicts", zap.Error(err))
	}
	for _, idx := range tentative {
		if match, ok := deep[idx]; ok {
			result.Matches[idx] = match
			result.Stats.Covered++
		}
	}
	if result.Stats.Covered < len(tentative) {
		result.Degraded = true
		m.logger.Warn("deep match left requirements on keyword verdicts",
			zap.Int("escalated", len(tentative)),
			zap.Int("covered", result.Stats.Covered),
		)
	}
	return result, nil
}

// phase1 scores requirements in parallel; each goroutine writes only its own slot.
func (m *Matcher) phase1(ctx context.Context, c *corpus, requirements []types.Requirement) ([]assessment, error) {
	assessments := make([]assessment, len(requirements))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range requirements {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			assessments[i] = c.assess(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return assessments, nil
}

// phase2 sends every tentative requirement in one batched oracle call and
// returns the verdicts it covered, keyed by requirement index.
func (m *Matcher) phase2(ctx context.Context, c *corpus, requirements []types.Requirement, assessments []assessment, tentative []int) (map[int]types.RequirementMatch, error) {
	if m.oracle == nil {
		return nil, errNoOracle
	}

	selected := m.selectContext(c, assessments, tentative)

	var reqLines strings.Builder
	for _, idx := range tentative {
		r := requirements[idx]
		fmt.Fprintf(&reqLines, "%s: (%s, %s, %s) %s\n", requirementID(idx), r.Category, r.Importance, r.Type, r.Text)
	}
	var bulletLines strings.Builder
	for _, idx := range selected {
		bulletLines.WriteString(bulletLine(idx, c.bullets[idx]))
		bulletLines.WriteString("\n")
	}

	prompt, err := prompts.Render(prompts.FileMatching, "deep-match", map[string]string{
		"Requirements": strings.TrimSuffix(reqLines.String(), "\n"),
		"Bullets":      strings.TrimSuffix(bulletLines.String(), "\n"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render deep match prompt: %w", err)
	}

	payload, err := m.oracle.Call(ctx, llm.Call{
		Task:      llm.TaskDeepMatch,
		Prompt:    prompt,
		Schema:    deepMatchSchema,
		MaxTokens: deepMatchMaxTokens,
		Timeout:   m.timeout,
	})
	if err != nil {
		return nil, err
	}

	allowedReq := make(map[int]bool, len(tentative))
	for _, idx := range tentative {
		allowedReq[idx] = true
	}
	allowedBullet := make(map[int]bool, len(selected))
	for _, idx := range selected {
		allowedBullet[idx] = true
	}

	verdicts := make(map[int]types.RequirementMatch, len(tentative))
	for i, item := range payload.ItemsOf(verdictFields, "matches", "results", "requirement_matches") {
		var raw rawDeepMatch
		if err := json.Unmarshal(item, &raw); err != nil {
			m.logger.Debug("discarding undecodable deep match entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		idx, ok := parseID(raw.RequirementID, "r")
		if !ok || !allowedReq[idx] {
			m.logger.Debug("ignoring deep match for unknown requirement", zap.String("id", raw.RequirementID))
			continue
		}
		if _, dup := verdicts[idx]; dup {
			continue
		}
		verdicts[idx] = raw.toMatch(requirements[idx], c.bullets, allowedBullet)
	}
	return verdicts, nil
}

// selectContext picks the bullets shown to the deep pass: evidence of the
// tentative requirements first, then the rest of the corpus in order, within
// the bullet and character limits.
func (m *Matcher) selectContext(c *corpus, assessments []assessment, tentative []int) []int {
	order := make([]int, 0, len(c.bullets))
	seen := make(map[int]bool, len(c.bullets))
	push := func(idx int) {
		if !seen[idx] {
			seen[idx] = true
			order = append(order, idx)
		}
	}
	for _, t := range tentative {
		for _, idx := range assessments[t].evidence {
			push(idx)
		}
	}
	for idx := range c.bullets {
		push(idx)
	}

	selected := make([]int, 0, len(order))
	chars := 0
	for _, idx := range order {
		if len(selected) == m.limits.ContextBullets {
			break
		}
		n := len(bulletLine(idx, c.bullets[idx])) + 1
		if chars+n > m.limits.ContextChars {
			continue
		}
		chars += n
		selected = append(selected, idx)
	}
	return selected
}

func unevaluated(req types.Requirement, explanation string) types.RequirementMatch {
	match := types.RequirementMatch{
		Requirement:   req,
		MatchStrength: types.StrengthNone,
		Explanation:   explanation,
	}
	match.Normalize()
	return match
}

func requirementID(idx int) string { return "r" + strconv.Itoa(idx) }

func bulletID(idx int) string { return "b" + strconv.Itoa(idx) }

func bulletLine(idx int, b types.ResumeBullet) string {
	label := b.Section
	if b.Context != "" {
		label += " | " + b.Context
	}
	return fmt.Sprintf("%s: [%s] %s", bulletID(idx), label, b.Text)
}

// parseID accepts "r3", "R3" or "3".
func parseID(id, prefix string) (int, bool) {
	id = strings.TrimSpace(strings.ToLower(id))
	id = strings.TrimPrefix(id, prefix)
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
