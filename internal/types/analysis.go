package types

// MatchLevel buckets a fit score.
type MatchLevel string

// Match levels.
const (
	LevelExcellent MatchLevel = "excellent"
	LevelGood      MatchLevel = "good"
	LevelModerate  MatchLevel = "moderate"
	LevelPoor      MatchLevel = "poor"
)

// Flags makes every degraded state of an analysis explicit.
type Flags struct {
	ParseIncomplete       bool `json:"parse_incomplete"`
	StructuringFailed     bool `json:"structuring_failed"`
	NoRequirements        bool `json:"no_requirements"`
	ExtractionFailed      bool `json:"extraction_failed"`
	RequirementsTruncated bool `json:"requirements_truncated"`
	DegradedMatching      bool `json:"degraded_matching"`
	EditsAppliedToRawText bool `json:"edits_applied_to_raw_text"`
	CannotSafelyEdit      bool `json:"cannot_safely_edit"`
	SuspiciousTruncation  bool `json:"suspicious_truncation"`
	LowEditVisibility     bool `json:"low_edit_visibility"`
	FromCache             bool `json:"from_cache"`
}

// Degraded reports whether the analysis rests on a failed or partial upstream stage.
func (f Flags) Degraded() bool {
	return f.StructuringFailed || f.ExtractionFailed || f.DegradedMatching
}

// AnalysisStats records how work was routed through the pipeline.
type AnalysisStats struct {
	Requirements    int  `json:"requirements"`
	Bullets         int  `json:"bullets"`
	Phase1Resolved  int  `json:"phase1_resolved"`
	Phase2Escalated int  `json:"phase2_escalated"`
	Phase2Covered   int  `json:"phase2_covered"`
	EditCandidates  int  `json:"edit_candidates"`
	ResumeCacheHit  bool `json:"resume_cache_hit"`
	RequirementsHit bool `json:"requirements_cache_hit"`
}

// FitAnalysis is the complete result of evaluating a resume against a job posting.
// Score and MatchLevel are nil when there was nothing to score.
type FitAnalysis struct {
	AnalysisID         string             `json:"analysis_id"`
	Score              *float64           `json:"score"`
	MatchLevel         *MatchLevel        `json:"match_level"`
	Strengths          []string           `json:"strengths"`
	Gaps               []string           `json:"gaps"`
	Pitch              string             `json:"pitch"`
	TalkingPoints      []string           `json:"talking_points"`
	KeywordsToUse      []string           `json:"keywords_to_use"`
	RequirementMatches []RequirementMatch `json:"requirement_matches"`
	ResumeEdits        []ResumeEdit       `json:"resume_edits"`
	EditedResumeText   string             `json:"edited_resume_text"`
	KeywordVisibility  *float64           `json:"keyword_visibility"`
	MissingSections    []string           `json:"missing_sections"`
	Flags              Flags              `json:"flags"`
	Stats              AnalysisStats      `json:"stats"`
}
