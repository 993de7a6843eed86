package types

// Category says how strongly the posting demands a requirement.
type Category string

// Requirement categories, strongest first.
const (
	CategoryRequired   Category = "required"
	CategoryPreferred  Category = "preferred"
	CategoryNiceToHave Category = "nice_to_have"
)

// Importance is the weight the posting places on a requirement.
type Importance string

// Importance levels, highest first.
const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

// RequirementType classifies what kind of evidence satisfies a requirement.
type RequirementType string

// Requirement types.
const (
	TypeTechnicalSkill RequirementType = "technical_skill"
	TypeSoftSkill      RequirementType = "soft_skill"
	TypeExperience     RequirementType = "experience"
	TypeEducation      RequirementType = "education"
	TypeCertification  RequirementType = "certification"
	TypeTool           RequirementType = "tool"
	TypeOther          RequirementType = "other"
)

// Requirement is a single categorized demand extracted from a job posting.
// Requirements are values and are never mutated after extraction.
type Requirement struct {
	Text       string          `json:"text" validate:"required,min=2,max=500"`
	Category   Category        `json:"category" validate:"required,oneof=required preferred nice_to_have"`
	Importance Importance      `json:"importance" validate:"required,oneof=critical high medium low"`
	Type       RequirementType `json:"type" validate:"required,oneof=technical_skill soft_skill experience education certification tool other"`
}
