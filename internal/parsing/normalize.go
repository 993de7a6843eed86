package parsing

import (
	"strings"

	"github.com/jonathan/resume-fit/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"psql":       "PostgreSQL",
	"py":         "Python",
	"python3":    "Python",
	"gcp":        "GCP",
	"aws":        "AWS",
	"ci/cd":      "CI/CD",
	"cicd":       "CI/CD",
	"ml":         "Machine Learning",
	"rest":       "REST",
	"restful":    "REST",
	"grpc":       "gRPC",
	"sql":        "SQL",
	"nosql":      "NoSQL",
	"c#":         "C#",
	"c++":        "C++",
	"cpp":        "C++",
}

// CanonicalSkill returns the canonical name of a known skill variant.
func CanonicalSkill(name string) (string, bool) {
	canonical, ok := skillNormalizations[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	if skillName == "" {
		return ""
	}

	// Trim whitespace
	normalized := strings.TrimSpace(skillName)

	// Check for exact match in normalization map (case-insensitive)
	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// Handle case normalization for common patterns
	// If it's all uppercase, try to find a canonical form
	if normalized == strings.ToUpper(normalized) && len(normalized) > 1 {
		lowerCanonical, ok := skillNormalizations[lower]
		if ok {
			return lowerCanonical
		}
		// For all-caps single words that aren't acronyms, capitalize first letter only
		if !strings.Contains(lower, " ") {
			return strings.ToUpper(normalized[:1]) + strings.ToLower(normalized[1:])
		}
	}

	// For skills starting with lowercase, capitalize first letter if it's a single word
	if normalized != strings.ToUpper(normalized) && normalized != strings.ToLower(normalized) {
		// Already has mixed case, return as-is
		return normalized
	}

	// If all lowercase and single word, capitalize first letter
	if normalized == strings.ToLower(normalized) && !strings.Contains(normalized, " ") && len(normalized) > 0 {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// NormalizeSkills canonicalizes skill names and drops empty and duplicate entries,
// keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, skill := range skills {
		normalized := NormalizeSkillName(skill)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, normalized)
	}
	return out
}

// enumToken lowercases an enum value and joins words with underscores.
func enumToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(value)
	return strings.Trim(value, "_")
}

var categorySynonyms = map[string]types.Category{
	"required":       types.CategoryRequired,
	"requirement":    types.CategoryRequired,
	"must_have":      types.CategoryRequired,
	"must":           types.CategoryRequired,
	"mandatory":      types.CategoryRequired,
	"minimum":        types.CategoryRequired,
	"basic":          types.CategoryRequired,
	"preferred":      types.CategoryPreferred,
	"should_have":    types.CategoryPreferred,
	"desired":        types.CategoryPreferred,
	"preferred_qual": types.CategoryPreferred,
	"nice_to_have":   types.CategoryNiceToHave,
	"nice_to_haves":  types.CategoryNiceToHave,
	"nice":           types.CategoryNiceToHave,
	"bonus":          types.CategoryNiceToHave,
	"optional":       types.CategoryNiceToHave,
	"plus":           types.CategoryNiceToHave,
}

var importanceSynonyms = map[string]types.Importance{
	"critical":  types.ImportanceCritical,
	"essential": types.ImportanceCritical,
	"very_high": types.ImportanceCritical,
	"high":      types.ImportanceHigh,
	"important": types.ImportanceHigh,
	"medium":    types.ImportanceMedium,
	"moderate":  types.ImportanceMedium,
	"normal":    types.ImportanceMedium,
	"low":       types.ImportanceLow,
	"minor":     types.ImportanceLow,
}

var typeSynonyms = map[string]types.RequirementType{
	"technical_skill":     types.TypeTechnicalSkill,
	"technical":           types.TypeTechnicalSkill,
	"hard_skill":          types.TypeTechnicalSkill,
	"skill":               types.TypeTechnicalSkill,
	"language":            types.TypeTechnicalSkill,
	"soft_skill":          types.TypeSoftSkill,
	"soft":                types.TypeSoftSkill,
	"interpersonal":       types.TypeSoftSkill,
	"experience":          types.TypeExperience,
	"years_of_experience": types.TypeExperience,
	"domain":              types.TypeExperience,
	"education":           types.TypeEducation,
	"degree":              types.TypeEducation,
	"certification":       types.TypeCertification,
	"certificate":         types.TypeCertification,
	"license":             types.TypeCertification,
	"tool":                types.TypeTool,
	"tools":               types.TypeTool,
	"technology":          types.TypeTool,
	"platform":            types.TypeTool,
	"framework":           types.TypeTool,
	"other":               types.TypeOther,
}

// NormalizeCategory maps a category spelling to its canonical value. Unknown
// values are returned as their normalized token and fail validation later.
func NormalizeCategory(value string) types.Category {
	token := enumToken(value)
	if c, ok := categorySynonyms[token]; ok {
		return c
	}
	return types.Category(token)
}

// NormalizeImportance maps an importance spelling to its canonical value.
func NormalizeImportance(value string) types.Importance {
	token := enumToken(value)
	if i, ok := importanceSynonyms[token]; ok {
		return i
	}
	return types.Importance(token)
}

// NormalizeRequirementType maps a type spelling to its canonical value.
// Any other non-empty type becomes "other".
func NormalizeRequirementType(value string) types.RequirementType {
	token := enumToken(value)
	if t, ok := typeSynonyms[token]; ok {
		return t
	}
	if token == "" {
		return ""
	}
	return types.TypeOther
}
