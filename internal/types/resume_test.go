package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() *StructuredResume {
	return &StructuredResume{
		Summary: "Backend engineer focused on distributed systems",
		Experience: []ExperienceEntry{
			{Title: "Senior Engineer", Company: "Acme", Bullets: []string{"Built Go services", "  ", "Led migration to Kubernetes"}},
			{Title: "Engineer", Company: "Globex", Bullets: nil},
		},
		Education: []EducationEntry{
			{Degree: "BSc", Institution: "State University", Field: "Computer Science"},
		},
		Skills:  []string{"Go", "PostgreSQL"},
		RawText: "raw",
	}
}

func TestStructuredResume_Sections(t *testing.T) {
	sections := sampleResume().Sections()
	require.Len(t, sections, 4)

	assert.Equal(t, SectionSummary, sections[0].Name)
	assert.Equal(t, SectionExperience, sections[1].Name)
	assert.Equal(t, SectionEducation, sections[2].Name)
	assert.Equal(t, SectionSkills, sections[3].Name)

	// Entries without bullets are dropped, blank bullets trimmed away
	require.Len(t, sections[1].Entries, 1)
	assert.Equal(t, "Senior Engineer @ Acme", sections[1].Entries[0].Context)
	assert.Equal(t, []string{"Built Go services", "Led migration to Kubernetes"}, sections[1].Entries[0].Bullets)

	// Education without details falls back to its label
	assert.Equal(t, "BSc, State University", sections[2].Entries[0].Context)
	assert.Equal(t, []string{"BSc in Computer Science"}, sections[2].Entries[0].Bullets)
}

func TestStructuredResume_HasSubsection(t *testing.T) {
	r := sampleResume()

	tests := []struct {
		name       string
		section    string
		subsection string
		want       bool
	}{
		{"section only", SectionExperience, "", true},
		{"known role", SectionExperience, "senior engineer @ acme", true},
		{"role without bullets", SectionExperience, "Engineer @ Globex", false},
		{"unknown section", SectionProjects, "", false},
		{"skills", SectionSkills, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.HasSubsection(tt.section, tt.subsection))
		})
	}
}

func TestStructuredResume_IsMinimal(t *testing.T) {
	assert.True(t, (&StructuredResume{RawText: "anything"}).IsMinimal())
	assert.False(t, sampleResume().IsMinimal())

	var nilResume *StructuredResume
	assert.Nil(t, nilResume.Sections())
}
