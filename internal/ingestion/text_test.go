package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "whitespace only", input: "   \n \t\n  ", want: ""},
		{name: "headings keep markers", input: "  # Title   \n## Subtitle\nBody", want: "# Title\n## Subtitle\nBody"},
		{name: "bullets keep indentation", input: "- Go\n   * Go (5+ years)\n• Rust", want: "- Go\n   * Go (5+ years)\n• Rust"},
		{name: "inner whitespace collapses", input: "Build   reliable\t\tservices", want: "Build reliable services"},
		{name: "indented prose keeps indent", input: "Header\n    Indented   line", want: "Header\n    Indented line"},
		{name: "blank runs collapse", input: "Line 1\n\n\n\n\nLine 2", want: "Line 1\n\nLine 2"},
		{name: "line endings normalize", input: "a\r\nb\rc\nd", want: "a\nb\nc\nd"},
		{name: "unicode survives", input: "émojis 🚀  and   spéciàl", want: "émojis 🚀 and spéciàl"},
		{
			name:  "posting",
			input: "# Senior Engineer\n\n\n\n## Responsibilities   \n- Go experience\r\nBuild   reliable   services",
			want:  "# Senior Engineer\n\n## Responsibilities\n- Go experience\nBuild reliable services",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanText(got), "cleaning is idempotent")
		})
	}
}

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	content := "Jane Doe\r\n\n\n\nEXPERIENCE   \n  - Built things"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "file not found")
}
