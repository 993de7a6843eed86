package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "paragraph", input: "<p>We build things</p>", want: true},
		{name: "list with attributes", input: `<ul class="reqs"><li>Go</li></ul>`, want: true},
		{name: "plain text", input: "5+ years of Go", want: false},
		{name: "comparison operators", input: "latency < 10ms and throughput > 1k", want: false},
		{name: "c++ generic", input: "std::vector<int> experience", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeHTML(tt.input))
		})
	}
}

func TestStripHTML_ListsAndBlocks(t *testing.T) {
	html := `<html><head><style>.x{color:red}</style></head><body>
<h2>Requirements</h2>
<ul><li>5+ years of Go</li><li>PostgreSQL &amp; Redis</li></ul>
<p>Nice to have:<br>Kubernetes</p>
<script>track()</script>
</body></html>`

	text, err := StripHTML(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Requirements")
	assert.Contains(t, text, "- 5+ years of Go")
	assert.Contains(t, text, "- PostgreSQL & Redis")
	assert.Contains(t, text, "Nice to have:\nKubernetes")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "color:red")
}

func TestStripHTML_Fragment(t *testing.T) {
	text, err := StripHTML("<div><strong>Go</strong> developer</div>")
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)
}
