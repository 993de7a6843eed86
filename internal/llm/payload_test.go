package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayload_Items(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		keys      []string
		wantShape Shape
		wantLen   int
	}{
		{"bare array", `[{"a":1},{"a":2}]`, []string{"requirements"}, ShapeArray, 2},
		{"wrapped under expected key", `{"requirements":[{"a":1}],"notes":"x"}`, []string{"requirements"}, ShapeObject, 1},
		{"wrapped under other key", `{"items":[{"a":1},{"a":2},{"a":3}]}`, []string{"requirements"}, ShapeObject, 3},
		{"double wrapped", `{"data":{"requirements":[{"a":1}]}}`, []string{"requirements"}, ShapeObject, 1},
		{"null list", `{"requirements":null}`, []string{"requirements"}, ShapeObject, 0},
		{"single object", `{"text":"Go","category":"required"}`, []string{"requirements"}, ShapeObject, 1},
		{"fenced array", "```json\n[1,2,3]\n```", nil, ShapeArray, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, p.Shape)
			assert.Len(t, p.Items(tt.keys...), tt.wantLen)
		})
	}
}

func TestParsePayload_ItemsOf(t *testing.T) {
	verdictFields := []string{"requirement_id", "match_strength"}
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantField string
	}{
		{"bare item with one array field", `{"requirement_id":"r0","match_strength":"strong","resume_matches":[{"bullet_id":"b0"},{"bullet_id":"b1"}]}`, 1, "requirement_id"},
		{"wrapped bare item", `{"match":{"requirement_id":"r0","resume_matches":[{"bullet_id":"b0"}]}}`, 1, "requirement_id"},
		{"list under expected key", `{"matches":[{"requirement_id":"r0"},{"requirement_id":"r1"}]}`, 2, "requirement_id"},
		{"list under other key", `{"verdicts":[{"requirement_id":"r0"},{"requirement_id":"r1"}]}`, 2, "requirement_id"},
		{"bare array", `[{"requirement_id":"r0"}]`, 1, "requirement_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.input)
			require.NoError(t, err)
			items := p.ItemsOf(verdictFields, "matches")
			require.Len(t, items, tt.wantLen)

			var first map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(items[0], &first))
			assert.Contains(t, first, tt.wantField)
		})
	}
}

func TestParsePayload_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "not json", `{"a":`, `[1,`} {
		_, err := ParsePayload(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestPayload_Decode(t *testing.T) {
	type doc struct {
		Summary string `json:"summary"`
	}

	tests := []struct {
		name  string
		input string
		keys  []string
	}{
		{"object", `{"summary":"hi"}`, nil},
		{"array of one", `[{"summary":"hi"}]`, nil},
		{"wrapped", `{"resume":{"summary":"hi"}}`, []string{"resume"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePayload(tt.input)
			require.NoError(t, err)
			var d doc
			require.NoError(t, p.Decode(&d, tt.keys...))
			assert.Equal(t, "hi", d.Summary)
		})
	}

	p, err := ParsePayload(`[]`)
	require.NoError(t, err)
	var d doc
	assert.Error(t, p.Decode(&d))
}

func TestPayload_ItemsAreRawElements(t *testing.T) {
	p, err := ParsePayload(`{"requirements":[{"text":"Go"}]}`)
	require.NoError(t, err)

	var item struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(p.Items("requirements")[0], &item))
	assert.Equal(t, "Go", item.Text)
}

func TestSchemaHint_Instructions(t *testing.T) {
	hint := SchemaHint{
		Name:    "Requirements",
		ListKey: "requirements",
		Fields: []SchemaField{
			{Name: "text", Type: `"string"`, Required: true},
			{Name: "category", Type: `"required" | "preferred"`, Description: "how strongly it is demanded"},
		},
	}

	out := hint.Instructions()
	assert.Contains(t, out, `"requirements": [`)
	assert.Contains(t, out, `"text": "string" (required),`)
	assert.Contains(t, out, `// how strongly it is demanded`)
	assert.Contains(t, out, "Return ONLY the JSON")
}
