package ingestion

import "time"

// Metadata records how a job posting's text was prepared for extraction.
type Metadata struct {
	Source       string    `json:"source,omitempty"`
	PreparedAt   time.Time `json:"prepared_at"`
	Hash         string    `json:"hash"`
	Runes        int       `json:"runes"`
	Chunks       int       `json:"chunks"`
	Truncated    bool      `json:"truncated"`
	StrippedHTML bool      `json:"stripped_html"`
}

// Describe summarizes prepared job text. source names where the text came
// from (a file path or URL) and may be empty.
func Describe(prepared PreparedJob, source string) Metadata {
	return Metadata{
		Source:       source,
		PreparedAt:   time.Now().UTC().Truncate(time.Second),
		Hash:         prepared.Hash,
		Runes:        len([]rune(prepared.Text)),
		Chunks:       len(prepared.Chunks),
		Truncated:    prepared.Truncated,
		StrippedHTML: prepared.StrippedHTML,
	}
}
