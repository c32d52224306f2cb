package model

// ContentItem is a single insight card produced by the search + LLM pipeline.
// The serving layer treats it as an immutable value: only URL is inspected
// (news dedup) and only slice length matters for pagination.
type ContentItem struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Impact    string         `json:"impact,omitempty"`
	Prompt    string         `json:"prompt,omitempty"`
	URL       string         `json:"url"`
	Source    string         `json:"source_name,omitempty"`
	Tags      []string       `json:"tags"`
	Timestamp string         `json:"timestamp"`
	Extra     map[string]any `json:"extra,omitempty"`
}
