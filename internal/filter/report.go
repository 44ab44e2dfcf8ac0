package filter

// SkippedRule is a stored rule that could not be used for a run.
type SkippedRule struct {
	Rule   string `yaml:"rule" json:"rule"`
	Reason string `yaml:"reason" json:"reason"`
}

// NumberedText is a matched text with its 1-based display position.
type NumberedText struct {
	Index int    `yaml:"index" json:"index"`
	Text  string `yaml:"text" json:"text"`
}

// Report summarises one filtering run.
type Report struct {
	// OriginalLines is the number of input lines, blank ones included.
	OriginalLines int `yaml:"original_lines" json:"original_lines"`
	// RetainedLines is the number of lines kept after rule and blank-line removal.
	RetainedLines int `yaml:"retained_lines" json:"retained_lines"`
	// Hits maps each rule that matched at least once to the number of lines it matched.
	Hits map[string]int `yaml:"hits" json:"hits"`
	// HitOrder lists the keys of Hits in the order they first matched.
	HitOrder []string `yaml:"hit_order" json:"hit_order"`
	// MatchedTexts holds the distinct trimmed texts of matched lines, sorted ascending.
	MatchedTexts []string `yaml:"matched_texts" json:"matched_texts"`
	// Skipped lists stored rules dropped from this run.
	Skipped []SkippedRule `yaml:"skipped,omitempty" json:"skipped,omitempty"`
}

func newReport() *Report {
	return &Report{
		Hits:         make(map[string]int),
		HitOrder:     []string{},
		MatchedTexts: []string{},
	}
}

// MatchedRules returns the rules that matched at least once, in first-hit order.
func (r *Report) MatchedRules() []string {
	return r.HitOrder
}

// HitCount returns how many lines rule matched.
func (r *Report) HitCount(rule string) int {
	return r.Hits[rule]
}

// Enumerated returns MatchedTexts numbered from 1.
func (r *Report) Enumerated() []NumberedText {
	out := make([]NumberedText, len(r.MatchedTexts))
	for i, text := range r.MatchedTexts {
		out[i] = NumberedText{Index: i + 1, Text: text}
	}
	return out
}

// RemovedLines returns how many input lines did not make it to the output.
func (r *Report) RemovedLines() int {
	return r.OriginalLines - r.RetainedLines
}
