package figure

import (
	"regexp"
	"strconv"
)

// Region is one of the four structural parts of a question.
type Region string

const (
	RegionPrompt    Region = "prompt"
	RegionQuestion  Region = "question"
	RegionChoices   Region = "choices"
	RegionRationale Region = "rationale"
)

// Record is the extracted, machine-usable form of one figure.
type Record struct {
	Kind           Kind           `json:"type" yaml:"type"`
	Region         Region         `json:"region" yaml:"region"`
	Index          int            `json:"figure_index" yaml:"figure_index"`
	Placeholder    string         `json:"placeholder" yaml:"placeholder"`
	TextContent    string         `json:"text_content" yaml:"text_content"`
	ImagePath      *string        `json:"image_path" yaml:"image_path"`
	StructuredData map[string]any `json:"structured_data" yaml:"structured_data"`
	RawMarkup      string         `json:"raw_markup,omitempty" yaml:"raw_markup,omitempty"`
}

// HasImage reports whether an image was persisted for the record.
func (r Record) HasImage() bool {
	return r.ImagePath != nil && *r.ImagePath != ""
}

// Placeholder is the inert token standing in for figure n in rewritten text.
func Placeholder(n int) string {
	return "{{FIG_" + strconv.Itoa(n) + "}}"
}

var placeholderRe = regexp.MustCompile(`\{\{FIG_(\d+)\}\}`)

// PlaceholderIndices returns the figure indices referenced in text, in order
// of appearance.
func PlaceholderIndices(text string) []int {
	var out []int
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// SplitPlaceholders cuts text around placeholder tokens. It returns the prose
// segments and the indices between them; len(segments) == len(indices)+1.
func SplitPlaceholders(text string) (segments []string, indices []int) {
	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		segments = append(segments, text[last:loc[0]])
		indices = append(indices, n)
		last = loc[1]
	}
	segments = append(segments, text[last:])
	return segments, indices
}

func strPtr(s string) *string { return &s }
