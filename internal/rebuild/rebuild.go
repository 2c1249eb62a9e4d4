// Package rebuild reconstructs full question text from assembled records by
// substituting each placeholder with a text, markdown or HTML rendering of
// its figure.
package rebuild

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/question"
	"github.com/yuin/goldmark"
)

// Mode selects how figures are rendered back into text.
type Mode string

const (
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeHTML     Mode = "html"
	ModeDocx     Mode = "docx"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeText, ModeMarkdown, ModeHTML, ModeDocx:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode %q: use text, markdown, html or docx", s)
}

// Question is a reconstructed question.
type Question struct {
	QuestionID    string   `json:"question_id" yaml:"question_id"`
	Assessment    string   `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Section       string   `json:"section,omitempty" yaml:"section,omitempty"`
	Domain        string   `json:"domain,omitempty" yaml:"domain,omitempty"`
	Skill         string   `json:"skill,omitempty" yaml:"skill,omitempty"`
	Difficulty    int      `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Prompt        string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Question      string   `json:"question,omitempty" yaml:"question,omitempty"`
	Choices       []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty" yaml:"correct_answer,omitempty"`
	Rationale     string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	FigureCount   int      `json:"figure_count" yaml:"figure_count"`
	FigureTypes   []string `json:"figure_types" yaml:"figure_types"`
	Error         string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Rebuild reconstructs one record. Docx is a document-level mode; use WriteDocx.
func Rebuild(rec question.Record, mode Mode) (Question, error) {
	if rec.Error != "" {
		return Question{QuestionID: rec.QuestionID, Error: rec.Error, FigureTypes: []string{}}, nil
	}
	if mode == ModeDocx {
		return Question{}, fmt.Errorf("docx mode rebuilds whole documents")
	}

	figs := make(map[int]figure.Record, len(rec.Figures))
	types := map[string]bool{}
	for _, f := range rec.Figures {
		figs[f.Index] = f
		types[f.Kind.String()] = true
	}

	render := func(text string) (string, error) { return replaceFigures(text, figs, mode) }

	q := Question{
		QuestionID:    rec.QuestionID,
		Assessment:    rec.Assessment,
		Section:       rec.Section,
		Domain:        rec.Domain,
		Skill:         rec.Skill,
		Difficulty:    rec.Difficulty,
		CorrectAnswer: rec.CorrectAnswer,
		FigureCount:   len(rec.Figures),
		FigureTypes:   make([]string, 0, len(types)),
	}
	for t := range types {
		q.FigureTypes = append(q.FigureTypes, t)
	}
	sort.Strings(q.FigureTypes)

	var err error
	if q.Prompt, err = render(rec.PromptText); err != nil {
		return Question{}, err
	}
	if q.Question, err = render(rec.QuestionText); err != nil {
		return Question{}, err
	}
	for _, c := range rec.AnswerChoices {
		s, err := render(c)
		if err != nil {
			return Question{}, err
		}
		q.Choices = append(q.Choices, s)
	}
	if q.Rationale, err = render(rec.Rationale); err != nil {
		return Question{}, err
	}
	return q, nil
}

// All rebuilds every record. A record that fails is reported in place.
func All(recs []question.Record, mode Mode) []Question {
	out := make([]Question, 0, len(recs))
	for _, r := range recs {
		q, err := Rebuild(r, mode)
		if err != nil {
			q = Question{QuestionID: r.QuestionID, Error: err.Error(), FigureTypes: []string{}}
		}
		out = append(out, q)
	}
	return out
}

// TypeCounts counts, per figure type, the rebuilt questions containing it.
func TypeCounts(qs []Question) map[string]int {
	counts := map[string]int{}
	for _, q := range qs {
		for _, t := range q.FigureTypes {
			counts[t]++
		}
	}
	return counts
}

func replaceFigures(text string, figs map[int]figure.Record, mode Mode) (string, error) {
	if text == "" {
		return "", nil
	}
	segments, indices := figure.SplitPlaceholders(text)
	var sb strings.Builder
	for i, seg := range segments {
		if mode == ModeText {
			sb.WriteString(seg)
		} else {
			sb.WriteString(escapeMarkdown(seg))
		}
		if i >= len(indices) {
			break
		}
		f, ok := figs[indices[i]]
		if !ok {
			// Keep tokens with no matching figure visible.
			sb.WriteString(figure.Placeholder(indices[i]))
			continue
		}
		switch mode {
		case ModeText:
			sb.WriteString(f.TextContent)
		default:
			sb.WriteString(markdownImage(f))
		}
	}
	out := sb.String()
	if mode != ModeHTML {
		return out, nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(out), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func markdownImage(f figure.Record) string {
	alt := strings.ReplaceAll(f.TextContent, `"`, "'")
	alt = escapeMarkdown(strings.ReplaceAll(alt, "\n", " "))
	path := ""
	if f.ImagePath != nil {
		path = *f.ImagePath
	}
	return fmt.Sprintf("![%s](<%s>)", alt, path)
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "!", `\!`, "#", `\#`, "|", `\|`,
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
