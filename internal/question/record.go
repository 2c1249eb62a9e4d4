package question

import (
	"encoding/json"

	"github.com/dgallion1/figgest/internal/figure"
)

// Record is one fully processed question: rewritten text per region plus the
// merged, index-ordered figure list.
type Record struct {
	QuestionID    string          `json:"question_id" yaml:"question_id"`
	Assessment    string          `json:"assessment" yaml:"assessment"`
	Section       string          `json:"section" yaml:"section"`
	Domain        string          `json:"domain" yaml:"domain"`
	Skill         string          `json:"skill" yaml:"skill"`
	Difficulty    int             `json:"difficulty" yaml:"difficulty"`
	PromptText    string          `json:"prompt_text" yaml:"prompt_text"`
	QuestionText  string          `json:"question_text" yaml:"question_text"`
	AnswerChoices []string        `json:"answer_choices" yaml:"answer_choices"`
	CorrectAnswer string          `json:"correct_answer" yaml:"correct_answer"`
	Rationale     string          `json:"rationale" yaml:"rationale"`
	HasFigure     bool            `json:"has_figure" yaml:"has_figure"`
	Figures       []figure.Record `json:"figures" yaml:"figures"`

	// Error is set when the question could not be processed; the other
	// fields are then meaningless and are not serialized.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed builds the record for a question that could not be processed.
func Failed(questionID string, err error) Record {
	return Record{QuestionID: questionID, Error: err.Error()}
}

type failedRecord struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Error      string `json:"error" yaml:"error"`
}

// recordFields breaks the MarshalJSON recursion.
type recordFields Record

func (r Record) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(failedRecord{QuestionID: r.QuestionID, Error: r.Error})
	}
	f := recordFields(r)
	if f.AnswerChoices == nil {
		f.AnswerChoices = []string{}
	}
	if f.Figures == nil {
		f.Figures = []figure.Record{}
	}
	return json.Marshal(f)
}

func (r Record) MarshalYAML() (any, error) {
	if r.Error != "" {
		return failedRecord{QuestionID: r.QuestionID, Error: r.Error}, nil
	}
	return recordFields(r), nil
}

// FigureByIndex returns the figure with the given index.
func (r Record) FigureByIndex(n int) (figure.Record, bool) {
	for _, f := range r.Figures {
		if f.Index == n {
			return f, true
		}
	}
	return figure.Record{}, false
}

// Texts returns every rewritten text field in region order.
func (r Record) Texts() []string {
	out := []string{r.PromptText, r.QuestionText}
	out = append(out, r.AnswerChoices...)
	return append(out, r.Rationale)
}
