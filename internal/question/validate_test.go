package question

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/figgest/internal/figure"
)

func validRecord() Record {
	return Record{
		QuestionID:    "q1",
		QuestionText:  "Find {{FIG_1}}.",
		AnswerChoices: []string{"A. {{FIG_2}}", "B. 3"},
		HasFigure:     true,
		Figures: []figure.Record{
			{Kind: figure.KindEquation, Index: 1, Placeholder: "{{FIG_1}}"},
			{Kind: figure.KindGraphSimple, Index: 2, Placeholder: "{{FIG_2}}"},
		},
	}
}

func TestValidate_ValidPasses(t *testing.T) {
	if problems := Validate(validRecord()); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidate_ErroredRecordSkipped(t *testing.T) {
	if problems := Validate(Failed("q1", errors.New("boom"))); problems != nil {
		t.Errorf("expected nil for errored record, got %v", problems)
	}
}

func TestValidate_AssembledRecordPasses(t *testing.T) {
	rec, err := testAssembler().AssembleMarkup(strings.NewReader(dialog), "", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if problems := Validate(rec); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidate_DanglingPlaceholder(t *testing.T) {
	rec := validRecord()
	rec.Rationale = "See {{FIG_7}}."
	assertProblem(t, Validate(rec), "placeholder {{FIG_7}} has no figure")
}

func TestValidate_UnreferencedFigure(t *testing.T) {
	rec := validRecord()
	rec.AnswerChoices[0] = "A. 2"
	assertProblem(t, Validate(rec), "figure 2 is never referenced")
}

func TestValidate_RepeatedPlaceholder(t *testing.T) {
	rec := validRecord()
	rec.PromptText = "{{FIG_1}}"
	assertProblem(t, Validate(rec), "placeholder {{FIG_1}} appears 2 times")
}

func TestValidate_PlaceholderMismatch(t *testing.T) {
	rec := validRecord()
	rec.Figures[1].Placeholder = "{{FIG_3}}"
	assertProblem(t, Validate(rec), "figure 2: placeholder")
}

func TestValidate_DuplicateIndex(t *testing.T) {
	rec := validRecord()
	rec.Figures[1].Index = 1
	assertProblem(t, Validate(rec), "figure 1: duplicate index")
}

func TestValidate_GapInIndices(t *testing.T) {
	rec := validRecord()
	rec.QuestionText = "Find {{FIG_1}}."
	rec.AnswerChoices[0] = "A. {{FIG_3}}"
	rec.Figures[1].Index = 3
	rec.Figures[1].Placeholder = "{{FIG_3}}"
	assertProblem(t, Validate(rec), "not contiguous")
}

func TestValidate_HasFigureFlag(t *testing.T) {
	rec := validRecord()
	rec.HasFigure = false
	assertProblem(t, Validate(rec), "has_figure")
}

func TestValidate_InvalidKind(t *testing.T) {
	rec := validRecord()
	rec.Figures[0].Kind = figure.Kind(99)
	assertProblem(t, Validate(rec), "invalid type 99")
}

func assertProblem(t *testing.T, problems []string, want string) {
	t.Helper()
	for _, p := range problems {
		if strings.Contains(p, want) {
			return
		}
	}
	t.Errorf("expected a problem containing %q, got %v", want, problems)
}
