// Package question turns a question's markup into a Record: region text with
// figure placeholders plus the extracted figures.
package question

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

// Assembler processes one question at a time. It holds no per-question
// state and is safe to share between goroutines.
type Assembler struct {
	collector *figure.Collector
	log       *slog.Logger
}

func NewAssembler(collector *figure.Collector, log *slog.Logger) *Assembler {
	return &Assembler{collector: collector, log: log}
}

// AssembleMarkup parses a question dialog and assembles it. questionID
// overrides the id found in the markup; with neither, the id is derived from
// the markup's content hash.
func (a *Assembler) AssembleMarkup(r io.Reader, questionID, outDir string) (Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("read markup: %w", err)
	}
	doc, err := markup.ParseString(string(raw))
	if err != nil {
		return Record{}, err
	}
	regions, meta, err := Locate(doc)
	if err != nil {
		return Record{}, err
	}
	if questionID != "" {
		meta.QuestionID = questionID
	}
	if meta.QuestionID == "" {
		sum := sha256.Sum256(raw)
		meta.QuestionID = fmt.Sprintf("unknown_%x", sum[:4])
	}
	return a.Assemble(regions, meta, outDir), nil
}

// Assemble runs the regions in fixed order (prompt, question, choices,
// rationale) with one running figure index, so the placeholder numbers in
// the text match the figure indices in the record.
func (a *Assembler) Assemble(regions Regions, meta Meta, outDir string) Record {
	log := a.log.With("question_id", meta.QuestionID)
	rec := Record{
		QuestionID:    meta.QuestionID,
		Assessment:    meta.Assessment,
		Section:       meta.Section,
		Domain:        meta.Domain,
		Skill:         meta.Skill,
		Difficulty:    meta.Difficulty,
		CorrectAnswer: meta.CorrectAnswer,
		AnswerChoices: []string{},
		Figures:       []figure.Record{},
	}

	next := 1
	rec.PromptText, next = a.region(log, &rec, figure.RegionPrompt, regions.Prompt, outDir, next)
	rec.QuestionText, next = a.region(log, &rec, figure.RegionQuestion, regions.Question, outDir, next)

	start := next
	for _, choice := range regions.Choices {
		var text string
		text, next = figure.Rewrite(choice, next)
		rec.AnswerChoices = append(rec.AnswerChoices, text)
	}
	figs, after := a.collector.Collect(regions.Choices, figure.RegionChoices, meta.QuestionID, outDir, start)
	next = a.reconcile(log, figure.RegionChoices, next, after)
	rec.Figures = append(rec.Figures, figs...)

	rec.Rationale, _ = a.region(log, &rec, figure.RegionRationale, regions.Rationale, outDir, next)

	rec.HasFigure = len(rec.Figures) > 0
	log.Info("question assembled", "figures", len(rec.Figures))
	return rec
}

// region rewrites one region's text and collects its figures from the same
// starting index.
func (a *Assembler) region(log *slog.Logger, rec *Record, region figure.Region, n *html.Node, outDir string, start int) (string, int) {
	if n == nil {
		return "", start
	}
	text, next := figure.Rewrite(n, start)
	figs, after := a.collector.Collect([]*html.Node{n}, region, rec.QuestionID, outDir, start)
	rec.Figures = append(rec.Figures, figs...)
	return text, a.reconcile(log, region, next, after)
}

// reconcile guards the placeholder/record alignment. Both passes select the
// same nodes, so a mismatch means the selection is no longer deterministic.
func (a *Assembler) reconcile(log *slog.Logger, region figure.Region, rewritten, collected int) int {
	if rewritten != collected {
		log.Error("placeholder and figure counts diverged",
			"region", string(region), "placeholders_next", rewritten, "figures_next", collected)
	}
	return max(rewritten, collected)
}
