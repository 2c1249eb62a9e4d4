package rebuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/question"
	"github.com/fumiama/go-docx"
)

// DocxOptions controls where WriteDocx may read figure images from.
type DocxOptions struct {
	// BaseDir confines image reads. Relative image paths are also tried under it.
	BaseDir string
	// TrustPaths reads image paths wherever they point. Only for local use.
	TrustPaths bool
}

// WriteDocx writes the records as a Word document, with each figure's image
// inlined where its placeholder stood. Figures without a readable image, or
// whose image lies outside opts.BaseDir, fall back to their text.
func WriteDocx(w io.Writer, recs []question.Record, opts DocxOptions) error {
	doc := docx.New().WithDefaultTheme()

	for i, rec := range recs {
		if i > 0 {
			doc.AddParagraph()
		}
		head := doc.AddParagraph()
		head.AddText("Question " + rec.QuestionID).Bold().Size("28")
		if rec.Error != "" {
			doc.AddParagraph().AddText("Error: " + rec.Error)
			continue
		}
		if rec.Domain != "" || rec.Skill != "" {
			doc.AddParagraph().AddText(strings.Trim(rec.Domain+" / "+rec.Skill, " /"))
		}

		figs := make(map[int]figure.Record, len(rec.Figures))
		for _, f := range rec.Figures {
			figs[f.Index] = f
		}

		if rec.PromptText != "" {
			addFigureText(doc.AddParagraph(), rec.PromptText, figs, opts)
		}
		addFigureText(doc.AddParagraph(), rec.QuestionText, figs, opts)
		for j, c := range rec.AnswerChoices {
			p := doc.AddParagraph()
			p.AddText(fmt.Sprintf("%c. ", 'A'+j))
			addFigureText(p, c, figs, opts)
		}
		if rec.CorrectAnswer != "" {
			doc.AddParagraph().AddText("Correct Answer: " + rec.CorrectAnswer).Bold()
		}
		if rec.Rationale != "" {
			addFigureText(doc.AddParagraph(), rec.Rationale, figs, opts)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addFigureText(p *docx.Paragraph, text string, figs map[int]figure.Record, opts DocxOptions) {
	segments, indices := figure.SplitPlaceholders(text)
	for i, seg := range segments {
		if seg != "" {
			p.AddText(seg)
		}
		if i >= len(indices) {
			break
		}
		f, ok := figs[indices[i]]
		if !ok {
			p.AddText(figure.Placeholder(indices[i]))
			continue
		}
		if pic := readImage(f, opts); pic != nil {
			if _, err := p.AddInlineDrawing(pic); err == nil {
				continue
			}
		}
		p.AddText(f.TextContent)
	}
}

func readImage(f figure.Record, opts DocxOptions) []byte {
	if !f.HasImage() {
		return nil
	}
	p := *f.ImagePath
	candidates := []string{p}
	if !filepath.IsAbs(p) && opts.BaseDir != "" {
		candidates = append(candidates,
			filepath.Join(opts.BaseDir, p),
			filepath.Join(opts.BaseDir, "images", filepath.Base(p)))
	}
	for _, c := range candidates {
		if !opts.TrustPaths && !within(opts.BaseDir, c) {
			continue
		}
		if b, err := os.ReadFile(c); err == nil {
			return b
		}
	}
	return nil
}

// within reports whether p resolves to a file under dir, following symlinks.
func within(dir, p string) bool {
	if dir == "" {
		return false
	}
	root, err := resolve(dir)
	if err != nil {
		return false
	}
	target, err := resolve(p)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
