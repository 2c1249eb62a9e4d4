package rebuild

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/figgest/internal/figure"
	"github.com/dgallion1/figgest/internal/question"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func sampleRecord() question.Record {
	return question.Record{
		QuestionID:    "3f2a9b1c",
		Domain:        "Algebra",
		Skill:         "Linear functions",
		Difficulty:    2,
		QuestionText:  "What is {{FIG_1}} when x_1 = 2?",
		AnswerChoices: []string{"A. {{FIG_2}}", "B. 4"},
		CorrectAnswer: "A",
		Rationale:     "See {{FIG_9}}.",
		HasFigure:     true,
		Figures: []figure.Record{
			{Kind: figure.KindEquation, Region: figure.RegionQuestion, Index: 1, Placeholder: "{{FIG_1}}", TextContent: "f(x)", ImagePath: strp("out/3f2a9b1c_equation_1.png")},
			{Kind: figure.KindGraphSimple, Region: figure.RegionChoices, Index: 2, Placeholder: "{{FIG_2}}", TextContent: "Graph of a line"},
		},
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"text", "Markdown", " html ", "DOCX"} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseMode("pdf")
	assert.Error(t, err)
}

func TestRebuild_Text(t *testing.T) {
	q, err := Rebuild(sampleRecord(), ModeText)
	require.NoError(t, err)

	assert.Equal(t, "What is f(x) when x_1 = 2?", q.Question)
	assert.Equal(t, []string{"A. Graph of a line", "B. 4"}, q.Choices)
	assert.Equal(t, "See {{FIG_9}}.", q.Rationale, "unknown placeholders stay visible")
	assert.Equal(t, 2, q.FigureCount)
	assert.Equal(t, []string{"equation", "graph-simple"}, q.FigureTypes)
	assert.Equal(t, "Algebra", q.Domain)
	assert.Empty(t, q.Prompt)
}

func TestRebuild_Markdown(t *testing.T) {
	q, err := Rebuild(sampleRecord(), ModeMarkdown)
	require.NoError(t, err)

	assert.Equal(t, `What is ![f(x)](<out/3f2a9b1c_equation_1.png>) when x\_1 = 2?`, q.Question)
	assert.Equal(t, "A. ![Graph of a line](<>)", q.Choices[0])
}

func TestRebuild_HTML(t *testing.T) {
	q, err := Rebuild(sampleRecord(), ModeHTML)
	require.NoError(t, err)

	assert.Equal(t, `<p>What is <img src="out/3f2a9b1c_equation_1.png" alt="f(x)"> when x_1 = 2?</p>`, q.Question)
	assert.Equal(t, "<p>B. 4</p>", q.Choices[1])
}

func TestRebuild_ErroredPassThrough(t *testing.T) {
	q, err := Rebuild(question.Failed("bad1", errors.New("no question regions found")), ModeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "bad1", q.QuestionID)
	assert.Equal(t, "no question regions found", q.Error)
	assert.Empty(t, q.Question)
	assert.Equal(t, []string{}, q.FigureTypes)
}

func TestRebuild_DocxIsDocumentLevel(t *testing.T) {
	_, err := Rebuild(sampleRecord(), ModeDocx)
	assert.Error(t, err)
}

func TestAllAndTypeCounts(t *testing.T) {
	second := sampleRecord()
	second.QuestionID = "other"
	second.Figures = second.Figures[:1]

	qs := All([]question.Record{sampleRecord(), second, question.Failed("x", errors.New("boom"))}, ModeText)
	require.Len(t, qs, 3)
	assert.Equal(t, "boom", qs[2].Error)
	assert.Equal(t, map[string]int{"equation": 2, "graph-simple": 1}, TypeCounts(qs))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, f.Close())
}

// readDocx returns the document body and the number of embedded media files.
func readDocx(t *testing.T, data []byte) (string, int) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var body string
	var media int
	for _, zf := range zr.File {
		if strings.Contains(zf.Name, "media/") {
			media++
		}
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		var b bytes.Buffer
		_, err = b.ReadFrom(rc)
		rc.Close()
		require.NoError(t, err)
		body = b.String()
	}
	require.NotEmpty(t, body)
	return body, media
}

func TestWriteDocx(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "images", "3f2a9b1c_equation_1.png"))

	var buf bytes.Buffer
	recs := []question.Record{sampleRecord(), question.Failed("bad1", errors.New("boom"))}
	require.NoError(t, WriteDocx(&buf, recs, DocxOptions{BaseDir: dir}))

	body, media := readDocx(t, buf.Bytes())
	assert.Contains(t, body, "Question 3f2a9b1c")
	assert.Contains(t, body, "Graph of a line")
	assert.Contains(t, body, "Error: boom")
	assert.Equal(t, 1, media)
}

func TestWriteDocx_ImageOutsideBaseDir(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(t.TempDir(), "secret.png")
	writePNG(t, outside)
	rel, err := filepath.Rel(base, outside)
	require.NoError(t, err)

	for name, path := range map[string]string{"absolute": outside, "dot-dot": rel} {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord()
			rec.Figures = rec.Figures[:1]
			rec.Figures[0].ImagePath = strp(path)
			rec.QuestionText = "What is {{FIG_1}}?"
			rec.AnswerChoices = nil
			rec.Rationale = ""

			var buf bytes.Buffer
			require.NoError(t, WriteDocx(&buf, []question.Record{rec}, DocxOptions{BaseDir: base}))
			body, media := readDocx(t, buf.Bytes())
			assert.Equal(t, 0, media)
			assert.Contains(t, body, "f(x)")

			buf.Reset()
			require.NoError(t, WriteDocx(&buf, []question.Record{rec}, DocxOptions{BaseDir: base, TrustPaths: true}))
			_, media = readDocx(t, buf.Bytes())
			assert.Equal(t, 1, media)
		})
	}
}

func TestWithin(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "images", "a.png")
	writePNG(t, inside)

	assert.True(t, within(base, inside))
	assert.False(t, within(base, filepath.Join(base, "images", "missing.png")))
	assert.False(t, within(base, filepath.Join(base, "..")))
	assert.False(t, within("", inside))
}
