package figure

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

// DefaultMaxAxisLabels caps the axis labels harvested from a graph.
const DefaultMaxAxisLabels = 10

// Target identifies where an extracted figure belongs.
type Target struct {
	OutDir     string
	QuestionID string
	Region     Region
	Index      int
}

// imagePath is the file a kind's image is persisted to.
func (t Target) imagePath(k Kind) string {
	name := fmt.Sprintf("%s_%s_%d.png", safeName(t.QuestionID), k.FileSuffix(), t.Index)
	return filepath.Join(t.OutDir, name)
}

// Extractor turns classified nodes into Records. Extraction never fails as a
// whole: a failing sub-step is logged and leaves its field at the default.
type Extractor struct {
	log           *slog.Logger
	snap          Snapshotter
	maxAxisLabels int
}

func NewExtractor(log *slog.Logger, snap Snapshotter, maxAxisLabels int) *Extractor {
	if snap == nil {
		snap = DisabledSnapshotter{}
	}
	if maxAxisLabels <= 0 {
		maxAxisLabels = DefaultMaxAxisLabels
	}
	return &Extractor{log: log, snap: snap, maxAxisLabels: maxAxisLabels}
}

// Extract runs the strategy for kind over n.
func (e *Extractor) Extract(n *html.Node, kind Kind, t Target) Record {
	rec := Record{
		Kind:           kind,
		Region:         t.Region,
		Index:          t.Index,
		Placeholder:    Placeholder(t.Index),
		StructuredData: map[string]any{},
	}
	log := e.log.With("question_id", t.QuestionID, "figure_index", t.Index, "kind", kind.String())

	switch kind {
	case KindEquation:
		e.extractEquation(log, n, t, &rec)
	case KindGraphSimple, KindGraphComplex:
		e.extractGraph(log, n, t, &rec)
	case KindEquationImage:
		e.extractEquationImage(log, n, t, &rec)
	case KindTableMarkup:
		e.extractTableMarkup(log, n, t, &rec)
	case KindTableImage:
		e.extractTableImage(log, n, t, &rec)
	case KindMixedInline:
		e.extractMixed(log, n, t, &rec)
	case KindUnknown:
		e.extractUnknown(log, n, t, &rec)
	default:
		log.Error("no extractor for kind")
		e.extractUnknown(log, n, t, &rec)
	}
	return rec
}

// snapshot persists n as the record's image; failure leaves the path nil.
func (e *Extractor) snapshot(log *slog.Logger, n *html.Node, t Target, k Kind) *string {
	dst := t.imagePath(k)
	if err := e.snap.Snapshot(n, dst); err != nil {
		log.Warn("snapshot failed", "error", err)
		return nil
	}
	return strPtr(dst)
}

// guard runs one extraction sub-step, containing any panic to that step.
func guard(log *slog.Logger, step string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction step panicked", "step", step, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// focus returns n when it matches, else its first matching descendant.
func focus(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	return markup.Find(n, match)
}

func formulaAlt(n *html.Node) string {
	return firstNonEmpty(markup.Attr(n, "alttext"), markup.Attr(n, "aria-label"))
}

func imageAlt(n *html.Node) string {
	return firstNonEmpty(markup.Attr(n, "alt"), markup.Attr(n, "aria-label"))
}

// readableText flattens n with each formula and math image replaced by its
// alt text. n itself is left untouched.
func readableText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.ElementNode {
		switch {
		case isFormula(n):
			return formulaAlt(n)
		case isMathImage(n):
			return imageAlt(n)
		}
	}
	c := markup.Clone(n)
	for _, f := range markup.FindAll(c, func(x *html.Node) bool { return isFormula(x) || isMathImage(x) }) {
		if f.Parent == nil {
			continue
		}
		alt := imageAlt(f)
		if isFormula(f) {
			alt = formulaAlt(f)
		}
		markup.Replace(f, &html.Node{Type: html.TextNode, Data: " " + alt + " "})
	}
	return markup.FlatText(c)
}

// parseTable reads header and body rows of t. Rows of nested tables are
// ignored.
func parseTable(t *html.Node) (headers []string, rows [][]string) {
	headers = []string{}
	rows = [][]string{}
	trs := markup.FindAll(t, func(n *html.Node) bool {
		return n.Data == "tr" && markup.Closest(n, isTable) == t
	})
	cells := func(tr *html.Node) []string {
		var out []string
		for _, c := range markup.Children(tr, func(n *html.Node) bool { return n.Data == "td" || n.Data == "th" }) {
			out = append(out, readableText(c))
		}
		return out
	}

	headerDone := false
	for i, tr := range trs {
		inHead := markup.Closest(tr, markup.Tag("thead")) != nil
		hasTH := len(markup.Children(tr, markup.Tag("th"))) > 0
		if !headerDone && (inHead || (i == 0 && hasTH)) {
			headers = cells(tr)
			headerDone = true
			continue
		}
		r := cells(tr)
		if r == nil {
			r = []string{}
		}
		rows = append(rows, r)
	}
	return headers, rows
}

func flattenTable(headers []string, rows [][]string) string {
	var lines []string
	if len(headers) > 0 {
		lines = append(lines, strings.Join(headers, " | "))
	}
	for _, r := range rows {
		lines = append(lines, strings.Join(r, " | "))
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// safeName keeps a question id usable as a file name segment.
func safeName(s string) string {
	s = filepath.Base(s)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" || s == "." {
		s = "unknown"
	}
	return s
}
