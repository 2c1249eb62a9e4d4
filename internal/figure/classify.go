package figure

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

// DefaultComplexDescriptionLen is the description length above which a graph
// counts as complex.
const DefaultComplexDescriptionLen = 100

var graphKeywords = []string{
	"graph", "coordinate", "axis", "axes", "curve", "parabola", "line",
	"plot", "plane", "slope", "intercept", "scatterplot", "histogram", "bar",
	"number line",
}

// Classifier assigns a Kind to a markup node. It never mutates the node.
type Classifier struct {
	log        *slog.Logger
	complexLen int
}

func NewClassifier(log *slog.Logger, complexLen int) *Classifier {
	if complexLen <= 0 {
		complexLen = DefaultComplexDescriptionLen
	}
	return &Classifier{log: log, complexLen: complexLen}
}

// Classify returns the node's kind. Rules are tried in order and the first
// hit wins; anything that goes wrong yields KindUnknown.
func (c *Classifier) Classify(n *html.Node) (kind Kind) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("classification panicked", "tag", nodeTag(n), "panic", fmt.Sprint(r))
			kind = KindUnknown
		}
	}()

	if n == nil || n.Type != html.ElementNode {
		return KindUnknown
	}
	switch {
	case isFormula(n):
		return KindEquation
	case isGraphic(n):
		return c.classifyGraphic(markup.Attr(n, "aria-label"))
	case isMathImage(n):
		return KindEquationImage
	case isTable(n):
		return classifyTable(n)
	case isContainer(n):
		return c.classifyContainer(n)
	}
	return KindUnknown
}

// classifyGraphic splits graphs by their description. A description with no
// graph vocabulary still counts as a simple graph.
func (c *Classifier) classifyGraphic(desc string) Kind {
	lower := strings.ToLower(desc)
	matched := false
	for _, kw := range graphKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		c.log.Debug("graphic without graph vocabulary, defaulting to graph-simple", "description", desc)
		return KindGraphSimple
	}
	if len(desc) > c.complexLen || strings.Contains(lower, "system") {
		return KindGraphComplex
	}
	return KindGraphSimple
}

func classifyTable(n *html.Node) Kind {
	if markup.Find(n, isMathImage) != nil {
		return KindTableImage
	}
	return KindTableMarkup
}

func (c *Classifier) classifyContainer(n *html.Node) Kind {
	formulas := markup.FindAll(n, isFormula)
	paras := markup.Children(n, markup.Tag("p"))
	if len(formulas) > 1 && len(paras) > 1 {
		return KindMixedInline
	}

	if t := markup.Find(n, isTable); t != nil {
		return classifyTable(t)
	}
	if g := markup.Find(n, isFreeGraphic); g != nil {
		return c.classifyGraphic(markup.Attr(g, "aria-label"))
	}
	if len(formulas) > 0 {
		return KindEquation
	}
	if markup.Find(n, isMathImage) != nil {
		return KindEquationImage
	}
	return KindUnknown
}

func isContainer(n *html.Node) bool {
	switch n.Data {
	case "figure", "figcaption", "div", "span", "p", "li", "ul", "ol", "section":
		return true
	}
	return false
}

func nodeTag(n *html.Node) string {
	if n == nil {
		return ""
	}
	return n.Data
}
