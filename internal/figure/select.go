package figure

import (
	"sort"

	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

func isFormula(n *html.Node) bool {
	return markup.IsElement(n, "mjx-container")
}

func isGraphic(n *html.Node) bool {
	return markup.IsElement(n, "svg") &&
		markup.Attr(n, "role") == "img" &&
		markup.HasAttr(n, "aria-label")
}

// isFreeGraphic is a graphic that is not the rendering of a formula.
func isFreeGraphic(n *html.Node) bool {
	return isGraphic(n) && markup.Closest(n, isFormula) == nil
}

func isMathImage(n *html.Node) bool {
	return markup.IsElement(n, "img") &&
		(markup.HasClass(n, "math-img") || markup.HasAttr(n, "data-math"))
}

func isTable(n *html.Node) bool {
	return markup.IsElement(n, "table")
}

func isFigureWrapper(n *html.Node) bool {
	return markup.IsElement(n, "figure")
}

func isTableWithImage(n *html.Node) bool {
	return isTable(n) && markup.Find(n, isMathImage) != nil
}

func isTableWithFormula(n *html.Node) bool {
	return isTable(n) && markup.Find(n, isFormula) != nil
}

type selector struct {
	name  string
	match func(*html.Node) bool
}

// selectors is the match priority shared by Rewrite and Collect. Containers
// come before what they may contain, and formula containers come before
// graphics because formulas are often rendered through nested svg.
var selectors = []selector{
	{"figure", isFigureWrapper},
	{"table-with-image", isTableWithImage},
	{"table-with-equation", isTableWithFormula},
	{"equation", isFormula},
	{"graphic", isGraphic},
	{"math-image", isMathImage},
}

// visited is the set of nodes already claimed by a figure during one pass.
type visited map[*html.Node]struct{}

// overlaps reports whether n sits inside, or contains, a claimed node.
func (v visited) overlaps(n *html.Node) bool {
	for s := range v {
		if markup.Contains(s, n) || markup.Contains(n, s) {
			return true
		}
	}
	return false
}

// claim selects the figure nodes under root that survive nesting dedup
// against v, adds them to v, and returns them in document order.
func (v visited) claim(root *html.Node) []*html.Node {
	var picked []*html.Node
	for _, sel := range selectors {
		for _, n := range markup.FindAll(root, sel.match) {
			if v.overlaps(n) {
				continue
			}
			v[n] = struct{}{}
			picked = append(picked, n)
		}
	}
	if len(picked) < 2 {
		return picked
	}

	pos := make(map[*html.Node]int)
	i := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		pos[n] = i
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	sort.SliceStable(picked, func(a, b int) bool { return pos[picked[a]] < pos[picked[b]] })
	return picked
}

// Select returns the figure-bearing descendants of root in document order.
func Select(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	return make(visited).claim(root)
}
