package figure

import (
	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

// Rewrite flattens n to text with every figure replaced by its placeholder
// token, numbering from start. It works on a copy, so n is untouched. The
// returned index is the next unused one.
//
// Rewrite picks exactly the nodes Collect records for the same root and
// start, so the tokens in the text and the record indices always agree.
func Rewrite(n *html.Node, start int) (string, int) {
	if n == nil {
		return "", start
	}
	c := markup.Clone(n)
	next := start
	for _, fig := range make(visited).claim(c) {
		markup.Replace(fig, &html.Node{Type: html.TextNode, Data: " " + Placeholder(next) + " "})
		next++
	}
	return markup.FlatText(c), next
}
