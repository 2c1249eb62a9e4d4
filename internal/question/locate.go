package question

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

// ErrNoRegions means the markup holds none of the four question regions.
var ErrNoRegions = errors.New("no question regions found")

// Regions are the roots of the four parts of a question. Any may be nil.
type Regions struct {
	Prompt    *html.Node
	Question  *html.Node
	Choices   []*html.Node
	Rationale *html.Node
}

func (r Regions) empty() bool {
	return r.Prompt == nil && r.Question == nil && len(r.Choices) == 0 && r.Rationale == nil
}

// Meta is the descriptive data shown alongside a question.
type Meta struct {
	QuestionID    string
	Assessment    string
	Section       string
	Domain        string
	Skill         string
	Difficulty    int
	CorrectAnswer string
}

var questionIDRe = regexp.MustCompile(`(?i)\b([a-f0-9]{8})\b`)

// Locate finds the regions and metadata in a question detail dialog. The
// dialog is #modalID1 when present, the whole document otherwise.
func Locate(doc *html.Node) (Regions, Meta, error) {
	scope := markup.Find(doc, func(n *html.Node) bool { return markup.Attr(n, "id") == "modalID1" })
	if scope == nil {
		scope = doc
	}

	var r Regions
	r.Prompt = markup.Find(scope, markup.Class("prompt"))
	r.Question = markup.Find(scope, markup.Class("question"))
	if choices := markup.Find(scope, markup.Class("answer-choices")); choices != nil {
		r.Choices = markup.FindAll(choices, func(n *html.Node) bool {
			if n.Data != "li" {
				return false
			}
			outer := markup.Closest(n, markup.Tag("li"))
			return outer == nil || !markup.Contains(choices, outer)
		})
	}
	var rationale *html.Node
	if rationale = markup.Find(scope, markup.Class("rationale")); rationale != nil {
		r.Rationale = rationale
		if divs := markup.FindAll(rationale, markup.Tag("div")); len(divs) > 0 {
			r.Rationale = divs[len(divs)-1]
		}
	}
	if r.empty() {
		return r, Meta{}, ErrNoRegions
	}

	meta := Meta{QuestionID: findQuestionID(scope)}
	if info := markup.Find(scope, markup.Class("question-detail-info")); info != nil {
		cells := markup.FindAll(info, func(n *html.Node) bool {
			return n.Data == "td" && markup.Closest(n, markup.Tag("tbody")) != nil
		})
		if len(cells) >= 5 {
			meta.Assessment = markup.FlatText(cells[0])
			meta.Section = markup.FlatText(cells[1])
			meta.Domain = markup.FlatText(cells[2])
			meta.Skill = markup.FlatText(cells[3])
			meta.Difficulty = len(markup.FindAll(info, func(n *html.Node) bool {
				return markup.HasClass(n, "difficulty-indicator") && markup.HasClass(n, "filled")
			}))
		}
	}
	if rationale != nil {
		bold := markup.Find(rationale, func(n *html.Node) bool {
			return n.Data == "p" && markup.HasClass(n, "cb-font-weight-bold")
		})
		if text := markup.FlatText(bold); strings.Contains(text, ":") {
			meta.CorrectAnswer = strings.TrimSpace(text[strings.LastIndex(text, ":")+1:])
		}
	}
	return r, meta, nil
}

func findQuestionID(scope *html.Node) string {
	candidates := []func(*html.Node) bool{
		func(n *html.Node) bool { return n.Data == "h2" && markup.Closest(n, markup.Class("cb-dialog-header")) != nil },
		markup.Class("cb-dialog-header"),
		markup.Class("question-detail-info"),
	}
	for _, match := range candidates {
		n := markup.Find(scope, match)
		if n == nil {
			continue
		}
		if m := questionIDRe.FindStringSubmatch(markup.FlatText(n)); m != nil {
			return m[1]
		}
	}
	return ""
}
