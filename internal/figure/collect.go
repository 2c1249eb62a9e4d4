package figure

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"
)

// Options tune classification and extraction.
type Options struct {
	Snapshotter           Snapshotter
	MaxAxisLabels         int
	ComplexDescriptionLen int
}

// Collector finds, classifies and extracts the figures of a region.
type Collector struct {
	classifier *Classifier
	extractor  *Extractor
	log        *slog.Logger
}

func NewCollector(log *slog.Logger, opts Options) *Collector {
	return &Collector{
		classifier: NewClassifier(log, opts.ComplexDescriptionLen),
		extractor:  NewExtractor(log, opts.Snapshotter, opts.MaxAxisLabels),
		log:        log,
	}
}

// Collect records the figures under each root, in root order then document
// order, numbering from start. It returns the records and the next unused
// index. Every selected node yields a record, even an empty one, so indices
// stay aligned with the placeholders Rewrite emits.
func (c *Collector) Collect(roots []*html.Node, region Region, questionID, outDir string, start int) ([]Record, int) {
	seen := make(visited)
	next := start
	var out []Record
	for _, root := range roots {
		if root == nil {
			continue
		}
		for _, n := range seen.claim(root) {
			t := Target{OutDir: outDir, QuestionID: questionID, Region: region, Index: next}
			rec := c.extract(n, t)
			if rec.TextContent == "" && rec.ImagePath == nil {
				c.log.Warn("figure has neither text nor image",
					"question_id", questionID, "region", string(region), "figure_index", next, "kind", rec.Kind.String())
			}
			out = append(out, rec)
			next++
		}
	}
	return out, next
}

func (c *Collector) extract(n *html.Node, t Target) (rec Record) {
	kind := c.classifier.Classify(n)
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("extraction panicked", "question_id", t.QuestionID, "figure_index", t.Index, "panic", fmt.Sprint(r))
			rec = Record{
				Kind:           kind,
				Region:         t.Region,
				Index:          t.Index,
				Placeholder:    Placeholder(t.Index),
				StructuredData: map[string]any{},
			}
		}
	}()
	return c.extractor.Extract(n, kind, t)
}
