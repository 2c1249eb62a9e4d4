package figure

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/figgest/internal/markup"
	"golang.org/x/net/html"
)

func (e *Extractor) extractEquation(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	f := focus(n, isFormula)
	if f == nil {
		f = n
	}
	rec.TextContent = formulaAlt(f)
	rec.RawMarkup = markup.Render(f)

	guard(log, "mathml", func() {
		mml := markup.Find(f, markup.Tag("mjx-assistive-mml"))
		if mml == nil {
			return
		}
		if m := markup.Find(mml, markup.Tag("math")); m != nil {
			rec.StructuredData["mathml"] = markup.Render(m)
		}
	})
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

func (e *Extractor) extractGraph(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	g := focus(n, isFreeGraphic)
	if g == nil {
		g = n
	}
	rec.TextContent = markup.Attr(g, "aria-label")

	guard(log, "bounds", func() {
		sd := rec.StructuredData
		if w, ok := parseLength(markup.Attr(g, "width")); ok {
			sd["width"] = w
		}
		if h, ok := parseLength(markup.Attr(g, "height")); ok {
			sd["height"] = h
		}
		vb := markup.Attr(g, "viewBox")
		if vb == "" {
			return
		}
		sd["view_box"] = vb
		if _, has := sd["width"]; has {
			return
		}
		if f := strings.Fields(strings.ReplaceAll(vb, ",", " ")); len(f) == 4 {
			if w, ok := parseLength(f[2]); ok {
				sd["width"] = w
			}
			if h, ok := parseLength(f[3]); ok {
				sd["height"] = h
			}
		}
	})
	guard(log, "axis_labels", func() {
		labels := []string{}
		for _, tn := range markup.FindAll(g, markup.Tag("text")) {
			if len(labels) == e.maxAxisLabels {
				break
			}
			if s := markup.FlatText(tn); s != "" {
				labels = append(labels, s)
			}
		}
		rec.StructuredData["axis_labels"] = labels
	})
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

func (e *Extractor) extractEquationImage(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	img := focus(n, isMathImage)
	if img == nil {
		img = n
	}
	rec.TextContent = imageAlt(img)
	guard(log, "decode", func() {
		dst := t.imagePath(rec.Kind)
		if err := decodeInline(markup.Attr(img, "src"), dst); err != nil {
			log.Info("inline image not persisted", "error", err)
			return
		}
		rec.ImagePath = strPtr(dst)
	})
}

func (e *Extractor) extractTableMarkup(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	tbl := focus(n, isTable)
	if tbl == nil {
		tbl = n
	}
	rec.StructuredData["headers"] = []string{}
	rec.StructuredData["rows"] = [][]string{}
	guard(log, "cells", func() {
		headers, rows := parseTable(tbl)
		rec.StructuredData["headers"] = headers
		rec.StructuredData["rows"] = rows
		rec.TextContent = flattenTable(headers, rows)
	})
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

func (e *Extractor) extractTableImage(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	tbl := focus(n, isTable)
	if tbl == nil {
		tbl = n
	}
	entries := []map[string]any{}
	var texts []string
	for k, img := range markup.FindAll(tbl, isMathImage) {
		alt := imageAlt(img)
		entry := map[string]any{"text": alt, "image_path": nil}
		guard(log, "decode", func() {
			dst := filepath.Join(t.OutDir, fmt.Sprintf("%s_table_%d_img_%d.png", safeName(t.QuestionID), t.Index, k+1))
			if err := decodeInline(markup.Attr(img, "src"), dst); err != nil {
				log.Info("table image not persisted", "image", k+1, "error", err)
				return
			}
			entry["image_path"] = dst
		})
		entries = append(entries, entry)
		if alt != "" {
			texts = append(texts, alt)
		}
	}
	rec.StructuredData["images"] = entries
	rec.TextContent = strings.Join(texts, "; ")

	guard(log, "cells", func() {
		headers, rows := parseTable(tbl)
		rec.StructuredData["headers"] = headers
		rec.StructuredData["rows"] = rows
	})
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

func (e *Extractor) extractMixed(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	equations := []string{}
	for _, f := range markup.FindAll(n, isFormula) {
		equations = append(equations, formulaAlt(f))
	}
	rec.StructuredData["equations"] = equations
	rec.TextContent = markup.FlatText(n)
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

func (e *Extractor) extractUnknown(log *slog.Logger, n *html.Node, t Target, rec *Record) {
	rec.TextContent = firstNonEmpty(markup.FlatText(n), markup.Attr(n, "aria-label"), markup.Attr(n, "alt"))
	rec.RawMarkup = markup.Render(n)
	guard(log, "snapshot", func() {
		rec.ImagePath = e.snapshot(log, n, t, rec.Kind)
	})
}

// parseLength reads an svg length such as "320", "320px" or "12.5".
func parseLength(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
