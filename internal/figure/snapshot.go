package figure

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/figgest/internal/markup"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
)

// ErrSnapshotDisabled is returned by DisabledSnapshotter.
var ErrSnapshotDisabled = errors.New("snapshots disabled")

// Snapshotter renders a node to a PNG file at dst.
type Snapshotter interface {
	Snapshot(n *html.Node, dst string) error
}

// DisabledSnapshotter refuses every snapshot.
type DisabledSnapshotter struct{}

func (DisabledSnapshotter) Snapshot(*html.Node, string) error { return ErrSnapshotDisabled }

const (
	cardPadding    = 8
	cardLineHeight = 16
	glyphAdvance   = 7 // basicfont.Face7x13
)

// RasterSnapshotter renders graphs and formulas by rasterizing their svg.
// Anything else, and any svg that fails to render, becomes a white text
// card: one row per table row, wrapped prose otherwise.
type RasterSnapshotter struct {
	MaxWidth int // pixels
	MaxLines int
}

// DefaultRasterSnapshotter returns a renderer with sane bounds.
func DefaultRasterSnapshotter() RasterSnapshotter {
	return RasterSnapshotter{MaxWidth: 640, MaxLines: 40}
}

func (s RasterSnapshotter) Snapshot(n *html.Node, dst string) error {
	if n == nil {
		return fmt.Errorf("snapshot %s: nil node", filepath.Base(dst))
	}
	maxWidth := s.MaxWidth
	if maxWidth < 2*cardPadding+glyphAdvance*8 {
		maxWidth = 640
	}

	var img image.Image
	if svg := rasterSource(n); svg != nil {
		r, err := rasterizeSVG(svg, maxWidth)
		if err == nil {
			img = r
		}
	}
	if img == nil {
		img = s.card(n, maxWidth)
	}
	return writePNG(img, dst)
}

// rasterSource picks the svg that pictures n on its own, or nil when n
// carries tables or prose the svg would not show.
func rasterSource(n *html.Node) *html.Node {
	if markup.IsElement(n, "svg") {
		return n
	}
	if markup.Find(n, isTable) != nil {
		return nil
	}
	if isFormula(n) {
		return markup.Find(n, markup.Tag("svg"))
	}
	formulas := markup.FindAll(n, isFormula)
	switch len(formulas) {
	case 0:
		return focus(n, isFreeGraphic)
	case 1:
		if markup.FlatText(n) == markup.FlatText(formulas[0]) {
			return markup.Find(formulas[0], markup.Tag("svg"))
		}
	}
	return nil
}

// rasterizeSVG draws svg scaled down to fit maxWidth, on white.
func rasterizeSVG(svg *html.Node, maxWidth int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup.Render(svg)), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, errors.New("svg has no usable size")
	}
	scale := 1.0
	if vw > float64(maxWidth) {
		scale = float64(maxWidth) / vw
	}
	w, h := int(math.Ceil(vw*scale)), int(math.Ceil(vh*scale))
	if w < 1 || h < 1 || h > 8*maxWidth {
		return nil, fmt.Errorf("svg size %dx%d out of range", w, h)
	}

	ink := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(rasterx.NewDasher(w, h, rasterx.NewScannerGV(w, h, ink, ink.Bounds())), 1)
	if blank(ink) {
		return nil, errors.New("svg rendered nothing")
	}

	out := image.NewRGBA(ink.Bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), ink, image.Point{}, draw.Over)
	return out, nil
}

func blank(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

func (s RasterSnapshotter) card(n *html.Node, maxWidth int) image.Image {
	maxChars := (maxWidth - 2*cardPadding) / glyphAdvance
	lines := wrapLines(snapshotLines(n), maxChars)
	if s.MaxLines > 0 && len(lines) > s.MaxLines {
		lines = lines[:s.MaxLines]
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	longest := 0
	for _, l := range lines {
		longest = max(longest, utf8.RuneCountInString(l))
	}
	w := 2*cardPadding + glyphAdvance*max(longest, 1)
	h := 2*cardPadding + cardLineHeight*len(lines)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	border := color.Gray{Y: 0xbb}
	for x := 0; x < w; x++ {
		img.Set(x, 0, border)
		img.Set(x, h-1, border)
	}
	for y := 0; y < h; y++ {
		img.Set(0, y, border)
		img.Set(w-1, y, border)
	}

	d := &font.Drawer{Dst: img, Src: image.Black, Face: basicfont.Face7x13}
	for i, line := range lines {
		d.Dot = fixed.P(cardPadding, cardPadding+(i+1)*cardLineHeight-4)
		d.DrawString(line)
	}
	return img
}

func writePNG(img image.Image, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

// snapshotLines is what a card shows for n.
func snapshotLines(n *html.Node) []string {
	if t := focus(n, isTable); t != nil {
		if flat := flattenTable(parseTable(t)); flat != "" {
			return strings.Split(flat, "\n")
		}
	}
	text := readableText(n)
	if text == "" {
		text = firstNonEmpty(markup.Attr(n, "aria-label"), markup.Attr(n, "alttext"), markup.Attr(n, "alt"))
	}
	if text == "" {
		return nil
	}
	return []string{text}
}

// wrapLines breaks each line on spaces so none exceeds width runes.
func wrapLines(lines []string, width int) []string {
	var out []string
	for _, line := range lines {
		var cur []rune
		for _, word := range strings.Fields(line) {
			w := []rune(word)
			for len(w) > width {
				if len(cur) > 0 {
					out = append(out, string(cur))
					cur = cur[:0]
				}
				out = append(out, string(w[:width]))
				w = w[width:]
			}
			if len(cur) > 0 && len(cur)+1+len(w) > width {
				out = append(out, string(cur))
				cur = cur[:0]
			}
			if len(cur) > 0 {
				cur = append(cur, ' ')
			}
			cur = append(cur, w...)
		}
		if len(cur) > 0 {
			out = append(out, string(cur))
		}
	}
	return out
}
