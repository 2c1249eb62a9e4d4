package figure

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/dgallion1/figgest/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestSnapshot_RasterizesGraph(t *testing.T) {
	svg := firstElement(t, `<svg role="img" aria-label="Graph of a line" viewBox="0 0 100 50">
		<rect x="0" y="0" width="100" height="50" fill="#ff0000"/></svg>`, "svg")
	dst := filepath.Join(t.TempDir(), "g.png")

	require.NoError(t, DefaultRasterSnapshotter().Snapshot(svg, dst))
	img := readPNG(t, dst)
	assert.Equal(t, image.Rect(0, 0, 100, 50), img.Bounds())

	r, g, b, _ := img.At(50, 25).RGBA()
	assert.Greater(t, r>>8, uint32(200))
	assert.Less(t, g>>8, uint32(60))
	assert.Less(t, b>>8, uint32(60))
}

func TestSnapshot_ScalesToMaxWidth(t *testing.T) {
	svg := firstElement(t, `<svg role="img" aria-label="Wide plot" viewBox="0 0 1280 100">
		<rect x="0" y="0" width="1280" height="100" fill="#000000"/></svg>`, "svg")
	dst := filepath.Join(t.TempDir(), "wide.png")

	require.NoError(t, RasterSnapshotter{MaxWidth: 640}.Snapshot(svg, dst))
	assert.Equal(t, image.Rect(0, 0, 640, 50), readPNG(t, dst).Bounds())
}

func TestSnapshot_FallsBackToCard(t *testing.T) {
	cases := map[string]string{
		"no size":       `<svg role="img" aria-label="Blank plot"></svg>`,
		"nothing drawn": `<svg role="img" aria-label="Blank plot" viewBox="0 0 300 300"></svg>`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "card.png")
			require.NoError(t, DefaultRasterSnapshotter().Snapshot(firstElement(t, src, "svg"), dst))
			b := readPNG(t, dst).Bounds()
			assert.Equal(t, 2*cardPadding+cardLineHeight, b.Dy())
			assert.Equal(t, 2*cardPadding+glyphAdvance*len("Blank plot"), b.Dx())
		})
	}
}

func TestRasterSource(t *testing.T) {
	formula := firstElement(t, `<mjx-container aria-label="x"><svg id="outer"><svg id="inner"></svg></svg></mjx-container>`, "mjx-container")
	got := rasterSource(formula)
	require.NotNil(t, got)
	assert.Equal(t, "outer", markup.Attr(got, "id"))

	wrapped := parseFragment(t, `<div id="d"><mjx-container aria-label="x"><svg id="s"></svg></mjx-container></div>`, "d")
	require.NotNil(t, rasterSource(wrapped))

	captioned := parseFragment(t, `<figure id="f"><svg id="g" role="img" aria-label="Graph"></svg><figcaption>Figure 1</figcaption></figure>`, "f")
	got = rasterSource(captioned)
	require.NotNil(t, got)
	assert.Equal(t, "g", markup.Attr(got, "id"))

	mixed := parseFragment(t, `<p id="p">Solve <mjx-container aria-label="a"><svg></svg></mjx-container> now</p>`, "p")
	assert.Nil(t, rasterSource(mixed))

	table := parseFragment(t, `<div id="t"><table><tr><td><mjx-container aria-label="1"><svg></svg></mjx-container></td></tr></table></div>`, "t")
	assert.Nil(t, rasterSource(table))
}

func TestWrapLines_CountsRunes(t *testing.T) {
	got := wrapLines([]string{"ñññññ ééé", "añb c"}, 4)
	assert.Equal(t, []string{"ññññ", "ñ", "ééé", "añb", "c"}, got)
	for _, l := range got {
		assert.True(t, utf8.ValidString(l), "%q", l)
	}
}
