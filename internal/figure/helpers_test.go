package figure

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/figgest/internal/markup"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseFragment parses markup and returns the first element with the given id.
func parseFragment(t *testing.T, s, id string) *html.Node {
	t.Helper()
	doc, err := markup.ParseString(s)
	require.NoError(t, err)
	n := markup.Find(doc, func(n *html.Node) bool { return markup.Attr(n, "id") == id })
	require.NotNil(t, n, "no element with id %q", id)
	return n
}

func firstElement(t *testing.T, s, tag string) *html.Node {
	t.Helper()
	doc, err := markup.ParseString(s)
	require.NoError(t, err)
	n := markup.Find(doc, markup.Tag(tag))
	require.NotNil(t, n, "no <%s> element", tag)
	return n
}

// tinyPNG returns a base64 encoded 2x2 PNG.
func tinyPNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestCollector(snap Snapshotter) *Collector {
	return NewCollector(testLogger(), Options{Snapshotter: snap})
}
