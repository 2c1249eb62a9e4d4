package figure

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// ErrUnsupportedSource marks image sources that are not inline rasters.
// Externally hosted images are never fetched.
var ErrUnsupportedSource = errors.New("unsupported image source")

var inlinePrefixes = []struct {
	prefix string
	format string
}{
	{"data:image/png;base64,", "png"},
	{"data:image/jpeg;base64,", "jpeg"},
	{"data:image/jpg;base64,", "jpeg"},
	{"data:image/gif;base64,", "gif"},
	{"data:image/webp;base64,", "webp"},
}

// decodeInline persists an inline base64 raster as a PNG at dst.
func decodeInline(src, dst string) error {
	src = strings.TrimSpace(src)
	var payload, format string
	for _, p := range inlinePrefixes {
		if len(src) >= len(p.prefix) && strings.EqualFold(src[:len(p.prefix)], p.prefix) {
			payload, format = src[len(p.prefix):], p.format
			break
		}
	}
	if format == "" {
		return fmt.Errorf("%w: %.40q", ErrUnsupportedSource, src)
	}

	payload = strings.Join(strings.Fields(payload), "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return fmt.Errorf("decode base64: %w", err)
		}
	}

	if format == "png" {
		if _, err := png.Decode(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("decode png: %w", err)
		}
	} else {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode %s: %w", format, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
