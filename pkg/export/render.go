// Package export renders the print models to static images. A dive table
// page or a single-dive fact sheet can be written as SVG or PNG, keeping
// the background and font answers the models give for each cell.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
)

// resolveFormat picks "svg" or "png" from an explicit format string or the
// output path extension, defaulting to svg. The path gains an extension
// when it has none.
func resolveFormat(path, format string) (string, string, error) {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if f == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			f = "svg"
		case ".png":
			f = "png"
		default:
			f = "svg"
			if path != "" && filepath.Ext(path) == "" {
				path = path + ".svg"
			}
		}
	}
	if f != "svg" && f != "png" {
		return "", "", fmt.Errorf("unsupported format %q (want svg or png)", f)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	return path, f, nil
}

func ensureParentDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return nil
}

// Fixed palette for grid chrome; cell backgrounds come from the model.
var (
	colorStroke = color.RGBA{0x44, 0x44, 0x44, 0xff}
	colorText   = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorPaper  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

func rgbaOf(c uint32) color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: 0xff,
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// clampRunes cuts s to at most max runes, appending an ellipsis when it
// had to cut.
func clampRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
