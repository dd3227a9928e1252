// Package sprite finds per-host PNG icons and packs them into one image that
// the page embeds as a data URI.
package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/draw"

	"github.com/behnamazizi/localnet-bookmarks/internal/sitelist"
)

// FallbackColor is used when an icon has no pixels worth averaging.
const FallbackColor = "#f3f4f6"

// pastel is how far the average colour is pulled toward white.
const pastel = 0.25

// Icon is a normalized icon ready to be packed.
type Icon struct {
	// Host is the file stem that matched, which may lack the site's "www.".
	Host  string
	Path  string
	Image *image.RGBA
	Color string
}

// Load looks up <host>.png in dir for every host, falling back to the host
// without "www.". A missing directory or file is not an error. Files that
// cannot be decoded are skipped with a warning so the site falls back to its
// letter glyph.
func Load(dir string, hosts []string, size int) ([]Icon, error) {
	if dir == "" {
		return nil, nil
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading icons dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("icons path %s is not a directory", dir)
	}

	sorted := append([]string(nil), hosts...)
	sort.Strings(sorted)

	seen := make(map[string]bool)
	var icons []Icon
	for _, host := range sorted {
		if host == "" {
			continue
		}
		stem, path, ok := find(dir, host)
		if !ok || seen[stem] {
			continue
		}
		seen[stem] = true

		img, err := decode(path)
		if err != nil {
			log.Printf("Warning: skipping icon %s: %v", path, err)
			continue
		}
		norm := Normalize(img, size)
		icons = append(icons, Icon{
			Host:  stem,
			Path:  path,
			Image: norm,
			Color: DominantColor(norm),
		})
	}
	return icons, nil
}

func find(dir, host string) (string, string, bool) {
	candidates := []string{host}
	if bare := sitelist.StripWWW(host); bare != host {
		candidates = append(candidates, bare)
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c+".png")
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return c, path, true
		}
	}
	return "", "", false
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	return img, nil
}

// Normalize fits img inside a size x size square, keeping its aspect ratio,
// centred on white. Transparency is composited onto the white background so
// the result is fully opaque.
func Normalize(img image.Image, size int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return canvas
	}

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	x := (size - nw) / 2
	y := (size - nh) / 2

	draw.CatmullRom.Scale(canvas, image.Rect(x, y, x+nw, y+nh), img, b, draw.Over, nil)
	return canvas
}

// DominantColor averages the pixels that are neither near-white nor
// near-black and softens the result toward white. It returns a "#rrggbb"
// string.
func DominantColor(img *image.RGBA) string {
	var sr, sg, sb, n float64

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 245 && c.G > 245 && c.B > 245 {
				continue
			}
			if c.R < 10 && c.G < 10 && c.B < 10 {
				continue
			}
			sr += float64(c.R)
			sg += float64(c.G)
			sb += float64(c.B)
			n++
		}
	}
	if n == 0 {
		return FallbackColor
	}

	soften := func(v float64) int {
		return int(v + (255-v)*pastel)
	}
	return fmt.Sprintf("#%02x%02x%02x", soften(sr/n), soften(sg/n), soften(sb/n))
}
