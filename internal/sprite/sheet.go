package sprite

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	"github.com/behnamazizi/localnet-bookmarks/internal/model"
	"github.com/behnamazizi/localnet-bookmarks/internal/sitelist"
)

// Sheet is the packed sprite plus where each host's icon landed.
type Sheet struct {
	Image     *image.RGBA
	Positions map[string]model.Icon
	// BgSize is the CSS background-size of the whole sheet, e.g. "288px 48px".
	BgSize string
}

// Len reports how many icons were packed.
func (s *Sheet) Len() int {
	return len(s.Positions)
}

// Pack lays icons out row-major, sorted by host, in a grid cols wide. With no
// icons the sheet is a single white pixel.
func Pack(icons []Icon, cols, size int) *Sheet {
	if len(icons) == 0 {
		blank := image.NewRGBA(image.Rect(0, 0, 1, 1))
		blank.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		return &Sheet{Image: blank, Positions: map[string]model.Icon{}, BgSize: "1px 1px"}
	}

	sorted := append([]Icon(nil), icons...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Host < sorted[j].Host })

	rows := (len(sorted) + cols - 1) / cols
	w, h := cols*size, rows*size
	sheet := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	positions := make(map[string]model.Icon, len(sorted))
	for i, icon := range sorted {
		x := (i % cols) * size
		y := (i / cols) * size
		draw.Draw(sheet, image.Rect(x, y, x+size, y+size), icon.Image, icon.Image.Bounds().Min, draw.Src)
		positions[icon.Host] = model.Icon{X: x, Y: y, Color: icon.Color}
	}

	return &Sheet{
		Image:     sheet,
		Positions: positions,
		BgSize:    fmt.Sprintf("%dpx %dpx", w, h),
	}
}

// Lookup returns the packed icon for host, trying it as-is and without "www.".
func (s *Sheet) Lookup(host string) (model.Icon, bool) {
	if icon, ok := s.Positions[host]; ok {
		return icon, true
	}
	icon, ok := s.Positions[sitelist.StripWWW(host)]
	return icon, ok
}

// Attach sets Icon on every site whose host has a packed icon and returns how
// many sites got one.
func (s *Sheet) Attach(sites []model.Site) int {
	n := 0
	for i := range sites {
		icon, ok := s.Lookup(sites[i].Host)
		if !ok {
			sites[i].Icon = nil
			continue
		}
		sites[i].Icon = &icon
		n++
	}
	return n
}

// Missing returns the hosts that have no packed icon, in input order.
func (s *Sheet) Missing(hosts []string) []string {
	var out []string
	for _, h := range hosts {
		if _, ok := s.Lookup(h); !ok {
			out = append(out, h)
		}
	}
	return out
}

// Encode writes img as jpeg or png and returns it as a base64 data URI.
func Encode(img image.Image, format string, quality int) (string, error) {
	var (
		buf  bytes.Buffer
		mime string
	)

	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		mime = "image/jpeg"
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", fmt.Errorf("encoding sprite as jpeg: %w", err)
		}
	case "png":
		mime = "image/png"
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encoding sprite as png: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported sprite format %q", format)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
