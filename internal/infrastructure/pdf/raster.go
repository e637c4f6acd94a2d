package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"strconv"
	"strings"

	_ "image/png"

	"site-report-backend/internal/domain/photo"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// MaxEdge caps the longest side of an embedded photo, in pixels.
const MaxEdge = 1600

var defaultMark = color.RGBA{R: 220, G: 30, B: 30, A: 255}

// prepare decodes a JPEG or PNG, shrinks it to MaxEdge, burns the annotation
// overlay in and re-encodes it as JPEG.
func prepare(raw []byte, marks []photo.Annotation) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}
	img = shrink(img, MaxEdge)

	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	drawMarks(dc, marks)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dc.Image(), &jpeg.Options{Quality: 85}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return out.Bytes(), b.Dx(), b.Dy(), nil
}

func shrink(img image.Image, edge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= edge && h <= edge {
		return img
	}
	scale := float64(edge) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func drawMarks(dc *gg.Context, marks []photo.Annotation) {
	w, h := float64(dc.Width()), float64(dc.Height())
	base := math.Max(2, math.Min(w, h)/200)
	for _, m := range marks {
		x1, y1, x2, y2 := m.X1*w, m.Y1*h, m.X2*w, m.Y2*h
		dc.SetColor(parseColor(m.Color))
		lw := base
		if m.Width > 0 {
			lw = m.Width * base
		}
		dc.SetLineWidth(lw)
		switch m.Shape {
		case "line":
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		case "arrow":
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
			arrowHead(dc, x1, y1, x2, y2, lw*4)
		case "rect":
			dc.DrawRectangle(math.Min(x1, x2), math.Min(y1, y2), math.Abs(x2-x1), math.Abs(y2-y1))
			dc.Stroke()
		case "circle":
			dc.DrawEllipse((x1+x2)/2, (y1+y2)/2, math.Abs(x2-x1)/2, math.Abs(y2-y1)/2)
			dc.Stroke()
		case "text":
			dc.DrawString(m.Text, x1, y1)
		}
	}
}

func arrowHead(dc *gg.Context, x1, y1, x2, y2, size float64) {
	angle := math.Atan2(y2-y1, x2-x1)
	for _, d := range []float64{math.Pi / 7, -math.Pi / 7} {
		dc.MoveTo(x2, y2)
		dc.LineTo(x2-size*math.Cos(angle+d), y2-size*math.Sin(angle+d))
	}
	dc.Stroke()
}

func parseColor(s string) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return defaultMark
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultMark
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
