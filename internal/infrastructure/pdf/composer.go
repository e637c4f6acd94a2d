// Package pdf renders the single-page report artifact by overlaying report
// data on a pre-designed template.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"site-report-backend/pkg/logger"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

var (
	ErrTemplateMissing    = errors.New("pdf template missing")
	ErrTemplateUnreadable = errors.New("pdf template unreadable")
)

const (
	fontFamily     = "Helvetica"
	reasonOverflow = "overflow: grid holds four photos"
)

type Composer struct {
	templatePath string
	layout       Layout
	log          *logger.Logger
}

func NewComposer(templatePath string, layout Layout, log *logger.Logger) *Composer {
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{templatePath: templatePath, layout: layout, log: log}
}

// Render builds the artifact in memory. A missing template is fatal; photos
// that cannot be drawn leave their cell empty and are listed in Skipped.
func (c *Composer) Render(doc Document) (res *Result, err error) {
	tpl, err := os.ReadFile(c.templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, c.templatePath)
		}
		return nil, fmt.Errorf("read template: %w", err)
	}
	// gofpdi panics on documents it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%w: %v", ErrTemplateUnreadable, r)
		}
	}()

	f := fpdf.New("P", "pt", "A4", "")
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	stamp := doc.RenderedAt
	if stamp.IsZero() {
		stamp = time.Unix(0, 0)
	}
	f.SetCreationDate(stamp.UTC())
	f.SetModificationDate(stamp.UTC())
	f.SetCatalogSort(true)
	f.AddPage()
	pageW, pageH := f.GetPageSize()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(tpl)
	tplID := imp.ImportPageFromStream(f, &rs, 1, "/MediaBox")
	imp.UseImportedTemplate(f, tplID, 0, 0, pageW, pageH)
	if f.Err() {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnreadable, f.Error())
	}

	tr := f.UnicodeTranslatorFromDescriptor("")
	for _, fv := range c.layout.fields(doc) {
		c.writeField(f, tr, pageH, fv.f, fv.v)
	}

	res = &Result{}
	c.drawGrid(f, tr, pageH, doc.Photos, res)

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	res.Bytes = buf.Bytes()
	return res, nil
}

// WriteFile stores a rendered artifact as dir/name, creating dir.
func WriteFile(dir, name string, b []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Composer) writeField(f *fpdf.Fpdf, tr func(string) string, pageH float64, fd Field, value string) {
	style := ""
	if fd.Bold {
		style = "B"
	}
	w, h := EraseBox(fd.Placeholder, fd.Size)
	f.SetFillColor(255, 255, 255)
	f.Rect(fd.X, pageH-(fd.Y-2)-h, w, h, "F")

	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	f.SetFont(fontFamily, style, fd.Size)
	f.SetTextColor(0, 0, 0)
	if fd.Wrap <= 0 {
		f.Text(fd.X, pageH-fd.Y, tr(value))
		return
	}
	for i, line := range wrap(f, tr(value), fd.Wrap) {
		y := fd.Y - float64(i)*(fd.Size+2)
		if y < fd.MinY {
			c.log.Warn("pdf text truncated", "lines", i)
			return
		}
		f.Text(fd.X, pageH-y, line)
	}
}

func (c *Composer) drawGrid(f *fpdf.Fpdf, tr func(string) string, pageH float64, photos []Photo, res *Result) {
	l := c.layout
	for i, p := range photos {
		if i >= GridCells {
			res.Skipped = append(res.Skipped, Skip{Index: i, PhotoID: p.ID, Reason: reasonOverflow})
			continue
		}
		if p.Err != nil || len(p.Bytes) == 0 {
			reason := "no bytes"
			if p.Err != nil {
				reason = p.Err.Error()
			}
			res.Skipped = append(res.Skipped, Skip{Index: i, PhotoID: p.ID, Reason: reason})
			continue
		}
		jpg, pw, ph, err := prepare(p.Bytes, p.Annotations)
		if err != nil {
			c.log.Warn("pdf photo skipped", "photo_id", p.ID, "err", err)
			res.Skipped = append(res.Skipped, Skip{Index: i, PhotoID: p.ID, Reason: err.Error()})
			continue
		}

		name := fmt.Sprintf("foto-%d", i)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		f.RegisterImageOptionsReader(name, opts, bytes.NewReader(jpg))

		cx, cy := l.Cell(i)
		scale := min(l.CellWidth/float64(pw), l.CellHeight/float64(ph))
		dw, dh := float64(pw)*scale, float64(ph)*scale
		ox := cx + (l.CellWidth-dw)/2
		oy := cy + (l.CellHeight-dh)/2
		f.ImageOptions(name, ox, pageH-(oy+dh), dw, dh, false, opts, 0, "")

		if caption := strings.TrimSpace(p.Caption); caption != "" {
			f.SetFont(fontFamily, "", l.CaptionPt)
			f.SetTextColor(110, 110, 110)
			f.Text(cx, pageH-(cy-l.CaptionGap), clip(f, tr(caption), l.CellWidth))
		}
		res.Rendered++
	}
}

// wrap splits text into lines no wider than width at the current font.
// Input must already be translated to the font's code page.
func wrap(f *fpdf.Fpdf, text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if f.GetStringWidth(cur+" "+w) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur += " " + w
		}
		lines = append(lines, cur)
	}
	return lines
}

func clip(f *fpdf.Fpdf, s string, width float64) string {
	if f.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && f.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
