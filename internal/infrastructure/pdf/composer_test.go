package pdf

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pdfread "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, l Layout) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relatorio_template.pdf")
	require.NoError(t, WriteTemplate(path, l, false))
	return path
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func plainText(t *testing.T, b []byte) string {
	t.Helper()
	r, err := pdfread.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumPage())
	txt, err := r.GetPlainText()
	require.NoError(t, err)
	raw, err := io.ReadAll(txt)
	require.NoError(t, err)
	return strings.Join(strings.Fields(string(raw)), "")
}

func sampleDoc(photos int, jpg []byte) Document {
	d := Document{
		Date:         "14/10/2026",
		Number:       "REL-0007",
		Company:      "Construtora Horizonte",
		ProjectName:  "Edificio Aurora",
		Address:      "Rua das Flores, 100",
		Observations: "Concretagem da laje concluida. Armaduras conferidas.",
		Author:       "Maria Souza",
		Approver:     "Eng. Jose Leopoldo Pugliese",
		Responsible:  "Carlos Lima",
		RenderedAt:   time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
	for i := 0; i < photos; i++ {
		d.Photos = append(d.Photos, Photo{ID: uint64(i + 1), Bytes: jpg, Caption: "Foto da fachada"})
	}
	return d
}

func TestLayout_Grid(t *testing.T) {
	l := DefaultLayout()
	want := [][2]float64{{19.7, 350}, {302.5, 350}, {19.7, 200}, {302.5, 200}}
	for i, w := range want {
		x, y := l.Cell(i)
		assert.Equal(t, w[0], x, "cell %d x", i)
		assert.Equal(t, w[1], y, "cell %d y", i)
	}
	assert.Equal(t, 140.0, l.CellWidth)
	assert.Equal(t, 105.0, l.CellHeight)
}

func TestEraseBox(t *testing.T) {
	w, h := EraseBox("REL-0000", 10)
	assert.InDelta(t, 48.0, w, 1e-9)
	assert.Equal(t, 12.0, h)

	w, _ = EraseBox("ÇÃO", 10)
	assert.InDelta(t, 18.0, w, 1e-9, "width counts characters, not bytes")
}

func TestRender_TemplateMissing(t *testing.T) {
	c := NewComposer(filepath.Join(t.TempDir(), "nope.pdf"), DefaultLayout(), nil)
	_, err := c.Render(sampleDoc(0, nil))
	assert.ErrorIs(t, err, ErrTemplateMissing)
}

func TestRender_TemplateUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))
	c := NewComposer(path, DefaultLayout(), nil)
	_, err := c.Render(sampleDoc(0, nil))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTemplateMissing))
}

func TestRender_Fields(t *testing.T) {
	l := DefaultLayout()
	c := NewComposer(writeTemplate(t, l), l, nil)

	res, err := c.Render(sampleDoc(0, nil))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(res.Bytes, []byte("%PDF")))

	text := plainText(t, res.Bytes)
	for _, want := range []string{"REL-0007", "14/10/2026", "EdificioAurora", "ConstrutoraHorizonte", "MariaSouza", "CarlosLima"} {
		assert.Contains(t, text, want)
	}
}

func TestRender_PhotoCounts(t *testing.T) {
	l := DefaultLayout()
	c := NewComposer(writeTemplate(t, l), l, nil)
	jpg := jpegBytes(t, 64, 48)

	for n := 0; n <= 4; n++ {
		res, err := c.Render(sampleDoc(n, jpg))
		require.NoError(t, err, "%d photos", n)
		assert.Equal(t, n, res.Rendered)
		assert.Empty(t, res.Skipped)
	}

	res, err := c.Render(sampleDoc(6, jpg))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rendered)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 4, res.Skipped[0].Index)
	assert.Equal(t, uint64(6), res.Skipped[1].PhotoID)
}

func TestRender_BadPhotosAreSkipped(t *testing.T) {
	l := DefaultLayout()
	c := NewComposer(writeTemplate(t, l), l, nil)
	doc := sampleDoc(0, nil)
	doc.Photos = []Photo{
		{ID: 1, Bytes: jpegBytes(t, 32, 32)},
		{ID: 2, Err: errors.New("photo bytes missing")},
		{ID: 3, Bytes: bytes.Repeat([]byte{0xAA}, 64)},
	}

	res, err := c.Render(doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rendered)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, uint64(2), res.Skipped[0].PhotoID)
	assert.Contains(t, res.Skipped[0].Reason, "missing")
	assert.Equal(t, uint64(3), res.Skipped[1].PhotoID)
}

func TestRender_Reproducible(t *testing.T) {
	l := DefaultLayout()
	c := NewComposer(writeTemplate(t, l), l, nil)
	doc := sampleDoc(2, jpegBytes(t, 40, 30))

	a, err := c.Render(doc)
	require.NoError(t, err)
	b, err := c.Render(doc)
	require.NoError(t, err)
	assert.Equal(t, len(a.Bytes), len(b.Bytes))
	assert.Equal(t, plainText(t, a.Bytes), plainText(t, b.Bytes))
}

func TestWriteFile(t *testing.T) {
	l := DefaultLayout()
	c := NewComposer(writeTemplate(t, l), l, nil)
	dir := filepath.Join(t.TempDir(), "generated")

	res, err := c.Render(sampleDoc(1, jpegBytes(t, 20, 20)))
	require.NoError(t, err)
	path, err := WriteFile(dir, "../relatorio_REL-0007_20261014.pdf", res.Bytes)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "relatorio_REL-0007_20261014.pdf"), path)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, onDisk)
}
