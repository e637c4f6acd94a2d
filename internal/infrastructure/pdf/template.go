package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

var ErrTemplateExists = errors.New("pdf template already exists")

const templateTitle = "RELATORIO DE VISITA TECNICA"

// WriteTemplate authors a blank one-page template for l: every placeholder at
// its field position and an empty frame per photo cell. An existing file is
// only replaced when overwrite is set.
func WriteTemplate(path string, l Layout, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrTemplateExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := fpdf.New("P", "pt", "A4", "")
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	f.SetCatalogSort(true)
	f.AddPage()
	_, pageH := f.GetPageSize()

	f.SetFont(fontFamily, "B", 14)
	f.Text(25, pageH-815, templateTitle)
	for _, fv := range l.fields(Document{}) {
		style := ""
		if fv.f.Bold {
			style = "B"
		}
		f.SetFont(fontFamily, style, fv.f.Size)
		f.Text(fv.f.X, pageH-fv.f.Y, fv.f.Placeholder)
	}

	f.SetDrawColor(180, 180, 180)
	f.SetLineWidth(0.5)
	for i := 0; i < GridCells; i++ {
		x, y := l.Cell(i)
		f.Rect(x, pageH-y-l.CellHeight, l.CellWidth, l.CellHeight, "D")
	}
	return f.OutputFileAndClose(path)
}
