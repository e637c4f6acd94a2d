package pdf

// Coordinates are PDF points with the origin at the bottom-left corner of
// the page, the same space the template was authored in.

type Field struct {
	X, Y        float64
	Size        float64
	Bold        bool
	Placeholder string
	// Wrap > 0 flows the value over lines of that width, stopping at MinY.
	Wrap float64
	MinY float64
}

type Layout struct {
	Date         Field
	Number       Field
	Company      Field
	ProjectName  Field
	Address      Field
	Observations Field
	Author       Field
	Approver     Field
	Responsible  Field

	// Photo grid, 2x2.
	ColumnX    [2]float64
	FirstRowY  float64
	RowPitch   float64
	CellWidth  float64
	CellHeight float64
	CaptionGap float64
	CaptionPt  float64
}

const GridCells = 4

// DefaultLayout matches relatorio_template.pdf.
func DefaultLayout() Layout {
	return Layout{
		Date:         Field{X: 430, Y: 790, Size: 10, Placeholder: "DD/MM/AAAA"},
		Number:       Field{X: 430, Y: 775, Size: 10, Bold: true, Placeholder: "REL-0000"},
		Company:      Field{X: 120, Y: 735, Size: 10, Placeholder: "EMPRESA RESPONSAVEL"},
		ProjectName:  Field{X: 120, Y: 720, Size: 10, Bold: true, Placeholder: "NOME DA OBRA"},
		Address:      Field{X: 120, Y: 705, Size: 9, Placeholder: "ENDERECO DA OBRA"},
		Observations: Field{X: 25, Y: 660, Size: 9, Placeholder: "ITENS OBSERVADOS", Wrap: 545, MinY: 470},
		Author:       Field{X: 40, Y: 60, Size: 9, Placeholder: "NOME DO AUTOR"},
		Approver:     Field{X: 230, Y: 60, Size: 9, Placeholder: "NOME DO APROVADOR"},
		Responsible:  Field{X: 420, Y: 60, Size: 9, Placeholder: "NOME DO RESPONSAVEL"},

		ColumnX:    [2]float64{19.7, 302.5},
		FirstRowY:  350,
		RowPitch:   150,
		CellWidth:  140,
		CellHeight: 105,
		CaptionGap: 10,
		CaptionPt:  8,
	}
}

// Cell returns the bottom-left corner of grid cell i (0..3), row-major.
func (l Layout) Cell(i int) (x, y float64) {
	return l.ColumnX[i%2], l.FirstRowY - float64(i/2)*l.RowPitch
}

// EraseBox is the white rectangle that hides a placeholder: its width follows
// the placeholder length, its height the font size plus two points.
func EraseBox(placeholder string, size float64) (w, h float64) {
	return float64(len([]rune(placeholder))) * 0.6 * size, size + 2
}

func (l Layout) fields(d Document) []struct {
	f Field
	v string
} {
	return []struct {
		f Field
		v string
	}{
		{l.Date, d.Date},
		{l.Number, d.Number},
		{l.Company, d.Company},
		{l.ProjectName, d.ProjectName},
		{l.Address, d.Address},
		{l.Observations, d.Observations},
		{l.Author, d.Author},
		{l.Approver, d.Approver},
		{l.Responsible, d.Responsible},
	}
}
