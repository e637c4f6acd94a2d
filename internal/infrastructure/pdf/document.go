package pdf

import (
	"time"

	"site-report-backend/internal/domain/photo"
)

// Document is everything the composer writes over the template.
type Document struct {
	Date         string
	Number       string
	Company      string
	ProjectName  string
	Address      string
	Observations string
	Author       string
	Approver     string
	Responsible  string

	Photos []Photo

	// RenderedAt is embedded as the creation date; it is the only input
	// that varies between otherwise identical renders.
	RenderedAt time.Time
}

type Photo struct {
	ID          uint64
	Bytes       []byte
	Caption     string
	Annotations []photo.Annotation
	// Err is set when the bytes could not be loaded; the cell stays empty.
	Err error
}

type Skip struct {
	Index   int
	PhotoID uint64
	Reason  string
}

type Result struct {
	Bytes    []byte
	Rendered int
	Skipped  []Skip
}
