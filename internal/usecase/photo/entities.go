package photo

import (
	domainPhoto "site-report-backend/internal/domain/photo"
)

type PutInput struct {
	Kind        domainPhoto.Kind
	ReportID    uint64
	Bytes       []byte
	ContentType string
	Filename    string
	Caption     string
	Category    string
	Location    string
}

type PhotoDTO struct {
	ID          uint64                   `json:"id"`
	ReportID    uint64                   `json:"report_id"`
	Ordinal     int                      `json:"ordinal"`
	Caption     string                   `json:"caption"`
	Category    string                   `json:"category,omitempty"`
	Location    string                   `json:"location,omitempty"`
	ContentType string                   `json:"content_type"`
	SizeBytes   int64                    `json:"size_bytes"`
	ImageHash   string                   `json:"image_hash"`
	Annotations []domainPhoto.Annotation `json:"annotations,omitempty"`
}

// Blob is a photo's bytes as served to clients and the PDF composer.
type Blob struct {
	Bytes       []byte
	ContentType string
	Filename    string
}

// Resolved pairs a photo with its bytes, or the error that kept them away.
type Resolved struct {
	Photo domainPhoto.Photo
	Blob  *Blob
	Err   error
}

func ToDTO(p *domainPhoto.Photo) *PhotoDTO {
	return &PhotoDTO{
		ID:          p.ID,
		ReportID:    p.ReportID,
		Ordinal:     p.Ordinal,
		Caption:     p.Caption,
		Category:    p.Category,
		Location:    p.Location,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		ImageHash:   p.ImageHash,
		Annotations: p.AnnotationList(),
	}
}
