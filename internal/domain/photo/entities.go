package photo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrNotFound         = errors.New("photo not found")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrPhotoTooLarge    = errors.New("photo too large")
	ErrPhotoMissing     = errors.New("photo bytes missing")
	ErrBadOrder         = errors.New("photo order must list every photo exactly once")
)

// Kind selects the report family a photo belongs to.
type Kind string

const (
	KindReport  Kind = "report"
	KindExpress Kind = "express"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)

// Hash is the hex SHA-256 fingerprint stored in imagem_hash.
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Photo is the shape shared by both photo tables.
type Photo struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	ReportID    uint64         `gorm:"column:relatorio_id;not null;index"`
	Ordinal     int            `gorm:"column:ordem;not null"`
	Caption     string         `gorm:"column:legenda;type:text"`
	Category    string         `gorm:"column:categoria;size:120"`
	Location    string         `gorm:"column:local;size:200"`
	Filename    string         `gorm:"column:filename;size:255"`
	Image       []byte         `gorm:"column:imagem"`
	ImageHash   string         `gorm:"column:imagem_hash;size:64"`
	ContentType string         `gorm:"column:content_type;size:64"`
	SizeBytes   int64          `gorm:"column:tamanho_bytes"`
	Annotations datatypes.JSON `gorm:"column:anotacoes"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// Table returns the photo table for the given report family.
func Table(k Kind) string {
	if k == KindExpress {
		return "fotos_relatorios_express"
	}
	return "fotos_relatorio"
}

// HasBytes reports whether the blob column is populated.
func (p *Photo) HasBytes() bool { return p.Image != nil }

// Annotation is one mark drawn over a photo. Coordinates are fractions of the
// image width and height so the overlay survives down-scaling.
type Annotation struct {
	Shape string  `json:"shape" validate:"oneof=line arrow rect circle text"`
	X1    float64 `json:"x1" validate:"gte=0,lte=1"`
	Y1    float64 `json:"y1" validate:"gte=0,lte=1"`
	X2    float64 `json:"x2" validate:"gte=0,lte=1"`
	Y2    float64 `json:"y2" validate:"gte=0,lte=1"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Text  string  `json:"text,omitempty"`
}

// AnnotationList decodes anotacoes; unreadable documents yield nil.
func (p *Photo) AnnotationList() []Annotation {
	if len(p.Annotations) == 0 {
		return nil
	}
	var out []Annotation
	if err := json.Unmarshal(p.Annotations, &out); err != nil {
		return nil
	}
	return out
}
