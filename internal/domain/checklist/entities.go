package checklist

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("checklist item not found")
	ErrBadOrder = errors.New("checklist order must list every active item exactly once")
)

// Table: checklist_obra
//
// (projeto_id, ordem) is unique among active rows.
type Item struct {
	ID                  uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID           uint64     `gorm:"column:projeto_id;not null;index"`
	Text                string     `gorm:"column:texto;type:text;not null"`
	Order               int        `gorm:"column:ordem;not null"`
	Active              bool       `gorm:"column:ativo;not null"`
	Completed           bool       `gorm:"column:concluido;not null;default:false"`
	CompletedByReportID *uint64    `gorm:"column:concluido_por_relatorio_id"`
	CompletedAt         *time.Time `gorm:"column:concluido_em"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Item) TableName() string { return "checklist_obra" }
