package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("approval default not found")
	ErrNotApprover    = errors.New("user is not an approver")
	ErrRecipientEmpty = errors.New("no valid recipients")
)

// Table: aprovadores_padrao
//
// A row is either project-scoped (ProjectID set) or the global fallback
// (IsGlobal). At most one active global row may exist; the partial unique
// index ux_aprovadores_padrao_global_ativo enforces it.
type ApprovalDefault struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID  *uint64   `gorm:"column:projeto_id;index"`
	ApproverID uint64    `gorm:"column:aprovador_id;not null"`
	IsGlobal   bool      `gorm:"column:is_global;not null;default:false"`
	Active     bool      `gorm:"column:ativo;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ApprovalDefault) TableName() string { return "aprovadores_padrao" }
