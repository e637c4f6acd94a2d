package notification

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("notification not found")
)

type Status string

const (
	StatusNew  Status = "new"
	StatusRead Status = "read"
)

const (
	KindReportApproved  = "report_approved"
	KindReportSubmitted = "report_submitted"
	KindReportRejected  = "report_rejected"
)

// Table: notificacoes
type Notification struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint64     `gorm:"column:user_id;not null;index"`
	Kind      string     `gorm:"column:tipo;size:50;not null"`
	Title     string     `gorm:"column:titulo;size:200;not null"`
	Body      string     `gorm:"column:mensagem;type:text"`
	Link      string     `gorm:"column:link;size:500"`
	ReportID  *uint64    `gorm:"column:relatorio_id;index"`
	Status    Status     `gorm:"column:status;size:10;not null;default:new"`
	BatchID   string     `gorm:"column:lote_envio;size:32"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	ReadAt    *time.Time `gorm:"column:lida_em"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`

	EmailSent bool   `gorm:"column:email_sent;not null;default:false"`
	EmailOK   bool   `gorm:"column:email_ok;not null;default:false"`
	EmailErr  string `gorm:"column:email_err;type:text"`
	PushSent  bool   `gorm:"column:push_sent;not null;default:false"`
	PushOK    bool   `gorm:"column:push_ok;not null;default:false"`
	PushErr   string `gorm:"column:push_err;type:text"`
}

func (Notification) TableName() string { return "notificacoes" }
