package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")
)

// Table: users
type User struct {
	ID                uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	FullName          string    `gorm:"column:nome_completo;size:200;not null"`
	Email             string    `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email"`
	IsMaster          bool      `gorm:"column:is_master;not null;default:false"`
	IsDeveloper       bool      `gorm:"column:is_developer;not null;default:false"`
	IsApprover        bool      `gorm:"column:is_aprovador;not null;default:false"`
	IsExpressApprover bool      `gorm:"column:is_aprovador_express;not null;default:false"`
	AgendaColor       string    `gorm:"column:cor_agenda;size:7;default:'#0d6efd'"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail lowercases and trims an address for comparisons.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Table: user_devices
type UserDevice struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uint64    `gorm:"column:user_id;not null;index"`
	DeviceToken string    `gorm:"column:device_token;size:512;not null;uniqueIndex:ux_user_devices_token"`
	DeviceInfo  string    `gorm:"column:device_info;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	LastActive  time.Time `gorm:"column:last_active"`
}

func (UserDevice) TableName() string { return "user_devices" }

// Table: user_email_config
//
// Per-user outbound email preferences applied when the user approves a report.
type EmailConfig struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:ux_user_email_config_user"`
	ReplyTo   string    `gorm:"column:reply_to;size:255"`
	Signature string    `gorm:"column:assinatura;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailConfig) TableName() string { return "user_email_config" }
