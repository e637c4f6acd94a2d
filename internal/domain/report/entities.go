package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrNotFound            = errors.New("report not found")
	ErrNumberingContention = errors.New("report numbering contention")
	ErrFrozen              = errors.New("report is approved and frozen")
	ErrInvalidTransition   = errors.New("invalid report transition")
	ErrAlreadyApproved     = errors.New("report already approved")
	ErrMissingFields       = errors.New("report is missing required fields")
	ErrNotAuthor           = errors.New("only the author may submit the report")
	// ErrDuplicateNumber is returned by repositories when an insert loses
	// the race for a per-project or express number.
	ErrDuplicateNumber = errors.New("report number already taken")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
)

// PublicNumber renders the per-project sequence as REL-NNNN.
func PublicNumber(n int) string { return fmt.Sprintf("REL-%04d", n) }

// ExpressNumber renders the express sequence as EXP-NNNN.
func ExpressNumber(n int) string { return fmt.Sprintf("EXP-%04d", n) }

// Companion is one person who accompanied the visit.
type Companion struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ParseCompanions accepts [{"name","email"}], ["addr"], a mix of both, null or
// garbage. Entries it cannot read are skipped; malformed documents yield nil.
func ParseCompanions(raw []byte) []Companion {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]Companion, 0, len(items))
	for _, it := range items {
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			out = append(out, Companion{Email: s})
			continue
		}
		var c Companion
		if err := json.Unmarshal(it, &c); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Table: relatorios
type Report struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID         uint64         `gorm:"column:projeto_id;not null;index"`
	ProjectNumber     *int           `gorm:"column:numero_projeto"`
	Number            string         `gorm:"column:numero;size:20"`
	Title             string         `gorm:"column:titulo;size:200"`
	AuthorID          uint64         `gorm:"column:autor_id;not null;index"`
	ApproverID        *uint64        `gorm:"column:aprovador_id"`
	Content           string         `gorm:"column:conteudo;type:text"`
	Companions        datatypes.JSON `gorm:"column:acompanhantes"`
	NextVisitReminder string         `gorm:"column:lembrete_proxima_visita;type:text"`
	Status            Status         `gorm:"column:status;size:20;not null;default:draft"`
	RejectionReason   string         `gorm:"column:motivo_rejeicao;type:text"`
	CompletedItems    datatypes.JSON `gorm:"column:itens_concluidos"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	ApprovedAt        *time.Time     `gorm:"column:aprovado_em"`
}

func (Report) TableName() string { return "relatorios" }

func (r *Report) IsApproved() bool { return r.ApprovedAt != nil || r.Status == StatusApproved }

func (r *Report) CompanionList() []Companion { return ParseCompanions(r.Companions) }

// CompletedItemIDs reads itens_concluidos; non-numeric entries are ignored.
func (r *Report) CompletedItemIDs() []uint64 {
	var raw []json.RawMessage
	if err := json.Unmarshal(r.CompletedItems, &raw); err != nil {
		return nil
	}
	out := make([]uint64, 0, len(raw))
	for _, it := range raw {
		var n uint64
		if err := json.Unmarshal(it, &n); err == nil && n > 0 {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(it, &s); err == nil {
			var parsed uint64
			if _, err := fmt.Sscan(s, &parsed); err == nil && parsed > 0 {
				out = append(out, parsed)
			}
		}
	}
	return out
}

// MissingFields names the fields a draft still needs before submission.
func (r *Report) MissingFields() []string {
	var missing []string
	if r.ProjectID == 0 {
		missing = append(missing, "projeto_id")
	}
	if r.AuthorID == 0 {
		missing = append(missing, "autor_id")
	}
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "titulo")
	}
	if strings.TrimSpace(r.Content) == "" {
		missing = append(missing, "conteudo")
	}
	return missing
}

// SiteInfo is the obra identity captured on an express report.
type SiteInfo struct {
	SiteName           string `gorm:"column:obra_nome;size:200;not null"`
	SiteAddress        string `gorm:"column:obra_endereco;type:text"`
	ResponsibleCompany string `gorm:"column:obra_empresa_responsavel;size:200"`
	ResponsibleName    string `gorm:"column:obra_responsavel;size:200"`
	ContactEmail       string `gorm:"column:obra_email;size:255"`
	ContactPhone       string `gorm:"column:obra_telefone;size:40"`
}

// Table: relatorios_express
type ReportExpress struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Sequence          int            `gorm:"column:sequencia;not null;uniqueIndex:ux_relatorios_express_sequencia"`
	Number            string         `gorm:"column:numero;size:20;not null"`
	Site              SiteInfo       `gorm:"embedded"`
	AuthorID          uint64         `gorm:"column:autor_id;not null;index"`
	ApproverID        *uint64        `gorm:"column:aprovador_id"`
	Content           string         `gorm:"column:conteudo;type:text"`
	Companions        datatypes.JSON `gorm:"column:acompanhantes"`
	NextVisitReminder string         `gorm:"column:lembrete_proxima_visita;type:text"`
	Status            Status         `gorm:"column:status;size:20;not null;default:draft"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
	ApprovedAt        *time.Time     `gorm:"column:aprovado_em"`
}

func (ReportExpress) TableName() string { return "relatorios_express" }

func (r *ReportExpress) IsApproved() bool {
	return r.ApprovedAt != nil || r.Status == StatusApproved
}

func (r *ReportExpress) CompanionList() []Companion { return ParseCompanions(r.Companions) }
