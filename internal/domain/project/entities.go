package project

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("project not found")
)

// TechnicalInfo holds the twelve free-text technical fields of a site.
type TechnicalInfo struct {
	Builder        string `gorm:"column:construtora;type:text"`
	SiteEngineer   string `gorm:"column:engenheiro_obra;type:text"`
	WorkType       string `gorm:"column:tipo_obra;type:text"`
	BuiltArea      string `gorm:"column:area_construida;type:text"`
	Floors         string `gorm:"column:numero_pavimentos;type:text"`
	StructureType  string `gorm:"column:tipo_estrutura;type:text"`
	FoundationType string `gorm:"column:tipo_fundacao;type:text"`
	PermitNumber   string `gorm:"column:alvara;type:text"`
	ARTNumber      string `gorm:"column:art_numero;type:text"`
	StartDate      string `gorm:"column:data_inicio;type:text"`
	ExpectedEnd    string `gorm:"column:previsao_termino;type:text"`
	TechnicalNotes string `gorm:"column:observacoes_tecnicas;type:text"`
}

// Table: projetos
type Project struct {
	ID                 uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	Name               string        `gorm:"column:nome;size:200;not null"`
	Address            string        `gorm:"column:endereco;type:text"`
	ResponsibleCompany string        `gorm:"column:empresa_responsavel;size:200"`
	StartingNumber     int           `gorm:"column:numero_inicial;not null;default:1"`
	ResponsibleUserID  *uint64       `gorm:"column:responsavel_id;index"`
	TechnicalInfo      TechnicalInfo `gorm:"embedded"`
	CreatedAt          time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string { return "projetos" }

// FirstNumber is the lowest per-project report number this project may use.
func (p *Project) FirstNumber() int {
	if p == nil || p.StartingNumber < 1 {
		return 1
	}
	return p.StartingNumber
}

// Table: emails_clientes
type ClientEmail struct {
	ID             uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID      uint64  `gorm:"column:projeto_id;not null;index"`
	Email          *string `gorm:"column:email;size:255"`
	Phone          *string `gorm:"column:telefone;size:40"`
	ContactName    string  `gorm:"column:nome_contato;size:200"`
	ReceivesReport bool    `gorm:"column:recebe_relatorio;not null"`
}

func (ClientEmail) TableName() string { return "emails_clientes" }

// Table: categorias_obra
type Category struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID uint64 `gorm:"column:projeto_id;not null;index"`
	Name      string `gorm:"column:nome;size:120;not null"`
	Order     int    `gorm:"column:ordem;not null;default:0"`
}

func (Category) TableName() string { return "categorias_obra" }
