package schema

import (
	"time"

	"gorm.io/datatypes"
)

// Table shapes as each revision introduced them. They are frozen: later
// changes get a new snapshot in the revision that makes them.

type projetoRef struct {
	ID uint64 `gorm:"column:id;primaryKey"`
}

func (projetoRef) TableName() string { return "projetos" }

type userRef struct {
	ID uint64 `gorm:"column:id;primaryKey"`
}

func (userRef) TableName() string { return "users" }

type relatorioRef struct {
	ID uint64 `gorm:"column:id;primaryKey"`
}

func (relatorioRef) TableName() string { return "relatorios" }

type relatorioExpressRef struct {
	ID uint64 `gorm:"column:id;primaryKey"`
}

func (relatorioExpressRef) TableName() string { return "relatorios_express" }

// 20250110_0900

type projetoV1 struct {
	ID                  uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Nome                string    `gorm:"column:nome;size:200;not null"`
	Endereco            string    `gorm:"column:endereco;type:text"`
	EmpresaResponsavel  string    `gorm:"column:empresa_responsavel;size:200"`
	ResponsavelID       *uint64   `gorm:"column:responsavel_id;index:idx_projetos_responsavel"`
	Construtora         string    `gorm:"column:construtora;type:text"`
	EngenheiroObra      string    `gorm:"column:engenheiro_obra;type:text"`
	TipoObra            string    `gorm:"column:tipo_obra;type:text"`
	AreaConstruida      string    `gorm:"column:area_construida;type:text"`
	NumeroPavimentos    string    `gorm:"column:numero_pavimentos;type:text"`
	TipoEstrutura       string    `gorm:"column:tipo_estrutura;type:text"`
	TipoFundacao        string    `gorm:"column:tipo_fundacao;type:text"`
	Alvara              string    `gorm:"column:alvara;type:text"`
	ArtNumero           string    `gorm:"column:art_numero;type:text"`
	DataInicio          string    `gorm:"column:data_inicio;type:text"`
	PrevisaoTermino     string    `gorm:"column:previsao_termino;type:text"`
	ObservacoesTecnicas string    `gorm:"column:observacoes_tecnicas;type:text"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (projetoV1) TableName() string { return "projetos" }

type userV1 struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	NomeCompleto       string    `gorm:"column:nome_completo;size:200;not null"`
	Email              string    `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email"`
	IsMaster           bool      `gorm:"column:is_master;not null;default:false"`
	IsDeveloper        bool      `gorm:"column:is_developer;not null;default:false"`
	IsAprovador        bool      `gorm:"column:is_aprovador;not null;default:false"`
	IsAprovadorExpress bool      `gorm:"column:is_aprovador_express;not null;default:false"`
	CorAgenda          string    `gorm:"column:cor_agenda;size:7;default:#0d6efd"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (userV1) TableName() string { return "users" }

type relatorioV1 struct {
	ID                    uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	ProjetoID             uint64         `gorm:"column:projeto_id;not null;index:idx_relatorios_projeto"`
	Projeto               projetoRef     `gorm:"foreignKey:ProjetoID;constraint:OnDelete:CASCADE"`
	Numero                *string        `gorm:"column:numero;size:20"`
	Titulo                string         `gorm:"column:titulo;size:200"`
	AutorID               uint64         `gorm:"column:autor_id;not null;index:idx_relatorios_autor"`
	Autor                 userRef        `gorm:"foreignKey:AutorID"`
	AprovadorID           *uint64        `gorm:"column:aprovador_id"`
	Conteudo              string         `gorm:"column:conteudo;type:text"`
	Acompanhantes         datatypes.JSON `gorm:"column:acompanhantes"`
	LembreteProximaVisita string         `gorm:"column:lembrete_proxima_visita;type:text"`
	CreatedAt             time.Time      `gorm:"column:created_at"`
	UpdatedAt             time.Time      `gorm:"column:updated_at"`
}

func (relatorioV1) TableName() string { return "relatorios" }

type fotoV1 struct {
	ID          uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	RelatorioID uint64       `gorm:"column:relatorio_id;not null;index:idx_fotos_relatorio_relatorio"`
	Relatorio   relatorioRef `gorm:"foreignKey:RelatorioID;constraint:OnDelete:CASCADE"`
	Ordem       int          `gorm:"column:ordem;not null"`
	Legenda     string       `gorm:"column:legenda;type:text"`
	Categoria   string       `gorm:"column:categoria;size:120"`
	Local       string       `gorm:"column:local;size:200"`
	Filename    string       `gorm:"column:filename;size:255"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
}

func (fotoV1) TableName() string { return "fotos_relatorio" }

type emailClienteV1 struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProjetoID       uint64     `gorm:"column:projeto_id;not null;index:idx_emails_clientes_projeto"`
	Projeto         projetoRef `gorm:"foreignKey:ProjetoID;constraint:OnDelete:CASCADE"`
	Email           *string    `gorm:"column:email;size:255"`
	Telefone        *string    `gorm:"column:telefone;size:40"`
	NomeContato     string     `gorm:"column:nome_contato;size:200"`
	RecebeRelatorio bool       `gorm:"column:recebe_relatorio;not null;default:true"`
}

func (emailClienteV1) TableName() string { return "emails_clientes" }

type categoriaV1 struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProjetoID uint64     `gorm:"column:projeto_id;not null;index:idx_categorias_obra_projeto"`
	Projeto   projetoRef `gorm:"foreignKey:ProjetoID;constraint:OnDelete:CASCADE"`
	Nome      string     `gorm:"column:nome;size:120;not null"`
	Ordem     int        `gorm:"column:ordem;not null;default:0"`
}

func (categoriaV1) TableName() string { return "categorias_obra" }

// 20250318_1000

type relatorioExpressV2 struct {
	ID                     uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Sequencia              int            `gorm:"column:sequencia;not null;uniqueIndex:ux_relatorios_express_sequencia"`
	Numero                 string         `gorm:"column:numero;size:20;not null"`
	ObraNome               string         `gorm:"column:obra_nome;size:200;not null"`
	ObraEndereco           string         `gorm:"column:obra_endereco;type:text"`
	ObraEmpresaResponsavel string         `gorm:"column:obra_empresa_responsavel;size:200"`
	ObraResponsavel        string         `gorm:"column:obra_responsavel;size:200"`
	ObraEmail              string         `gorm:"column:obra_email;size:255"`
	ObraTelefone           string         `gorm:"column:obra_telefone;size:40"`
	AutorID                uint64         `gorm:"column:autor_id;not null;index:idx_relatorios_express_autor"`
	Autor                  userRef        `gorm:"foreignKey:AutorID"`
	AprovadorID            *uint64        `gorm:"column:aprovador_id"`
	Conteudo               string         `gorm:"column:conteudo;type:text"`
	Acompanhantes          datatypes.JSON `gorm:"column:acompanhantes"`
	LembreteProximaVisita  string         `gorm:"column:lembrete_proxima_visita;type:text"`
	Status                 string         `gorm:"column:status;size:20;not null;default:draft"`
	CreatedAt              time.Time      `gorm:"column:created_at"`
	UpdatedAt              time.Time      `gorm:"column:updated_at"`
	AprovadoEm             *time.Time     `gorm:"column:aprovado_em"`
}

func (relatorioExpressV2) TableName() string { return "relatorios_express" }

type fotoExpressV2 struct {
	ID          uint64              `gorm:"column:id;primaryKey;autoIncrement"`
	RelatorioID uint64              `gorm:"column:relatorio_id;not null;index:idx_fotos_relatorios_express_relatorio"`
	Relatorio   relatorioExpressRef `gorm:"foreignKey:RelatorioID;constraint:OnDelete:CASCADE"`
	Ordem       int                 `gorm:"column:ordem;not null"`
	Legenda     string              `gorm:"column:legenda;type:text"`
	Categoria   string              `gorm:"column:categoria;size:120"`
	Local       string              `gorm:"column:local;size:200"`
	Filename    string              `gorm:"column:filename;size:255"`
	CreatedAt   time.Time           `gorm:"column:created_at"`
}

func (fotoExpressV2) TableName() string { return "fotos_relatorios_express" }

// 20250522_1400, applied to both photo tables.

type fotoBlobV3 struct {
	Imagem       []byte         `gorm:"column:imagem"`
	ImagemHash   *string        `gorm:"column:imagem_hash;size:64"`
	ContentType  *string        `gorm:"column:content_type;size:64"`
	TamanhoBytes *int64         `gorm:"column:tamanho_bytes"`
	Anotacoes    datatypes.JSON `gorm:"column:anotacoes"`
}

// 20250805_1100

type aprovadorPadraoV4 struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ProjetoID   *uint64   `gorm:"column:projeto_id;index:idx_aprovadores_padrao_projeto"`
	AprovadorID uint64    `gorm:"column:aprovador_id;not null"`
	Aprovador   userRef   `gorm:"foreignKey:AprovadorID;constraint:OnDelete:CASCADE"`
	IsGlobal    bool      `gorm:"column:is_global;not null;default:false"`
	Ativo       bool      `gorm:"column:ativo;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (aprovadorPadraoV4) TableName() string { return "aprovadores_padrao" }

// 20250912_1630

type projetoNumeracaoV5 struct {
	NumeroInicial int `gorm:"column:numero_inicial;not null;default:1"`
}

type relatorioNumeracaoV5 struct {
	NumeroProjeto   *int           `gorm:"column:numero_projeto"`
	Status          string         `gorm:"column:status;size:20;not null;default:draft"`
	AprovadoEm      *time.Time     `gorm:"column:aprovado_em"`
	ItensConcluidos datatypes.JSON `gorm:"column:itens_concluidos"`
	MotivoRejeicao  *string        `gorm:"column:motivo_rejeicao;type:text"`
}

// 20251031_1500

type notificacaoV7 struct {
	ID          uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uint64       `gorm:"column:user_id;not null;index:idx_notificacoes_user"`
	User        userRef      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tipo        string       `gorm:"column:tipo;size:50;not null"`
	Titulo      string       `gorm:"column:titulo;size:200;not null"`
	Mensagem    string       `gorm:"column:mensagem;type:text"`
	Link        string       `gorm:"column:link;size:500"`
	RelatorioID *uint64      `gorm:"column:relatorio_id;index:idx_notificacoes_relatorio"`
	Relatorio   relatorioRef `gorm:"foreignKey:RelatorioID;constraint:OnDelete:SET NULL"`
	Status      string       `gorm:"column:status;size:10;not null;default:new"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
	LidaEm      *time.Time   `gorm:"column:lida_em"`
	ExpiresAt   *time.Time   `gorm:"column:expires_at"`
}

func (notificacaoV7) TableName() string { return "notificacoes" }

type userDeviceV7 struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uint64    `gorm:"column:user_id;not null;index:idx_user_devices_user"`
	User        userRef   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	DeviceToken string    `gorm:"column:device_token;size:512;not null;uniqueIndex:ux_user_devices_token"`
	DeviceInfo  string    `gorm:"column:device_info;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	LastActive  time.Time `gorm:"column:last_active"`
}

func (userDeviceV7) TableName() string { return "user_devices" }

type userEmailConfigV7 struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     uint64    `gorm:"column:user_id;not null;uniqueIndex:ux_user_email_config_user"`
	User       userRef   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ReplyTo    string    `gorm:"column:reply_to;size:255"`
	Assinatura string    `gorm:"column:assinatura;type:text"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (userEmailConfigV7) TableName() string { return "user_email_config" }

// 20251105_0930

type checklistObraV8 struct {
	ID                      uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	ProjetoID               uint64       `gorm:"column:projeto_id;not null;index:idx_checklist_obra_projeto"`
	Projeto                 projetoRef   `gorm:"foreignKey:ProjetoID;constraint:OnDelete:CASCADE"`
	Texto                   string       `gorm:"column:texto;type:text;not null"`
	Ordem                   int          `gorm:"column:ordem;not null"`
	Ativo                   bool         `gorm:"column:ativo;not null;default:true"`
	Concluido               bool         `gorm:"column:concluido;not null;default:false"`
	ConcluidoPorRelatorioID *uint64      `gorm:"column:concluido_por_relatorio_id"`
	ConcluidoPorRelatorio   relatorioRef `gorm:"foreignKey:ConcluidoPorRelatorioID;constraint:OnDelete:SET NULL"`
	ConcluidoEm             *time.Time   `gorm:"column:concluido_em"`
	CreatedAt               time.Time    `gorm:"column:created_at"`
}

func (checklistObraV8) TableName() string { return "checklist_obra" }

// 20251120_1200

type notificacaoEntregaV9 struct {
	LoteEnvio *string `gorm:"column:lote_envio;size:32"`
	EmailSent bool    `gorm:"column:email_sent;not null;default:false"`
	EmailOK   bool    `gorm:"column:email_ok;not null;default:false"`
	EmailErr  *string `gorm:"column:email_err;type:text"`
	PushSent  bool    `gorm:"column:push_sent;not null;default:false"`
	PushOK    bool    `gorm:"column:push_ok;not null;default:false"`
	PushErr   *string `gorm:"column:push_err;type:text"`
}
