package schema

import (
	"context"
	"fmt"
	"time"

	"site-report-backend/internal/domain/photo"
	"site-report-backend/pkg/logger"

	"gorm.io/gorm"
)

const (
	legacyNumeroIndex      = "ux_relatorios_numero"
	legacyNumeroConstraint = "relatorios_numero_key"
	projectNumberIndex     = "ux_relatorios_projeto_numero_projeto"
	projectPublicIndex     = "ux_relatorios_projeto_numero"
	globalApproverIndex    = "ux_aprovadores_padrao_global_ativo"
	activeChecklistIndex   = "ux_checklist_obra_projeto_ordem_ativo"
)

// Options tunes the data backfills carried by some revisions.
type Options struct {
	NotificationTTL time.Duration
	Log             *logger.Logger
}

func (o Options) ttl() time.Duration {
	if o.NotificationTTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return o.NotificationTTL
}

func (o Options) log() *logger.Logger {
	if o.Log == nil {
		return logger.Nop()
	}
	return o.Log
}

// Revisions is the production chain, oldest first.
//
// Two historical revisions carried the id 20251031_1500. The notifications
// one is the chain member; the other never ran in any deployment and is not
// registered.
func Revisions(opts Options) []Revision {
	return []Revision{
		{
			ID:          "20250110_0900",
			Description: "base tables",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := createTables(tx, &projetoV1{}, &userV1{}, &relatorioV1{}, &fotoV1{}, &emailClienteV1{}, &categoriaV1{}); err != nil {
					return err
				}
				if isPostgres(tx) && tx.Migrator().HasConstraint("relatorios", legacyNumeroConstraint) {
					return nil
				}
				return createIndex(tx, "relatorios", legacyNumeroIndex,
					"CREATE UNIQUE INDEX "+legacyNumeroIndex+" ON relatorios (numero)")
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropTables(tx, "fotos_relatorio", "categorias_obra", "emails_clientes", "relatorios", "users", "projetos")
			},
		},
		{
			ID:          "20250318_1000",
			PreviousID:  "20250110_0900",
			Description: "express reports",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				return createTables(tx, &relatorioExpressV2{}, &fotoExpressV2{})
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropTables(tx, "fotos_relatorios_express", "relatorios_express")
			},
		},
		{
			ID:          "20250522_1400",
			PreviousID:  "20250318_1000",
			Description: "photo blobs",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				for _, table := range []string{photo.Table(photo.KindReport), photo.Table(photo.KindExpress)} {
					if err := addColumns(tx, table, &fotoBlobV3{}, "Imagem", "ImagemHash", "ContentType", "TamanhoBytes", "Anotacoes"); err != nil {
						return err
					}
					if err := backfillPhotoHashes(tx, table); err != nil {
						return err
					}
				}
				return nil
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				for _, table := range []string{photo.Table(photo.KindReport), photo.Table(photo.KindExpress)} {
					if err := dropColumns(tx, table, &fotoBlobV3{}, "Anotacoes", "TamanhoBytes", "ContentType", "ImagemHash", "Imagem"); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID:          "20250805_1100",
			PreviousID:  "20250522_1400",
			Description: "approval defaults",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := createTables(tx, &aprovadorPadraoV4{}); err != nil {
					return err
				}
				return assertSingleGlobalApprover(tx, opts.log())
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropTables(tx, "aprovadores_padrao")
			},
		},
		{
			ID:          "20250912_1630",
			PreviousID:  "20250805_1100",
			Description: "numbering and status columns",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := addColumns(tx, "projetos", &projetoNumeracaoV5{}, "NumeroInicial"); err != nil {
					return err
				}
				return addColumns(tx, "relatorios", &relatorioNumeracaoV5{}, "NumeroProjeto", "Status", "AprovadoEm", "ItensConcluidos", "MotivoRejeicao")
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := dropColumns(tx, "relatorios", &relatorioNumeracaoV5{}, "MotivoRejeicao", "ItensConcluidos", "AprovadoEm", "Status", "NumeroProjeto"); err != nil {
					return err
				}
				return dropColumns(tx, "projetos", &projetoNumeracaoV5{}, "NumeroInicial")
			},
		},
		{
			ID:          "20251016_0800",
			PreviousID:  "20250912_1630",
			Description: "per-project report numbering",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if _, err := BackfillNumbering(ctx, tx, BackfillOptions{Log: opts.log()}); err != nil {
					return err
				}
				if err := dropLegacyNumeroUnique(tx); err != nil {
					return err
				}
				if err := createIndex(tx, "relatorios", projectNumberIndex,
					"CREATE UNIQUE INDEX "+projectNumberIndex+" ON relatorios (projeto_id, numero_projeto)"); err != nil {
					return err
				}
				return createIndex(tx, "relatorios", projectPublicIndex,
					"CREATE UNIQUE INDEX "+projectPublicIndex+" ON relatorios (projeto_id, numero)")
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := dropIndex(tx, "relatorios", projectPublicIndex); err != nil {
					return err
				}
				if err := dropIndex(tx, "relatorios", projectNumberIndex); err != nil {
					return err
				}
				return createIndex(tx, "relatorios", legacyNumeroIndex,
					"CREATE UNIQUE INDEX "+legacyNumeroIndex+" ON relatorios (numero)")
			},
		},
		{
			ID:          "20251031_1500",
			PreviousID:  "20251016_0800",
			Description: "notifications, devices and email config",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				return createTables(tx, &notificacaoV7{}, &userDeviceV7{}, &userEmailConfigV7{})
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropTables(tx, "user_email_config", "user_devices", "notificacoes")
			},
		},
		{
			ID:          "20251105_0930",
			PreviousID:  "20251031_1500",
			Description: "project checklist",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := createTables(tx, &checklistObraV8{}); err != nil {
					return err
				}
				return createIndex(tx, "checklist_obra", activeChecklistIndex,
					"CREATE UNIQUE INDEX "+activeChecklistIndex+" ON checklist_obra (projeto_id, ordem) WHERE ativo")
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropTables(tx, "checklist_obra")
			},
		},
		{
			ID:          "20251120_1200",
			PreviousID:  "20251105_0930",
			Description: "notification delivery accounting",
			Upgrade: func(ctx context.Context, tx *gorm.DB) error {
				if err := addColumns(tx, "notificacoes", &notificacaoEntregaV9{},
					"LoteEnvio", "EmailSent", "EmailOK", "EmailErr", "PushSent", "PushOK", "PushErr"); err != nil {
					return err
				}
				if err := backfillNotificationExpiry(tx, opts.ttl()); err != nil {
					return err
				}
				return assertSingleGlobalApprover(tx, opts.log())
			},
			Downgrade: func(ctx context.Context, tx *gorm.DB) error {
				return dropColumns(tx, "notificacoes", &notificacaoEntregaV9{},
					"PushErr", "PushOK", "PushSent", "EmailErr", "EmailOK", "EmailSent", "LoteEnvio")
			},
		},
	}
}

// backfillPhotoHashes fills hash and size for rows that carry bytes but no hash.
func backfillPhotoHashes(tx *gorm.DB, table string) error {
	var ids []uint64
	if err := tx.Table(table).
		Where("imagem IS NOT NULL AND imagem_hash IS NULL").
		Order("id").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		var blob []byte
		if err := tx.Table(table).Where("id = ?", id).Select("imagem").Row().Scan(&blob); err != nil {
			return fmt.Errorf("read %s.%d: %w", table, id, err)
		}
		if err := tx.Table(table).Where("id = ? AND imagem_hash IS NULL", id).Updates(map[string]any{
			"imagem_hash":   photo.Hash(blob),
			"tamanho_bytes": int64(len(blob)),
		}).Error; err != nil {
			return err
		}
	}
	return nil
}

// backfillNotificationExpiry sets expires_at = created_at + ttl where missing.
func backfillNotificationExpiry(tx *gorm.DB, ttl time.Duration) error {
	type row struct {
		ID        uint64
		CreatedAt time.Time
	}
	var rows []row
	if err := tx.Table("notificacoes").
		Select("id, created_at").
		Where("expires_at IS NULL").
		Order("id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for _, r := range rows {
		created := r.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		if err := tx.Table("notificacoes").
			Where("id = ? AND expires_at IS NULL", r.ID).
			Update("expires_at", created.Add(ttl)).Error; err != nil {
			return err
		}
	}
	return nil
}

// assertSingleGlobalApprover keeps only the newest active global approver
// and (re)creates the partial unique index guarding it.
func assertSingleGlobalApprover(tx *gorm.DB, log *logger.Logger) error {
	var keep uint64
	if err := tx.Table("aprovadores_padrao").
		Select("COALESCE(MAX(id), 0)").
		Where("is_global = ? AND ativo = ?", true, true).
		Row().Scan(&keep); err != nil {
		return err
	}
	if keep > 0 {
		res := tx.Table("aprovadores_padrao").
			Where("is_global = ? AND ativo = ? AND id <> ?", true, true, keep).
			Update("ativo", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.Warn("deactivated duplicate global approvers", "kept", keep, "deactivated", res.RowsAffected)
		}
	}
	return createIndex(tx, "aprovadores_padrao", globalApproverIndex,
		"CREATE UNIQUE INDEX "+globalApproverIndex+" ON aprovadores_padrao (is_global) WHERE is_global AND ativo")
}

func dropLegacyNumeroUnique(tx *gorm.DB) error {
	if err := dropIndex(tx, "relatorios", legacyNumeroIndex); err != nil {
		return err
	}
	if isPostgres(tx) && tx.Migrator().HasConstraint("relatorios", legacyNumeroConstraint) {
		return tx.Migrator().DropConstraint("relatorios", legacyNumeroConstraint)
	}
	return nil
}

// hasLegacyNumeroUnique reports whether the global unique on numero survives.
func hasLegacyNumeroUnique(tx *gorm.DB) bool {
	if tx.Migrator().HasIndex("relatorios", legacyNumeroIndex) {
		return true
	}
	return isPostgres(tx) && tx.Migrator().HasConstraint("relatorios", legacyNumeroConstraint)
}
