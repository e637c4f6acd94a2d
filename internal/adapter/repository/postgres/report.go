package postgres

import (
	"context"
	"time"

	reportDomain "site-report-backend/internal/domain/report"

	"gorm.io/gorm"
)

type ReportRepository struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) *ReportRepository { return &ReportRepository{db: db} }

// Create inserts r; losing the (projeto_id, numero_projeto) race surfaces as
// reportDomain.ErrDuplicateNumber.
func (r *ReportRepository) Create(ctx context.Context, rep *reportDomain.Report) error {
	return duplicate(r.db.WithContext(ctx).Create(rep).Error, reportDomain.ErrDuplicateNumber)
}

func (r *ReportRepository) GetByID(ctx context.Context, id uint64) (*reportDomain.Report, error) {
	var out reportDomain.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, reportDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ReportRepository) ListByProject(ctx context.Context, projectID uint64) ([]reportDomain.Report, error) {
	var out []reportDomain.Report
	err := r.db.WithContext(ctx).
		Where("projeto_id = ?", projectID).
		Order("numero_projeto, id").
		Find(&out).Error
	return out, err
}

// SaveUnapproved never touches numero, autor_id or the approval columns, so a
// stale copy of rep cannot undo a concurrent approval.
func (r *ReportRepository) SaveUnapproved(ctx context.Context, rep *reportDomain.Report, from reportDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(&reportDomain.Report{}).
		Where("id = ? AND aprovado_em IS NULL AND status = ?", rep.ID, from).
		Updates(map[string]any{
			"titulo":                  rep.Title,
			"conteudo":                rep.Content,
			"acompanhantes":           rep.Companions,
			"lembrete_proxima_visita": rep.NextVisitReminder,
			"itens_concluidos":        rep.CompletedItems,
			"status":                  rep.Status,
			"motivo_rejeicao":         rep.RejectionReason,
			"updated_at":              rep.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	cur, err := r.GetByID(ctx, rep.ID)
	if err != nil {
		return err
	}
	if cur.IsApproved() {
		return reportDomain.ErrFrozen
	}
	return reportDomain.ErrInvalidTransition
}

func (r *ReportRepository) GuardEditable(ctx context.Context, id uint64, at time.Time) error {
	return r.guard(ctx, &reportDomain.Report{}, id, at)
}

func (r *ReportRepository) GuardExpressEditable(ctx context.Context, id uint64, at time.Time) error {
	return r.guard(ctx, &reportDomain.ReportExpress{}, id, at)
}

func (r *ReportRepository) guard(ctx context.Context, model any, id uint64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND aprovado_em IS NULL", id).
		Update("updated_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return reportDomain.ErrNotFound
	}
	return reportDomain.ErrFrozen
}

func (r *ReportRepository) MaxProjectNumber(ctx context.Context, projectID uint64) (int, error) {
	var n int
	err := r.db.WithContext(ctx).
		Model(&reportDomain.Report{}).
		Select("COALESCE(MAX(numero_projeto), 0)").
		Where("projeto_id = ?", projectID).
		Row().Scan(&n)
	return n, err
}

func (r *ReportRepository) StampApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&reportDomain.Report{}).
		Where("id = ? AND aprovado_em IS NULL", id).
		Updates(map[string]any{
			"aprovado_em":  at,
			"aprovador_id": approverID,
			"status":       reportDomain.StatusApproved,
			"updated_at":   at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *ReportRepository) CreateExpress(ctx context.Context, rep *reportDomain.ReportExpress) error {
	return duplicate(r.db.WithContext(ctx).Create(rep).Error, reportDomain.ErrDuplicateNumber)
}

func (r *ReportRepository) GetExpressByID(ctx context.Context, id uint64) (*reportDomain.ReportExpress, error) {
	var out reportDomain.ReportExpress
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, reportDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ReportRepository) MaxExpressSequence(ctx context.Context) (int, error) {
	var n int
	err := r.db.WithContext(ctx).
		Model(&reportDomain.ReportExpress{}).
		Select("COALESCE(MAX(sequencia), 0)").
		Row().Scan(&n)
	return n, err
}

func (r *ReportRepository) StampExpressApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&reportDomain.ReportExpress{}).
		Where("id = ? AND aprovado_em IS NULL", id).
		Updates(map[string]any{
			"aprovado_em":  at,
			"aprovador_id": approverID,
			"status":       reportDomain.StatusApproved,
			"updated_at":   at,
		})
	return res.RowsAffected == 1, res.Error
}
