package postgres

import (
	"context"
	"time"

	checklistDomain "site-report-backend/internal/domain/checklist"

	"gorm.io/gorm"
)

type ChecklistRepository struct{ db *gorm.DB }

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository { return &ChecklistRepository{db: db} }

func (r *ChecklistRepository) Create(ctx context.Context, it *checklistDomain.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ChecklistRepository) GetByID(ctx context.Context, id uint64) (*checklistDomain.Item, error) {
	var out checklistDomain.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, checklistDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ChecklistRepository) ListByProject(ctx context.Context, projectID uint64, onlyActive bool) ([]checklistDomain.Item, error) {
	q := r.db.WithContext(ctx).Where("projeto_id = ?", projectID)
	if onlyActive {
		q = q.Where("ativo = ?", true)
	}
	var out []checklistDomain.Item
	err := q.Order("ordem, id").Find(&out).Error
	return out, err
}

func (r *ChecklistRepository) NextOrder(ctx context.Context, projectID uint64) (int, error) {
	var n int
	err := r.db.WithContext(ctx).
		Model(&checklistDomain.Item{}).
		Select("COALESCE(MAX(ordem), 0)").
		Where("projeto_id = ? AND ativo = ?", projectID, true).
		Row().Scan(&n)
	return n + 1, err
}

func (r *ChecklistRepository) Deactivate(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).
		Model(&checklistDomain.Item{}).
		Where("id = ?", id).
		Update("ativo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return checklistDomain.ErrNotFound
	}
	return nil
}

// Reorder renumbers the active items of a project in two passes so the
// partial unique index on (projeto_id, ordem) never sees a transient clash.
func (r *ChecklistRepository) Reorder(ctx context.Context, projectID uint64, ids []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uint64
		if err := tx.Model(&checklistDomain.Item{}).
			Where("projeto_id = ? AND ativo = ?", projectID, true).
			Pluck("id", &current).Error; err != nil {
			return err
		}
		if !sameSet(current, ids) {
			return checklistDomain.ErrBadOrder
		}
		for i, id := range ids {
			if err := tx.Model(&checklistDomain.Item{}).Where("id = ?", id).Update("ordem", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range ids {
			if err := tx.Model(&checklistDomain.Item{}).Where("id = ?", id).Update("ordem", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ChecklistRepository) CompleteByReport(ctx context.Context, projectID, reportID uint64, itemIDs []uint64, at time.Time) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&checklistDomain.Item{}).
		Where("projeto_id = ? AND id IN ? AND ativo = ? AND concluido = ?", projectID, itemIDs, true, false).
		Updates(map[string]any{
			"concluido":                  true,
			"concluido_por_relatorio_id": reportID,
			"concluido_em":               at,
		})
	return res.RowsAffected, res.Error
}
