package postgres

import (
	"context"

	photoDomain "site-report-backend/internal/domain/photo"

	"gorm.io/gorm"
)

type PhotoRepository struct{ db *gorm.DB }

func NewPhotoRepository(db *gorm.DB) *PhotoRepository { return &PhotoRepository{db: db} }

func (r *PhotoRepository) table(ctx context.Context, k photoDomain.Kind) *gorm.DB {
	return r.db.WithContext(ctx).Table(photoDomain.Table(k))
}

func (r *PhotoRepository) Create(ctx context.Context, k photoDomain.Kind, p *photoDomain.Photo) error {
	return r.table(ctx, k).Create(p).Error
}

func (r *PhotoRepository) GetByID(ctx context.Context, k photoDomain.Kind, id uint64) (*photoDomain.Photo, error) {
	var out photoDomain.Photo
	if err := r.table(ctx, k).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, photoDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *PhotoRepository) ListByReport(ctx context.Context, k photoDomain.Kind, reportID uint64) ([]photoDomain.Photo, error) {
	var out []photoDomain.Photo
	err := r.table(ctx, k).Where("relatorio_id = ?", reportID).Order("ordem, id").Find(&out).Error
	return out, err
}

func (r *PhotoRepository) CountByReport(ctx context.Context, k photoDomain.Kind, reportID uint64) (int64, error) {
	var n int64
	err := r.table(ctx, k).Where("relatorio_id = ?", reportID).Count(&n).Error
	return n, err
}

func (r *PhotoRepository) NextOrdinal(ctx context.Context, k photoDomain.Kind, reportID uint64) (int, error) {
	var n int
	err := r.table(ctx, k).
		Select("COALESCE(MAX(ordem), 0)").
		Where("relatorio_id = ?", reportID).
		Row().Scan(&n)
	return n + 1, err
}

func (r *PhotoRepository) Update(ctx context.Context, k photoDomain.Kind, p *photoDomain.Photo) error {
	res := r.table(ctx, k).Where("id = ?", p.ID).Updates(map[string]any{
		"legenda":   p.Caption,
		"categoria": p.Category,
		"local":     p.Location,
		"anotacoes": p.Annotations,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return photoDomain.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) Delete(ctx context.Context, k photoDomain.Kind, id uint64) error {
	res := r.table(ctx, k).Where("id = ?", id).Delete(&photoDomain.Photo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return photoDomain.ErrNotFound
	}
	return nil
}

func (r *PhotoRepository) Reorder(ctx context.Context, k photoDomain.Kind, reportID uint64, ids []uint64) error {
	var current []uint64
	if err := r.table(ctx, k).Where("relatorio_id = ?", reportID).Pluck("id", &current).Error; err != nil {
		return err
	}
	if !sameSet(current, ids) {
		return photoDomain.ErrBadOrder
	}
	for i, id := range ids {
		if err := r.table(ctx, k).
			Where("id = ? AND relatorio_id = ?", id, reportID).
			Update("ordem", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PhotoRepository) Compact(ctx context.Context, k photoDomain.Kind, reportID uint64) error {
	var rows []struct {
		ID    uint64
		Ordem int
	}
	if err := r.table(ctx, k).
		Select("id, ordem").
		Where("relatorio_id = ?", reportID).
		Order("ordem, id").
		Scan(&rows).Error; err != nil {
		return err
	}
	for i, row := range rows {
		if row.Ordem == i+1 {
			continue
		}
		if err := r.table(ctx, k).Where("id = ?", row.ID).Update("ordem", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

func sameSet(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint64]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	return true
}
