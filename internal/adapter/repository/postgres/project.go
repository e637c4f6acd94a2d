package postgres

import (
	"context"

	projectDomain "site-report-backend/internal/domain/project"

	"gorm.io/gorm"
)

type ProjectRepository struct{ db *gorm.DB }

func NewProjectRepository(db *gorm.DB) *ProjectRepository { return &ProjectRepository{db: db} }

func (r *ProjectRepository) Create(ctx context.Context, p *projectDomain.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uint64) (*projectDomain.Project, error) {
	var out projectDomain.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&out).Error; err != nil {
		return nil, notFound(err, projectDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ProjectRepository) Save(ctx context.Context, p *projectDomain.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete walks the ownership graph explicitly so the cascade holds even where
// the engine does not enforce foreign keys.
func (r *ProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reports := "SELECT id FROM relatorios WHERE projeto_id = ?"
		stmts := []string{
			"UPDATE checklist_obra SET concluido_por_relatorio_id = NULL WHERE concluido_por_relatorio_id IN (" + reports + ")",
			"UPDATE notificacoes SET relatorio_id = NULL WHERE relatorio_id IN (" + reports + ")",
			"DELETE FROM fotos_relatorio WHERE relatorio_id IN (" + reports + ")",
			"DELETE FROM relatorios WHERE projeto_id = ?",
			"DELETE FROM checklist_obra WHERE projeto_id = ?",
			"DELETE FROM emails_clientes WHERE projeto_id = ?",
			"DELETE FROM categorias_obra WHERE projeto_id = ?",
			"DELETE FROM aprovadores_padrao WHERE projeto_id = ?",
		}
		for _, s := range stmts {
			if err := tx.Exec(s, id).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&projectDomain.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return projectDomain.ErrNotFound
		}
		return nil
	})
}

func (r *ProjectRepository) AddClientEmail(ctx context.Context, e *projectDomain.ClientEmail) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ProjectRepository) ListClientEmails(ctx context.Context, projectID uint64) ([]projectDomain.ClientEmail, error) {
	var out []projectDomain.ClientEmail
	err := r.db.WithContext(ctx).Where("projeto_id = ?", projectID).Order("id").Find(&out).Error
	return out, err
}

func (r *ProjectRepository) AddCategory(ctx context.Context, c *projectDomain.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ProjectRepository) ListCategories(ctx context.Context, projectID uint64) ([]projectDomain.Category, error) {
	var out []projectDomain.Category
	err := r.db.WithContext(ctx).Where("projeto_id = ?", projectID).Order("ordem, id").Find(&out).Error
	return out, err
}
