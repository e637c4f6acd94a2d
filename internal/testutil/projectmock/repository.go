package projectmock

import (
	"context"

	domain "site-report-backend/internal/domain/project"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, p *domain.Project) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Project, error)
	SaveFn             func(ctx context.Context, p *domain.Project) error
	DeleteFn           func(ctx context.Context, id uint64) error
	AddClientEmailFn   func(ctx context.Context, e *domain.ClientEmail) error
	ListClientEmailsFn func(ctx context.Context, projectID uint64) ([]domain.ClientEmail, error)
	AddCategoryFn      func(ctx context.Context, c *domain.Category) error
	ListCategoriesFn   func(ctx context.Context, projectID uint64) ([]domain.Category, error)
}

func (m *Repo) Create(ctx context.Context, p *domain.Project) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Project, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.Project) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

func (m *Repo) AddClientEmail(ctx context.Context, e *domain.ClientEmail) error {
	if m.AddClientEmailFn != nil {
		return m.AddClientEmailFn(ctx, e)
	}
	return nil
}

func (m *Repo) ListClientEmails(ctx context.Context, projectID uint64) ([]domain.ClientEmail, error) {
	if m.ListClientEmailsFn != nil {
		return m.ListClientEmailsFn(ctx, projectID)
	}
	return nil, nil
}

func (m *Repo) AddCategory(ctx context.Context, c *domain.Category) error {
	if m.AddCategoryFn != nil {
		return m.AddCategoryFn(ctx, c)
	}
	return nil
}

func (m *Repo) ListCategories(ctx context.Context, projectID uint64) ([]domain.Category, error) {
	if m.ListCategoriesFn != nil {
		return m.ListCategoriesFn(ctx, projectID)
	}
	return nil, nil
}
