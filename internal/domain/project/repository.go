package project

import "context"

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id uint64) (*Project, error)
	Save(ctx context.Context, p *Project) error

	// Delete removes the project with its reports, photos, checklist items,
	// client contacts and categories.
	Delete(ctx context.Context, id uint64) error

	AddClientEmail(ctx context.Context, e *ClientEmail) error
	ListClientEmails(ctx context.Context, projectID uint64) ([]ClientEmail, error)

	AddCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context, projectID uint64) ([]Category, error)
}
