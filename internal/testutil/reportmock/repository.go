package reportmock

import (
	"context"
	"time"

	domain "site-report-backend/internal/domain/report"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writes succeed, unset lookups return domain.ErrNotFound and unset
// aggregates return zero.
type Repo struct {
	CreateFn               func(ctx context.Context, r *domain.Report) error
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Report, error)
	ListByProjectFn        func(ctx context.Context, projectID uint64) ([]domain.Report, error)
	SaveUnapprovedFn       func(ctx context.Context, r *domain.Report, from domain.Status) error
	GuardEditableFn        func(ctx context.Context, id uint64, at time.Time) error
	MaxProjectNumberFn     func(ctx context.Context, projectID uint64) (int, error)
	StampApprovedFn        func(ctx context.Context, id, approverID uint64, at time.Time) (bool, error)
	CreateExpressFn        func(ctx context.Context, r *domain.ReportExpress) error
	GetExpressByIDFn       func(ctx context.Context, id uint64) (*domain.ReportExpress, error)
	MaxExpressSequenceFn   func(ctx context.Context) (int, error)
	StampExpressApprovedFn func(ctx context.Context, id, approverID uint64, at time.Time) (bool, error)
	GuardExpressEditableFn func(ctx context.Context, id uint64, at time.Time) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Report) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Report, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByProject(ctx context.Context, projectID uint64) ([]domain.Report, error) {
	if m.ListByProjectFn != nil {
		return m.ListByProjectFn(ctx, projectID)
	}
	return nil, nil
}

func (m *Repo) SaveUnapproved(ctx context.Context, r *domain.Report, from domain.Status) error {
	if m.SaveUnapprovedFn != nil {
		return m.SaveUnapprovedFn(ctx, r, from)
	}
	return nil
}

func (m *Repo) GuardEditable(ctx context.Context, id uint64, at time.Time) error {
	if m.GuardEditableFn != nil {
		return m.GuardEditableFn(ctx, id, at)
	}
	return nil
}

func (m *Repo) MaxProjectNumber(ctx context.Context, projectID uint64) (int, error) {
	if m.MaxProjectNumberFn != nil {
		return m.MaxProjectNumberFn(ctx, projectID)
	}
	return 0, nil
}

func (m *Repo) StampApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error) {
	if m.StampApprovedFn != nil {
		return m.StampApprovedFn(ctx, id, approverID, at)
	}
	return true, nil
}

func (m *Repo) CreateExpress(ctx context.Context, r *domain.ReportExpress) error {
	if m.CreateExpressFn != nil {
		return m.CreateExpressFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetExpressByID(ctx context.Context, id uint64) (*domain.ReportExpress, error) {
	if m.GetExpressByIDFn != nil {
		return m.GetExpressByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) MaxExpressSequence(ctx context.Context) (int, error) {
	if m.MaxExpressSequenceFn != nil {
		return m.MaxExpressSequenceFn(ctx)
	}
	return 0, nil
}

func (m *Repo) StampExpressApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error) {
	if m.StampExpressApprovedFn != nil {
		return m.StampExpressApprovedFn(ctx, id, approverID, at)
	}
	return true, nil
}

func (m *Repo) GuardExpressEditable(ctx context.Context, id uint64, at time.Time) error {
	if m.GuardExpressEditableFn != nil {
		return m.GuardExpressEditableFn(ctx, id, at)
	}
	return nil
}
