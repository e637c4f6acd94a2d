package approvalmock

import (
	"context"

	domain "site-report-backend/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return domain.ErrNotFound; unset writes succeed.
type Repo struct {
	ActiveGlobalFn     func(ctx context.Context) (*domain.ApprovalDefault, error)
	ActiveForProjectFn func(ctx context.Context, projectID uint64) (*domain.ApprovalDefault, error)
	SetGlobalFn        func(ctx context.Context, approverID uint64) (*domain.ApprovalDefault, error)
	SetForProjectFn    func(ctx context.Context, projectID, approverID uint64) (*domain.ApprovalDefault, error)
}

func (m *Repo) ActiveGlobal(ctx context.Context) (*domain.ApprovalDefault, error) {
	if m.ActiveGlobalFn != nil {
		return m.ActiveGlobalFn(ctx)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ActiveForProject(ctx context.Context, projectID uint64) (*domain.ApprovalDefault, error) {
	if m.ActiveForProjectFn != nil {
		return m.ActiveForProjectFn(ctx, projectID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) SetGlobal(ctx context.Context, approverID uint64) (*domain.ApprovalDefault, error) {
	if m.SetGlobalFn != nil {
		return m.SetGlobalFn(ctx, approverID)
	}
	return &domain.ApprovalDefault{ApproverID: approverID, IsGlobal: true, Active: true}, nil
}

func (m *Repo) SetForProject(ctx context.Context, projectID, approverID uint64) (*domain.ApprovalDefault, error) {
	if m.SetForProjectFn != nil {
		return m.SetForProjectFn(ctx, projectID, approverID)
	}
	pid := projectID
	return &domain.ApprovalDefault{ProjectID: &pid, ApproverID: approverID, Active: true}, nil
}
