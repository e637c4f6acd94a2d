package approval

import (
	"context"
	"errors"

	domainApproval "site-report-backend/internal/domain/approval"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"
)

type DefaultDTO struct {
	ID         uint64  `json:"id"`
	ProjectID  *uint64 `json:"project_id,omitempty"`
	ApproverID uint64  `json:"approver_id"`
	IsGlobal   bool    `json:"is_global"`
}

func toDefaultDTO(d *domainApproval.ApprovalDefault) *DefaultDTO {
	return &DefaultDTO{ID: d.ID, ProjectID: d.ProjectID, ApproverID: d.ApproverID, IsGlobal: d.IsGlobal}
}

// SetGlobalApprover makes approverID the single active global approver. The
// acting user needs the approver or master role.
func (u *Usecase) SetGlobalApprover(ctx context.Context, actorID, approverID uint64) (*DefaultDTO, error) {
	var out *DefaultDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requireApproverRole(ctx, r.Users, actorID); err != nil {
			return notApprover(err)
		}
		if err := requireApproverRole(ctx, r.Users, approverID); err != nil {
			return err
		}
		d, err := r.Approvals.SetGlobal(ctx, approverID)
		if err != nil {
			return err
		}
		out = toDefaultDTO(d)
		return nil
	})
	return out, err
}

func (u *Usecase) SetProjectApprover(ctx context.Context, actorID, projectID, approverID uint64) (*DefaultDTO, error) {
	var out *DefaultDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := requireApproverRole(ctx, r.Users, actorID); err != nil {
			return notApprover(err)
		}
		if _, err := r.Projects.GetByID(ctx, projectID); err != nil {
			return err
		}
		if err := requireApproverRole(ctx, r.Users, approverID); err != nil {
			return err
		}
		d, err := r.Approvals.SetForProject(ctx, projectID, approverID)
		if err != nil {
			return err
		}
		out = toDefaultDTO(d)
		return nil
	})
	return out, err
}

// ResolveApprover returns the project's default approver, falling back to
// the global one. domainApproval.ErrNotFound when neither is configured.
func (u *Usecase) ResolveApprover(ctx context.Context, projectID uint64) (*user.User, error) {
	var out *user.User
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		usr, err := resolveApprover(ctx, r, projectID)
		out = usr
		return err
	})
	return out, err
}

func resolveApprover(ctx context.Context, r uow.Repos, projectID uint64) (*user.User, error) {
	d, err := r.Approvals.ActiveForProject(ctx, projectID)
	if errors.Is(err, domainApproval.ErrNotFound) {
		d, err = r.Approvals.ActiveGlobal(ctx)
	}
	if err != nil {
		return nil, err
	}
	return r.Users.GetByID(ctx, d.ApproverID)
}

func requireApproverRole(ctx context.Context, users user.Repository, id uint64) error {
	usr, err := users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !usr.IsApprover && !usr.IsMaster {
		return domainApproval.ErrNotApprover
	}
	return nil
}

// mayApprove: approver role, master, or the configured default approver of
// the project (project-scoped or global).
func mayApprove(ctx context.Context, r uow.Repos, usr *user.User, projectID uint64) (bool, error) {
	if usr.IsApprover || usr.IsMaster {
		return true, nil
	}
	def, err := resolveApprover(ctx, r, projectID)
	if errors.Is(err, domainApproval.ErrNotFound) || errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return def.ID == usr.ID, nil
}
