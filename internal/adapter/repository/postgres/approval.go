package postgres

import (
	"context"

	approvalDomain "site-report-backend/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

// Tx runs fn with the repository bound to one transaction.
func (r *ApprovalRepository) Tx(ctx context.Context, fn func(repo *ApprovalRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ApprovalRepository{db: tx})
	})
}

func (r *ApprovalRepository) ActiveGlobal(ctx context.Context) (*approvalDomain.ApprovalDefault, error) {
	var out approvalDomain.ApprovalDefault
	err := r.db.WithContext(ctx).
		Where("is_global = ? AND ativo = ?", true, true).
		Order("id DESC").
		Take(&out).Error
	if err != nil {
		return nil, notFound(err, approvalDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApprovalRepository) ActiveForProject(ctx context.Context, projectID uint64) (*approvalDomain.ApprovalDefault, error) {
	var out approvalDomain.ApprovalDefault
	err := r.db.WithContext(ctx).
		Where("projeto_id = ? AND is_global = ? AND ativo = ?", projectID, false, true).
		Order("id DESC").
		Take(&out).Error
	if err != nil {
		return nil, notFound(err, approvalDomain.ErrNotFound)
	}
	return &out, nil
}

// SetGlobal swaps the active global row; the partial unique index rejects a
// concurrent swap that would leave two active rows.
func (r *ApprovalRepository) SetGlobal(ctx context.Context, approverID uint64) (*approvalDomain.ApprovalDefault, error) {
	var out *approvalDomain.ApprovalDefault
	err := r.Tx(ctx, func(repo *ApprovalRepository) error {
		if err := repo.db.Model(&approvalDomain.ApprovalDefault{}).
			Where("is_global = ? AND ativo = ?", true, true).
			Update("ativo", false).Error; err != nil {
			return err
		}
		row := &approvalDomain.ApprovalDefault{ApproverID: approverID, IsGlobal: true, Active: true}
		if err := repo.db.Create(row).Error; err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}

func (r *ApprovalRepository) SetForProject(ctx context.Context, projectID, approverID uint64) (*approvalDomain.ApprovalDefault, error) {
	var out *approvalDomain.ApprovalDefault
	err := r.Tx(ctx, func(repo *ApprovalRepository) error {
		if err := repo.db.Model(&approvalDomain.ApprovalDefault{}).
			Where("projeto_id = ? AND is_global = ? AND ativo = ?", projectID, false, true).
			Update("ativo", false).Error; err != nil {
			return err
		}
		pid := projectID
		row := &approvalDomain.ApprovalDefault{ProjectID: &pid, ApproverID: approverID, Active: true}
		if err := repo.db.Create(row).Error; err != nil {
			return err
		}
		out = row
		return nil
	})
	return out, err
}
