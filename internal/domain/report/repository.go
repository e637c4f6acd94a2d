package report

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uint64) (*Report, error)
	ListByProject(ctx context.Context, projectID uint64) ([]Report, error)

	// SaveUnapproved writes the editable columns of r while the stored row is
	// unapproved and still in status from. ErrFrozen when it was approved in
	// the meantime, ErrInvalidTransition when its status moved.
	SaveUnapproved(ctx context.Context, r *Report, from Status) error

	// GuardEditable bumps updated_at while the report is unapproved, holding
	// the row until the caller's transaction ends. ErrFrozen once approved.
	GuardEditable(ctx context.Context, id uint64, at time.Time) error

	// MaxProjectNumber returns the highest numero_projeto in the project, 0 when none.
	MaxProjectNumber(ctx context.Context, projectID uint64) (int, error)

	// StampApproved sets aprovado_em only while it is still NULL.
	// Returns false when another caller stamped first.
	StampApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error)

	CreateExpress(ctx context.Context, r *ReportExpress) error
	GetExpressByID(ctx context.Context, id uint64) (*ReportExpress, error)
	MaxExpressSequence(ctx context.Context) (int, error)
	StampExpressApproved(ctx context.Context, id, approverID uint64, at time.Time) (bool, error)
	GuardExpressEditable(ctx context.Context, id uint64, at time.Time) error
}
