package checklist

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id uint64) (*Item, error)
	ListByProject(ctx context.Context, projectID uint64, onlyActive bool) ([]Item, error)
	NextOrder(ctx context.Context, projectID uint64) (int, error)
	Deactivate(ctx context.Context, id uint64) error
	Reorder(ctx context.Context, projectID uint64, ids []uint64) error

	// CompleteByReport marks the listed active, not yet completed items of the
	// project as completed by reportID. Returns the number of rows changed.
	CompleteByReport(ctx context.Context, projectID, reportID uint64, itemIDs []uint64, at time.Time) (int64, error)
}
