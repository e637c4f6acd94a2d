package photo

import "context"

// Repository operates on either photo table, selected by Kind.
type Repository interface {
	Create(ctx context.Context, k Kind, p *Photo) error
	GetByID(ctx context.Context, k Kind, id uint64) (*Photo, error)
	ListByReport(ctx context.Context, k Kind, reportID uint64) ([]Photo, error)
	CountByReport(ctx context.Context, k Kind, reportID uint64) (int64, error)
	NextOrdinal(ctx context.Context, k Kind, reportID uint64) (int, error)
	Update(ctx context.Context, k Kind, p *Photo) error
	Delete(ctx context.Context, k Kind, id uint64) error

	// Reorder rewrites ordinals to follow ids, 1..N.
	Reorder(ctx context.Context, k Kind, reportID uint64, ids []uint64) error
	// Compact closes gaps left by deletions, keeping relative order.
	Compact(ctx context.Context, k Kind, reportID uint64) error
}
