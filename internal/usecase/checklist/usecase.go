package checklist

import (
	"context"
	"errors"
	"strings"

	domain "site-report-backend/internal/domain/checklist"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/pkg/logger"
)

var ErrEmptyText = errors.New("checklist item text is required")

// Usecase maintains a project's checklist. Items are completed only by
// approving a report that lists them.
type Usecase struct {
	uow uow.UnitOfWork
	log *logger.Logger
}

func NewUsecase(tx uow.UnitOfWork, log *logger.Logger) *Usecase {
	if log == nil {
		log = logger.Nop()
	}
	return &Usecase{uow: tx, log: log}
}

// Add appends an active item after the project's last active one.
func (u *Usecase) Add(ctx context.Context, in AddInput) (*ItemDTO, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	var out ItemDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Projects.GetByID(ctx, in.ProjectID); err != nil {
			return err
		}
		next, err := r.Checklist.NextOrder(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		it := &domain.Item{ProjectID: in.ProjectID, Text: text, Order: next, Active: true}
		if err := r.Checklist.Create(ctx, it); err != nil {
			return err
		}
		out = ToDTO(it)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Deactivate hides an item from the active list. Completion data is kept.
func (u *Usecase) Deactivate(ctx context.Context, id uint64) error {
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Checklist.Deactivate(ctx, id)
	})
}

// Reorder renumbers the active items 1..n in the given order; ids must name
// every active item of the project exactly once.
func (u *Usecase) Reorder(ctx context.Context, projectID uint64, ids []uint64) ([]ItemDTO, error) {
	var out []ItemDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Checklist.Reorder(ctx, projectID, ids); err != nil {
			return err
		}
		list, err := r.Checklist.ListByProject(ctx, projectID, true)
		if err != nil {
			return err
		}
		out = toDTOs(list)
		return nil
	})
	return out, err
}

func (u *Usecase) List(ctx context.Context, projectID uint64, includeInactive bool) ([]ItemDTO, error) {
	var out []ItemDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		list, err := r.Checklist.ListByProject(ctx, projectID, !includeInactive)
		if err != nil {
			return err
		}
		out = toDTOs(list)
		return nil
	})
	return out, err
}

func toDTOs(list []domain.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(list))
	for i := range list {
		out = append(out, ToDTO(&list[i]))
	}
	return out
}
