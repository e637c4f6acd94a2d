package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/pkg/logger"

	"gorm.io/datatypes"
)

// MaxAttempts bounds the insert retries when two writers race for a number.
const MaxAttempts = 5

type Usecase struct {
	reports domainReport.Repository
	uow     uow.UnitOfWork
	log     *logger.Logger
	now     func() time.Time
}

func NewUsecase(reports domainReport.Repository, tx uow.UnitOfWork, log *logger.Logger) *Usecase {
	if log == nil {
		log = logger.Nop()
	}
	return &Usecase{reports: reports, uow: tx, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Create allocates the next per-project number and inserts the draft in one
// transaction. A lost race on (projeto_id, numero_projeto) is retried with the
// next candidate up to MaxAttempts times.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (*ReportDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	companions, err := encodeJSON(in.Companions)
	if err != nil {
		return nil, err
	}
	items, err := encodeJSON(in.CompletedItems)
	if err != nil {
		return nil, err
	}

	lastTried := 0
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		var created *domainReport.Report
		candidate := 0
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			p, err := r.Projects.GetByID(ctx, in.ProjectID)
			if err != nil {
				return err
			}
			n, err := r.Reports.MaxProjectNumber(ctx, p.ID)
			if err != nil {
				return err
			}
			candidate = n + 1
			if first := p.FirstNumber(); first > candidate {
				candidate = first
			}
			if candidate <= lastTried {
				candidate = lastTried + 1
			}

			now := u.now()
			num := candidate
			rep := &domainReport.Report{
				ProjectID:         p.ID,
				ProjectNumber:     &num,
				Number:            domainReport.PublicNumber(num),
				Title:             in.Title,
				AuthorID:          in.AuthorID,
				Content:           in.Content,
				Companions:        companions,
				NextVisitReminder: in.NextVisitReminder,
				CompletedItems:    items,
				Status:            domainReport.StatusDraft,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := r.Reports.Create(ctx, rep); err != nil {
				return err
			}
			created = rep
			return nil
		})
		if err == nil {
			u.log.Info("report created", "report_id", created.ID, "project_id", in.ProjectID, "number", created.Number)
			return ToDTO(created), nil
		}
		if !errors.Is(err, domainReport.ErrDuplicateNumber) {
			return nil, err
		}
		u.log.Warn("report number taken, retrying", "project_id", in.ProjectID, "candidate", candidate, "attempt", attempt)
		lastTried = candidate
	}
	return nil, fmt.Errorf("%w: project %d after %d attempts", domainReport.ErrNumberingContention, in.ProjectID, MaxAttempts)
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*ReportDTO, error) {
	r, err := u.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDTO(r), nil
}

func (u *Usecase) ListByProject(ctx context.Context, projectID uint64) ([]ReportDTO, error) {
	list, err := u.reports.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]ReportDTO, 0, len(list))
	for i := range list {
		out = append(out, *ToDTO(&list[i]))
	}
	return out, nil
}

// Update edits a report that is not yet approved. Number, project and author
// never change.
func (u *Usecase) Update(ctx context.Context, id uint64, in UpdateInput) (*ReportDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	var dto *ReportDTO
	err := u.uow.WithinReportTx(ctx, id, func(r uow.Repos, rep *domainReport.Report) error {
		if rep.IsApproved() {
			return domainReport.ErrFrozen
		}
		if in.Title != nil {
			rep.Title = *in.Title
		}
		if in.Content != nil {
			rep.Content = *in.Content
		}
		if in.NextVisitReminder != nil {
			rep.NextVisitReminder = *in.NextVisitReminder
		}
		if in.Companions != nil {
			b, err := encodeJSON(*in.Companions)
			if err != nil {
				return err
			}
			rep.Companions = b
		}
		if in.CompletedItems != nil {
			b, err := encodeJSON(*in.CompletedItems)
			if err != nil {
				return err
			}
			rep.CompletedItems = b
		}
		rep.UpdatedAt = u.now()
		if err := r.Reports.SaveUnapproved(ctx, rep, rep.Status); err != nil {
			return err
		}
		dto = ToDTO(rep)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// CreateExpress numbers express reports on their own global EXP sequence.
func (u *Usecase) CreateExpress(ctx context.Context, in CreateExpressInput) (*ExpressDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	companions, err := encodeJSON(in.Companions)
	if err != nil {
		return nil, err
	}
	lastTried := 0
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		var created *domainReport.ReportExpress
		candidate := 0
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			n, err := r.Reports.MaxExpressSequence(ctx)
			if err != nil {
				return err
			}
			candidate = n + 1
			if candidate <= lastTried {
				candidate = lastTried + 1
			}
			now := u.now()
			rep := &domainReport.ReportExpress{
				Sequence:          candidate,
				Number:            domainReport.ExpressNumber(candidate),
				Site:              in.Site,
				AuthorID:          in.AuthorID,
				Content:           in.Content,
				Companions:        companions,
				NextVisitReminder: in.NextVisitReminder,
				Status:            domainReport.StatusDraft,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := r.Reports.CreateExpress(ctx, rep); err != nil {
				return err
			}
			created = rep
			return nil
		})
		if err == nil {
			return ToExpressDTO(created), nil
		}
		if !errors.Is(err, domainReport.ErrDuplicateNumber) {
			return nil, err
		}
		lastTried = candidate
	}
	return nil, fmt.Errorf("%w: express after %d attempts", domainReport.ErrNumberingContention, MaxAttempts)
}

func (u *Usecase) GetExpress(ctx context.Context, id uint64) (*ExpressDTO, error) {
	r, err := u.reports.GetExpressByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToExpressDTO(r), nil
}

func encodeJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
