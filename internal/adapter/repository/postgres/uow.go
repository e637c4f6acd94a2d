package postgres

import (
	"context"

	"site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Projects:      &ProjectRepository{db: tx},
		Users:         &UserRepository{db: tx},
		Reports:       &ReportRepository{db: tx},
		Photos:        &PhotoRepository{db: tx},
		Approvals:     &ApprovalRepository{db: tx},
		Checklist:     &ChecklistRepository{db: tx},
		Notifications: &NotificationRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// WithinReportTx loads the report with SELECT ... FOR UPDATE so concurrent
// transitions on the same report queue behind each other. SQLite drops the
// locking clause and relies on its single writer.
func (u *GormUoW) WithinReportTx(ctx context.Context, reportID uint64, fn func(r uow.Repos, rep *report.Report) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		locked := &ReportRepository{db: tx.Clauses(clause.Locking{Strength: "UPDATE"})}
		rep, err := locked.GetByID(ctx, reportID)
		if err != nil {
			return err
		}
		return fn(r, rep)
	})
}
