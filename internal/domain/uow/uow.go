package uow

import (
	"context"

	"site-report-backend/internal/domain/approval"
	"site-report-backend/internal/domain/checklist"
	"site-report-backend/internal/domain/notification"
	"site-report-backend/internal/domain/photo"
	"site-report-backend/internal/domain/project"
	"site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/user"
)

// domain/uow/uow.go
type Repos struct {
	Projects      project.Repository
	Users         user.Repository
	Reports       report.Repository
	Photos        photo.Repository
	Approvals     approval.Repository
	Checklist     checklist.Repository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the report first, then pass it in
	WithinReportTx(ctx context.Context, reportID uint64, fn func(r Repos, rep *report.Report) error) error
}
