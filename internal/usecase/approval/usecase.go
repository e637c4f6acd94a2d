package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainApproval "site-report-backend/internal/domain/approval"
	"site-report-backend/internal/domain/notification"
	domainPhoto "site-report-backend/internal/domain/photo"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"
	"site-report-backend/internal/infrastructure/mail"
	"site-report-backend/internal/infrastructure/push"
	"site-report-backend/internal/usecase/artifact"
	"site-report-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type ArtifactRenderer interface {
	Render(ctx context.Context, r uow.Repos, rep *domainReport.Report, approver *user.User) (*artifact.Artifact, error)
	RenderExpress(ctx context.Context, r uow.Repos, rep *domainReport.ReportExpress, approver *user.User) (*artifact.Artifact, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Options struct {
	Location        *time.Location
	NotificationTTL time.Duration
	Log             *logger.Logger
}

type Usecase struct {
	uow       uow.UnitOfWork
	artifacts ArtifactRenderer
	mailer    Mailer
	pusher    push.Sender
	validate  *validator.Validate
	loc       *time.Location
	ttl       time.Duration
	log       *logger.Logger
	now       func() time.Time
}

// NewUsecase wires the coordinator. A nil mailer records every delivery as
// failed; a nil pusher skips device notifications.
func NewUsecase(tx uow.UnitOfWork, artifacts ArtifactRenderer, mailer Mailer, pusher push.Sender, opts Options) *Usecase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Usecase{
		uow:       tx,
		artifacts: artifacts,
		mailer:    mailer,
		pusher:    pusher,
		validate:  NewMailboxValidator(),
		loc:       opts.Location,
		ttl:       opts.NotificationTTL,
		log:       opts.Log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit moves a complete draft with at least one photo to SUBMITTED and
// notifies the project's default approver.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*TransitionDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	var dto *TransitionDTO
	err := u.uow.WithinReportTx(ctx, in.ReportID, func(r uow.Repos, rep *domainReport.Report) error {
		if rep.IsApproved() {
			return domainReport.ErrAlreadyApproved
		}
		if rep.Status != domainReport.StatusDraft {
			return domainReport.ErrInvalidTransition
		}
		if rep.AuthorID != in.ActorID {
			return domainReport.ErrNotAuthor
		}
		if missing := rep.MissingFields(); len(missing) > 0 {
			return fmt.Errorf("%w: %s", domainReport.ErrMissingFields, strings.Join(missing, ", "))
		}
		n, err := r.Photos.CountByReport(ctx, domainPhoto.KindReport, rep.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: at least one photo", domainReport.ErrMissingFields)
		}

		rep.Status = domainReport.StatusSubmitted
		rep.RejectionReason = ""
		rep.UpdatedAt = u.now()
		if err := r.Reports.SaveUnapproved(ctx, rep, domainReport.StatusDraft); err != nil {
			return frozenAsApproved(err)
		}

		approver, err := resolveApprover(ctx, r, rep.ProjectID)
		switch {
		case err == nil:
			if err := u.notify(ctx, r, approver.ID, notification.KindReportSubmitted,
				"Relatório "+rep.Number+" aguardando aprovação", rep.Title, rep.ID); err != nil {
				return err
			}
		case isNotFound(err):
			u.log.Warn("no default approver to notify", "report_id", rep.ID, "project_id", rep.ProjectID)
		default:
			return err
		}

		dto = &TransitionDTO{ReportID: rep.ID, PublicNumber: rep.Number, Status: string(rep.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("report submitted", "report_id", dto.ReportID, "number", dto.PublicNumber)
	return dto, nil
}

// Reject sends a submitted report back to DRAFT with a reason for the author.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*TransitionDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason", domainReport.ErrMissingFields)
	}
	var dto *TransitionDTO
	err := u.uow.WithinReportTx(ctx, in.ReportID, func(r uow.Repos, rep *domainReport.Report) error {
		if rep.IsApproved() {
			return domainReport.ErrAlreadyApproved
		}
		if rep.Status != domainReport.StatusSubmitted {
			return domainReport.ErrInvalidTransition
		}
		approver, err := r.Users.GetByID(ctx, in.ApproverID)
		if err != nil {
			return notApprover(err)
		}
		ok, err := mayApprove(ctx, r, approver, rep.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return domainApproval.ErrNotApprover
		}

		rep.Status = domainReport.StatusDraft
		rep.RejectionReason = reason
		rep.UpdatedAt = u.now()
		if err := r.Reports.SaveUnapproved(ctx, rep, domainReport.StatusSubmitted); err != nil {
			return frozenAsApproved(err)
		}
		if err := u.notify(ctx, r, rep.AuthorID, notification.KindReportRejected,
			"Relatório "+rep.Number+" devolvido", reason, rep.ID); err != nil {
			return err
		}
		dto = &TransitionDTO{ReportID: rep.ID, PublicNumber: rep.Number, Status: string(rep.Status)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Approve renders the artifact, stamps approved_at only if still unset and
// completes the referenced checklist items, all in one transaction. Delivery
// runs after commit. A repeated call returns AlreadyApproved without sending.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*ApprovalDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	var (
		dto *ApprovalDTO
		art *artifact.Artifact
	)
	err := u.uow.WithinReportTx(ctx, in.ReportID, func(r uow.Repos, rep *domainReport.Report) error {
		if rep.IsApproved() {
			dto = alreadyApproved(rep)
			return nil
		}
		if rep.Status != domainReport.StatusSubmitted {
			return domainReport.ErrInvalidTransition
		}
		approver, err := r.Users.GetByID(ctx, in.ApproverID)
		if err != nil {
			return notApprover(err)
		}
		ok, err := mayApprove(ctx, r, approver, rep.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return domainApproval.ErrNotApprover
		}

		at := u.now()
		rep.ApprovedAt = &at
		rep.ApproverID = &approver.ID
		rep.Status = domainReport.StatusApproved

		art, err = u.artifacts.Render(ctx, r, rep, approver)
		if err != nil {
			return fmt.Errorf("render artifact: %w", err)
		}

		stamped, err := r.Reports.StampApproved(ctx, rep.ID, approver.ID, at)
		if err != nil {
			return err
		}
		if !stamped {
			art = nil
			dto = &ApprovalDTO{ReportID: rep.ID, PublicNumber: rep.Number, AlreadyApproved: true}
			return nil
		}

		done, err := r.Checklist.CompleteByReport(ctx, rep.ProjectID, rep.ID, rep.CompletedItemIDs(), at)
		if err != nil {
			return err
		}
		u.log.Info("report approved", "report_id", rep.ID, "number", rep.Number, "approver_id", approver.ID, "checklist_completed", done)

		dto = &ApprovalDTO{
			ReportID:     rep.ID,
			PublicNumber: rep.Number,
			ApprovedAt:   at,
			ApproverID:   approver.ID,
			Artifact:     art.Filename,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dto.AlreadyApproved {
		return dto, nil
	}
	dto.Dispatch = u.deliverReport(ctx, in.ReportID, art)
	return dto, nil
}

// ApproveExpress approves an express report directly from draft.
func (u *Usecase) ApproveExpress(ctx context.Context, in ApproveInput) (*ApprovalDTO, error) {
	if u.uow == nil {
		return nil, domainReport.ErrInvalidTransition
	}
	var (
		dto *ApprovalDTO
		art *artifact.Artifact
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rep, err := r.Reports.GetExpressByID(ctx, in.ReportID)
		if err != nil {
			return err
		}
		if rep.IsApproved() {
			dto = &ApprovalDTO{ReportID: rep.ID, PublicNumber: rep.Number, AlreadyApproved: true}
			if rep.ApprovedAt != nil {
				dto.ApprovedAt = *rep.ApprovedAt
			}
			return nil
		}
		approver, err := r.Users.GetByID(ctx, in.ApproverID)
		if err != nil {
			return notApprover(err)
		}
		if !approver.IsExpressApprover && !approver.IsApprover && !approver.IsMaster {
			return domainApproval.ErrNotApprover
		}

		at := u.now()
		rep.ApprovedAt = &at
		rep.ApproverID = &approver.ID
		rep.Status = domainReport.StatusApproved
		if art, err = u.artifacts.RenderExpress(ctx, r, rep, approver); err != nil {
			return fmt.Errorf("render artifact: %w", err)
		}
		stamped, err := r.Reports.StampExpressApproved(ctx, rep.ID, approver.ID, at)
		if err != nil {
			return err
		}
		if !stamped {
			art = nil
			dto = &ApprovalDTO{ReportID: rep.ID, PublicNumber: rep.Number, AlreadyApproved: true}
			return nil
		}
		dto = &ApprovalDTO{ReportID: rep.ID, PublicNumber: rep.Number, ApprovedAt: at, ApproverID: approver.ID, Artifact: art.Filename}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if dto.AlreadyApproved {
		return dto, nil
	}
	dto.Dispatch = u.deliverExpress(ctx, in.ReportID, art)
	return dto, nil
}

func (u *Usecase) notify(ctx context.Context, r uow.Repos, userID uint64, kind, title, body string, reportID uint64) error {
	now := u.now()
	n := &notification.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      reportLink(reportID),
		ReportID:  &reportID,
		Status:    notification.StatusNew,
		CreatedAt: now,
		ExpiresAt: u.expiry(now),
	}
	return r.Notifications.Create(ctx, n)
}

func (u *Usecase) expiry(now time.Time) *time.Time {
	if u.ttl <= 0 {
		return nil
	}
	exp := now.Add(u.ttl)
	return &exp
}

func alreadyApproved(rep *domainReport.Report) *ApprovalDTO {
	dto := &ApprovalDTO{ReportID: rep.ID, PublicNumber: rep.Number, AlreadyApproved: true}
	if rep.ApprovedAt != nil {
		dto.ApprovedAt = *rep.ApprovedAt
	}
	if rep.ApproverID != nil {
		dto.ApproverID = *rep.ApproverID
	}
	return dto
}

func notApprover(err error) error {
	if isNotFound(err) {
		return domainApproval.ErrNotApprover
	}
	return err
}

// frozenAsApproved reports a write that lost to a concurrent approval the
// same way as one that saw the approval up front.
func frozenAsApproved(err error) error {
	if errors.Is(err, domainReport.ErrFrozen) {
		return domainReport.ErrAlreadyApproved
	}
	return err
}

func reportLink(id uint64) string  { return fmt.Sprintf("/reports/%d", id) }
func expressLink(id uint64) string { return fmt.Sprintf("/express/%d", id) }
