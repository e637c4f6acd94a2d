// Package artifact turns a report into the PDF document that is mailed on
// approval and served for download.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainPhoto "site-report-backend/internal/domain/photo"
	"site-report-backend/internal/domain/project"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"
	"site-report-backend/internal/infrastructure/pdf"
	photoUC "site-report-backend/internal/usecase/photo"
	"site-report-backend/pkg/logger"
)

type Renderer interface {
	Render(doc pdf.Document) (*pdf.Result, error)
}

type PhotoResolver interface {
	ResolveIn(ctx context.Context, photos domainPhoto.Repository, kind domainPhoto.Kind, reportID uint64) ([]photoUC.Resolved, error)
}

type Artifact struct {
	Filename string
	Bytes    []byte
	Rendered int
	Skipped  []pdf.Skip
}

type Usecase struct {
	renderer        Renderer
	photos          PhotoResolver
	uow             uow.UnitOfWork
	defaultApprover string
	loc             *time.Location
	log             *logger.Logger
	now             func() time.Time
}

func NewUsecase(renderer Renderer, photos PhotoResolver, tx uow.UnitOfWork, defaultApprover string, loc *time.Location, log *logger.Logger) *Usecase {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Usecase{
		renderer:        renderer,
		photos:          photos,
		uow:             tx,
		defaultApprover: defaultApprover,
		loc:             loc,
		log:             log,
		now:             time.Now,
	}
}

// FileName is relatorio_<public number>_<YYYYMMDD>.pdf.
func FileName(publicNumber string, at time.Time) string {
	return fmt.Sprintf("relatorio_%s_%s.pdf", publicNumber, at.Format("20060102"))
}

// Render builds the artifact using repositories from an open transaction.
// approver overrides the stored approver when the report is being approved.
func (u *Usecase) Render(ctx context.Context, r uow.Repos, rep *domainReport.Report, approver *user.User) (*Artifact, error) {
	at := u.now()
	if rep.ApprovedAt != nil {
		at = *rep.ApprovedAt
	}
	at = at.In(u.loc)

	p, err := r.Projects.GetByID(ctx, rep.ProjectID)
	if err != nil {
		return nil, err
	}
	doc := pdf.Document{
		Date:         at.Format("02/01/2006"),
		Number:       rep.Number,
		Company:      p.ResponsibleCompany,
		ProjectName:  p.Name,
		Address:      p.Address,
		Observations: rep.Content,
		Author:       u.userName(ctx, r.Users, rep.AuthorID),
		Approver:     u.approverName(ctx, r.Users, rep.ApproverID, approver),
		Responsible:  u.responsibleName(ctx, r.Users, p),
		RenderedAt:   at,
	}
	if doc.Photos, err = u.photosFor(ctx, r, domainPhoto.KindReport, rep.ID); err != nil {
		return nil, err
	}
	return u.render(doc, rep.Number, at)
}

func (u *Usecase) RenderExpress(ctx context.Context, r uow.Repos, rep *domainReport.ReportExpress, approver *user.User) (*Artifact, error) {
	at := u.now()
	if rep.ApprovedAt != nil {
		at = *rep.ApprovedAt
	}
	at = at.In(u.loc)

	doc := pdf.Document{
		Date:         at.Format("02/01/2006"),
		Number:       rep.Number,
		Company:      rep.Site.ResponsibleCompany,
		ProjectName:  rep.Site.SiteName,
		Address:      rep.Site.SiteAddress,
		Observations: rep.Content,
		Author:       u.userName(ctx, r.Users, rep.AuthorID),
		Approver:     u.approverName(ctx, r.Users, rep.ApproverID, approver),
		Responsible:  rep.Site.ResponsibleName,
		RenderedAt:   at,
	}
	var err error
	if doc.Photos, err = u.photosFor(ctx, r, domainPhoto.KindExpress, rep.ID); err != nil {
		return nil, err
	}
	return u.render(doc, rep.Number, at)
}

// Download renders the current state of a report for the given user.
func (u *Usecase) Download(ctx context.Context, reportID uint64) (*Artifact, error) {
	var out *Artifact
	err := u.uow.WithinReportTx(ctx, reportID, func(r uow.Repos, rep *domainReport.Report) error {
		a, err := u.Render(ctx, r, rep, nil)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (u *Usecase) render(doc pdf.Document, number string, at time.Time) (*Artifact, error) {
	res, err := u.renderer.Render(doc)
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skipped {
		u.log.Warn("artifact photo skipped", "number", number, "photo_id", s.PhotoID, "reason", s.Reason)
	}
	return &Artifact{
		Filename: FileName(number, at),
		Bytes:    res.Bytes,
		Rendered: res.Rendered,
		Skipped:  res.Skipped,
	}, nil
}

func (u *Usecase) photosFor(ctx context.Context, r uow.Repos, kind domainPhoto.Kind, reportID uint64) ([]pdf.Photo, error) {
	if u.photos == nil {
		return nil, nil
	}
	resolved, err := u.photos.ResolveIn(ctx, r.Photos, kind, reportID)
	if err != nil {
		return nil, err
	}
	out := make([]pdf.Photo, 0, len(resolved))
	for _, rp := range resolved {
		ph := pdf.Photo{
			ID:          rp.Photo.ID,
			Caption:     rp.Photo.Caption,
			Annotations: rp.Photo.AnnotationList(),
			Err:         rp.Err,
		}
		if rp.Blob != nil {
			ph.Bytes = rp.Blob.Bytes
		}
		out = append(out, ph)
	}
	return out, nil
}

func (u *Usecase) userName(ctx context.Context, users user.Repository, id uint64) string {
	if id == 0 {
		return ""
	}
	usr, err := users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			u.log.Warn("artifact user lookup failed", "user_id", id, "err", err)
		}
		return ""
	}
	return usr.FullName
}

func (u *Usecase) approverName(ctx context.Context, users user.Repository, id *uint64, override *user.User) string {
	if override != nil && strings.TrimSpace(override.FullName) != "" {
		return override.FullName
	}
	if id != nil {
		if name := u.userName(ctx, users, *id); name != "" {
			return name
		}
	}
	return u.defaultApprover
}

func (u *Usecase) responsibleName(ctx context.Context, users user.Repository, p *project.Project) string {
	if p.ResponsibleUserID != nil {
		if name := u.userName(ctx, users, *p.ResponsibleUserID); name != "" {
			return name
		}
	}
	return p.TechnicalInfo.SiteEngineer
}
