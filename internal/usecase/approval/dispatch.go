package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainApproval "site-report-backend/internal/domain/approval"
	"site-report-backend/internal/domain/notification"
	"site-report-backend/internal/domain/project"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"
	"site-report-backend/internal/infrastructure/mail"
	"site-report-backend/internal/infrastructure/push"
	"site-report-backend/internal/usecase/artifact"
	"site-report-backend/pkg/id"

	"golang.org/x/sync/errgroup"
)

const (
	defaultSignature = "Equipe de Relatórios de Obra"
	// mailConcurrency bounds simultaneous gateway calls per batch.
	mailConcurrency = 4
)

// batch is everything delivery needs, read from committed state.
type batch struct {
	reportID    *uint64
	link        string
	number      string
	projectName string
	approvedAt  time.Time
	replyTo     string
	signature   string
	rcpts       Recipients
	users       []user.User
	devices     map[uint64][]user.UserDevice
	art         *artifact.Artifact
}

// Dispatch re-runs delivery for an approved report on behalf of someone who
// may approve it. Each run is a new batch; recipients may receive a
// duplicate rather than nothing.
func (u *Usecase) Dispatch(ctx context.Context, actorID, reportID uint64) (*DispatchResult, error) {
	var art *artifact.Artifact
	err := u.uow.WithinReportTx(ctx, reportID, func(r uow.Repos, rep *domainReport.Report) error {
		usr, err := r.Users.GetByID(ctx, actorID)
		if err != nil {
			return notApprover(err)
		}
		ok, err := mayApprove(ctx, r, usr, rep.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return domainApproval.ErrNotApprover
		}
		if !rep.IsApproved() {
			return domainReport.ErrInvalidTransition
		}
		art, err = u.artifacts.Render(ctx, r, rep, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u.deliverReport(ctx, reportID, art), nil
}

func (u *Usecase) deliverReport(ctx context.Context, reportID uint64, art *artifact.Artifact) *DispatchResult {
	var b *batch
	err := u.uow.WithinReportTx(ctx, reportID, func(r uow.Repos, rep *domainReport.Report) error {
		rcpts, err := u.ResolveRecipients(ctx, r, rep)
		if err != nil {
			return err
		}
		p, err := r.Projects.GetByID(ctx, rep.ProjectID)
		if err != nil {
			return err
		}
		b = &batch{
			reportID:    &rep.ID,
			link:        reportLink(rep.ID),
			number:      rep.Number,
			projectName: p.Name,
			rcpts:       rcpts,
			art:         art,
		}
		if rep.ApprovedAt != nil {
			b.approvedAt = *rep.ApprovedAt
		}
		return u.loadDeliveryContext(ctx, r, b, rep.ApproverID)
	})
	if err != nil {
		u.log.Error("dispatch preparation failed", "report_id", reportID, "err", err)
		return &DispatchResult{BatchID: id.NewID32(), Reason: err.Error()}
	}
	return u.deliver(ctx, b)
}

func (u *Usecase) deliverExpress(ctx context.Context, reportID uint64, art *artifact.Artifact) *DispatchResult {
	var b *batch
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rep, err := r.Reports.GetExpressByID(ctx, reportID)
		if err != nil {
			return err
		}
		rcpts, err := u.resolveExpressRecipients(ctx, r, rep)
		if err != nil {
			return err
		}
		b = &batch{
			link:        expressLink(rep.ID),
			number:      rep.Number,
			projectName: rep.Site.SiteName,
			rcpts:       rcpts,
			art:         art,
		}
		if rep.ApprovedAt != nil {
			b.approvedAt = *rep.ApprovedAt
		}
		return u.loadDeliveryContext(ctx, r, b, rep.ApproverID)
	})
	if err != nil {
		u.log.Error("express dispatch preparation failed", "express_id", reportID, "err", err)
		return &DispatchResult{BatchID: id.NewID32(), Reason: err.Error()}
	}
	return u.deliver(ctx, b)
}

func (u *Usecase) loadDeliveryContext(ctx context.Context, r uow.Repos, b *batch, approverID *uint64) error {
	b.signature = defaultSignature
	if approverID != nil {
		approver, err := r.Users.GetByID(ctx, *approverID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if approver != nil {
			b.replyTo = approver.Email
			cfg, err := r.Users.GetEmailConfig(ctx, approver.ID)
			if err != nil {
				return err
			}
			if cfg != nil {
				if strings.TrimSpace(cfg.ReplyTo) != "" {
					b.replyTo = cfg.ReplyTo
				}
				if strings.TrimSpace(cfg.Signature) != "" {
					b.signature = cfg.Signature
				}
			}
		}
	}
	if len(b.rcpts.Addresses) == 0 {
		return nil
	}
	users, err := r.Users.ByEmails(ctx, b.rcpts.Addresses)
	if err != nil {
		return err
	}
	b.users = users
	ids := make([]uint64, 0, len(users))
	for _, usr := range users {
		ids = append(ids, usr.ID)
	}
	devices, err := r.Users.DevicesForUsers(ctx, ids)
	if err != nil {
		return err
	}
	b.devices = make(map[uint64][]user.UserDevice)
	for _, d := range devices {
		b.devices[d.UserID] = append(b.devices[d.UserID], d)
	}
	return nil
}

// deliver mails every recipient, then records notifications for internal
// users and pushes to their devices. Failures are accounted, never raised.
func (u *Usecase) deliver(ctx context.Context, b *batch) *DispatchResult {
	res := &DispatchResult{BatchID: id.NewID32(), Invalid: b.rcpts.Invalid}
	if len(b.rcpts.Addresses) == 0 {
		res.Reason = domainApproval.ErrRecipientEmpty.Error()
		u.log.Warn("nothing to dispatch", "number", b.number, "invalid", b.rcpts.Invalid)
		return res
	}

	errs := make([]error, len(b.rcpts.Addresses))
	var g errgroup.Group
	g.SetLimit(mailConcurrency)
	for i, addr := range b.rcpts.Addresses {
		g.Go(func() error {
			errs[i] = u.sendMail(ctx, b, addr)
			return nil
		})
	}
	_ = g.Wait()

	outcome := make(map[string]error, len(b.rcpts.Addresses))
	for i, addr := range b.rcpts.Addresses {
		res.Attempted++
		outcome[addr] = errs[i]
		if errs[i] != nil {
			res.Failures = append(res.Failures, Failure{Email: addr, Error: errs[i].Error()})
			u.log.Warn("email delivery failed", "number", b.number, "to", addr, "err", errs[i])
			continue
		}
		res.Sent++
	}

	created, err := u.recordNotifications(ctx, b, res.BatchID, outcome)
	if err != nil {
		u.log.Error("notifications not recorded", "number", b.number, "batch", res.BatchID, "err", err)
		res.Reason = "notifications not recorded: " + err.Error()
	}
	res.Notifications = len(created)
	res.Pushes = u.pushAll(ctx, b, created)

	if res.Sent < res.Attempted && res.Reason == "" {
		res.Reason = fmt.Sprintf("%d of %d deliveries failed", res.Attempted-res.Sent, res.Attempted)
	}
	u.log.Info("dispatch finished", "number", b.number, "batch", res.BatchID, "summary", res.Summary(), "invalid", res.Invalid)
	return res
}

func (u *Usecase) sendMail(ctx context.Context, b *batch, to string) error {
	if u.mailer == nil {
		return fmt.Errorf("%w: not configured", mail.ErrGatewayFailure)
	}
	msg := mail.Message{
		To:      to,
		ReplyTo: b.replyTo,
		Subject: "Relatório aprovado – Obra " + b.projectName,
		Text:    u.mailBody(b, to),
	}
	if b.art != nil {
		msg.Attachments = []mail.Attachment{{Filename: b.art.Filename, ContentType: "application/pdf", Content: b.art.Bytes}}
	}
	return u.mailer.Send(ctx, msg)
}

func (u *Usecase) mailBody(b *batch, to string) string {
	local := to
	if at := strings.Index(to, "@"); at > 0 {
		local = to[:at]
	}
	when := b.approvedAt.In(u.loc).Format("02/01/2006 às 15:04")
	var sb strings.Builder
	fmt.Fprintf(&sb, "Olá %s,\n\n", local)
	fmt.Fprintf(&sb, "O relatório %s da obra %s foi aprovado em %s.\n", b.number, b.projectName, when)
	sb.WriteString("O documento segue em anexo.\n\n")
	sb.WriteString(b.signature)
	sb.WriteString("\n")
	return sb.String()
}

func (u *Usecase) recordNotifications(ctx context.Context, b *batch, batchID string, outcome map[string]error) ([]notification.Notification, error) {
	if len(b.users) == 0 {
		return nil, nil
	}
	var created []notification.Notification
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		created = created[:0]
		now := u.now()
		for _, usr := range b.users {
			sendErr, known := outcome[user.NormalizeEmail(usr.Email)]
			if !known {
				continue
			}
			n := &notification.Notification{
				UserID:    usr.ID,
				Kind:      notification.KindReportApproved,
				Title:     "Relatório " + b.number + " aprovado",
				Body:      "Obra " + b.projectName,
				Link:      b.link,
				ReportID:  b.reportID,
				Status:    notification.StatusNew,
				BatchID:   batchID,
				CreatedAt: now,
				ExpiresAt: u.expiry(now),
				EmailSent: true,
				EmailOK:   sendErr == nil,
				EmailErr:  errText(sendErr),
			}
			if err := r.Notifications.Create(ctx, n); err != nil {
				return err
			}
			created = append(created, *n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type pushOutcome struct {
	id  uint64
	ok  bool
	err string
}

func (u *Usecase) pushAll(ctx context.Context, b *batch, created []notification.Notification) int {
	if u.pusher == nil || len(created) == 0 {
		return 0
	}
	sent := 0
	var outcomes []pushOutcome
	for _, n := range created {
		devices := b.devices[n.UserID]
		if len(devices) == 0 {
			continue
		}
		o := pushOutcome{id: n.ID, ok: true}
		var errs []string
		for _, d := range devices {
			err := u.pusher.Send(ctx, push.Message{Token: d.DeviceToken, Title: n.Title, Body: n.Body, Link: n.Link})
			if err != nil {
				o.ok = false
				errs = append(errs, err.Error())
				continue
			}
			sent++
		}
		o.err = strings.Join(errs, "; ")
		outcomes = append(outcomes, o)
	}
	if len(outcomes) == 0 {
		return sent
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		for _, o := range outcomes {
			if err := r.Notifications.RecordPush(ctx, o.id, o.ok, o.err); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.log.Error("push outcome not recorded", "number", b.number, "err", err)
	}
	return sent
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func isNotFound(err error) bool {
	return errors.Is(err, domainApproval.ErrNotFound) ||
		errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, project.ErrNotFound) ||
		errors.Is(err, domainReport.ErrNotFound)
}
