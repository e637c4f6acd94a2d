package approval

import (
	"context"
	"errors"
	netmail "net/mail"
	"strings"

	"site-report-backend/internal/domain/project"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"

	"github.com/go-playground/validator/v10"
)

// Recipients is the de-duplicated delivery set, in first-seen order.
type Recipients struct {
	Addresses []string
	// Invalid counts non-empty entries that were not usable addresses.
	Invalid int
}

// NewMailboxValidator returns a validator with the "mailbox" tag: a bare
// RFC 5322 addr-spec with no display name. Single-label domains are allowed.
func NewMailboxValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return isMailbox(fl.Field().String())
	})
	return v
}

func isMailbox(s string) bool {
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	a, err := netmail.ParseAddress(s)
	if err != nil || a.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}

type collector struct {
	v    *validator.Validate
	seen map[string]struct{}
	out  Recipients
}

func newCollector(v *validator.Validate) *collector {
	return &collector{v: v, seen: map[string]struct{}{}}
}

func (c *collector) add(raw string) {
	addr := user.NormalizeEmail(raw)
	if addr == "" {
		return
	}
	if err := c.v.Var(addr, "mailbox"); err != nil {
		c.out.Invalid++
		return
	}
	if _, dup := c.seen[addr]; dup {
		return
	}
	c.seen[addr] = struct{}{}
	c.out.Addresses = append(c.out.Addresses, addr)
}

// CollectRecipients merges address lists in order.
func CollectRecipients(v *validator.Validate, sources ...[]string) Recipients {
	c := newCollector(v)
	for _, src := range sources {
		for _, a := range src {
			c.add(a)
		}
	}
	return c.out
}

// ResolveRecipients gathers, in order: author, approver, companions, the
// project's responsible user and client contacts flagged to receive reports.
func (u *Usecase) ResolveRecipients(ctx context.Context, r uow.Repos, rep *domainReport.Report) (Recipients, error) {
	var sources [][]string

	author, err := optionalEmail(ctx, r.Users, rep.AuthorID)
	if err != nil {
		return Recipients{}, err
	}
	sources = append(sources, author)

	if rep.ApproverID != nil {
		approver, err := optionalEmail(ctx, r.Users, *rep.ApproverID)
		if err != nil {
			return Recipients{}, err
		}
		sources = append(sources, approver)
	}

	var companions []string
	for _, c := range rep.CompanionList() {
		companions = append(companions, c.Email)
	}
	sources = append(sources, companions)

	p, err := r.Projects.GetByID(ctx, rep.ProjectID)
	if err != nil {
		return Recipients{}, err
	}
	if p.ResponsibleUserID != nil {
		resp, err := optionalEmail(ctx, r.Users, *p.ResponsibleUserID)
		if err != nil {
			return Recipients{}, err
		}
		sources = append(sources, resp)
	}

	clients, err := r.Projects.ListClientEmails(ctx, p.ID)
	if err != nil {
		return Recipients{}, err
	}
	sources = append(sources, clientAddresses(clients))

	return CollectRecipients(u.validate, sources...), nil
}

func (u *Usecase) resolveExpressRecipients(ctx context.Context, r uow.Repos, rep *domainReport.ReportExpress) (Recipients, error) {
	author, err := optionalEmail(ctx, r.Users, rep.AuthorID)
	if err != nil {
		return Recipients{}, err
	}
	var approver []string
	if rep.ApproverID != nil {
		if approver, err = optionalEmail(ctx, r.Users, *rep.ApproverID); err != nil {
			return Recipients{}, err
		}
	}
	var companions []string
	for _, c := range rep.CompanionList() {
		companions = append(companions, c.Email)
	}
	return CollectRecipients(u.validate, author, approver, companions, []string{rep.Site.ContactEmail}), nil
}

func optionalEmail(ctx context.Context, users user.Repository, id uint64) ([]string, error) {
	if id == 0 {
		return nil, nil
	}
	usr, err := users.GetByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{usr.Email}, nil
}

func clientAddresses(list []project.ClientEmail) []string {
	var out []string
	for _, c := range list {
		if c.ReceivesReport && c.Email != nil {
			out = append(out, *c.Email)
		}
	}
	return out
}
