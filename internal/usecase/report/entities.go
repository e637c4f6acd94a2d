package report

import (
	"time"

	domainReport "site-report-backend/internal/domain/report"
)

type CreateInput struct {
	ProjectID         uint64
	AuthorID          uint64
	Title             string
	Content           string
	Companions        []domainReport.Companion
	NextVisitReminder string
	CompletedItems    []uint64
}

// UpdateInput carries the editable fields; nil leaves a field untouched.
type UpdateInput struct {
	Title             *string
	Content           *string
	Companions        *[]domainReport.Companion
	NextVisitReminder *string
	CompletedItems    *[]uint64
}

type CreateExpressInput struct {
	AuthorID          uint64
	Site              domainReport.SiteInfo
	Content           string
	Companions        []domainReport.Companion
	NextVisitReminder string
}

type ReportDTO struct {
	ID                uint64                   `json:"id"`
	ProjectID         uint64                   `json:"project_id"`
	ProjectNumber     int                      `json:"project_number"`
	PublicNumber      string                   `json:"public_number"`
	Title             string                   `json:"title"`
	Content           string                   `json:"content"`
	Status            string                   `json:"status"`
	AuthorID          uint64                   `json:"author_id"`
	ApproverID        *uint64                  `json:"approver_id,omitempty"`
	Companions        []domainReport.Companion `json:"companions"`
	NextVisitReminder string                   `json:"next_visit_reminder,omitempty"`
	RejectionReason   string                   `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	ApprovedAt        *time.Time               `json:"approved_at,omitempty"`
}

type ExpressDTO struct {
	ID           uint64                `json:"id"`
	PublicNumber string                `json:"public_number"`
	Site         domainReport.SiteInfo `json:"site"`
	Content      string                `json:"content"`
	Status       string                `json:"status"`
	AuthorID     uint64                `json:"author_id"`
	CreatedAt    time.Time             `json:"created_at"`
	ApprovedAt   *time.Time            `json:"approved_at,omitempty"`
}

func ToDTO(r *domainReport.Report) *ReportDTO {
	dto := &ReportDTO{
		ID:                r.ID,
		ProjectID:         r.ProjectID,
		PublicNumber:      r.Number,
		Title:             r.Title,
		Content:           r.Content,
		Status:            string(r.Status),
		AuthorID:          r.AuthorID,
		ApproverID:        r.ApproverID,
		Companions:        r.CompanionList(),
		NextVisitReminder: r.NextVisitReminder,
		RejectionReason:   r.RejectionReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		ApprovedAt:        r.ApprovedAt,
	}
	if r.ProjectNumber != nil {
		dto.ProjectNumber = *r.ProjectNumber
	}
	if dto.Companions == nil {
		dto.Companions = []domainReport.Companion{}
	}
	return dto
}

func ToExpressDTO(r *domainReport.ReportExpress) *ExpressDTO {
	return &ExpressDTO{
		ID:           r.ID,
		PublicNumber: r.Number,
		Site:         r.Site,
		Content:      r.Content,
		Status:       string(r.Status),
		AuthorID:     r.AuthorID,
		CreatedAt:    r.CreatedAt,
		ApprovedAt:   r.ApprovedAt,
	}
}
