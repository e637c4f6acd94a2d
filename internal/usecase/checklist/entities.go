package checklist

import (
	"time"

	domain "site-report-backend/internal/domain/checklist"
)

type AddInput struct {
	ProjectID uint64
	Text      string
}

type ItemDTO struct {
	ID                  uint64     `json:"id"`
	ProjectID           uint64     `json:"project_id"`
	Text                string     `json:"text"`
	Order               int        `json:"order"`
	Active              bool       `json:"active"`
	Completed           bool       `json:"completed"`
	CompletedByReportID *uint64    `json:"completed_by_report_id,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
}

func ToDTO(it *domain.Item) ItemDTO {
	return ItemDTO{
		ID:                  it.ID,
		ProjectID:           it.ProjectID,
		Text:                it.Text,
		Order:               it.Order,
		Active:              it.Active,
		Completed:           it.Completed,
		CompletedByReportID: it.CompletedByReportID,
		CompletedAt:         it.CompletedAt,
	}
}
