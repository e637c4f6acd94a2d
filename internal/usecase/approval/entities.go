package approval

import (
	"fmt"
	"time"
)

type SubmitInput struct {
	ReportID uint64
	ActorID  uint64
}

type ApproveInput struct {
	ReportID   uint64
	ApproverID uint64
}

type RejectInput struct {
	ReportID   uint64
	ApproverID uint64
	Reason     string
}

type TransitionDTO struct {
	ReportID     uint64 `json:"report_id"`
	PublicNumber string `json:"public_number"`
	Status       string `json:"status"`
}

type ApprovalDTO struct {
	ReportID     uint64    `json:"report_id"`
	PublicNumber string    `json:"public_number"`
	ApprovedAt   time.Time `json:"approved_at"`
	ApproverID   uint64    `json:"approver_id"`
	Artifact     string    `json:"artifact,omitempty"`
	// AlreadyApproved marks a repeated call; nothing was stamped or sent.
	AlreadyApproved bool            `json:"already_approved"`
	Dispatch        *DispatchResult `json:"dispatch,omitempty"`
}

type Failure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// DispatchResult accounts for one delivery batch of an approved report.
type DispatchResult struct {
	BatchID       string    `json:"batch_id"`
	Attempted     int       `json:"attempted"`
	Sent          int       `json:"sent"`
	Failures      []Failure `json:"failures,omitempty"`
	Invalid       int       `json:"invalid"`
	Notifications int       `json:"notifications"`
	Pushes        int       `json:"pushes"`
	Reason        string    `json:"reason,omitempty"`
}

// Summary is the operator-facing "sent X/Y" line.
func (d *DispatchResult) Summary() string {
	if d == nil {
		return "sent 0/0"
	}
	return fmt.Sprintf("sent %d/%d", d.Sent, d.Attempted)
}
