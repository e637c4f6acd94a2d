package approval

import "context"

type Repository interface {
	// ActiveGlobal returns the single active global approver row.
	ActiveGlobal(ctx context.Context) (*ApprovalDefault, error)
	// ActiveForProject returns the active project-scoped row.
	ActiveForProject(ctx context.Context, projectID uint64) (*ApprovalDefault, error)

	// SetGlobal deactivates the current global row and inserts a new one.
	SetGlobal(ctx context.Context, approverID uint64) (*ApprovalDefault, error)
	// SetForProject replaces the active project-scoped row.
	SetForProject(ctx context.Context, projectID, approverID uint64) (*ApprovalDefault, error)
}
