package uowmock

import (
	"context"
	"errors"

	"site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinReportTxFn func(ctx context.Context, reportID uint64, fn func(r uow.Repos, rep *report.Report) error) error
}

// Passthrough runs every transaction body directly against repos.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinReportTxFn: func(ctx context.Context, id uint64, fn func(uow.Repos, *report.Report) error) error {
			rep, err := repos.Reports.GetByID(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, rep)
		},
	}
}

// StaleRead loads the report outside any transaction, runs between and only
// then hands the now stale copy to fn inside inner.WithinTx. It replays a
// writer that read just before a concurrent transition committed.
func StaleRead(inner uow.UnitOfWork, reports report.Repository, between func(ctx context.Context, id uint64)) *UoW {
	return &UoW{
		WithinTxFn: inner.WithinTx,
		WithinReportTxFn: func(ctx context.Context, id uint64, fn func(uow.Repos, *report.Report) error) error {
			rep, err := reports.GetByID(ctx, id)
			if err != nil {
				return err
			}
			between(ctx, id)
			return inner.WithinTx(ctx, func(r uow.Repos) error { return fn(r, rep) })
		},
	}
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinReportTx(fn func(context.Context, uint64, func(uow.Repos, *report.Report) error) error) *UoW {
	m.WithinReportTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinReportTx(ctx context.Context, reportID uint64, fn func(r uow.Repos, rep *report.Report) error) error {
	if m.WithinReportTxFn != nil {
		return m.WithinReportTxFn(ctx, reportID, fn)
	}
	return errUnimplemented
}
