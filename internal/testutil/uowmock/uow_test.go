package uowmock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/testutil/approvalmock"
	"site-report-backend/internal/testutil/reportmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	reports := &reportmock.Repo{}
	apprs := &approvalmock.Repo{}
	repos := uow.Repos{Reports: reports, Approvals: apprs}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Reports != reports || r.Approvals != apprs {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinReportTx(ctx, 1, func(uow.Repos, *report.Report) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinReportTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_Passthrough_LoadsReport(t *testing.T) {
	ctx := context.Background()
	reports := &reportmock.Repo{
		GetByIDFn: func(_ context.Context, id uint64) (*report.Report, error) {
			if id != 7 {
				return nil, report.ErrNotFound
			}
			return &report.Report{ID: 7, Number: "REL-0007"}, nil
		},
	}
	m := Passthrough(uow.Repos{Reports: reports})

	err := m.WithinReportTx(ctx, 7, func(r uow.Repos, rep *report.Report) error {
		if rep.Number != "REL-0007" {
			t.Fatalf("report not forwarded: %+v", rep)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinReportTx: %v", err)
	}
	if err := m.WithinReportTx(ctx, 8, func(uow.Repos, *report.Report) error { return nil }); !errors.Is(err, report.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUoW_StaleRead_RunsBetweenReadAndBody(t *testing.T) {
	ctx := context.Background()
	var order []string
	reports := &reportmock.Repo{
		GetByIDFn: func(context.Context, uint64) (*report.Report, error) {
			order = append(order, "read")
			return &report.Report{ID: 7}, nil
		},
	}
	m := StaleRead(Passthrough(uow.Repos{Reports: reports}), reports, func(_ context.Context, id uint64) {
		order = append(order, "between")
	})

	err := m.WithinReportTx(ctx, 7, func(_ uow.Repos, rep *report.Report) error {
		order = append(order, "body")
		return nil
	})
	if err != nil {
		t.Fatalf("WithinReportTx: %v", err)
	}
	if strings.Join(order, ",") != "read,between,body" {
		t.Fatalf("order = %v", order)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinReportTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinReportTx(func(context.Context, uint64, func(uow.Repos, *report.Report) error) error { return nil })
	if m.WithinTxFn == nil || m.WithinReportTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}
	m.Reset()
	if m.WithinTxFn != nil || m.WithinReportTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
