package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"site-report-backend/internal/domain/report"
	"site-report-backend/pkg/logger"

	"gorm.io/gorm"
)

type BackfillOptions struct {
	// ForceGlobal checks public numbers against every project even after
	// the legacy global unique on numero is gone.
	ForceGlobal bool
	Log         *logger.Logger
}

type BackfillResult struct {
	Projects  int
	Assigned  int
	Escalated int
}

const maxEscalations = 10000

// BackfillNumbering assigns numero_projeto to reports that lack one, in
// created_at order per project, continuing after the highest number already
// used there (or the project's numero_inicial). Only NULL rows are touched,
// so a second run changes nothing.
//
// While the legacy global unique on numero exists, a candidate whose public
// number is held by a report in another project is escalated to the global
// maximum plus one.
func BackfillNumbering(ctx context.Context, tx *gorm.DB, opts BackfillOptions) (*BackfillResult, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	tx = tx.WithContext(ctx)
	global := opts.ForceGlobal || hasLegacyNumeroUnique(tx)

	var projects []uint64
	if err := tx.Table("relatorios").
		Where("numero_projeto IS NULL").
		Distinct().
		Order("projeto_id").
		Pluck("projeto_id", &projects).Error; err != nil {
		return nil, fmt.Errorf("list projects to backfill: %w", err)
	}

	res := &BackfillResult{}
	for _, pid := range projects {
		assigned, escalated, err := backfillProject(tx, pid, global)
		if err != nil {
			return res, fmt.Errorf("project %d: %w", pid, err)
		}
		res.Projects++
		res.Assigned += assigned
		res.Escalated += escalated
		log.Info("report numbering backfilled", "project_id", pid, "assigned", assigned, "escalated", escalated)
	}
	return res, nil
}

func backfillProject(tx *gorm.DB, projectID uint64, global bool) (assigned, escalated int, err error) {
	start := 1
	if err := tx.Table("projetos").Select("numero_inicial").Where("id = ?", projectID).Row().Scan(&start); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, 0, err
	}
	var highest int
	if err := tx.Table("relatorios").
		Select("COALESCE(MAX(numero_projeto), 0)").
		Where("projeto_id = ?", projectID).
		Row().Scan(&highest); err != nil {
		return 0, 0, err
	}
	next := highest + 1
	if start > next {
		next = start
	}

	var ids []uint64
	if err := tx.Table("relatorios").
		Where("projeto_id = ? AND numero_projeto IS NULL", projectID).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return 0, 0, err
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	// Release the legacy public numbers of the rows being renumbered so they
	// cannot collide with each other while being rewritten.
	if err := tx.Table("relatorios").
		Where("projeto_id = ? AND numero_projeto IS NULL", projectID).
		Update("numero", nil).Error; err != nil {
		return 0, 0, err
	}

	for _, id := range ids {
		n := next
		if global {
			var bumped bool
			n, bumped, err = escalateGlobal(tx, id, n)
			if err != nil {
				return assigned, escalated, err
			}
			if bumped {
				escalated++
			}
		}
		if err := tx.Table("relatorios").
			Where("id = ? AND numero_projeto IS NULL", id).
			Updates(map[string]any{"numero_projeto": n, "numero": report.PublicNumber(n)}).Error; err != nil {
			return assigned, escalated, err
		}
		assigned++
		next = n + 1
	}
	return assigned, escalated, nil
}

func escalateGlobal(tx *gorm.DB, id uint64, n int) (int, bool, error) {
	bumped := false
	for i := 0; i < maxEscalations; i++ {
		var count int64
		if err := tx.Table("relatorios").
			Where("numero = ? AND id <> ?", report.PublicNumber(n), id).
			Count(&count).Error; err != nil {
			return 0, false, err
		}
		if count == 0 {
			return n, bumped, nil
		}
		var globalMax int
		if err := tx.Table("relatorios").
			Select("COALESCE(MAX(numero_projeto), 0)").
			Row().Scan(&globalMax); err != nil {
			return 0, false, err
		}
		if globalMax+1 > n {
			n = globalMax + 1
		} else {
			n++
		}
		bumped = true
	}
	return 0, false, fmt.Errorf("no free public number for report %d", id)
}
