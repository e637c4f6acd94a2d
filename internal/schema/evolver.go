package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"site-report-backend/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSchemaDrift     = errors.New("schema marker names an unknown revision")
	ErrBranchedChain   = errors.New("schema revisions branch")
	ErrBrokenChain     = errors.New("schema revisions do not form a single chain")
	ErrUnknownRevision = errors.New("unknown schema revision")
)

// HeadAlias resolves to the last revision of the chain.
const HeadAlias = "head"

// Revision is one step of the linear chain. Upgrade must inspect the live
// catalog before every DDL so it can run against partially applied states.
type Revision struct {
	ID          string
	PreviousID  string
	Description string
	Upgrade     func(ctx context.Context, tx *gorm.DB) error
	Downgrade   func(ctx context.Context, tx *gorm.DB) error
}

// Table: schema_revision (singleton row id=1)
type marker struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	Revision  string    `gorm:"column:revision;size:64;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (marker) TableName() string { return "schema_revision" }

const markerID = 1

type Evolver struct {
	db    *gorm.DB
	log   *logger.Logger
	chain []Revision
	index map[string]int
}

// New orders revs by PreviousID. Two revisions following the same parent is
// fatal and yields ErrBranchedChain.
func New(db *gorm.DB, log *logger.Logger, revs ...Revision) (*Evolver, error) {
	chain, err := order(revs)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	idx := make(map[string]int, len(chain))
	for i, r := range chain {
		idx[r.ID] = i
	}
	return &Evolver{db: db, log: log, chain: chain, index: idx}, nil
}

func order(revs []Revision) ([]Revision, error) {
	if len(revs) == 0 {
		return nil, fmt.Errorf("%w: no revisions", ErrBrokenChain)
	}
	seen := make(map[string]bool, len(revs))
	byParent := make(map[string]Revision, len(revs))
	for _, r := range revs {
		if r.ID == "" || r.Upgrade == nil {
			return nil, fmt.Errorf("%w: revision %q lacks an id or an upgrade", ErrBrokenChain, r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate revision id %s", ErrBrokenChain, r.ID)
		}
		seen[r.ID] = true
		if other, ok := byParent[r.PreviousID]; ok {
			return nil, fmt.Errorf("%w: %s and %s both follow %q", ErrBranchedChain, other.ID, r.ID, r.PreviousID)
		}
		byParent[r.PreviousID] = r
	}

	out := make([]Revision, 0, len(revs))
	cur := ""
	for {
		r, ok := byParent[cur]
		if !ok {
			break
		}
		out = append(out, r)
		cur = r.ID
	}
	if len(out) != len(revs) {
		return nil, fmt.Errorf("%w: %d of %d revisions reachable from the root", ErrBrokenChain, len(out), len(revs))
	}
	return out, nil
}

// Head is the id of the last revision.
func (e *Evolver) Head() string { return e.chain[len(e.chain)-1].ID }

// Revisions lists the chain ids in application order.
func (e *Evolver) Revisions() []string {
	out := make([]string, len(e.chain))
	for i, r := range e.chain {
		out[i] = r.ID
	}
	return out
}

// Current returns the marker, "" when the database was never evolved.
func (e *Evolver) Current(ctx context.Context) (string, error) {
	db := e.db.WithContext(ctx)
	if !db.Migrator().HasTable(&marker{}) {
		return "", nil
	}
	var m marker
	err := db.Where("id = ?", markerID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.Revision, nil
}

// Pending lists the revisions Upgrade would apply.
func (e *Evolver) Pending(ctx context.Context) ([]string, error) {
	start, err := e.startIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(e.chain)-start)
	for _, r := range e.chain[start:] {
		out = append(out, r.ID)
	}
	return out, nil
}

func (e *Evolver) startIndex(ctx context.Context) (int, error) {
	cur, err := e.Current(ctx)
	if err != nil {
		return 0, err
	}
	if cur == "" {
		return 0, nil
	}
	i, ok := e.index[cur]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrSchemaDrift, cur)
	}
	return i + 1, nil
}

// Upgrade applies every revision after the marker. Each revision commits
// together with its marker update; the first failure stops the run and
// leaves the marker at the last good revision.
func (e *Evolver) Upgrade(ctx context.Context) ([]string, error) {
	if err := e.ensureMarkerTable(ctx); err != nil {
		return nil, err
	}
	start, err := e.startIndex(ctx)
	if err != nil {
		return nil, err
	}
	if start == len(e.chain) {
		e.log.Info("schema at head", "revision", e.Head())
		return nil, nil
	}

	var applied []string
	for _, rev := range e.chain[start:] {
		rev := rev
		began := time.Now()
		e.log.Info("applying schema revision", "revision", rev.ID, "description", rev.Description)
		err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := rev.Upgrade(ctx, tx); err != nil {
				return err
			}
			return setMarker(tx, rev.ID)
		})
		if err != nil {
			e.log.Error("schema revision failed", "revision", rev.ID, "err", err)
			return applied, fmt.Errorf("revision %s: %w", rev.ID, err)
		}
		e.log.Info("schema revision applied", "revision", rev.ID, "took", time.Since(began).String())
		applied = append(applied, rev.ID)
	}
	return applied, nil
}

// Downgrade reverts revisions newest first until the marker equals target.
// An empty target reverts the whole chain.
func (e *Evolver) Downgrade(ctx context.Context, target string) ([]string, error) {
	if target == HeadAlias {
		target = e.Head()
	}
	stop := -1
	if target != "" {
		i, ok := e.index[target]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRevision, target)
		}
		stop = i
	}
	start, err := e.startIndex(ctx)
	if err != nil {
		return nil, err
	}

	var reverted []string
	for i := start - 1; i > stop; i-- {
		rev := e.chain[i]
		if rev.Downgrade == nil {
			return reverted, fmt.Errorf("revision %s cannot be downgraded", rev.ID)
		}
		e.log.Info("reverting schema revision", "revision", rev.ID)
		err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := rev.Downgrade(ctx, tx); err != nil {
				return err
			}
			if rev.PreviousID == "" {
				return tx.Where("id = ?", markerID).Delete(&marker{}).Error
			}
			return setMarker(tx, rev.PreviousID)
		})
		if err != nil {
			return reverted, fmt.Errorf("revision %s: %w", rev.ID, err)
		}
		reverted = append(reverted, rev.ID)
	}
	return reverted, nil
}

// ResetMarker rewrites the marker without running DDL. It is the operator
// path out of ErrSchemaDrift.
func (e *Evolver) ResetMarker(ctx context.Context, revision string) error {
	if revision == HeadAlias {
		revision = e.Head()
	}
	if _, ok := e.index[revision]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRevision, revision)
	}
	if err := e.ensureMarkerTable(ctx); err != nil {
		return err
	}
	prev, _ := e.Current(ctx)
	if err := setMarker(e.db.WithContext(ctx), revision); err != nil {
		return err
	}
	e.log.Warn("schema marker reset", "from", prev, "to", revision)
	return nil
}

func (e *Evolver) ensureMarkerTable(ctx context.Context) error {
	m := e.db.WithContext(ctx).Migrator()
	if m.HasTable(&marker{}) {
		return nil
	}
	return m.CreateTable(&marker{})
}

func setMarker(tx *gorm.DB, revision string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"revision", "updated_at"}),
	}).Create(&marker{ID: markerID, Revision: revision, UpdatedAt: time.Now().UTC()}).Error
}
