package schema

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"site-report-backend/internal/domain/photo"
	"site-report-backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// captureDDL records every CREATE/ALTER/DROP statement issued through db.
func captureDDL(t *testing.T, db *gorm.DB) func() []string {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []string
	)
	err := db.Callback().Raw().Register("test:capture_ddl", func(tx *gorm.DB) {
		q := strings.ToUpper(strings.TrimSpace(tx.Statement.SQL.String()))
		for _, p := range []string{"CREATE", "ALTER", "DROP"} {
			if strings.HasPrefix(q, p) {
				mu.Lock()
				seen = append(seen, q)
				mu.Unlock()
			}
		}
	})
	require.NoError(t, err)
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func newEvolver(t *testing.T, db *gorm.DB, revs ...Revision) *Evolver {
	t.Helper()
	if len(revs) == 0 {
		revs = Revisions(Options{})
	}
	ev, err := New(db, logger.Nop(), revs...)
	require.NoError(t, err)
	return ev
}

func TestEvolver_UpgradeFromEmpty(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	ev := newEvolver(t, db)

	applied, err := ev.Upgrade(ctx)
	require.NoError(t, err)
	assert.Equal(t, ev.Revisions(), applied)
	assert.Equal(t, "20251120_1200", ev.Head())

	cur, err := ev.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, ev.Head(), cur)

	m := db.Migrator()
	for _, table := range []string{
		"projetos", "users", "user_devices", "relatorios", "relatorios_express",
		"fotos_relatorio", "fotos_relatorios_express", "emails_clientes",
		"aprovadores_padrao", "checklist_obra", "notificacoes", "user_email_config",
		"categorias_obra",
	} {
		assert.True(t, m.HasTable(table), table)
	}
	assert.True(t, db.Table("fotos_relatorio").Migrator().HasColumn(&fotoBlobV3{}, "Imagem"))
	assert.True(t, m.HasIndex("relatorios", projectNumberIndex))
	assert.True(t, m.HasIndex("relatorios", projectPublicIndex))
	assert.False(t, m.HasIndex("relatorios", legacyNumeroIndex))
	assert.True(t, m.HasIndex("aprovadores_padrao", globalApproverIndex))
	assert.True(t, m.HasIndex("checklist_obra", activeChecklistIndex))
}

func TestEvolver_AtHeadIsNoop(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	ev := newEvolver(t, db)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)

	ddl := captureDDL(t, db)
	applied, err := ev.Upgrade(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Empty(t, ddl(), "no DDL expected at head")

	pending, err := ev.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEvolver_ToleratesPreexistingTables(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	// a hand-built legacy database without a marker
	require.NoError(t, createTables(db, &projetoV1{}, &userV1{}))

	ev := newEvolver(t, db)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)
	cur, _ := ev.Current(ctx)
	assert.Equal(t, ev.Head(), cur)
}

func TestNew_RejectsBadChains(t *testing.T) {
	noop := func(context.Context, *gorm.DB) error { return nil }
	tests := []struct {
		name string
		revs []Revision
		want error
	}{
		{"empty", nil, ErrBrokenChain},
		{"branched", []Revision{
			{ID: "a", Upgrade: noop},
			{ID: "b", PreviousID: "a", Upgrade: noop},
			{ID: "c", PreviousID: "a", Upgrade: noop},
		}, ErrBranchedChain},
		{"two roots", []Revision{
			{ID: "a", Upgrade: noop},
			{ID: "b", Upgrade: noop},
		}, ErrBranchedChain},
		{"duplicate id", []Revision{
			{ID: "a", Upgrade: noop},
			{ID: "a", PreviousID: "a", Upgrade: noop},
		}, ErrBrokenChain},
		{"dangling parent", []Revision{
			{ID: "a", Upgrade: noop},
			{ID: "b", PreviousID: "zzz", Upgrade: noop},
		}, ErrBrokenChain},
		{"missing upgrade", []Revision{{ID: "a"}}, ErrBrokenChain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(openDB(t), nil, tt.revs...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_OrdersByParent(t *testing.T) {
	noop := func(context.Context, *gorm.DB) error { return nil }
	ev, err := New(openDB(t), nil,
		Revision{ID: "c", PreviousID: "b", Upgrade: noop},
		Revision{ID: "a", Upgrade: noop},
		Revision{ID: "b", PreviousID: "a", Upgrade: noop},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ev.Revisions())
	assert.Equal(t, "c", ev.Head())
}

func TestEvolver_FailureKeepsMarker(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	boom := errors.New("boom")
	thirdRan := false

	ev := newEvolver(t, db,
		Revision{ID: "r1", Upgrade: func(_ context.Context, tx *gorm.DB) error {
			return tx.Exec("CREATE TABLE t1 (id INTEGER PRIMARY KEY)").Error
		}},
		Revision{ID: "r2", PreviousID: "r1", Upgrade: func(_ context.Context, tx *gorm.DB) error {
			if err := tx.Exec("CREATE TABLE t2 (id INTEGER PRIMARY KEY)").Error; err != nil {
				return err
			}
			return boom
		}},
		Revision{ID: "r3", PreviousID: "r2", Upgrade: func(context.Context, *gorm.DB) error {
			thirdRan = true
			return nil
		}},
	)

	applied, err := ev.Upgrade(ctx)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"r1"}, applied)
	assert.False(t, thirdRan)

	cur, err := ev.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", cur)
	assert.True(t, db.Migrator().HasTable("t1"))
	assert.False(t, db.Migrator().HasTable("t2"), "failed revision must roll back")
}

func TestEvolver_DriftAndReset(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	ev := newEvolver(t, db)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, db.Exec("UPDATE schema_revision SET revision = ? WHERE id = 1", "20990101_0000").Error)

	_, err = ev.Upgrade(ctx)
	assert.ErrorIs(t, err, ErrSchemaDrift)
	_, err = ev.Pending(ctx)
	assert.ErrorIs(t, err, ErrSchemaDrift)

	assert.ErrorIs(t, ev.ResetMarker(ctx, "nope"), ErrUnknownRevision)
	require.NoError(t, ev.ResetMarker(ctx, HeadAlias))

	applied, err := ev.Upgrade(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestEvolver_Downgrade(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	mk := func(table string) Revision {
		return Revision{
			ID: table,
			Upgrade: func(_ context.Context, tx *gorm.DB) error {
				return tx.Exec("CREATE TABLE " + table + " (id INTEGER PRIMARY KEY)").Error
			},
			Downgrade: func(_ context.Context, tx *gorm.DB) error {
				return dropTables(tx, table)
			},
		}
	}
	a, b, c := mk("ta"), mk("tb"), mk("tc")
	b.PreviousID, c.PreviousID = "ta", "tb"
	ev := newEvolver(t, db, a, b, c)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)

	reverted, err := ev.Downgrade(ctx, "ta")
	require.NoError(t, err)
	assert.Equal(t, []string{"tc", "tb"}, reverted)
	cur, _ := ev.Current(ctx)
	assert.Equal(t, "ta", cur)
	assert.True(t, db.Migrator().HasTable("ta"))
	assert.False(t, db.Migrator().HasTable("tb"))

	_, err = ev.Downgrade(ctx, "")
	require.NoError(t, err)
	cur, _ = ev.Current(ctx)
	assert.Equal(t, "", cur)

	_, err = ev.Downgrade(ctx, "unknown")
	assert.ErrorIs(t, err, ErrUnknownRevision)
}

func TestRevisions_DedupeGlobalApprovers(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	revs := Revisions(Options{})

	// evolve up to photo blobs, then hand-build a legacy approver table with duplicates
	ev := newEvolver(t, db, revs[:3]...)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().CreateTable(&aprovadorPadraoV4{}))
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&aprovadorPadraoV4{AprovadorID: uint64(i + 1), IsGlobal: true, Ativo: true, CreatedAt: now, UpdatedAt: now}).Error)
	}

	full := newEvolver(t, db, revs...)
	_, err = full.Upgrade(ctx)
	require.NoError(t, err)

	var active []aprovadorPadraoV4
	require.NoError(t, db.Where("is_global = ? AND ativo = ?", true, true).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, uint64(3), active[0].AprovadorID)

	err = db.Create(&aprovadorPadraoV4{AprovadorID: 9, IsGlobal: true, Ativo: true}).Error
	assert.Error(t, err, "partial unique index must reject a second active global approver")
}

func TestRevisions_ExpiryBackfill(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	revs := Revisions(Options{NotificationTTL: 48 * time.Hour})

	ev := newEvolver(t, db, revs[:8]...)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)

	created := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Exec(
		"INSERT INTO notificacoes (user_id, tipo, titulo, status, created_at) VALUES (?, ?, ?, ?, ?)",
		1, "report_approved", "t", "new", created).Error)

	full := newEvolver(t, db, revs...)
	_, err = full.Upgrade(ctx)
	require.NoError(t, err)

	var got time.Time
	require.NoError(t, db.Table("notificacoes").Select("expires_at").Row().Scan(&got))
	assert.True(t, got.Equal(created.Add(48*time.Hour)), "got %v", got)
}

func TestBackfillPhotoHashes(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	ev := newEvolver(t, db, Revisions(Options{})[:3]...)
	_, err := ev.Upgrade(ctx)
	require.NoError(t, err)

	blob := []byte("legacy-bytes")
	require.NoError(t, db.Exec("INSERT INTO fotos_relatorio (relatorio_id, ordem, imagem) VALUES (?, ?, ?)", 1, 1, blob).Error)
	require.NoError(t, backfillPhotoHashes(db, "fotos_relatorio"))
	// second pass is a no-op
	require.NoError(t, backfillPhotoHashes(db, "fotos_relatorio"))

	var row struct {
		ImagemHash   string
		TamanhoBytes int64
	}
	require.NoError(t, db.Table("fotos_relatorio").Select("imagem_hash, tamanho_bytes").Take(&row).Error)
	assert.Equal(t, photo.Hash(blob), row.ImagemHash)
	assert.Equal(t, int64(len(blob)), row.TamanhoBytes)
}
