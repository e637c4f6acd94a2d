package postgres

import (
	"bytes"
	"context"
	"errors"
	"testing"

	photoDomain "site-report-backend/internal/domain/photo"
	"site-report-backend/internal/testutil/testdb"
)

func seedPhotos(t *testing.T, repo *PhotoRepository, reportID uint64, n int) []uint64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		ord, err := repo.NextOrdinal(ctx, photoDomain.KindReport, reportID)
		if err != nil {
			t.Fatalf("NextOrdinal: %v", err)
		}
		b := []byte{byte(i), 0xAA}
		p := &photoDomain.Photo{
			ReportID: reportID, Ordinal: ord, Image: b, ImageHash: photoDomain.Hash(b),
			ContentType: photoDomain.ContentTypeJPEG, SizeBytes: int64(len(b)),
		}
		if err := repo.Create(ctx, photoDomain.KindReport, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func ordinals(t *testing.T, repo *PhotoRepository, reportID uint64) map[uint64]int {
	t.Helper()
	list, err := repo.ListByReport(context.Background(), photoDomain.KindReport, reportID)
	if err != nil {
		t.Fatalf("ListByReport: %v", err)
	}
	out := map[uint64]int{}
	for _, p := range list {
		out[p.ID] = p.Ordinal
	}
	return out
}

func TestPhoto_CreateGetAndOrdinals(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewPhotoRepository(db)
	author := testdb.SeedUser(t, db, "a@x.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	r := testdb.SeedReport(t, db, p.ID, author.ID, 1)

	ids := seedPhotos(t, repo, r.ID, 3)
	got, err := repo.GetByID(ctx, photoDomain.KindReport, ids[1])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Ordinal != 2 || !bytes.Equal(got.Image, []byte{1, 0xAA}) {
		t.Fatalf("unexpected photo: %+v", got)
	}
	n, _ := repo.CountByReport(ctx, photoDomain.KindReport, r.ID)
	if n != 3 {
		t.Fatalf("CountByReport = %d", n)
	}
	if _, err := repo.GetByID(ctx, photoDomain.KindExpress, ids[0]); !errors.Is(err, photoDomain.ErrNotFound) {
		t.Fatalf("express table must not see report photos: %v", err)
	}
}

func TestPhoto_DeleteCompactAndReorder(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	repo := NewPhotoRepository(db)
	author := testdb.SeedUser(t, db, "a@x.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	r := testdb.SeedReport(t, db, p.ID, author.ID, 1)
	ids := seedPhotos(t, repo, r.ID, 4)

	if err := repo.Delete(ctx, photoDomain.KindReport, ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Compact(ctx, photoDomain.KindReport, r.ID); err != nil {
		t.Fatalf("Compact: %v", err)
	}
	got := ordinals(t, repo, r.ID)
	if got[ids[0]] != 1 || got[ids[2]] != 2 || got[ids[3]] != 3 {
		t.Fatalf("ordinals not dense after compact: %v", got)
	}

	if err := repo.Reorder(ctx, photoDomain.KindReport, r.ID, []uint64{ids[3], ids[0], ids[2]}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	got = ordinals(t, repo, r.ID)
	if got[ids[3]] != 1 || got[ids[0]] != 2 || got[ids[2]] != 3 {
		t.Fatalf("reorder mismatch: %v", got)
	}

	if err := repo.Reorder(ctx, photoDomain.KindReport, r.ID, []uint64{ids[0]}); !errors.Is(err, photoDomain.ErrBadOrder) {
		t.Fatalf("partial order must be rejected, got %v", err)
	}
	if err := repo.Delete(ctx, photoDomain.KindReport, 12345); !errors.Is(err, photoDomain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
