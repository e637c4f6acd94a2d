package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	"site-report-backend/internal/adapter/repository/postgres"
	domainPhoto "site-report-backend/internal/domain/photo"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/domain/user"
	"site-report-backend/internal/infrastructure/pdf"
	"site-report-backend/internal/testutil/testdb"
	photoUC "site-report-backend/internal/usecase/photo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRenderer struct {
	doc pdf.Document
	err error
}

func (c *captureRenderer) Render(doc pdf.Document) (*pdf.Result, error) {
	c.doc = doc
	if c.err != nil {
		return nil, c.err
	}
	res := &pdf.Result{Bytes: []byte("%PDF-1.3 fake")}
	for i, p := range doc.Photos {
		if p.Err != nil {
			res.Skipped = append(res.Skipped, pdf.Skip{Index: i, PhotoID: p.ID, Reason: p.Err.Error()})
			continue
		}
		res.Rendered++
	}
	return res, nil
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "relatorio_REL-0042_20260309.pdf", FileName("REL-0042", at))
}

func TestRender_BuildsDocument(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Edifício Aurora", 1)
	rep := testdb.SeedReport(t, db, p.ID, author.ID, 3)

	tx := postgres.NewGormUoW(db)
	photos := photoUC.NewUsecase(postgres.NewPhotoRepository(db), tx, t.TempDir(), 0, nil)
	_, err := photos.Put(ctx, photoUC.PutInput{ReportID: rep.ID, Bytes: []byte{1, 2}, ContentType: "image/jpeg", Caption: "Pilar P3"})
	require.NoError(t, err)
	require.NoError(t, db.Table(domainPhoto.Table(domainPhoto.KindReport)).
		Create(&domainPhoto.Photo{ReportID: rep.ID, Ordinal: 2, Filename: "perdida.jpg"}).Error)

	r := &captureRenderer{}
	loc := time.FixedZone("BRT", -3*3600)
	uc := NewUsecase(r, photos, tx, "Eng. José Leopoldo Pugliese", loc, nil)
	uc.now = func() time.Time { return time.Date(2026, 10, 15, 1, 30, 0, 0, time.UTC) }

	var art *Artifact
	err = tx.WithinReportTx(ctx, rep.ID, func(repos uow.Repos, rr *domainReport.Report) error {
		var err error
		art, err = uc.Render(ctx, repos, rr, nil)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "relatorio_REL-0003_20261014.pdf", art.Filename)
	assert.Equal(t, "14/10/2026", r.doc.Date)
	assert.Equal(t, "REL-0003", r.doc.Number)
	assert.Equal(t, "Edifício Aurora", r.doc.ProjectName)
	assert.Equal(t, "Construtora X", r.doc.Company)
	assert.Equal(t, author.FullName, r.doc.Author)
	assert.Equal(t, "Eng. José Leopoldo Pugliese", r.doc.Approver)
	require.Len(t, r.doc.Photos, 2)
	assert.Equal(t, "Pilar P3", r.doc.Photos[0].Caption)
	assert.ErrorIs(t, r.doc.Photos[1].Err, domainPhoto.ErrPhotoMissing)
	assert.Equal(t, 1, art.Rendered)
	assert.Len(t, art.Skipped, 1)
}

func TestRender_ApproverOverride(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	rep := testdb.SeedReport(t, db, p.ID, author.ID, 1)
	tx := postgres.NewGormUoW(db)

	r := &captureRenderer{}
	uc := NewUsecase(r, nil, tx, "Padrão", nil, nil)
	err := tx.WithinReportTx(ctx, rep.ID, func(repos uow.Repos, rr *domainReport.Report) error {
		_, err := uc.Render(ctx, repos, rr, &user.User{FullName: "Ana Aprovadora"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Aprovadora", r.doc.Approver)
}

func TestDownload_PropagatesRendererError(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	rep := testdb.SeedReport(t, db, p.ID, author.ID, 1)

	uc := NewUsecase(&captureRenderer{err: pdf.ErrTemplateMissing}, nil, postgres.NewGormUoW(db), "", nil, nil)
	_, err := uc.Download(context.Background(), rep.ID)
	assert.True(t, errors.Is(err, pdf.ErrTemplateMissing))

	_, err = uc.Download(context.Background(), 9999)
	assert.ErrorIs(t, err, domainReport.ErrNotFound)
}

func TestRenderExpress(t *testing.T) {
	db := testdb.Open(t)
	ctx := context.Background()
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	exp := &domainReport.ReportExpress{
		Sequence: 4, Number: domainReport.ExpressNumber(4), AuthorID: author.ID, Status: domainReport.StatusDraft,
		Site: domainReport.SiteInfo{SiteName: "Galpão Norte", SiteAddress: "Av. Brasil, 10", ResponsibleName: "Paulo"},
	}
	require.NoError(t, db.Create(exp).Error)

	r := &captureRenderer{}
	uc := NewUsecase(r, nil, postgres.NewGormUoW(db), "Padrão", nil, nil)
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC) }

	var art *Artifact
	err := postgres.NewGormUoW(db).WithinTx(ctx, func(repos uow.Repos) error {
		var err error
		art, err = uc.RenderExpress(ctx, repos, exp, nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "relatorio_EXP-0004_20260102.pdf", art.Filename)
	assert.Equal(t, "Galpão Norte", r.doc.ProjectName)
	assert.Equal(t, "Paulo", r.doc.Responsible)
}
