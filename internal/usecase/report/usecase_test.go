package report

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"site-report-backend/internal/adapter/repository/postgres"
	"site-report-backend/internal/domain/project"
	domainReport "site-report-backend/internal/domain/report"
	"site-report-backend/internal/domain/uow"
	"site-report-backend/internal/testutil/projectmock"
	"site-report-backend/internal/testutil/reportmock"
	"site-report-backend/internal/testutil/testdb"
	"site-report-backend/internal/testutil/uowmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Create_Retries(t *testing.T) {
	proj := &projectmock.Repo{
		GetByIDFn: func(context.Context, uint64) (*project.Project, error) {
			return &project.Project{ID: 7, StartingNumber: 1}, nil
		},
	}

	tests := []struct {
		name      string
		conflicts int
		wantErr   error
		wantTried []int
	}{
		{name: "first attempt wins", conflicts: 0, wantTried: []int{1}},
		{name: "two lost races", conflicts: 2, wantTried: []int{1, 2, 3}},
		{name: "contention after five attempts", conflicts: 5, wantErr: domainReport.ErrNumberingContention, wantTried: []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var tried []int
			reps := &reportmock.Repo{
				CreateFn: func(_ context.Context, r *domainReport.Report) error {
					tried = append(tried, *r.ProjectNumber)
					if len(tried) <= tt.conflicts {
						return domainReport.ErrDuplicateNumber
					}
					r.ID = 99
					return nil
				},
			}
			uc := NewUsecase(reps, uowmock.Passthrough(uow.Repos{Projects: proj, Reports: reps}), nil)

			dto, err := uc.Create(context.Background(), CreateInput{ProjectID: 7, AuthorID: 1, Title: "t", Content: "c"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tried) != len(tt.wantTried) {
				t.Fatalf("tried %v, want %v", tried, tt.wantTried)
			}
			for i := range tried {
				if tried[i] != tt.wantTried[i] {
					t.Fatalf("tried %v, want %v", tried, tt.wantTried)
				}
			}
			if tt.wantErr == nil {
				want := domainReport.PublicNumber(tt.wantTried[len(tt.wantTried)-1])
				if dto.PublicNumber != want {
					t.Fatalf("public number = %s, want %s", dto.PublicNumber, want)
				}
			}
		})
	}
}

func TestUsecase_Create_OtherErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	reps := &reportmock.Repo{
		CreateFn: func(context.Context, *domainReport.Report) error {
			calls++
			return boom
		},
	}
	proj := &projectmock.Repo{
		GetByIDFn: func(context.Context, uint64) (*project.Project, error) { return &project.Project{ID: 1}, nil },
	}
	uc := NewUsecase(reps, uowmock.Passthrough(uow.Repos{Projects: proj, Reports: reps}), nil)

	_, err := uc.Create(context.Background(), CreateInput{ProjectID: 1})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}

func TestUsecase_Create_UnknownProject(t *testing.T) {
	reps := &reportmock.Repo{}
	uc := NewUsecase(reps, uowmock.Passthrough(uow.Repos{Projects: &projectmock.Repo{}, Reports: reps}), nil)
	_, err := uc.Create(context.Background(), CreateInput{ProjectID: 404})
	if !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestUsecase_NilUoW(t *testing.T) {
	uc := NewUsecase(nil, nil, nil)
	if _, err := uc.Create(context.Background(), CreateInput{}); !errors.Is(err, domainReport.ErrInvalidTransition) {
		t.Fatalf("err = %v", err)
	}
}

func TestUsecase_Create_StartingNumber(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Edifício Aurora", 100)
	uc := NewUsecase(postgres.NewReportRepository(db), postgres.NewGormUoW(db), nil)

	var got []string
	for i := 0; i < 3; i++ {
		dto, err := uc.Create(context.Background(), CreateInput{ProjectID: p.ID, AuthorID: author.ID, Title: "Visita", Content: "ok"})
		require.NoError(t, err)
		got = append(got, dto.PublicNumber)
	}
	assert.Equal(t, []string{"REL-0100", "REL-0101", "REL-0102"}, got)
}

// testdb caps the pool at one connection, so these transactions run one after
// another and never lose the insert race. The retry path against the real
// unique index is covered by TestUsecase_Create_RetriesAfterStaleMax.
func TestUsecase_Create_ConcurrentNoGaps(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Residencial Ipê", 1)
	testdb.SeedReport(t, db, p.ID, author.ID, 1)
	uc := NewUsecase(postgres.NewReportRepository(db), postgres.NewGormUoW(db), nil)

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		nums []int
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dto, err := uc.Create(context.Background(), CreateInput{ProjectID: p.ID, AuthorID: author.ID, Title: "Visita", Content: "ok"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			nums = append(nums, dto.ProjectNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Ints(nums)
	want := make([]int, workers)
	for i := range want {
		want[i] = i + 2
	}
	assert.Equal(t, want, nums)
}

// staleMax reports the per-project maximum as it was before a rival insert
// committed, once, and counts the inserts that follow.
type staleMax struct {
	domainReport.Repository
	mu      sync.Mutex
	served  bool
	creates []int
}

func (s *staleMax) MaxProjectNumber(ctx context.Context, projectID uint64) (int, error) {
	n, err := s.Repository.MaxProjectNumber(ctx, projectID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && !s.served && n > 0 {
		s.served = true
		n--
	}
	return n, err
}

func (s *staleMax) Create(ctx context.Context, r *domainReport.Report) error {
	s.mu.Lock()
	s.creates = append(s.creates, *r.ProjectNumber)
	s.mu.Unlock()
	return s.Repository.Create(ctx, r)
}

func TestUsecase_Create_RetriesAfterStaleMax(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Residencial Ipê", 1)
	testdb.SeedReport(t, db, p.ID, author.ID, 1)
	testdb.SeedReport(t, db, p.ID, author.ID, 2) // the rival that won REL-0002

	inner := postgres.NewGormUoW(db)
	wrapped := &staleMax{}
	tx := uowmock.New().
		WithWithinTx(func(ctx context.Context, fn func(uow.Repos) error) error {
			return inner.WithinTx(ctx, func(r uow.Repos) error {
				wrapped.Repository = r.Reports
				r.Reports = wrapped
				return fn(r)
			})
		})
	uc := NewUsecase(postgres.NewReportRepository(db), tx, nil)

	dto, err := uc.Create(context.Background(), CreateInput{ProjectID: p.ID, AuthorID: author.ID, Title: "Visita", Content: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "REL-0003", dto.PublicNumber)
	assert.Equal(t, []int{2, 3}, wrapped.creates, "the unique index rejects REL-0002 and the retry takes the next number")

	list, err := postgres.NewReportRepository(db).ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestUsecase_Update_FrozenAfterApproval(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	rep := testdb.SeedReport(t, db, p.ID, author.ID, 1)
	uc := NewUsecase(postgres.NewReportRepository(db), postgres.NewGormUoW(db), nil)
	ctx := context.Background()

	title := "Nova visita"
	dto, err := uc.Update(ctx, rep.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, dto.Title)
	assert.Equal(t, "REL-0001", dto.PublicNumber)

	ok, err := postgres.NewReportRepository(db).StampApproved(ctx, rep.ID, author.ID, dto.UpdatedAt)
	require.NoError(t, err)
	require.True(t, ok)

	content := "changed"
	_, err = uc.Update(ctx, rep.ID, UpdateInput{Content: &content})
	assert.ErrorIs(t, err, domainReport.ErrFrozen)

	got, err := uc.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.NotEqual(t, content, got.Content)
}

func TestUsecase_Update_LosesToConcurrentApproval(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	approver := testdb.SeedUser(t, db, "eng@obra.com", true)
	p := testdb.SeedProject(t, db, "Obra", 1)
	rep := testdb.SeedReport(t, db, p.ID, author.ID, 1)
	reports := postgres.NewReportRepository(db)
	ctx := context.Background()

	// The edit reads the draft, then an approval commits before it writes.
	tx := uowmock.StaleRead(postgres.NewGormUoW(db), reports, func(ctx context.Context, id uint64) {
		ok, err := reports.StampApproved(ctx, id, approver.ID, time.Now().UTC())
		require.NoError(t, err)
		require.True(t, ok)
	})
	uc := NewUsecase(reports, tx, nil)

	title := "editado em paralelo"
	_, err := uc.Update(ctx, rep.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, domainReport.ErrFrozen)

	got, err := reports.GetByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, domainReport.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, approver.ID, *got.ApproverID)
	assert.Equal(t, rep.Title, got.Title)
}

func TestUsecase_CreateExpress_Sequence(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	uc := NewUsecase(postgres.NewReportRepository(db), postgres.NewGormUoW(db), nil)

	for i, want := range []string{"EXP-0001", "EXP-0002"} {
		dto, err := uc.CreateExpress(context.Background(), CreateExpressInput{
			AuthorID: author.ID,
			Site:     domainReport.SiteInfo{SiteName: "Galpão", ContactEmail: "obra@cliente.com"},
			Content:  "vistoria",
		})
		require.NoError(t, err, "create %d", i)
		assert.Equal(t, want, dto.PublicNumber)
	}
}

func TestUsecase_ListByProject(t *testing.T) {
	db := testdb.Open(t)
	author := testdb.SeedUser(t, db, "autor@obra.com", false)
	p := testdb.SeedProject(t, db, "Obra", 1)
	other := testdb.SeedProject(t, db, "Outra", 1)
	testdb.SeedReport(t, db, p.ID, author.ID, 1)
	testdb.SeedReport(t, db, p.ID, author.ID, 2)
	testdb.SeedReport(t, db, other.ID, author.ID, 1)
	uc := NewUsecase(postgres.NewReportRepository(db), postgres.NewGormUoW(db), nil)

	list, err := uc.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
