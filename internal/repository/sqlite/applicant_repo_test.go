package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/repository/sqlite"
	"go-applicant-tracker/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) domain.ApplicantRepository {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))
	return sqlite.NewApplicantRepository(db)
}

func seed(t *testing.T, repo domain.ApplicantRepository, name string, at time.Time) *domain.Applicant {
	t.Helper()
	a := &domain.Applicant{ID: uuid.NewString(), FullName: name, CreatedAt: at}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 2, 18, 16, 27, 29, 0, time.UTC)

	a := &domain.Applicant{
		ID:             uuid.NewString(),
		FullName:       "Ada Lovelace",
		LinkedInURL:    "https://linkedin.com/in/ada",
		ExpectedSalary: "$100k",
		Resume:         &domain.Resume{Path: "Ada_Lovelace_1.pdf", Name: "cv.pdf", PageCount: 2},
		Notes:          "strong",
		CreatedAt:      created,
	}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.Equal(t, "$100k", got.ExpectedSalary)
	require.NotNil(t, got.Resume)
	assert.Equal(t, "cv.pdf", got.Resume.Name)
	assert.Equal(t, 2, got.Resume.PageCount)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Empty(t, got.Comments)

	missing, err := repo.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListSearch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed(t, repo, "Grace Hopper", base)
	seed(t, repo, "Ada Lovelace", base.Add(time.Second))
	seed(t, repo, "100% Match", base.Add(2*time.Second))

	all, err := repo.List(ctx, domain.ApplicantFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Grace Hopper", all[0].FullName)

	found, err := repo.List(ctx, domain.ApplicantFilter{Search: "LOVE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada Lovelace", found[0].FullName)

	literal, err := repo.List(ctx, domain.ApplicantFilter{Search: "%"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100% Match", literal[0].FullName)
}

func TestCommentsAreAppendOnly(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	a := seed(t, repo, "Ada Lovelace", time.Now().UTC())
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	for i, d := range []domain.Decision{domain.DecisionConsidering, domain.DecisionNotConsidering} {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.AddComment(ctx, &domain.Comment{
			ID:          uuid.NewString(),
			ApplicantID: a.ID,
			Reviewer:    domain.ReviewerMiz,
			Decision:    d,
			Timestamp:   at.Format(domain.TimestampLayout),
			CreatedAt:   at,
		}))
	}

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, domain.DecisionConsidering, got.Comments[0].Decision)
	assert.Equal(t, domain.DecisionNotConsidering, got.Comments[1].Decision)
	assert.Equal(t, "10/01/2024, 10:00:00", got.Comments[1].Timestamp)
	assert.True(t, got.Comments[1].CreatedAt.Equal(base.Add(time.Hour)))
}

func TestDeleteVariants(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	a := seed(t, repo, "A", now)
	b := seed(t, repo, "B", now.Add(time.Second))
	c := seed(t, repo, "C", now.Add(2*time.Second))
	seed(t, repo, "D", now.Add(3*time.Second))

	require.NoError(t, repo.AddComment(ctx, &domain.Comment{
		ID: uuid.NewString(), ApplicantID: a.ID, Reviewer: domain.ReviewerAyesha,
		Decision: domain.DecisionConsidering, Timestamp: "x", CreatedAt: now,
	}))

	ok, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.DeleteMany(ctx, []string{b.ID, c.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := repo.List(ctx, domain.ApplicantFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}
