package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go-applicant-tracker/internal/domain"
	"go-applicant-tracker/internal/usecase"
	"go-applicant-tracker/pkg/apperror"
	"go-applicant-tracker/pkg/audit"
	"go-applicant-tracker/pkg/security/antivirus"
	"go-applicant-tracker/pkg/storage"
	"go-applicant-tracker/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockApplicantRepo struct {
	mock.Mock
}

func (m *MockApplicantRepo) List(ctx context.Context, filter domain.ApplicantFilter) ([]domain.Applicant, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) GetByID(ctx context.Context, id string) (*domain.Applicant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApplicantRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicantRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicantRepo) Clear(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApplicantRepo) AddComment(ctx context.Context, c *domain.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockApplicantRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestCreateApplicant(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects blank name without touching the store", func(t *testing.T) {
		repo := new(MockApplicantRepo)
		uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

		_, err := uc.Create(ctx, domain.CreateApplicantRequest{FullName: "   "})
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("assigns id, trims name and attaches resume", func(t *testing.T) {
		repo := new(MockApplicantRepo)
		repo.On("Create", ctx, mock.MatchedBy(func(a *domain.Applicant) bool {
			return a.FullName == "Ada Lovelace" && a.Resume != nil && a.Resume.Name == "cv.pdf"
		})).Return(nil)
		uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

		a, err := uc.Create(ctx, domain.CreateApplicantRequest{
			FullName:   "  Ada Lovelace ",
			ResumePath: "Ada_Lovelace_1.pdf",
			ResumeName: "cv.pdf",
		})
		require.NoError(t, err)
		_, parseErr := uuid.Parse(a.ID)
		assert.NoError(t, parseErr)
		assert.False(t, a.CreatedAt.IsZero())
		assert.NotNil(t, a.Comments)
		repo.AssertExpectations(t)
	})

	t.Run("store failure is returned unchanged in meaning", func(t *testing.T) {
		repo := new(MockApplicantRepo)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
		uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

		_, err := uc.Create(ctx, domain.CreateApplicantRequest{FullName: "Ada"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestGetAndDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, id).Return(nil, nil)
	repo.On("Delete", ctx, id).Return(false, nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

	_, err := uc.Get(ctx, id)
	assert.True(t, apperror.IsNotFound(err))

	err = uc.Delete(ctx, id)
	assert.True(t, apperror.IsNotFound(err))

	// malformed ids never reach the store
	_, err = uc.Get(ctx, "not-a-uuid")
	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestDeleteManyDedupes(t *testing.T) {
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	repo := new(MockApplicantRepo)
	repo.On("DeleteMany", ctx, []string{a, b}).Return(int64(2), nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

	n, err := uc.DeleteMany(ctx, domain.BulkDeleteRequest{IDs: []string{a, b, a}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = uc.DeleteMany(ctx, domain.BulkDeleteRequest{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAddCommentAppends(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	existing := &domain.Applicant{ID: id, FullName: "Ada", Comments: []domain.Comment{
		{ID: "c1", ApplicantID: id, Reviewer: domain.ReviewerMiz, Decision: domain.DecisionConsidering},
	}}

	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, id).Return(existing, nil)
	repo.On("AddComment", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
		_, err := time.ParseInLocation(domain.TimestampLayout, c.Timestamp, time.Local)
		return c.ApplicantID == id && c.Reviewer == domain.ReviewerMiz &&
			c.Decision == domain.DecisionNotConsidering && err == nil && !c.CreatedAt.IsZero()
	})).Return(nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

	c, err := uc.AddComment(ctx, id, domain.AddCommentRequest{
		Reviewer: domain.ReviewerMiz,
		Decision: domain.DecisionNotConsidering,
		Note:     " changed my mind ",
	})
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", c.Note)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAddCommentRequiresReviewerAndDecision(t *testing.T) {
	repo := new(MockApplicantRepo)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

	_, err := uc.AddComment(context.Background(), uuid.NewString(), domain.AddCommentRequest{Decision: domain.DecisionConsidering})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = uc.AddComment(context.Background(), uuid.NewString(), domain.AddCommentRequest{Reviewer: "BOB", Decision: "Maybe"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	repo.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything)
}

func TestConsensusAndStats(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	at := func(s string) time.Time {
		ts, _ := time.Parse(time.RFC3339, s)
		return ts
	}
	a := domain.Applicant{ID: id, FullName: "Ada", LinkedInURL: "https://linkedin.com/in/ada",
		Resume: &domain.Resume{Path: "a.pdf", Name: "a.pdf"},
		Comments: []domain.Comment{
			{Reviewer: domain.ReviewerMiz, Decision: domain.DecisionConsidering, CreatedAt: at("2024-01-10T09:00:00Z")},
			{Reviewer: domain.ReviewerJeanette, Decision: domain.DecisionConsidering, CreatedAt: at("2024-01-11T09:00:00Z")},
			{Reviewer: domain.ReviewerManish, Decision: domain.DecisionNotConsidering, CreatedAt: at("2024-01-12T09:00:00Z")},
			{Reviewer: domain.ReviewerAyesha, Decision: domain.DecisionConsidering, CreatedAt: at("2024-01-13T09:00:00Z")},
		}}

	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, id).Return(&a, nil)
	repo.On("List", ctx, domain.ApplicantFilter{}).Return([]domain.Applicant{a, {ID: uuid.NewString(), FullName: "Bob"}}, nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

	summary, err := uc.Consensus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Considering)
	assert.Equal(t, 1, summary.NotConsidering)
	assert.Equal(t, "positive", summary.Polarity)
	assert.Equal(t, 0.45, summary.Intensity)

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicantStats{Total: 2, WithResume: 1, WithLinkedIn: 1}, *stats)
}

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		repo := new(MockApplicantRepo)
		repo.On("List", ctx, domain.ApplicantFilter{}).Return([]domain.Applicant{}, nil)
		uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

		_, _, err := uc.Export(ctx, domain.ExportCSV)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("csv", func(t *testing.T) {
		repo := new(MockApplicantRepo)
		repo.On("List", ctx, domain.ApplicantFilter{}).Return([]domain.Applicant{{FullName: "Ada"}}, nil)
		uc := usecase.NewApplicantUsecase(repo, validation.New(), nil)

		data, name, err := uc.Export(ctx, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "Full Name,LinkedIn URL"))
		assert.Regexp(t, `^applicants_\d{4}-\d{2}-\d{2}\.csv$`, name)
	})

	t.Run("unknown format", func(t *testing.T) {
		uc := usecase.NewApplicantUsecase(new(MockApplicantRepo), validation.New(), nil)
		_, _, err := uc.Export(ctx, "pdf")
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	})
}

type memStore struct {
	objects   map[string][]byte
	fail      error
	deleteErr error
}

func (s *memStore) Name() string { return "memory" }

func (s *memStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.objects[name] = data
	return name, nil
}

func (s *memStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.objects[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(ctx context.Context, name string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.objects[name]; !ok {
		return storage.ErrNotFound
	}
	delete(s.objects, name)
	return nil
}

func withResume(name, path string) domain.Applicant {
	return domain.Applicant{ID: uuid.NewString(), FullName: name, Resume: &domain.Resume{Path: path, Name: "cv.pdf"}}
}

func TestDeleteRemovesStoredResume(t *testing.T) {
	ctx := context.Background()
	ada := withResume("Ada", "Ada_1.pdf")
	store := &memStore{objects: map[string][]byte{"Ada_1.pdf": []byte("%PDF"), "Bob_2.pdf": []byte("%PDF")}}

	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, ada.ID).Return(&ada, nil)
	repo.On("Delete", ctx, ada.ID).Return(true, nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil, usecase.WithResumeCleanup(store))

	require.NoError(t, uc.Delete(ctx, ada.ID))
	assert.NotContains(t, store.objects, "Ada_1.pdf")
	assert.Contains(t, store.objects, "Bob_2.pdf")
	repo.AssertExpectations(t)
}

func TestDeleteWithCleanupMissingApplicant(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, id).Return(nil, nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil, usecase.WithResumeCleanup(&memStore{objects: map[string][]byte{}}))

	assert.True(t, apperror.IsNotFound(uc.Delete(ctx, id)))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestClearRemovesStoredResumes(t *testing.T) {
	ctx := context.Background()
	store := &memStore{objects: map[string][]byte{"Ada_1.pdf": []byte("%PDF"), "Bob_2.pdf": []byte("%PDF")}}
	applicants := []domain.Applicant{
		withResume("Ada", "Ada_1.pdf"),
		withResume("Bob", "Bob_2.pdf"),
		{ID: uuid.NewString(), FullName: "Cy"},
	}

	repo := new(MockApplicantRepo)
	repo.On("List", ctx, domain.ApplicantFilter{}).Return(applicants, nil)
	repo.On("Clear", ctx).Return(int64(3), nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil, usecase.WithResumeCleanup(store))

	n, err := uc.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, store.objects)
}

func TestDeleteManyRemovesOnlyTargetedResumes(t *testing.T) {
	ctx := context.Background()
	ada, bob := withResume("Ada", "Ada_1.pdf"), withResume("Bob", "Bob_2.pdf")
	store := &memStore{objects: map[string][]byte{"Ada_1.pdf": []byte("%PDF"), "Bob_2.pdf": []byte("%PDF")}}

	repo := new(MockApplicantRepo)
	repo.On("List", ctx, domain.ApplicantFilter{}).Return([]domain.Applicant{ada, bob}, nil)
	repo.On("DeleteMany", ctx, []string{ada.ID}).Return(int64(1), nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), nil, usecase.WithResumeCleanup(store))

	_, err := uc.DeleteMany(ctx, domain.BulkDeleteRequest{IDs: []string{ada.ID}})
	require.NoError(t, err)
	assert.NotContains(t, store.objects, "Ada_1.pdf")
	assert.Contains(t, store.objects, "Bob_2.pdf")
}

func TestResumeCleanupFailureIsAuditedNotReturned(t *testing.T) {
	ctx := context.Background()
	ada := withResume("Ada", "Ada_1.pdf")
	store := &memStore{objects: map[string][]byte{"Ada_1.pdf": []byte("%PDF")}, deleteErr: errors.New("bucket gone")}
	core, logs := observer.New(zapcore.DebugLevel)

	repo := new(MockApplicantRepo)
	repo.On("GetByID", ctx, ada.ID).Return(&ada, nil)
	repo.On("Delete", ctx, ada.ID).Return(true, nil)
	uc := usecase.NewApplicantUsecase(repo, validation.New(), audit.NewWithCore("test", core), usecase.WithResumeCleanup(store))

	require.NoError(t, uc.Delete(ctx, ada.ID))

	failed := logs.FilterMessage(string(audit.ActionResumeCleanupFailed)).AllUntimed()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, ada.ID, failed[0].ContextMap()["applicant_id"])
	assert.Equal(t, 1, logs.FilterMessage(string(audit.ActionApplicantDeleted)).Len())
}

func TestResumeDelete(t *testing.T) {
	ctx := context.Background()
	store := &memStore{objects: map[string][]byte{"Orphan_1.pdf": []byte("%PDF")}}
	uc := usecase.NewResumeUsecase(store, nil, 1<<20, nil)

	require.NoError(t, uc.Delete(ctx, "Orphan_1.pdf"))
	assert.Empty(t, store.objects)
	assert.True(t, apperror.IsNotFound(uc.Delete(ctx, "Orphan_1.pdf")))
}

type fixedScanner struct {
	verdict antivirus.Verdict
	err     error
}

func (f fixedScanner) Scan(context.Context, string, []byte) (antivirus.Verdict, error) {
	return f.verdict, f.err
}
func (fixedScanner) Name() string               { return "fixed" }
func (fixedScanner) Ping(context.Context) error { return nil }

type denyGate struct{}

func (denyGate) Allow(ctx context.Context, ip string) (bool, int, error) { return false, 42, nil }

func minimalPDF() []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestResumeUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores under sanitized desired name", func(t *testing.T) {
		store := &memStore{objects: map[string][]byte{}}
		uc := usecase.NewResumeUsecase(store, nil, 1<<20, nil)

		r, err := uc.Upload(ctx, domain.UploadResumeRequest{
			OriginalName: "My CV.pdf",
			DesiredName:  "Ada Lovelace_1708273649000.pdf",
			ContentType:  "application/pdf",
			Data:         minimalPDF(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada_Lovelace_1708273649000.pdf", r.Path)
		assert.Equal(t, "My CV.pdf", r.Name)
		assert.Equal(t, 1, r.PageCount)
		assert.Contains(t, store.objects, r.Path)

		rc, err := uc.Open(ctx, r.Path)
		require.NoError(t, err)
		rc.Close()

		_, err = uc.Open(ctx, "missing.pdf")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("audits page count and text layer", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		uc := usecase.NewResumeUsecase(&memStore{objects: map[string][]byte{}}, nil, 1<<20, audit.NewWithCore("test", core))

		_, err := uc.Upload(ctx, domain.UploadResumeRequest{
			OriginalName: "cv.pdf",
			ContentType:  "application/pdf",
			Data:         minimalPDF(),
			ClientIP:     "10.0.0.1",
		})
		require.NoError(t, err)

		entries := logs.FilterMessage(string(audit.ActionResumeUploaded)).AllUntimed()
		require.Len(t, entries, 1)
		details, ok := entries[0].ContextMap()["details"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 1, details["pages"])
		assert.Equal(t, false, details["has_text"])
	})

	t.Run("rejects non pdf before storing", func(t *testing.T) {
		store := &memStore{objects: map[string][]byte{}}
		uc := usecase.NewResumeUsecase(store, nil, 1<<20, nil)

		_, err := uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.docx", ContentType: "application/msword", Data: []byte("PK\x03\x04")})
		assert.Equal(t, http.StatusUnsupportedMediaType, statusOf(t, err))

		_, err = uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.pdf", Data: []byte("hello world")})
		assert.Equal(t, http.StatusUnsupportedMediaType, statusOf(t, err))
		assert.Empty(t, store.objects)
	})

	t.Run("rate limited", func(t *testing.T) {
		uc := usecase.NewResumeUsecase(&memStore{objects: map[string][]byte{}}, denyGate{}, 1<<20, nil)
		_, err := uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.pdf", Data: minimalPDF()})
		assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))
	})

	t.Run("infected upload is not stored", func(t *testing.T) {
		store := &memStore{objects: map[string][]byte{}}
		uc := usecase.NewResumeUsecase(store, nil, 1<<20, nil,
			usecase.WithScanner(fixedScanner{verdict: antivirus.Verdict{Infected: true, ThreatName: "Eicar-Signature"}}))

		_, err := uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.pdf", Data: minimalPDF()})
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
		assert.Empty(t, store.objects)
	})

	t.Run("scanner down fails closed", func(t *testing.T) {
		store := &memStore{objects: map[string][]byte{}}
		uc := usecase.NewResumeUsecase(store, nil, 1<<20, nil,
			usecase.WithScanner(fixedScanner{err: antivirus.ErrUnavailable}))

		_, err := uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.pdf", Data: minimalPDF()})
		assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
		assert.Empty(t, store.objects)
	})

	t.Run("storage failure", func(t *testing.T) {
		uc := usecase.NewResumeUsecase(&memStore{fail: errors.New("bucket gone")}, nil, 1<<20, nil)
		_, err := uc.Upload(ctx, domain.UploadResumeRequest{OriginalName: "cv.pdf", Data: minimalPDF()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket gone")
	})
}

func TestHealth(t *testing.T) {
	uc := usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": func(ctx context.Context) error { return nil },
		"redis":    nil,
	})
	status, ok := uc.Check(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ok", status["database"])
	assert.NotContains(t, status, "redis")

	uc = usecase.NewHealthUsecase(map[string]usecase.Pinger{
		"database": func(ctx context.Context) error { return errors.New("down") },
	})
	status, ok = uc.Check(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "degraded", status["status"])
}
