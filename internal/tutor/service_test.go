package tutor

import (
	"context"
	"errors"
	"testing"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"
	"tutorconnect/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Search(ctx context.Context, q db.Executor, f SearchFilters) ([]Card, error) {
	args := m.Called(ctx, q, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Card), args.Error(1)
}

func (m *MockRepository) GetCard(ctx context.Context, q db.Executor, id int, approvedOnly bool) (*Card, error) {
	args := m.Called(ctx, q, id, approvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Card), args.Error(1)
}

func (m *MockRepository) ListSubjects(ctx context.Context, q db.Executor) ([]string, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) UpdateTutorProfile(ctx context.Context, q db.Executor, userID int, req UpdateTutorProfileRequest) (int, error) {
	args := m.Called(ctx, q, userID, req)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ReplaceSubjects(ctx context.Context, q db.Executor, tutorID int, subjects []string) error {
	return m.Called(ctx, q, tutorID, subjects).Error(0)
}

func (m *MockRepository) UpdateStudentProfile(ctx context.Context, q db.Executor, userID int, req UpdateStudentProfileRequest) (*user.StudentProfile, error) {
	args := m.Called(ctx, q, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.StudentProfile), args.Error(1)
}

func (m *MockRepository) ListPending(ctx context.Context, q db.Executor) ([]PendingTutor, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]PendingTutor), args.Error(1)
}

func (m *MockRepository) SetVerification(ctx context.Context, q db.Executor, tutorID int, status user.VerificationStatus) (*Verified, error) {
	args := m.Called(ctx, q, tutorID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Verified), args.Error(1)
}

type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) UpdateStatus(ctx context.Context, q db.Executor, id int, status user.Status) error {
	return m.Called(ctx, q, id, status).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) TutorVerified(ctx context.Context, v *Verified) {
	m.Called(ctx, v)
}

type fixture struct {
	svc      *Service
	repo     *MockRepository
	users    *MockUsers
	notifier *MockNotifier
	sql      sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	f := &fixture{
		repo:     new(MockRepository),
		users:    new(MockUsers),
		notifier: new(MockNotifier),
		sql:      sqlMock,
	}
	f.svc = NewService(sqlxDB, f.repo, f.users, f.notifier)
	return f
}

func TestService_Search(t *testing.T) {
	t.Run("normalizes paging and trims", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("Search", mock.Anything, mock.Anything, SearchFilters{Subject: "math", Limit: 50, Offset: 0}).
			Return([]Card{{ID: 20}}, nil)

		cards, err := f.svc.Search(context.Background(), SearchFilters{Subject: "  math ", Limit: 500})
		require.NoError(t, err)
		assert.Len(t, cards, 1)
		f.repo.AssertExpectations(t)
	})

	t.Run("default page size", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("Search", mock.Anything, mock.Anything, SearchFilters{Limit: 20}).Return([]Card{}, nil)

		_, err := f.svc.Search(context.Background(), SearchFilters{})
		require.NoError(t, err)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejects inverted price range", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Search(context.Background(), SearchFilters{MinPrice: floatPtr(500), MaxPrice: floatPtr(100)})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, apperr.FieldsOf(err), "minPrice")
		f.repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Search(context.Background(), SearchFilters{TutoringMode: "HYBRID"})
		assert.Contains(t, apperr.FieldsOf(err), "tutoringMode")
	})
}

func TestService_Get(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetCard", mock.Anything, mock.Anything, 20, true).Return(nil, user.ErrTutorNotFound)

	_, err := f.svc.Get(context.Background(), 20)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func validProfile() UpdateTutorProfileRequest {
	return UpdateTutorProfileRequest{
		FullName:     " Dawit Bekele ",
		HourlyRate:   decimal.RequireFromString("299.999"),
		TutoringMode: "VIRTUAL",
	}
}

func TestService_UpdateTutorProfile(t *testing.T) {
	t.Run("replaces subjects", func(t *testing.T) {
		f := newFixture(t)
		req := validProfile()
		req.Subjects = []string{"Physics", " physics", "", "Mathematics"}

		f.sql.ExpectBegin()
		f.repo.On("UpdateTutorProfile", mock.Anything, mock.Anything, 2, mock.MatchedBy(func(r UpdateTutorProfileRequest) bool {
			return r.FullName == "Dawit Bekele" && r.HourlyRate.String() == "300"
		})).Return(20, nil)
		f.repo.On("ReplaceSubjects", mock.Anything, mock.Anything, 20, []string{"Physics", "Mathematics"}).Return(nil)
		f.sql.ExpectCommit()
		f.repo.On("GetCard", mock.Anything, mock.Anything, 20, false).Return(&Card{ID: 20}, nil)

		card, err := f.svc.UpdateTutorProfile(context.Background(), 2, req)
		require.NoError(t, err)
		assert.Equal(t, 20, card.ID)
		f.repo.AssertExpectations(t)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("nil subjects untouched", func(t *testing.T) {
		f := newFixture(t)

		f.sql.ExpectBegin()
		f.repo.On("UpdateTutorProfile", mock.Anything, mock.Anything, 2, mock.Anything).Return(20, nil)
		f.sql.ExpectCommit()
		f.repo.On("GetCard", mock.Anything, mock.Anything, 20, false).Return(&Card{ID: 20}, nil)

		_, err := f.svc.UpdateTutorProfile(context.Background(), 2, validProfile())
		require.NoError(t, err)
		f.repo.AssertNotCalled(t, "ReplaceSubjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rate below minimum", func(t *testing.T) {
		f := newFixture(t)
		req := validProfile()
		req.HourlyRate = decimal.RequireFromString("9.99")

		_, err := f.svc.UpdateTutorProfile(context.Background(), 2, req)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Contains(t, apperr.FieldsOf(err), "hourlyRate")
	})

	t.Run("short bio", func(t *testing.T) {
		f := newFixture(t)
		req := validProfile()
		req.Bio = "too short"

		_, err := f.svc.UpdateTutorProfile(context.Background(), 2, req)
		assert.Contains(t, apperr.FieldsOf(err), "bio")
	})

	t.Run("rolls back on subject failure", func(t *testing.T) {
		f := newFixture(t)
		req := validProfile()
		req.Subjects = []string{"Physics"}

		f.sql.ExpectBegin()
		f.repo.On("UpdateTutorProfile", mock.Anything, mock.Anything, 2, mock.Anything).Return(20, nil)
		f.repo.On("ReplaceSubjects", mock.Anything, mock.Anything, 20, []string{"Physics"}).Return(errors.New("boom"))
		f.sql.ExpectRollback()

		_, err := f.svc.UpdateTutorProfile(context.Background(), 2, req)
		assert.Error(t, err)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})
}

func TestService_UpdateStudentProfile(t *testing.T) {
	f := newFixture(t)
	req := UpdateStudentProfileRequest{FullName: "Selam Tesfaye", GradeLevel: "Grade 11"}
	f.repo.On("UpdateStudentProfile", mock.Anything, mock.Anything, 1, req).
		Return(&user.StudentProfile{ID: 10, FullName: "Selam Tesfaye"}, nil)

	p, err := f.svc.UpdateStudentProfile(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, 10, p.ID)

	_, err = f.svc.UpdateStudentProfile(context.Background(), 1, UpdateStudentProfileRequest{FullName: "S"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Verify(t *testing.T) {
	t.Run("approve activates account", func(t *testing.T) {
		f := newFixture(t)
		v := &Verified{TutorID: 20, UserID: 2, Status: user.VerificationApproved}

		f.sql.ExpectBegin()
		f.repo.On("SetVerification", mock.Anything, mock.Anything, 20, user.VerificationApproved).Return(v, nil)
		f.users.On("UpdateStatus", mock.Anything, mock.Anything, 2, user.StatusActive).Return(nil)
		f.sql.ExpectCommit()
		f.notifier.On("TutorVerified", mock.Anything, v).Return()

		out, err := f.svc.Verify(context.Background(), 20, VerifyRequest{Status: user.VerificationApproved})
		require.NoError(t, err)
		assert.Equal(t, user.VerificationApproved, out.Status)
		f.users.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("reject keeps account status", func(t *testing.T) {
		f := newFixture(t)
		v := &Verified{TutorID: 20, UserID: 2, Status: user.VerificationRejected}

		f.sql.ExpectBegin()
		f.repo.On("SetVerification", mock.Anything, mock.Anything, 20, user.VerificationRejected).Return(v, nil)
		f.sql.ExpectCommit()
		f.notifier.On("TutorVerified", mock.Anything, v).Return()

		_, err := f.svc.Verify(context.Background(), 20, VerifyRequest{Status: user.VerificationRejected})
		require.NoError(t, err)
		f.users.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Verify(context.Background(), 20, VerifyRequest{Status: user.VerificationPending})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown tutor", func(t *testing.T) {
		f := newFixture(t)
		f.sql.ExpectBegin()
		f.repo.On("SetVerification", mock.Anything, mock.Anything, 404, user.VerificationApproved).Return(nil, user.ErrTutorNotFound)
		f.sql.ExpectRollback()

		_, err := f.svc.Verify(context.Background(), 404, VerifyRequest{Status: user.VerificationApproved})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		f.notifier.AssertNotCalled(t, "TutorVerified", mock.Anything, mock.Anything)
	})
}
