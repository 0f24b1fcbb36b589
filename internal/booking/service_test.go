package booking

import (
	"context"
	"testing"
	"time"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/classroom"
	"tutorconnect/internal/db"
	"tutorconnect/internal/fee"
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

func (m *MockRepository) Create(ctx context.Context, q db.Executor, b *Booking) error {
	return m.Called(ctx, q, b).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, q db.Executor, id int) (*Details, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Details), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, q db.Executor, id int, from, to Status, escrow EscrowStatus, meetingLink *string) error {
	return m.Called(ctx, q, id, from, to, escrow, meetingLink).Error(0)
}

func (m *MockRepository) ListByStudent(ctx context.Context, q db.Executor, studentID int) ([]Details, error) {
	args := m.Called(ctx, q, studentID)
	return args.Get(0).([]Details), args.Error(1)
}

func (m *MockRepository) ListByTutor(ctx context.Context, q db.Executor, tutorID int) ([]Details, error) {
	args := m.Called(ctx, q, tutorID)
	return args.Get(0).([]Details), args.Error(1)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) StudentByUserID(ctx context.Context, q db.Executor, userID int) (*user.StudentProfile, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.StudentProfile), args.Error(1)
}

func (m *MockProfiles) TutorByUserID(ctx context.Context, q db.Executor, userID int) (*user.TutorProfile, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.TutorProfile), args.Error(1)
}

func (m *MockProfiles) TutorByID(ctx context.Context, q db.Executor, id int) (*user.TutorProfile, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.TutorProfile), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RecordPayment(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	return m.Called(ctx, q, userID, bookingID, amount.String()).Error(0)
}

func (m *MockLedger) Refund(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	return m.Called(ctx, q, userID, bookingID, amount.String()).Error(0)
}

func (m *MockLedger) Earn(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error {
	return m.Called(ctx, q, userID, bookingID, amount.String()).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BookingRequested(ctx context.Context, d *Details) {
	m.Called(ctx, d)
}

func (m *MockNotifier) BookingStatusChanged(ctx context.Context, d *Details, actorUserID int) {
	m.Called(ctx, d, actorUserID)
}

type fixedRooms struct{}

func (fixedRooms) NewRoom() classroom.Room {
	return classroom.Room{Name: "tc-room", Link: "https://meet.jit.si/tc-room"}
}

const (
	studentUserID = 1
	tutorUserID   = 2
	strangerID    = 3
)

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	repo     *MockRepository
	profiles *MockProfiles
	ledger   *MockLedger
	notifier *MockNotifier
	sql      sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	policy, err := fee.NewPolicy(decimal.NewFromInt(10))
	require.NoError(t, err)

	f := &fixture{
		repo:     new(MockRepository),
		profiles: new(MockProfiles),
		ledger:   new(MockLedger),
		notifier: new(MockNotifier),
		sql:      sqlMock,
	}
	f.svc = NewService(sqlxDB, f.repo, f.profiles, f.ledger, policy, fixedRooms{}, f.notifier)
	f.svc.now = func() time.Time { return now }
	return f
}

func details(status Status, scheduledFor time.Time) *Details {
	return &Details{
		Booking: Booking{
			ID:              55,
			StudentID:       10,
			TutorID:         20,
			SubjectName:     "Mathematics",
			ScheduledFor:    scheduledFor,
			DurationMinutes: 90,
			Status:          status,
			TotalAmount:     decimal.NewFromInt(450),
			PlatformFee:     decimal.NewFromInt(45),
			TutorEarning:    decimal.NewFromInt(405),
			EscrowStatus:    EscrowHeld,
		},
		StudentUserID: studentUserID,
		StudentName:   "Selam Tesfaye",
		TutorUserID:   tutorUserID,
		TutorName:     "Dawit Bekele",
	}
}

func approvedTutor() *user.TutorProfile {
	return &user.TutorProfile{
		ID:                 20,
		UserID:             tutorUserID,
		HourlyRate:         decimal.NewFromInt(300),
		VerificationStatus: user.VerificationApproved,
	}
}

func validCreate() CreateRequest {
	return CreateRequest{
		TutorID:         20,
		SubjectName:     "Mathematics",
		ScheduledFor:    now.Add(48 * time.Hour),
		DurationMinutes: 90,
	}
}

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	f.profiles.On("StudentByUserID", mock.Anything, mock.Anything, studentUserID).Return(&user.StudentProfile{ID: 10, UserID: studentUserID}, nil)
	f.profiles.On("TutorByID", mock.Anything, mock.Anything, 20).Return(approvedTutor(), nil)

	f.sql.ExpectBegin()
	f.repo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.StudentID == 10 && b.TutorID == 20 &&
			b.Status == StatusPending && b.EscrowStatus == EscrowHeld &&
			b.TotalAmount.Equal(decimal.NewFromInt(450)) &&
			b.PlatformFee.Equal(decimal.NewFromInt(45)) &&
			b.TutorEarning.Equal(decimal.NewFromInt(405))
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*Booking).ID = 55
	}).Return(nil)
	f.ledger.On("RecordPayment", mock.Anything, mock.Anything, studentUserID, 55, "450").Return(nil)
	f.sql.ExpectCommit()

	d := details(StatusPending, now.Add(48*time.Hour))
	f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(d, nil)
	f.notifier.On("BookingRequested", mock.Anything, d).Return()

	got, err := f.svc.Create(context.Background(), studentUserID, validCreate())

	require.NoError(t, err)
	assert.Equal(t, 55, got.ID)
	f.repo.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestService_Create_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.profiles.On("StudentByUserID", mock.Anything, mock.Anything, studentUserID).Return(&user.StudentProfile{ID: 10}, nil)
	f.profiles.On("TutorByID", mock.Anything, mock.Anything, 20).Return(approvedTutor(), nil)

	f.sql.ExpectBegin()
	f.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(2).(*Booking).ID = 55
	}).Return(nil)
	f.ledger.On("RecordPayment", mock.Anything, mock.Anything, studentUserID, 55, "450").Return(apperr.ErrInsufficientFunds)
	f.sql.ExpectRollback()

	_, err := f.svc.Create(context.Background(), studentUserID, validCreate())

	assert.Equal(t, apperr.KindInsufficientFunds, apperr.KindOf(err))
	f.notifier.AssertNotCalled(t, "BookingRequested", mock.Anything, mock.Anything)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestService_Create_Rejections(t *testing.T) {
	t.Run("session in the past", func(t *testing.T) {
		f := newFixture(t)
		req := validCreate()
		req.ScheduledFor = now.Add(-time.Minute)

		_, err := f.svc.Create(context.Background(), studentUserID, req)

		assert.Contains(t, apperr.FieldsOf(err), "scheduledFor")
	})

	t.Run("duration out of range", func(t *testing.T) {
		f := newFixture(t)
		req := validCreate()
		req.DurationMinutes = 200

		_, err := f.svc.Create(context.Background(), studentUserID, req)

		assert.Contains(t, apperr.FieldsOf(err), "durationMinutes")
	})

	t.Run("subject with header break", func(t *testing.T) {
		f := newFixture(t)
		req := validCreate()
		req.SubjectName = "Mathematics\r\nBcc: everyone@example.com"

		_, err := f.svc.Create(context.Background(), studentUserID, req)

		assert.Contains(t, apperr.FieldsOf(err), "subjectName")
	})

	t.Run("tutor not approved", func(t *testing.T) {
		f := newFixture(t)
		pending := approvedTutor()
		pending.VerificationStatus = user.VerificationPending
		f.profiles.On("StudentByUserID", mock.Anything, mock.Anything, studentUserID).Return(&user.StudentProfile{ID: 10}, nil)
		f.profiles.On("TutorByID", mock.Anything, mock.Anything, 20).Return(pending, nil)

		_, err := f.svc.Create(context.Background(), studentUserID, validCreate())

		assert.ErrorIs(t, err, ErrTutorUnavailable)
	})

	t.Run("tutor without rate", func(t *testing.T) {
		f := newFixture(t)
		free := approvedTutor()
		free.HourlyRate = decimal.Zero
		f.profiles.On("StudentByUserID", mock.Anything, mock.Anything, studentUserID).Return(&user.StudentProfile{ID: 10}, nil)
		f.profiles.On("TutorByID", mock.Anything, mock.Anything, 20).Return(free, nil)

		_, err := f.svc.Create(context.Background(), studentUserID, validCreate())

		assert.ErrorIs(t, err, ErrTutorUnavailable)
	})
}

func TestService_Accept(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)
	f.sql.ExpectBegin()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusPending, StatusAccepted, EscrowHeld,
		mock.MatchedBy(func(link *string) bool { return link != nil && *link == "https://meet.jit.si/tc-room" })).Return(nil)
	f.sql.ExpectCommit()
	f.notifier.On("BookingStatusChanged", mock.Anything, mock.Anything, tutorUserID).Return()

	d, err := f.svc.Accept(context.Background(), tutorUserID, 55)

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, d.Status)
	require.NotNil(t, d.MeetingLink)
	f.ledger.AssertNotCalled(t, "Earn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestService_Accept_ByStudentForbidden(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)

	_, err := f.svc.Accept(context.Background(), studentUserID, 55)

	assert.ErrorIs(t, err, ErrNotBookingTutor)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestService_Reject_Refunds(t *testing.T) {
	f := newFixture(t)
	f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)
	f.sql.ExpectBegin()
	f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusPending, StatusRejected, EscrowRefunded, (*string)(nil)).Return(nil)
	f.ledger.On("Refund", mock.Anything, mock.Anything, studentUserID, 55, "450").Return(nil)
	f.sql.ExpectCommit()
	f.notifier.On("BookingStatusChanged", mock.Anything, mock.Anything, tutorUserID).Return()

	d, err := f.svc.Reject(context.Background(), tutorUserID, 55)

	require.NoError(t, err)
	assert.Equal(t, EscrowRefunded, d.EscrowStatus)
	f.ledger.AssertExpectations(t)
}

func TestService_Complete(t *testing.T) {
	t.Run("releases tutor earning", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusAccepted, now.Add(-2*time.Hour)), nil)
		f.sql.ExpectBegin()
		f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusAccepted, StatusCompleted, EscrowReleased, (*string)(nil)).Return(nil)
		f.ledger.On("Earn", mock.Anything, mock.Anything, tutorUserID, 55, "405").Return(nil)
		f.sql.ExpectCommit()
		f.notifier.On("BookingStatusChanged", mock.Anything, mock.Anything, studentUserID).Return()

		d, err := f.svc.Complete(context.Background(), studentUserID, 55)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, d.Status)
		assert.Equal(t, EscrowReleased, d.EscrowStatus)
		f.ledger.AssertExpectations(t)
	})

	t.Run("not started yet", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusAccepted, now.Add(time.Hour)), nil)

		_, err := f.svc.Complete(context.Background(), tutorUserID, 55)

		assert.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("from pending", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(-time.Hour)), nil)

		_, err := f.svc.Complete(context.Background(), tutorUserID, 55)

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("student cancels accepted booking", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusAccepted, now.Add(time.Hour)), nil)
		f.sql.ExpectBegin()
		f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusAccepted, StatusCancelled, EscrowRefunded, (*string)(nil)).Return(nil)
		f.ledger.On("Refund", mock.Anything, mock.Anything, studentUserID, 55, "450").Return(nil)
		f.sql.ExpectCommit()
		f.notifier.On("BookingStatusChanged", mock.Anything, mock.Anything, studentUserID).Return()

		_, err := f.svc.Cancel(context.Background(), studentUserID, 55)

		require.NoError(t, err)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("accepted session already started", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusAccepted, now.Add(-time.Minute)), nil)

		_, err := f.svc.Cancel(context.Background(), studentUserID, 55)

		assert.ErrorIs(t, err, ErrAlreadyStarted)
		f.ledger.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("pending past start time still refunds", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(-time.Minute)), nil)
		f.sql.ExpectBegin()
		f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusPending, StatusCancelled, EscrowRefunded, (*string)(nil)).Return(nil)
		f.ledger.On("Refund", mock.Anything, mock.Anything, studentUserID, 55, "450").Return(nil)
		f.sql.ExpectCommit()
		f.notifier.On("BookingStatusChanged", mock.Anything, mock.Anything, studentUserID).Return()

		_, err := f.svc.Cancel(context.Background(), studentUserID, 55)

		require.NoError(t, err)
		f.ledger.AssertExpectations(t)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)

		_, err := f.svc.Cancel(context.Background(), strangerID, 55)

		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("terminal booking", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusCompleted, now.Add(-time.Hour)), nil)

		_, err := f.svc.Cancel(context.Background(), studentUserID, 55)

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("lost race", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)
		f.sql.ExpectBegin()
		f.repo.On("UpdateStatus", mock.Anything, mock.Anything, 55, StatusPending, StatusCancelled, EscrowRefunded, (*string)(nil)).
			Return(ErrStatusChanged)
		f.sql.ExpectRollback()

		_, err := f.svc.Cancel(context.Background(), studentUserID, 55)

		assert.ErrorIs(t, err, ErrStatusChanged)
		f.ledger.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "BookingStatusChanged", mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})
}

func TestService_Classroom(t *testing.T) {
	t.Run("accepted booking", func(t *testing.T) {
		f := newFixture(t)
		d := details(StatusAccepted, now.Add(time.Hour))
		link := "https://meet.jit.si/tc-room"
		d.MeetingLink = &link
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(d, nil)

		session, err := f.svc.Classroom(context.Background(), studentUserID, 55)

		require.NoError(t, err)
		assert.Equal(t, "tc-room", session.RoomName)
		assert.Equal(t, link, session.MeetingLink)
		assert.Equal(t, 90, session.Duration)
		assert.Equal(t, "Mathematics", session.SubjectName)
	})

	t.Run("pending booking", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusPending, now.Add(time.Hour)), nil)

		_, err := f.svc.Classroom(context.Background(), tutorUserID, 55)

		assert.ErrorIs(t, err, ErrNoClassroom)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newFixture(t)
		f.repo.On("GetByID", mock.Anything, mock.Anything, 55).Return(details(StatusAccepted, now.Add(time.Hour)), nil)

		_, err := f.svc.Classroom(context.Background(), strangerID, 55)

		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestService_ListMine(t *testing.T) {
	t.Run("tutor", func(t *testing.T) {
		f := newFixture(t)
		f.profiles.On("TutorByUserID", mock.Anything, mock.Anything, tutorUserID).Return(approvedTutor(), nil)
		f.repo.On("ListByTutor", mock.Anything, mock.Anything, 20).Return([]Details{*details(StatusPending, now)}, nil)

		list, err := f.svc.ListMine(context.Background(), tutorUserID, user.RoleTutor)

		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("admin", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListMine(context.Background(), 9, user.RoleAdmin)

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})
}
