package booking

import (
	"context"
	"time"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/classroom"
	"tutorconnect/internal/db"
	"tutorconnect/internal/fee"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/metrics"
	"tutorconnect/internal/user"
	"tutorconnect/internal/validate"

	"github.com/shopspring/decimal"
)

var (
	ErrNotParticipant   = apperr.Forbidden("You are not a participant of this booking")
	ErrNotBookingTutor  = apperr.Forbidden("Only the booked tutor can do this")
	ErrTutorUnavailable = apperr.Conflict("Tutor is not available for booking")
	ErrNotStarted       = apperr.Conflict("Session has not started yet")
	ErrAlreadyStarted   = apperr.Conflict("Accepted sessions cannot be cancelled after they start")
	ErrNoClassroom      = apperr.Conflict("Classroom is only available for accepted bookings")
)

// Profiles resolves the participants of a booking.
type Profiles interface {
	StudentByUserID(ctx context.Context, q db.Executor, userID int) (*user.StudentProfile, error)
	TutorByUserID(ctx context.Context, q db.Executor, userID int) (*user.TutorProfile, error)
	TutorByID(ctx context.Context, q db.Executor, id int) (*user.TutorProfile, error)
}

// Ledger posts the wallet entries that move escrowed funds.
type Ledger interface {
	RecordPayment(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error
	Refund(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error
	Earn(ctx context.Context, q db.Executor, userID, bookingID int, amount decimal.Decimal) error
}

type RoomIssuer interface {
	NewRoom() classroom.Room
}

// Notifier hears about lifecycle changes after they commit. Delivery is
// best effort.
type Notifier interface {
	BookingRequested(ctx context.Context, d *Details)
	BookingStatusChanged(ctx context.Context, d *Details, actorUserID int)
}

type Service struct {
	db       db.DB
	repo     Repository
	profiles Profiles
	ledger   Ledger
	fees     fee.Policy
	rooms    RoomIssuer
	notifier Notifier
	now      func() time.Time
}

func NewService(database db.DB, repo Repository, profiles Profiles, ledger Ledger, fees fee.Policy, rooms RoomIssuer, notifier Notifier) *Service {
	return &Service{
		db:       database,
		repo:     repo,
		profiles: profiles,
		ledger:   ledger,
		fees:     fees,
		rooms:    rooms,
		notifier: notifier,
		now:      time.Now,
	}
}

// Create books a session and moves its price from the student's wallet into
// escrow in the same transaction.
func (s *Service) Create(ctx context.Context, studentUserID int, req CreateRequest) (*Details, error) {
	v := apperr.NewValidation()
	for field, msg := range apperr.FieldsOf(validate.Struct(req)) {
		v.Add(field, msg)
	}
	if !req.ScheduledFor.IsZero() && !req.ScheduledFor.After(s.now()) {
		v.Add("scheduledFor", "scheduledFor must be in the future")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	student, err := s.profiles.StudentByUserID(ctx, s.db, studentUserID)
	if err != nil {
		return nil, err
	}
	tutor, err := s.profiles.TutorByID(ctx, s.db, req.TutorID)
	if err != nil {
		return nil, err
	}
	if !tutor.Bookable() {
		return nil, ErrTutorUnavailable
	}

	amount, err := fee.BookingAmount(tutor.HourlyRate, req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	split, err := s.fees.Split(amount)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		StudentID:       student.ID,
		TutorID:         tutor.ID,
		SubjectName:     req.SubjectName,
		ScheduledFor:    req.ScheduledFor.UTC(),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          StatusPending,
		TotalAmount:     amount,
		PlatformFee:     split.PlatformFee,
		TutorEarning:    split.TutorEarning,
		EscrowStatus:    EscrowHeld,
	}

	err = db.WithTx(ctx, s.db, func(q db.Executor) error {
		if err := s.repo.Create(ctx, q, b); err != nil {
			return err
		}
		return s.ledger.RecordPayment(ctx, q, studentUserID, b.ID, b.TotalAmount)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingTransition(string(StatusPending))
	metrics.RecordEscrowMovement(string(EscrowHeld))
	logger.Info("booking created",
		"booking_id", b.ID,
		"student_id", student.ID,
		"tutor_id", tutor.ID,
		"total_amount", b.TotalAmount.String(),
	)

	d, err := s.repo.GetByID(ctx, s.db, b.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.BookingRequested(ctx, d)
	return d, nil
}

func (s *Service) Accept(ctx context.Context, tutorUserID, bookingID int) (*Details, error) {
	return s.transition(ctx, tutorUserID, bookingID, StatusAccepted)
}

func (s *Service) Reject(ctx context.Context, tutorUserID, bookingID int) (*Details, error) {
	return s.transition(ctx, tutorUserID, bookingID, StatusRejected)
}

func (s *Service) Complete(ctx context.Context, userID, bookingID int) (*Details, error) {
	return s.transition(ctx, userID, bookingID, StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, userID, bookingID int) (*Details, error) {
	return s.transition(ctx, userID, bookingID, StatusCancelled)
}

func (s *Service) authorize(d *Details, userID int, to Status) error {
	switch to {
	case StatusAccepted, StatusRejected:
		if d.TutorUserID != userID {
			return ErrNotBookingTutor
		}
	default:
		if !d.IsParticipant(userID) {
			return ErrNotParticipant
		}
	}
	return nil
}

// transition applies one lifecycle step together with its escrow movement.
// The status update is conditional on the status read here, so a racing
// request fails with ErrStatusChanged instead of moving money twice.
func (s *Service) transition(ctx context.Context, userID, bookingID int, to Status) (*Details, error) {
	d, err := s.repo.GetByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(d, userID, to); err != nil {
		return nil, err
	}

	from := d.Status
	if !CanTransition(from, to) {
		return nil, invalidTransition(from, to)
	}
	if to == StatusCompleted && s.now().Before(d.ScheduledFor) {
		return nil, ErrNotStarted
	}
	if to == StatusCancelled && from == StatusAccepted && !s.now().Before(d.ScheduledFor) {
		return nil, ErrAlreadyStarted
	}

	var link *string
	if to == StatusAccepted {
		room := s.rooms.NewRoom()
		link = &room.Link
	}
	escrow := escrowFor(to)

	err = db.WithTx(ctx, s.db, func(q db.Executor) error {
		if err := s.repo.UpdateStatus(ctx, q, d.ID, from, to, escrow, link); err != nil {
			return err
		}
		switch escrow {
		case EscrowReleased:
			return s.ledger.Earn(ctx, q, d.TutorUserID, d.ID, d.TutorEarning)
		case EscrowRefunded:
			return s.ledger.Refund(ctx, q, d.StudentUserID, d.ID, d.TotalAmount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.Status = to
	d.EscrowStatus = escrow
	if link != nil {
		d.MeetingLink = link
	}

	metrics.RecordBookingTransition(string(to))
	if escrow != EscrowHeld {
		metrics.RecordEscrowMovement(string(escrow))
	}
	logger.Info("booking status changed",
		"booking_id", d.ID,
		"from", from,
		"to", to,
		"escrow_status", escrow,
		"actor_user_id", userID,
	)

	s.notifier.BookingStatusChanged(ctx, d, userID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, userID, bookingID int) (*Details, error) {
	d, err := s.repo.GetByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if !d.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return d, nil
}

// ListMine returns the caller's bookings for their role, newest session first.
func (s *Service) ListMine(ctx context.Context, userID int, role user.Role) ([]Details, error) {
	switch role {
	case user.RoleStudent:
		p, err := s.profiles.StudentByUserID(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListByStudent(ctx, s.db, p.ID)
	case user.RoleTutor:
		p, err := s.profiles.TutorByUserID(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListByTutor(ctx, s.db, p.ID)
	default:
		return nil, apperr.Forbidden("Only students and tutors have bookings")
	}
}

func (s *Service) Classroom(ctx context.Context, userID, bookingID int) (*classroom.Session, error) {
	d, err := s.Get(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusAccepted || d.MeetingLink == nil {
		return nil, ErrNoClassroom
	}

	return &classroom.Session{
		BookingID:    d.ID,
		RoomName:     classroom.RoomName(*d.MeetingLink),
		MeetingLink:  *d.MeetingLink,
		ScheduledFor: d.ScheduledFor,
		Duration:     d.DurationMinutes,
		SubjectName:  d.SubjectName,
		StudentName:  d.StudentName,
		TutorName:    d.TutorName,
	}, nil
}
