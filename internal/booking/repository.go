package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"
)

var (
	ErrBookingNotFound = apperr.NotFound("booking")
	// ErrStatusChanged means another request moved the booking first.
	ErrStatusChanged = apperr.Conflict("Booking status has changed, please reload")
)

const detailsQuery = `
	SELECT b.id, b.student_id, b.tutor_id, b.subject_name, b.scheduled_for, b.duration_minutes,
	       b.notes, b.status, b.total_amount, b.platform_fee, b.tutor_earning, b.escrow_status,
	       b.meeting_link, b.created_at, b.updated_at,
	       sp.user_id AS student_user_id, sp.full_name AS student_name, su.email AS student_email,
	       tp.user_id AS tutor_user_id, tp.full_name AS tutor_name, tu.email AS tutor_email
	FROM bookings b
	JOIN student_profiles sp ON sp.id = b.student_id
	JOIN users su ON su.id = sp.user_id
	JOIN tutor_profiles tp ON tp.id = b.tutor_id
	JOIN users tu ON tu.id = tp.user_id
`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q db.Executor, b *Booking) error {
	query := `
		INSERT INTO bookings (student_id, tutor_id, subject_name, scheduled_for, duration_minutes, notes,
		                      status, total_amount, platform_fee, tutor_earning, escrow_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowxContext(ctx, query,
		b.StudentID, b.TutorID, b.SubjectName, b.ScheduledFor, b.DurationMinutes, b.Notes,
		b.Status, b.TotalAmount, b.PlatformFee, b.TutorEarning, b.EscrowStatus,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, q db.Executor, id int) (*Details, error) {
	var d Details
	err := q.GetContext(ctx, &d, detailsQuery+` WHERE b.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return &d, nil
}

// UpdateStatus moves the booking only if it is still in from. A nil
// meetingLink leaves the stored link untouched.
func (r *repository) UpdateStatus(ctx context.Context, q db.Executor, id int, from, to Status, escrow EscrowStatus, meetingLink *string) error {
	query := `
		UPDATE bookings
		SET status = $1, escrow_status = $2, meeting_link = COALESCE($3::text, meeting_link), updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	result, err := q.ExecContext(ctx, query, to, escrow, meetingLink, id, from)
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repository) list(ctx context.Context, q db.Executor, where string, arg int) ([]Details, error) {
	bookings := []Details{}
	err := q.SelectContext(ctx, &bookings, detailsQuery+where+` ORDER BY b.scheduled_for DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListByStudent(ctx context.Context, q db.Executor, studentID int) ([]Details, error) {
	return r.list(ctx, q, ` WHERE b.student_id = $1`, studentID)
}

func (r *repository) ListByTutor(ctx context.Context, q db.Executor, tutorID int) ([]Details, error) {
	return r.list(ctx, q, ` WHERE b.tutor_id = $1`, tutorID)
}
