package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type EscrowStatus string

const (
	EscrowHeld     EscrowStatus = "HELD"
	EscrowReleased EscrowStatus = "RELEASED"
	EscrowRefunded EscrowStatus = "REFUNDED"
)

// Booking is a scheduled session between a student and a tutor. StudentID
// and TutorID reference profile rows, not users.
type Booking struct {
	ID              int             `db:"id" json:"id"`
	StudentID       int             `db:"student_id" json:"studentId"`
	TutorID         int             `db:"tutor_id" json:"tutorId"`
	SubjectName     string          `db:"subject_name" json:"subjectName"`
	ScheduledFor    time.Time       `db:"scheduled_for" json:"scheduledFor"`
	DurationMinutes int             `db:"duration_minutes" json:"durationMinutes"`
	Notes           string          `db:"notes" json:"notes"`
	Status          Status          `db:"status" json:"status"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	PlatformFee     decimal.Decimal `db:"platform_fee" json:"platformFee"`
	TutorEarning    decimal.Decimal `db:"tutor_earning" json:"tutorEarning"`
	EscrowStatus    EscrowStatus    `db:"escrow_status" json:"escrowStatus"`
	MeetingLink     *string         `db:"meeting_link" json:"meetingLink,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// Details is a booking joined with both participants.
type Details struct {
	Booking
	StudentUserID int    `db:"student_user_id" json:"studentUserId"`
	StudentName   string `db:"student_name" json:"studentName"`
	StudentEmail  string `db:"student_email" json:"-"`
	TutorUserID   int    `db:"tutor_user_id" json:"tutorUserId"`
	TutorName     string `db:"tutor_name" json:"tutorName"`
	TutorEmail    string `db:"tutor_email" json:"-"`
}

// IsParticipant reports whether userID is the booking's student or tutor.
func (d *Details) IsParticipant(userID int) bool {
	return d.StudentUserID == userID || d.TutorUserID == userID
}

type CreateRequest struct {
	TutorID         int       `json:"tutorId" validate:"required,gt=0"`
	SubjectName     string    `json:"subjectName" validate:"required,max=100,singleline"`
	ScheduledFor    time.Time `json:"scheduledFor" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gte=30,lte=180"`
	Notes           string    `json:"notes" validate:"max=1000"`
}
