package booking

import (
	"context"

	"tutorconnect/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Executor, b *Booking) error
	GetByID(ctx context.Context, q db.Executor, id int) (*Details, error)
	UpdateStatus(ctx context.Context, q db.Executor, id int, from, to Status, escrow EscrowStatus, meetingLink *string) error
	ListByStudent(ctx context.Context, q db.Executor, studentID int) ([]Details, error)
	ListByTutor(ctx context.Context, q db.Executor, tutorID int) ([]Details, error)
}
