package user

import (
	"context"

	"tutorconnect/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Executor, email, passwordHash string, role Role, status Status) (*User, error)
	FindByEmail(ctx context.Context, q db.Executor, email string) (*User, error)
	FindByID(ctx context.Context, q db.Executor, id int) (*User, error)
	EmailExists(ctx context.Context, q db.Executor, email string) (bool, error)
	UpdateStatus(ctx context.Context, q db.Executor, id int, status Status) error

	CreateStudentProfile(ctx context.Context, q db.Executor, p *StudentProfile) error
	CreateTutorProfile(ctx context.Context, q db.Executor, p *TutorProfile) error
	StudentByUserID(ctx context.Context, q db.Executor, userID int) (*StudentProfile, error)
	TutorByUserID(ctx context.Context, q db.Executor, userID int) (*TutorProfile, error)
	TutorByID(ctx context.Context, q db.Executor, id int) (*TutorProfile, error)
}
