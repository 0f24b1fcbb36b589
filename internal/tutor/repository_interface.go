package tutor

import (
	"context"

	"tutorconnect/internal/db"
	"tutorconnect/internal/user"
)

type Repository interface {
	Search(ctx context.Context, q db.Executor, f SearchFilters) ([]Card, error)
	GetCard(ctx context.Context, q db.Executor, id int, approvedOnly bool) (*Card, error)
	ListSubjects(ctx context.Context, q db.Executor) ([]string, error)

	UpdateTutorProfile(ctx context.Context, q db.Executor, userID int, req UpdateTutorProfileRequest) (int, error)
	ReplaceSubjects(ctx context.Context, q db.Executor, tutorID int, subjects []string) error
	UpdateStudentProfile(ctx context.Context, q db.Executor, userID int, req UpdateStudentProfileRequest) (*user.StudentProfile, error)

	ListPending(ctx context.Context, q db.Executor) ([]PendingTutor, error)
	SetVerification(ctx context.Context, q db.Executor, tutorID int, status user.VerificationStatus) (*Verified, error)
}
