package user

import (
	"context"

	"tutorconnect/internal/db"

	"github.com/shopspring/decimal"
)

// ProfileSpec is the role-specific half of a registration. Each role
// decides its initial account status and creates its own profile row.
type ProfileSpec interface {
	Role() Role
	InitialStatus() Status
	create(ctx context.Context, repo Repository, q db.Executor, userID int) error
}

type StudentSpec struct {
	FullName string
	Phone    string
}

func (StudentSpec) Role() Role { return RoleStudent }

func (StudentSpec) InitialStatus() Status { return StatusActive }

func (s StudentSpec) create(ctx context.Context, repo Repository, q db.Executor, userID int) error {
	return repo.CreateStudentProfile(ctx, q, &StudentProfile{
		UserID:   userID,
		FullName: s.FullName,
		Phone:    s.Phone,
	})
}

// TutorSpec starts unverified with no rate; the tutor fills in the rest
// before an admin approves them.
type TutorSpec struct {
	FullName string
	Phone    string
}

func (TutorSpec) Role() Role { return RoleTutor }

func (TutorSpec) InitialStatus() Status { return StatusPending }

func (s TutorSpec) create(ctx context.Context, repo Repository, q db.Executor, userID int) error {
	return repo.CreateTutorProfile(ctx, q, &TutorProfile{
		UserID:             userID,
		FullName:           s.FullName,
		Phone:              s.Phone,
		HourlyRate:         decimal.Zero,
		TutoringMode:       ModeBoth,
		VerificationStatus: VerificationPending,
	})
}

func profileFor(req RegisterRequest) ProfileSpec {
	if req.Role == RoleTutor {
		return TutorSpec{FullName: req.FullName, Phone: req.Phone}
	}
	return StudentSpec{FullName: req.FullName, Phone: req.Phone}
}
