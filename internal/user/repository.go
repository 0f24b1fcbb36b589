package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"
)

var (
	ErrUserNotFound    = apperr.NotFound("user")
	ErrStudentNotFound = apperr.NotFound("student profile")
	ErrTutorNotFound   = apperr.NotFound("tutor")
)

const (
	userColumns    = `id, email, password_hash, role, status, created_at, updated_at`
	studentColumns = `id, user_id, full_name, phone, grade_level, location_city, location_area, created_at, updated_at`
	tutorColumns   = `id, user_id, full_name, phone, bio, hourly_rate, gender, location_city, location_area,
		tutoring_mode, verification_status, rating, total_reviews, created_at, updated_at`
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Create(ctx context.Context, q db.Executor, email, passwordHash string, role Role, status Status) (*User, error) {
	u := &User{}
	err := q.QueryRowxContext(ctx,
		`INSERT INTO users (email, password_hash, role, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, passwordHash, role, status,
	).StructScan(u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (r *repository) getUser(ctx context.Context, q db.Executor, where string, arg interface{}) (*User, error) {
	u := &User{}
	err := q.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, q db.Executor, email string) (*User, error) {
	return r.getUser(ctx, q, "email = $1", email)
}

func (r *repository) FindByID(ctx context.Context, q db.Executor, id int) (*User, error) {
	return r.getUser(ctx, q, "id = $1", id)
}

func (r *repository) EmailExists(ctx context.Context, q db.Executor, email string) (bool, error) {
	return db.Exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) UpdateStatus(ctx context.Context, q db.Executor, id int, status Status) error {
	result, err := q.ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) CreateStudentProfile(ctx context.Context, q db.Executor, p *StudentProfile) error {
	err := q.QueryRowxContext(ctx,
		`INSERT INTO student_profiles (user_id, full_name, phone, grade_level, location_city, location_area)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.FullName, p.Phone, p.GradeLevel, p.LocationCity, p.LocationArea,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create student profile: %w", err)
	}
	return nil
}

func (r *repository) CreateTutorProfile(ctx context.Context, q db.Executor, p *TutorProfile) error {
	err := q.QueryRowxContext(ctx,
		`INSERT INTO tutor_profiles (user_id, full_name, phone, hourly_rate, tutoring_mode, verification_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.FullName, p.Phone, p.HourlyRate, p.TutoringMode, p.VerificationStatus,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tutor profile: %w", err)
	}
	return nil
}

func (r *repository) StudentByUserID(ctx context.Context, q db.Executor, userID int) (*StudentProfile, error) {
	p := &StudentProfile{}
	err := q.GetContext(ctx, p, `SELECT `+studentColumns+` FROM student_profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return p, nil
}

func (r *repository) getTutor(ctx context.Context, q db.Executor, where string, arg interface{}) (*TutorProfile, error) {
	p := &TutorProfile{}
	err := q.GetContext(ctx, p, `SELECT `+tutorColumns+` FROM tutor_profiles WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor profile: %w", err)
	}
	return p, nil
}

func (r *repository) TutorByUserID(ctx context.Context, q db.Executor, userID int) (*TutorProfile, error) {
	return r.getTutor(ctx, q, "user_id = $1", userID)
}

func (r *repository) TutorByID(ctx context.Context, q db.Executor, id int) (*TutorProfile, error) {
	return r.getTutor(ctx, q, "id = $1", id)
}
