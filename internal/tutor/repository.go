package tutor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tutorconnect/internal/db"
	"tutorconnect/internal/user"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const cardSelect = `
	SELECT tp.id, tp.user_id, tp.full_name, tp.bio, tp.hourly_rate, tp.gender,
	       tp.location_city, tp.location_area, tp.tutoring_mode, tp.verification_status,
	       tp.rating, tp.total_reviews,
	       ARRAY(
	           SELECT s.name FROM tutor_subjects ts
	           JOIN subjects s ON s.id = ts.subject_id
	           WHERE ts.tutor_id = tp.id
	           ORDER BY s.name
	       ) AS subjects,
	       (SELECT COUNT(*) FROM bookings b WHERE b.tutor_id = tp.id AND b.status = 'COMPLETED') AS completed_sessions`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// whereBuilder accumulates AND conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) next(arg interface{}) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) sql() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches term literally anywhere in the column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func searchQuery(f SearchFilters) (string, []interface{}) {
	w := &whereBuilder{conds: []string{"tp.verification_status = 'APPROVED'"}}

	if f.Subject != "" {
		w.add(`EXISTS (
			SELECT 1 FROM tutor_subjects ts
			JOIN subjects s ON s.id = ts.subject_id
			WHERE ts.tutor_id = tp.id AND s.name ILIKE ? ESCAPE '\')`, containsPattern(f.Subject))
	}
	if f.LocationCity != "" {
		w.add(`tp.location_city ILIKE ? ESCAPE '\'`, containsPattern(f.LocationCity))
	}
	if f.MinPrice != nil {
		w.add("tp.hourly_rate >= ?", decimal.NewFromFloat(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		w.add("tp.hourly_rate <= ?", decimal.NewFromFloat(*f.MaxPrice))
	}
	if f.Gender != "" {
		w.add("tp.gender = ?", f.Gender)
	}
	// Tutors offering BOTH match either specific mode.
	if f.TutoringMode != "" && f.TutoringMode != string(user.ModeBoth) {
		w.add("tp.tutoring_mode IN (?, 'BOTH')", f.TutoringMode)
	}
	if f.MinRating != nil && *f.MinRating > 0 {
		w.add("tp.rating >= ?", decimal.NewFromFloat(*f.MinRating))
	}

	query := cardSelect + ` FROM tutor_profiles tp` + w.sql() +
		` ORDER BY tp.rating DESC NULLS LAST, tp.id` +
		` LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	return query, w.args
}

func (r *repository) Search(ctx context.Context, q db.Executor, f SearchFilters) ([]Card, error) {
	query, args := searchQuery(f)

	cards := []Card{}
	if err := q.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search tutors: %w", err)
	}
	return cards, nil
}

func (r *repository) GetCard(ctx context.Context, q db.Executor, id int, approvedOnly bool) (*Card, error) {
	query := cardSelect + ` FROM tutor_profiles tp WHERE tp.id = $1`
	if approvedOnly {
		query += ` AND tp.verification_status = 'APPROVED'`
	}

	var c Card
	if err := q.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to get tutor %d: %w", id, err)
	}
	return &c, nil
}

func (r *repository) ListSubjects(ctx context.Context, q db.Executor) ([]string, error) {
	subjects := []string{}
	if err := q.SelectContext(ctx, &subjects, `SELECT name FROM subjects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (r *repository) UpdateTutorProfile(ctx context.Context, q db.Executor, userID int, req UpdateTutorProfileRequest) (int, error) {
	query := `
		UPDATE tutor_profiles
		SET full_name = $1, phone = $2, bio = $3, hourly_rate = $4, gender = $5,
		    location_city = $6, location_area = $7, tutoring_mode = $8, updated_at = NOW()
		WHERE user_id = $9
		RETURNING id
	`

	var id int
	err := q.GetContext(ctx, &id, query,
		req.FullName, req.Phone, req.Bio, req.HourlyRate, req.Gender,
		req.LocationCity, req.LocationArea, req.TutoringMode, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrTutorNotFound
		}
		return 0, fmt.Errorf("failed to update tutor profile: %w", err)
	}
	return id, nil
}

// ReplaceSubjects makes subjects the tutor's exact subject set, creating
// unknown subject names on the way.
func (r *repository) ReplaceSubjects(ctx context.Context, q db.Executor, tutorID int, subjects []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM tutor_subjects WHERE tutor_id = $1`, tutorID); err != nil {
		return fmt.Errorf("failed to clear tutor subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil
	}

	names := pq.Array(subjects)
	if _, err := q.ExecContext(ctx,
		`INSERT INTO subjects (name) SELECT DISTINCT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`,
		names,
	); err != nil {
		return fmt.Errorf("failed to create subjects: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO tutor_subjects (tutor_id, subject_id)
		 SELECT $1, id FROM subjects WHERE name = ANY($2::text[])`,
		tutorID, names,
	); err != nil {
		return fmt.Errorf("failed to link tutor subjects: %w", err)
	}
	return nil
}

func (r *repository) UpdateStudentProfile(ctx context.Context, q db.Executor, userID int, req UpdateStudentProfileRequest) (*user.StudentProfile, error) {
	query := `
		UPDATE student_profiles
		SET full_name = $1, phone = $2, grade_level = $3, location_city = $4, location_area = $5, updated_at = NOW()
		WHERE user_id = $6
		RETURNING id, user_id, full_name, phone, grade_level, location_city, location_area, created_at, updated_at
	`

	p := &user.StudentProfile{}
	err := q.GetContext(ctx, p, query,
		req.FullName, req.Phone, req.GradeLevel, req.LocationCity, req.LocationArea, userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to update student profile: %w", err)
	}
	return p, nil
}

func (r *repository) ListPending(ctx context.Context, q db.Executor) ([]PendingTutor, error) {
	query := cardSelect + `, u.email, tp.phone
		FROM tutor_profiles tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.verification_status = 'PENDING'
		ORDER BY tp.created_at`

	pending := []PendingTutor{}
	if err := q.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("failed to list pending tutors: %w", err)
	}
	return pending, nil
}

func (r *repository) SetVerification(ctx context.Context, q db.Executor, tutorID int, status user.VerificationStatus) (*Verified, error) {
	query := `
		UPDATE tutor_profiles tp
		SET verification_status = $1, updated_at = NOW()
		FROM users u
		WHERE tp.id = $2 AND u.id = tp.user_id
		RETURNING tp.id, tp.user_id, tp.full_name, u.email, tp.verification_status
	`

	v := &Verified{}
	if err := q.GetContext(ctx, v, query, status, tutorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrTutorNotFound
		}
		return nil, fmt.Errorf("failed to verify tutor %d: %w", tutorID, err)
	}
	return v, nil
}
