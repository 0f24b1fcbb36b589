package tutor

import (
	"context"
	"strings"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/db"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/user"
	"tutorconnect/internal/validate"
)

// StatusUpdater changes an account's status alongside a verification decision.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, q db.Executor, id int, status user.Status) error
}

// VerificationNotifier is told about committed verification decisions.
type VerificationNotifier interface {
	TutorVerified(ctx context.Context, v *Verified)
}

type Service struct {
	db       db.DB
	repo     Repository
	users    StatusUpdater
	notifier VerificationNotifier
}

func NewService(database db.DB, repo Repository, users StatusUpdater, notifier VerificationNotifier) *Service {
	return &Service{
		db:       database,
		repo:     repo,
		users:    users,
		notifier: notifier,
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Search lists approved tutors matching f, best rated first.
func (s *Service) Search(ctx context.Context, f SearchFilters) ([]Card, error) {
	v := apperr.NewValidation()
	for field, msg := range apperr.FieldsOf(validate.Struct(f)) {
		v.Add(field, msg)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		v.Add("minPrice", "minPrice must not exceed maxPrice")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	f.Subject = strings.TrimSpace(f.Subject)
	f.LocationCity = strings.TrimSpace(f.LocationCity)
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	return s.repo.Search(ctx, s.db, f)
}

// Get returns an approved tutor's public card.
func (s *Service) Get(ctx context.Context, id int) (*Card, error) {
	return s.repo.GetCard(ctx, s.db, id, true)
}

func (s *Service) Subjects(ctx context.Context) ([]string, error) {
	return s.repo.ListSubjects(ctx, s.db)
}

func cleanSubjects(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// UpdateTutorProfile rewrites the caller's tutor profile. A non-nil
// Subjects list replaces the tutor's subjects; nil leaves them alone.
func (s *Service) UpdateTutorProfile(ctx context.Context, userID int, req UpdateTutorProfileRequest) (*Card, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Bio = strings.TrimSpace(req.Bio)
	req.Subjects = cleanSubjects(req.Subjects)

	v := apperr.NewValidation()
	for field, msg := range apperr.FieldsOf(validate.Struct(req)) {
		v.Add(field, msg)
	}
	if req.HourlyRate.LessThan(MinHourlyRate) {
		v.Add("hourlyRate", "hourlyRate must be at least "+MinHourlyRate.String())
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	req.HourlyRate = req.HourlyRate.Round(2)

	var tutorID int
	err := db.WithTx(ctx, s.db, func(q db.Executor) error {
		id, err := s.repo.UpdateTutorProfile(ctx, q, userID, req)
		if err != nil {
			return err
		}
		tutorID = id
		if req.Subjects == nil {
			return nil
		}
		return s.repo.ReplaceSubjects(ctx, q, id, req.Subjects)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("tutor profile updated", "tutor_id", tutorID, "user_id", userID)
	return s.repo.GetCard(ctx, s.db, tutorID, false)
}

func (s *Service) UpdateStudentProfile(ctx context.Context, userID int, req UpdateStudentProfileRequest) (*user.StudentProfile, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return s.repo.UpdateStudentProfile(ctx, s.db, userID, req)
}

func (s *Service) ListPending(ctx context.Context) ([]PendingTutor, error) {
	return s.repo.ListPending(ctx, s.db)
}

// Verify records an admin decision on a tutor. Approval also activates the
// tutor's account; rejection leaves the account status as it is.
func (s *Service) Verify(ctx context.Context, tutorID int, req VerifyRequest) (*Verified, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var out *Verified
	err := db.WithTx(ctx, s.db, func(q db.Executor) error {
		v, err := s.repo.SetVerification(ctx, q, tutorID, req.Status)
		if err != nil {
			return err
		}
		out = v
		if req.Status != user.VerificationApproved {
			return nil
		}
		return s.users.UpdateStatus(ctx, q, v.UserID, user.StatusActive)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("tutor verification decided",
		"tutor_id", out.TutorID,
		"user_id", out.UserID,
		"status", out.Status,
	)
	if s.notifier != nil {
		s.notifier.TutorVerified(ctx, out)
	}
	return out, nil
}
