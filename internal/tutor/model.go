package tutor

import (
	"tutorconnect/internal/user"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

var MinHourlyRate = decimal.NewFromInt(10)

// SearchFilters narrows the approved tutor directory. Zero values mean
// "no filter".
type SearchFilters struct {
	Subject      string   `form:"subject" validate:"max=100"`
	LocationCity string   `form:"locationCity" validate:"max=80"`
	MinPrice     *float64 `form:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice     *float64 `form:"maxPrice" validate:"omitempty,gte=0"`
	Gender       string   `form:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	TutoringMode string   `form:"tutoringMode" validate:"omitempty,oneof=VIRTUAL IN_PERSON BOTH"`
	MinRating    *float64 `form:"minRating" validate:"omitempty,gte=0,lte=5"`
	Limit        int      `form:"limit" validate:"gte=0"`
	Offset       int      `form:"offset" validate:"gte=0"`
}

// Card is the public view of a tutor.
type Card struct {
	ID                 int                     `db:"id" json:"id"`
	UserID             int                     `db:"user_id" json:"userId"`
	FullName           string                  `db:"full_name" json:"fullName"`
	Bio                string                  `db:"bio" json:"bio"`
	HourlyRate         decimal.Decimal         `db:"hourly_rate" json:"hourlyRate"`
	Gender             string                  `db:"gender" json:"gender"`
	LocationCity       string                  `db:"location_city" json:"locationCity"`
	LocationArea       string                  `db:"location_area" json:"locationArea"`
	TutoringMode       user.TutoringMode       `db:"tutoring_mode" json:"tutoringMode"`
	VerificationStatus user.VerificationStatus `db:"verification_status" json:"verificationStatus"`
	Rating             decimal.NullDecimal     `db:"rating" json:"rating"`
	TotalReviews       int                     `db:"total_reviews" json:"totalReviews"`
	Subjects           pq.StringArray          `db:"subjects" json:"subjects"`
	CompletedSessions  int                     `db:"completed_sessions" json:"completedSessions"`
}

// PendingTutor is a profile waiting for an admin decision.
type PendingTutor struct {
	Card
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone"`
}

type UpdateTutorProfileRequest struct {
	FullName     string          `json:"fullName" validate:"required,min=2,max=120"`
	Phone        string          `json:"phone" validate:"omitempty,max=32"`
	Bio          string          `json:"bio" validate:"omitempty,min=50"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	Gender       string          `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	LocationCity string          `json:"locationCity" validate:"max=80"`
	LocationArea string          `json:"locationArea" validate:"max=80"`
	TutoringMode string          `json:"tutoringMode" validate:"required,oneof=VIRTUAL IN_PERSON BOTH"`
	Subjects     []string        `json:"subjects" validate:"omitempty,max=10,dive,required,max=100"`
}

type UpdateStudentProfileRequest struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=120"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	GradeLevel   string `json:"gradeLevel" validate:"max=32"`
	LocationCity string `json:"locationCity" validate:"max=80"`
	LocationArea string `json:"locationArea" validate:"max=80"`
}

type VerifyRequest struct {
	Status user.VerificationStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// Verified is the outcome of a verification decision.
type Verified struct {
	TutorID  int                     `db:"id" json:"tutorId"`
	UserID   int                     `db:"user_id" json:"userId"`
	FullName string                  `db:"full_name" json:"fullName"`
	Email    string                  `db:"email" json:"-"`
	Status   user.VerificationStatus `db:"verification_status" json:"status"`
}
