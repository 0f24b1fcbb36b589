package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTutor   Role = "TUTOR"
	RoleAdmin   Role = "ADMIN"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING"
	StatusSuspended Status = "SUSPENDED"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
)

type TutoringMode string

const (
	ModeVirtual  TutoringMode = "VIRTUAL"
	ModeInPerson TutoringMode = "IN_PERSON"
	ModeBoth     TutoringMode = "BOTH"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Status       Status    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type StudentProfile struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"userId"`
	FullName     string    `db:"full_name" json:"fullName"`
	Phone        string    `db:"phone" json:"phone"`
	GradeLevel   string    `db:"grade_level" json:"gradeLevel"`
	LocationCity string    `db:"location_city" json:"locationCity"`
	LocationArea string    `db:"location_area" json:"locationArea"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type TutorProfile struct {
	ID                 int                 `db:"id" json:"id"`
	UserID             int                 `db:"user_id" json:"userId"`
	FullName           string              `db:"full_name" json:"fullName"`
	Phone              string              `db:"phone" json:"phone"`
	Bio                string              `db:"bio" json:"bio"`
	HourlyRate         decimal.Decimal     `db:"hourly_rate" json:"hourlyRate"`
	Gender             string              `db:"gender" json:"gender"`
	LocationCity       string              `db:"location_city" json:"locationCity"`
	LocationArea       string              `db:"location_area" json:"locationArea"`
	TutoringMode       TutoringMode        `db:"tutoring_mode" json:"tutoringMode"`
	VerificationStatus VerificationStatus  `db:"verification_status" json:"verificationStatus"`
	Rating             decimal.NullDecimal `db:"rating" json:"rating"`
	TotalReviews       int                 `db:"total_reviews" json:"totalReviews"`
	CreatedAt          time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updatedAt"`
}

// Bookable reports whether students may book this tutor.
func (p *TutorProfile) Bookable() bool {
	return p.VerificationStatus == VerificationApproved && p.HourlyRate.IsPositive()
}

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FullName        string `json:"fullName" validate:"required,min=2,max=120"`
	Role            Role   `json:"role" validate:"required,oneof=STUDENT TUTOR"`
	Phone           string `json:"phone" validate:"omitempty,max=32"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"userId"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         User   `json:"user"`
}

// Me is the current user together with whichever profile their role owns.
type Me struct {
	User           User            `json:"user"`
	StudentProfile *StudentProfile `json:"studentProfile,omitempty"`
	TutorProfile   *TutorProfile   `json:"tutorProfile,omitempty"`
}
