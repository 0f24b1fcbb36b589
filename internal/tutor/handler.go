package tutor

import (
	"context"
	"net/http"
	"strconv"

	"tutorconnect/internal/api"
	"tutorconnect/internal/apperr"
	"tutorconnect/internal/auth"
	"tutorconnect/internal/user"

	"github.com/gin-gonic/gin"
)

type TutorService interface {
	Search(ctx context.Context, f SearchFilters) ([]Card, error)
	Get(ctx context.Context, id int) (*Card, error)
	Subjects(ctx context.Context) ([]string, error)
	UpdateTutorProfile(ctx context.Context, userID int, req UpdateTutorProfileRequest) (*Card, error)
	UpdateStudentProfile(ctx context.Context, userID int, req UpdateStudentProfileRequest) (*user.StudentProfile, error)
	ListPending(ctx context.Context) ([]PendingTutor, error)
	Verify(ctx context.Context, tutorID int, req VerifyRequest) (*Verified, error)
}

type Handler struct {
	service TutorService
}

func NewHandler(service TutorService) *Handler {
	return &Handler{service: service}
}

func tutorID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("tutorID"))
	if err != nil || id <= 0 {
		api.BadRequest(c, "Invalid tutor ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) SearchTutors(c *gin.Context) {
	var f SearchFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		api.BadRequest(c, "Invalid search parameters")
		return
	}

	tutors, err := h.service.Search(c.Request.Context(), f)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tutors": tutors})
}

func (h *Handler) GetTutor(c *gin.Context) {
	id, ok := tutorID(c)
	if !ok {
		return
	}

	card, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *Handler) ListSubjects(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func (h *Handler) UpdateTutorProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	var req UpdateTutorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	card, err := h.service.UpdateTutorProfile(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *Handler) UpdateStudentProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	var req UpdateStudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	profile, err := h.service.UpdateStudentProfile(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListPending(c *gin.Context) {
	pending, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tutors": pending})
}

func (h *Handler) VerifyTutor(c *gin.Context) {
	id, ok := tutorID(c)
	if !ok {
		return
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	v, err := h.service.Verify(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}
