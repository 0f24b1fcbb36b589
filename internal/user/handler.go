package user

import (
	"context"
	"net/http"

	"tutorconnect/internal/api"
	"tutorconnect/internal/apperr"
	"tutorconnect/internal/auth"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (int, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	SignOut(ctx context.Context, session auth.Session) error
	Me(ctx context.Context, userID int) (*Me, error)
}

type Handler struct {
	service AuthService
}

func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid input")
		return
	}

	userID, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		UserID:  userID,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid input")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		api.BadRequest(c, "refresh_token is required")
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SignOut(c *gin.Context) {
	session, ok := auth.GetSession(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	if err := h.service.SignOut(c.Request.Context(), session); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SuccessResponse{Success: true})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	me, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}
