package booking

import (
	"context"
	"net/http"
	"strconv"

	"tutorconnect/internal/api"
	"tutorconnect/internal/apperr"
	"tutorconnect/internal/auth"
	"tutorconnect/internal/classroom"
	"tutorconnect/internal/user"

	"github.com/gin-gonic/gin"
)

type BookingService interface {
	Create(ctx context.Context, studentUserID int, req CreateRequest) (*Details, error)
	Accept(ctx context.Context, tutorUserID, bookingID int) (*Details, error)
	Reject(ctx context.Context, tutorUserID, bookingID int) (*Details, error)
	Complete(ctx context.Context, userID, bookingID int) (*Details, error)
	Cancel(ctx context.Context, userID, bookingID int) (*Details, error)
	Get(ctx context.Context, userID, bookingID int) (*Details, error)
	ListMine(ctx context.Context, userID int, role user.Role) ([]Details, error)
	Classroom(ctx context.Context, userID, bookingID int) (*classroom.Session, error)
}

type Handler struct {
	service BookingService
}

func NewHandler(service BookingService) *Handler {
	return &Handler{service: service}
}

func bookingID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil || id <= 0 {
		api.BadRequest(c, "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListBookings(c *gin.Context) {
	session, ok := auth.GetSession(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), session.UserID, user.Role(session.Role))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

type transitionFunc func(ctx context.Context, userID, bookingID int) (*Details, error)

func (h *Handler) transition(c *gin.Context, fn transitionFunc) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	d, err := fn(c.Request.Context(), userID, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

func (h *Handler) AcceptBooking(c *gin.Context) { h.transition(c, h.service.Accept) }

func (h *Handler) RejectBooking(c *gin.Context) { h.transition(c, h.service.Reject) }

func (h *Handler) CompleteBooking(c *gin.Context) { h.transition(c, h.service.Complete) }

func (h *Handler) CancelBooking(c *gin.Context) { h.transition(c, h.service.Cancel) }

func (h *Handler) GetClassroom(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.RespondError(c, apperr.ErrUnauthorized)
		return
	}
	id, ok := bookingID(c)
	if !ok {
		return
	}

	session, err := h.service.Classroom(c.Request.Context(), userID, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
