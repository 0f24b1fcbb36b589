// Package admin serves the administrator dashboard figures.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"tutorconnect/internal/api"
	"tutorconnect/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalUsers     int             `db:"total_users" json:"totalUsers"`
	TotalTutors    int             `db:"total_tutors" json:"totalTutors"`
	ApprovedTutors int             `db:"approved_tutors" json:"approvedTutors"`
	PendingTutors  int             `db:"pending_tutors" json:"pendingTutors"`
	TotalBookings  int             `db:"total_bookings" json:"totalBookings"`
	TotalRevenue   decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	ActiveBookings int             `db:"active_bookings" json:"activeBookings"`
}

// Revenue counts only fees of completed bookings; held or refunded escrow
// is not platform income.
const statsQuery = `
SELECT
  (SELECT COUNT(*) FROM users) AS total_users,
  t.total_tutors, t.approved_tutors, t.pending_tutors,
  b.total_bookings, b.total_revenue, b.active_bookings
FROM (
  SELECT
    COUNT(*)                                                   AS total_tutors,
    COUNT(*) FILTER (WHERE verification_status = 'APPROVED')   AS approved_tutors,
    COUNT(*) FILTER (WHERE verification_status = 'PENDING')    AS pending_tutors
  FROM tutor_profiles
) t, (
  SELECT
    COUNT(*)                                                          AS total_bookings,
    COALESCE(SUM(platform_fee) FILTER (WHERE status = 'COMPLETED'), 0) AS total_revenue,
    COUNT(*) FILTER (WHERE status IN ('PENDING', 'ACCEPTED'))          AS active_bookings
  FROM bookings
) b;
`

type Service struct {
	db db.Executor
}

func NewService(database db.Executor) *Service {
	return &Service{db: database}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.db.GetContext(ctx, &st, statsQuery); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &st, nil
}

type StatsService interface {
	Stats(ctx context.Context) (*Stats, error)
}

type Handler struct {
	service StatsService
}

func NewHandler(service StatsService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetStats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, st)
}
