package server

import (
	"context"
	"net/http"
	"time"

	"tutorconnect/internal/admin"
	"tutorconnect/internal/auth"
	"tutorconnect/internal/booking"
	"tutorconnect/internal/tutor"
	"tutorconnect/internal/user"
	"tutorconnect/internal/wallet"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users    *user.Handler
	Tutors   *tutor.Handler
	Wallets  *wallet.Handler
	Bookings *booking.Handler
	Admin    *admin.Handler
}

type Options struct {
	Port           string
	JWTSecret      string
	Revoker        auth.Revoker
	RateLimitRPS   float64
	RateLimitBurst int
	Checks         map[string]Check
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
	ctx     context.Context
	stop    context.CancelFunc
}

func New(opts Options, h Handlers) *Server {
	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, 3*time.Minute)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		corsMiddleware(),
		limiter.Middleware(),
	)

	router.GET("/health", Health(opts.Checks))
	router.GET("/metrics", Metrics())

	authMiddleware := auth.AuthMiddleware(opts.JWTSecret, opts.Revoker)
	student := auth.RequireRole(string(user.RoleStudent))
	tutorOnly := auth.RequireRole(string(user.RoleTutor))

	public := router.Group("/")
	{
		public.POST("/auth/register", h.Users.Register)
		public.POST("/auth/login", h.Users.Login)
		public.POST("/auth/refresh", h.Users.RefreshToken)
		public.GET("/tutors", h.Tutors.SearchTutors)
		public.GET("/tutors/:tutorID", h.Tutors.GetTutor)
		public.GET("/subjects", h.Tutors.ListSubjects)
	}

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.POST("/auth/signout", h.Users.SignOut)
		protected.GET("/me", h.Users.GetMe)

		protected.PUT("/tutor/profile", tutorOnly, h.Tutors.UpdateTutorProfile)
		protected.PUT("/student/profile", student, h.Tutors.UpdateStudentProfile)

		protected.GET("/wallet", h.Wallets.GetBalance)
		protected.GET("/wallet/transactions", h.Wallets.ListTransactions)
		protected.POST("/wallet/deposit", h.Wallets.Deposit)
		protected.POST("/wallet/withdraw", h.Wallets.Withdraw)

		protected.POST("/bookings", student, h.Bookings.CreateBooking)
		protected.GET("/bookings", h.Bookings.ListBookings)
		protected.GET("/bookings/:bookingID", h.Bookings.GetBooking)
		protected.POST("/bookings/:bookingID/accept", tutorOnly, h.Bookings.AcceptBooking)
		protected.POST("/bookings/:bookingID/reject", tutorOnly, h.Bookings.RejectBooking)
		protected.POST("/bookings/:bookingID/complete", h.Bookings.CompleteBooking)
		protected.POST("/bookings/:bookingID/cancel", h.Bookings.CancelBooking)
		protected.GET("/bookings/:bookingID/classroom", h.Bookings.GetClassroom)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(authMiddleware, auth.RequireRole(string(user.RoleAdmin)))
	{
		adminGroup.GET("/stats", h.Admin.GetStats)
		adminGroup.GET("/tutors/pending", h.Tutors.ListPending)
		adminGroup.POST("/tutors/:tutorID/verify", h.Tutors.VerifyTutor)
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Server{
		router:  router,
		limiter: limiter,
		ctx:     ctx,
		stop:    stop,
		http: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown; it returns http.ErrServerClosed after a
// clean shutdown.
func (s *Server) Start() error {
	go s.limiter.Run(s.ctx)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	return s.http.Shutdown(ctx)
}
