package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gigpass/gigpass/internal/domain"
	redisrepo "github.com/gigpass/gigpass/internal/repository/redis"
	"github.com/gigpass/gigpass/internal/service"
	"github.com/gigpass/gigpass/internal/service/admin"
	"github.com/gigpass/gigpass/internal/service/auth"
	"github.com/gigpass/gigpass/internal/service/catalog"
	"github.com/gigpass/gigpass/internal/service/checkout"
	"github.com/gigpass/gigpass/internal/service/profile"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	jwtSecret string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth
	r.POST("/auth/signup", handleSignup(svcs))
	r.POST("/auth/login", handleLogin(svcs))
	r.POST("/auth/refresh", handleRefresh(svcs))
	r.POST("/auth/logout", handleLogout(svcs))

	// Public catalog
	r.GET("/events", handleListEvents(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/search", handleSearchEvents(svcs))
	r.GET("/filters", handleFacets(svcs))

	// Authenticated API
	authed := r.Group("/", AuthMiddleware(jwtSecret))
	{
		authed.POST("/payments", handlePayments(svcs, idem))
		authed.GET("/me/bookings", handleListBookings(svcs))
		authed.GET("/me/profile", handleGetProfile(svcs))
		authed.PUT("/me/profile", handleUpdateProfile(svcs))
	}

	// Admin-API
	adm := r.Group("/admin", AuthMiddleware(jwtSecret), RequireRole("admin"))
	{
		adm.POST("/events", handleCreateEvent(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Sign up
// @Param    req body  SignupRequest true "payload"
// @Success  201 {object} SessionResponse
// @Failure  409 {object} ErrorResponse "email taken"
// @Router   /auth/signup [post]
func handleSignup(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svcs.Auth.Signup(
			c.Request.Context(),
			req.Email,
			req.Password,
			req.FullName,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse(sess))
	}
}

// @Summary  Log in
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svcs.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(sess))
	}
}

// @Summary  Rotate refresh token
// @Param    req body  RefreshRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/refresh [post]
func handleRefresh(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sess, err := svcs.Auth.Refresh(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(sess))
	}
}

// @Summary  Log out
// @Param    req body  RefreshRequest true "payload"
// @Success  204
// @Router   /auth/logout [post]
func handleLogout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svcs.Auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List events
// @Param    genre   query  string  false "genre or All"
// @Param    city    query  string  false "city or All"
// @Param    period  query  string  false "today | weekend"
// @Param    price   query  string  false "0-20 | 20-50 | 50-100 | 100+"
// @Success  200  {array}  domain.Event
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := domain.EventFilter{
			Genre:  c.Query("genre"),
			City:   strings.TrimSpace(c.Query("city")),
			Period: c.Query("period"),
			Price:  c.Query("price"),
		}
		events, err := svcs.Catalog.ListEvents(c.Request.Context(), filter)
		if err != nil {
			respondErr(c, err)
			return
		}
		if events == nil {
			events = []domain.Event{}
		}
		// ETag + Cache-Control 15s (lists go stale fast)
		writeJSONWithCache(c, http.StatusOK, events, "public, max-age=15", true)
	}
}

// @Summary  Get event
// @Param    id  path  string  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := svcs.Catalog.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, e, "public, max-age=60", true)
	}
}

// @Summary  Search events
// @Param    q  query  string  true  "search term"
// @Success  200  {array}  domain.Event
// @Router   /search [get]
func handleSearchEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcs.Catalog.SearchEvents(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondErr(c, err)
			return
		}
		if events == nil {
			events = []domain.Event{}
		}
		c.JSON(http.StatusOK, events)
	}
}

// @Summary  Get filter facets
// @Success  200  {object}  domain.Facets
// @Router   /filters [get]
func handleFacets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svcs.Catalog.Facets(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, f, "public, max-age=60", true)
	}
}

// @Summary  Create or verify a payment
// @Param    req body  PaymentRequest true "payload, branched on action"
// @Header   200 {string} Idempotency-Key "echo (create only)"
// @Success  200 {object} CreateOrderResponse "action=create"
// @Success  201 {object} VerifyPaymentResponse "action=verify"
// @Failure  400 {object} ErrorResponse
// @Failure  401 {object} ErrorResponse "session mismatch"
// @Failure  409 {object} ErrorResponse "payment already recorded / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  500 {object} ErrorResponse "payment captured, booking failed"
// @Router   /payments [post]
func handlePayments(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		switch req.Action {
		case "create":
			createPaymentOrder(c, svcs, idem, req)
		case "verify":
			verifyPayment(c, svcs, req)
		default:
			badRequest(c, "invalid action")
		}
	}
}

func createPaymentOrder(
	c *gin.Context,
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	req PaymentRequest,
) {
	userID := c.GetString(ctxUserID)

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	var idemStorageKey string
	if idem != nil && idemKey != "" {
		idemStorageKey = redisrepo.KeyIdemOrder(req.EventID, idemKey)

		if payload, ok, _ := idem.GetResult(
			c.Request.Context(),
			idemStorageKey,
		); ok {
			c.Header("Idempotency-Key", idemKey)
			c.Data(
				http.StatusOK,
				"application/json; charset=utf-8",
				[]byte(payload),
			)
			return
		}

		locked, err := idem.AcquireLock(
			c.Request.Context(),
			idemStorageKey,
			60*time.Second,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		if !locked {
			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusOK,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}
			c.Header("Retry-After", "1")
			c.JSON(
				http.StatusConflict,
				ErrorResponse{Error: "idempotency key in progress"},
			)
			return
		}
	}

	rlKey := "ip:" + c.ClientIP()

	order, err := svcs.Checkout.CreateOrder(
		c.Request.Context(),
		userID,
		req.EventID,
		req.Quantity,
		rlKey,
	)
	if err != nil {
		if idemStorageKey != "" && idem != nil {
			_ = idem.Release(c.Request.Context(), idemStorageKey)
		}
		if errors.Is(err, checkout.ErrRateLimited) {
			c.Header("Retry-After", "60")
			c.JSON(
				http.StatusTooManyRequests,
				ErrorResponse{Error: "too many order attempts"},
			)
			return
		}
		respondErr(c, err)
		return
	}

	resp := CreateOrderResponse{
		OrderID:   order.OrderID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		EventName: order.EventName,
	}

	if idemStorageKey != "" && idem != nil {
		b, _ := json.Marshal(resp)
		_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
		c.Header("Idempotency-Key", idemKey)
	}

	c.JSON(http.StatusOK, resp)
}

func verifyPayment(c *gin.Context, svcs *service.Services, req PaymentRequest) {
	booking, err := svcs.Checkout.VerifyPayment(
		c.Request.Context(),
		c.GetString(ctxUserID),
		checkout.VerifyInput{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
			EventID:   req.EventID,
			Quantity:  req.Quantity,
			UserID:    req.UserID,
		},
	)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, VerifyPaymentResponse{Success: true, Booking: booking})
}

// @Summary  List the caller's bookings
// @Success  200  {array}  domain.BookingWithEvent
// @Router   /me/bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Bookings.ListForUser(c.Request.Context(), c.GetString(ctxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		if out == nil {
			out = []domain.BookingWithEvent{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Get the caller's profile
// @Success  200  {object}  domain.Profile
// @Failure  404  {object}  ErrorResponse
// @Router   /me/profile [get]
func handleGetProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svcs.Profile.Get(c.Request.Context(), c.GetString(ctxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Update the caller's profile
// @Param    req body  UpdateProfileRequest true "payload"
// @Success  204
// @Router   /me/profile [put]
func handleUpdateProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		err := svcs.Profile.Update(
			c.Request.Context(),
			c.GetString(ctxUserID),
			req.FullName,
			req.Phone,
			req.AvatarURL,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Create event
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Failure  409 {object} ErrorResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		id, err := svcs.Admin.CreateEvent(c.Request.Context(), &domain.Event{
			Title:       req.Title,
			Date:        req.Date,
			Time:        req.Time,
			City:        req.City,
			Genre:       req.Genre,
			Price:       req.Price,
			ImageURL:    req.ImageURL,
			IsTrending:  req.IsTrending,
			Description: req.Description,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// --- Helpers ---

func sessionResponse(s *auth.Session) SessionResponse {
	return SessionResponse{
		UserID:       s.UserID,
		Role:         s.Role,
		AccessToken:  s.AccessToken,
		ExpiresAt:    s.AccessExp,
		RefreshToken: s.RefreshToken,
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var pe *checkout.PersistenceError
	if errors.As(err, &pe) {
		// The gateway captured the charge. The client must not retry the
		// payment; support resolves it from the order and payment ids.
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Payment successful but booking failed.",
			Details: "order " + pe.OrderID + ", payment " + pe.PaymentID,
			Code:    "BOOKING_PERSISTENCE_FAILED",
		})
		return
	}

	switch {
	// auth service
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email already registered"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid email or password"})
		return
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	// checkout service
	case errors.Is(err, checkout.ErrInvalidPurchase):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid event ID or quantity"})
		return
	case errors.Is(err, checkout.ErrMissingPaymentDetails):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing payment details"})
		return
	case errors.Is(err, checkout.ErrIdentityMismatch):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Session mismatch: Unauthorized"})
		return
	case errors.Is(err, checkout.ErrVerificationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Payment verification failed"})
		return
	case errors.Is(err, checkout.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, checkout.ErrAlreadyRecorded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "payment already recorded"})
		return
	// profile service
	case errors.Is(err, profile.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "profile not found"})
		return
	// admin service
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
