package app

import (
	"bitwise74/conference-api/app/admin"
	"bitwise74/conference-api/app/copyright"
	"bitwise74/conference-api/app/message"
	"bitwise74/conference-api/app/paper"
	"bitwise74/conference-api/app/payment"
	"bitwise74/conference-api/app/review"
	"bitwise74/conference-api/app/root"
	"bitwise74/conference-api/app/user"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/pkg/middleware"
	"context"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type EngineOpts struct {
	// Cancelling it stops background work of the engine's middleware
	Context     context.Context
	CORSOrigins []string
	// Requests per second per IP, zero disables the limiter
	RateLimit int
	// Response cache of public read-only endpoints. Defaults to memory.
	CacheStore persist.CacheStore
	Turnstile  middleware.TurnstileOpts
}

type handler func(c *gin.Context, d *internal.Deps)

// NewEngine registers every route on a fresh gin engine
func NewEngine(d *internal.Deps, o EngineOpts) *gin.Engine {
	router := gin.New()

	if o.Context == nil {
		o.Context = context.Background()
	}

	if o.CacheStore == nil {
		o.CacheStore = persist.NewMemoryStore(time.Minute)
	}

	if len(o.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		zap.L().Warn("No CORS origins set, cross-origin requests will be refused by browsers")
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				if v, ok := c.Get("role"); ok {
					fields = append(fields, zap.Any("role", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	// Binds a handler to the shared dependencies
	h := func(fn handler) gin.HandlerFunc {
		return func(c *gin.Context) { fn(c, d) }
	}

	auth := []gin.HandlerFunc{
		middleware.NewAuthMiddleware(middleware.AuthOpts{
			Secret:     d.Settings.JWTSecret,
			DB:         d.DB,
			Principals: d.Principals,
		}),
		middleware.NewPolicyMiddleware(),
	}

	turnstile := middleware.NewTurnstileMiddleware(o.Turnstile)
	jsonLimit := middleware.BodySizeLimiter(1 << 20)
	uploadLimit := middleware.BodySizeLimiter(d.Settings.MaxUploadSize + 1<<20)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
		CleanupInterval:   time.Minute,
		Context:           o.Context,
	})

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", h(root.Heartbeat))

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", append(auth, root.Validate)...)
	}

	pub := m.Group("", jsonLimit)
	{
		// POST /api/users 		-> Registers a new author
		pub.POST("/users", turnstile, h(user.UserRegister))

		// POST /api/users/login 	-> Logs in a user and returns a JWT token
		pub.POST("/users/login", h(user.UserLogin))

		// POST /api/users/verify	-> Verifies a new user
		pub.POST("/users/verify", h(user.UserVerify))

		// POST /api/users/resend	-> Sends a new verification mail
		pub.POST("/users/resend", h(user.UserResend))

		// POST /api/users/password/forgot	-> Mails a password reset code
		pub.POST("/users/password/forgot", turnstile, h(user.PasswordForgot))

		// POST /api/users/password/reset	-> Sets a new password using a reset code
		pub.POST("/users/password/reset", h(user.PasswordReset))

		// GET /api/papers/categories	-> Lists submission categories
		pub.GET("/papers/categories", cache.CacheByRequestURI(o.CacheStore, 5*time.Minute), h(paper.PaperCategories))
	}

	u := m.Group("/users", auth...)
	{
		// GET /api/users/me		-> Returns the caller's account
		u.GET("/me", h(user.UserFetch))

		// GET /api/users		-> Lists accounts, optionally by role
		u.GET("", h(user.UserList))

		// POST /api/users/staff	-> Creates an editor or reviewer account
		u.POST("/staff", jsonLimit, h(user.StaffCreate))

		// PATCH /api/users/:id/role	-> Changes the role of a user
		u.PATCH("/:id/role", jsonLimit, h(user.UserSetRole))

		// DELETE /api/users/:id 	-> Deletes a user account
		u.DELETE("/:id", h(user.UserDelete))
	}

	p := m.Group("/papers", auth...)
	{
		// POST /api/papers		-> Submits a new paper
		p.POST("", uploadLimit, h(paper.PaperSubmit))

		// GET /api/papers/mine		-> Returns the caller's submissions
		p.GET("/mine", h(paper.PaperFetchMine))

		// GET /api/papers		-> Lists papers visible to an editor or admin
		p.GET("", h(paper.PaperList))

		// GET /api/papers/:id		-> Returns a paper if the caller may see it
		p.GET("/:id", h(paper.PaperFetch))

		// PATCH /api/papers/:id	-> Edits paper metadata
		p.PATCH("/:id", jsonLimit, h(paper.PaperEdit))

		// POST /api/papers/:id/editor	-> Assigns the handling editor
		p.POST("/:id/editor", jsonLimit, h(paper.PaperAssignEditor))

		// POST /api/papers/:id/reviewers	-> Assigns reviewers for the current round
		p.POST("/:id/reviewers", jsonLimit, h(paper.PaperAssignReviewers))

		// POST /api/papers/:id/revision-request	-> Asks the author for a revision
		p.POST("/:id/revision-request", jsonLimit, h(paper.PaperRequestRevision))

		// POST /api/papers/:id/revisions	-> Uploads a revised manuscript
		p.POST("/:id/revisions", uploadLimit, h(paper.PaperSubmitRevision))

		// POST /api/papers/:id/decision	-> Records the final decision
		p.POST("/:id/decision", jsonLimit, h(paper.PaperDecision))

		// POST /api/papers/:id/reminders/:reviewerID	-> Reminds a reviewer
		p.POST("/:id/reminders/:reviewerID", h(paper.PaperRemindReviewer))

		// GET /api/papers/:id/reviews	-> Lists submitted reviews of a round
		p.GET("/:id/reviews", h(paper.PaperReviews))
	}

	r := m.Group("/reviews", auth...)
	{
		// GET /api/reviews/assignments	-> Returns the caller's review assignments
		r.GET("/assignments", h(review.ReviewAssignments))

		// GET /api/reviews/:paperID	-> Returns the caller's review of a paper
		r.GET("/:paperID", h(review.ReviewFetch))

		// PUT /api/reviews/:paperID/draft	-> Saves a review draft
		r.PUT("/:paperID/draft", jsonLimit, h(review.ReviewSaveDraft))

		// POST /api/reviews/:paperID	-> Submits a review
		r.POST("/:paperID", jsonLimit, h(review.ReviewSubmit))
	}

	t := m.Group("/threads", auth...)
	{
		// GET /api/threads/:kind/:paperID	-> Returns a paper thread with its messages
		t.GET("/:kind/:paperID", h(message.ThreadFetch))

		// POST /api/threads/:kind/:paperID/messages	-> Posts to a paper thread
		t.POST("/:kind/:paperID/messages", jsonLimit, h(message.ThreadPost))
	}

	s := m.Group("/support", auth...)
	{
		// GET /api/support		-> Returns the caller's support thread
		s.GET("", h(message.SupportFetch))

		// POST /api/support/messages	-> Writes to support
		s.POST("/messages", jsonLimit, h(message.SupportPost))

		// GET /api/support/threads	-> Lists all support threads
		s.GET("/threads", h(message.SupportList))

		// POST /api/support/threads/:userID/messages	-> Replies to a support thread
		s.POST("/threads/:userID/messages", jsonLimit, h(message.SupportReply))
	}

	a := m.Group("", auth...)
	{
		// GET /api/copyright/:paperID	-> Returns the copyright record of an accepted paper
		a.GET("/copyright/:paperID", h(copyright.CopyrightFetch))

		// POST /api/copyright/:paperID/form	-> Uploads the signed copyright form
		a.POST("/copyright/:paperID/form", uploadLimit, h(copyright.CopyrightUpload))

		// GET /api/copyright		-> Lists copyright records
		a.GET("/copyright", h(copyright.CopyrightList))

		// POST /api/copyright/:paperID/review	-> Approves or rejects a copyright form
		a.POST("/copyright/:paperID/review", jsonLimit, h(copyright.CopyrightReview))

		// GET /api/selected		-> Lists selected authors
		a.GET("/selected", h(copyright.SelectedList))

		// GET /api/membership/:id	-> Looks up a membership and its fee
		a.GET("/membership/:id", h(payment.MembershipLookup))

		// POST /api/payments		-> Submits a registration payment
		a.POST("/payments", uploadLimit, h(payment.PaymentCreate))

		// GET /api/payments/mine	-> Returns the caller's payments
		a.GET("/payments/mine", h(payment.PaymentListMine))

		// GET /api/payments		-> Lists payments
		a.GET("/payments", h(payment.PaymentList))

		// POST /api/payments/:id/verify	-> Verifies a payment and registers the author
		a.POST("/payments/:id/verify", h(payment.PaymentVerify))

		// POST /api/payments/:id/reject	-> Rejects a payment
		a.POST("/payments/:id/reject", jsonLimit, h(payment.PaymentReject))

		// GET /api/registrations	-> Lists registrations
		a.GET("/registrations", h(payment.RegistrationList))

		// GET /api/admin/outbox	-> Lists outgoing messages
		a.GET("/admin/outbox", h(admin.OutboxList))

		// POST /api/admin/outbox/:id/retry	-> Requeues a dead message
		a.POST("/admin/outbox/:id/retry", h(admin.OutboxRetry))
	}

	return router
}
