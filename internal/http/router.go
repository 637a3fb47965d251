package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/automartines/autoonline/internal/config"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/http/handlers"
	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/automartines/autoonline/internal/notifications"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UsersRepository is everything the HTTP layer needs from the users table.
type UsersRepository interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, p user.ProfileUpdate) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
}

type Tokens interface {
	middlewares.TokenVerifier
	handlers.TokenIssuer
}

// Deps wires the router. Prom, Metrics, DB and Vehicles may be nil.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Metrics  http.Handler
	DB       handlers.Pinger
	Tokens   Tokens
	Users    UsersRepository
	Listings handlers.ListingService
	Contacts handlers.InquiryStore
	Notifier notifications.Notifier
	Vehicles handlers.VehicleLookup
	// UploadsRoot is served under Config.UploadsPrefix when set.
	UploadsRoot string
}

const jsonBodyLimit = 1 << 20

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// multipart parts beyond this spill to temp files
	r.MaxMultipartMemory = 8 << 20

	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins, !cfg.IsProd()))
	r.Use(middlewares.SecurityHeaders(cfg.UploadsPrefix))

	multipartLimit := cfg.MaxUploadBytes*int64(cfg.MaxUploadFiles) + jsonBodyLimit
	r.Use(middlewares.MaxBodyBytes(jsonBodyLimit, multipartLimit))

	// ops
	h := handlers.NewHealthHandler(d.DB)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/api/health", h.Healthz)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	if d.UploadsRoot != "" {
		r.Static(cfg.UploadsPrefix, d.UploadsRoot)
	}

	authMw := middlewares.NewAuthMiddleware(d.Tokens, d.Users)

	// login/register/lookup are cheap to abuse
	authLimiter := middlewares.NewRateLimiter(10, time.Minute)
	lookupLimiter := middlewares.NewRateLimiter(30, time.Minute)
	contactLimiter := middlewares.NewRateLimiter(5, time.Minute)

	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, cfg)
	listingsHandler := handlers.NewListingsHandler(d.Listings)
	usersHandler := handlers.NewUsersHandler(d.Users)
	contactHandler := handlers.NewContactHandler(d.Contacts, d.Users, d.Notifier, log)
	adminHandler := handlers.NewAdminHandler(d.Listings, d.Users)

	// the original frontend talks to /api; keep both mounts
	for _, base := range []string{"", "/api"} {
		g := r.Group(base)

		authGroup := g.Group("/auth")
		authGroup.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Register)
		authGroup.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMw.RequireAuth(), authHandler.Me)

		listingsGroup := g.Group("/listings")
		listingsGroup.GET("", listingsHandler.List)
		listingsGroup.GET("/:id", listingsHandler.Get)
		listingsGroup.GET("/user/:userId", listingsHandler.ListByUser)
		listingsGroup.POST("", authMw.RequireAuth(), middlewares.RequireMultipart(), listingsHandler.Create)
		listingsGroup.PUT("/:id", authMw.RequireAuth(), middlewares.RequireMultipart(), listingsHandler.Update)
		listingsGroup.DELETE("/:id", authMw.RequireAuth(), listingsHandler.Delete)

		usersGroup := g.Group("/users")
		usersGroup.PUT("/profile", authMw.RequireAuth(), middlewares.RequireJSON(), usersHandler.UpdateProfile)
		usersGroup.POST("/contact", authMw.RequireAuth(), middlewares.RequireJSON(), contactHandler.CreateInquiry)
		usersGroup.GET("/:id", usersHandler.GetPublic)

		if d.Notifier != nil {
			g.POST("/contact", contactLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), contactHandler.SendContactForm)
		}

		if d.Vehicles != nil {
			vehiclesHandler := handlers.NewVehiclesHandler(d.Vehicles)
			g.GET("/vehicles/lookup",
				authMw.RequireAuth(),
				lookupLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
				vehiclesHandler.Lookup,
			)
		}

		adminGroup := g.Group("/admin", authMw.RequireAuth(), authMw.RequireRole(user.RoleAdmin))
		adminGroup.GET("/listings", adminHandler.Listings)
		adminGroup.GET("/users", adminHandler.Users)
	}

	return r
}
