package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/config"
	"github.com/Angel-Eco/CuidadoPRO/internal/jobs"
	"github.com/Angel-Eco/CuidadoPRO/internal/middleware"
	"github.com/Angel-Eco/CuidadoPRO/pkg/database"
	"github.com/Angel-Eco/CuidadoPRO/pkg/ratelimiter"
	"github.com/Angel-Eco/CuidadoPRO/pkg/storage"
	"github.com/Angel-Eco/CuidadoPRO/pkg/validator"

	healthHttp "github.com/Angel-Eco/CuidadoPRO/internal/modules/health/delivery/http"
	healthService "github.com/Angel-Eco/CuidadoPRO/internal/modules/health/service"

	profesionalHttp "github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/delivery/http"
	profesionalRepo "github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/repository"
	profesionalService "github.com/Angel-Eco/CuidadoPRO/internal/modules/profesional/service"

	searchService "github.com/Angel-Eco/CuidadoPRO/internal/modules/search/service"

	solicitudHttp "github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/delivery/http"
	solicitudRepo "github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/repository"
	solicitudService "github.com/Angel-Eco/CuidadoPRO/internal/modules/solicitud/service"

	uploadHttp "github.com/Angel-Eco/CuidadoPRO/internal/modules/upload/delivery/http"
	uploadService "github.com/Angel-Eco/CuidadoPRO/internal/modules/upload/service"

	userHttp "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/delivery/http"
	userRepo "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/repository"
	userService "github.com/Angel-Eco/CuidadoPRO/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	Version          = "1.0.0"
	activosCacheTTL  = 5 * time.Minute
	maxMultipartSize = 8 << 20
)

// Deps are the clients built once by the entry point.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.ImageStorage
	Index   searchService.ProfesionalIndex
	Logger  zerolog.Logger
	// Repositories replaces the gorm repositories. Nil fields are built on DB.
	Repositories Repositories
}

type Repositories struct {
	Users         userRepo.UserRepository
	Solicitudes   solicitudRepo.SolicitudRepository
	Profesionales profesionalRepo.ProfesionalRepository
}

func (r Repositories) withDefaults(db *gorm.DB) Repositories {
	if r.Users == nil {
		r.Users = userRepo.NewUserRepository(db)
	}
	if r.Solicitudes == nil {
		r.Solicitudes = solicitudRepo.NewSolicitudRepository(db)
	}
	if r.Profesionales == nil {
		r.Profesionales = profesionalRepo.NewProfesionalRepository(db)
	}
	return r
}

type Server struct {
	engine    *gin.Engine
	http      *http.Server
	scheduler *jobs.Scheduler
	log       zerolog.Logger
}

func NewServer(deps Deps) *Server {
	cfg := deps.Config
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	index := deps.Index
	if index == nil {
		index = searchService.NewNoopIndex()
	}

	repos := deps.Repositories.withDefaults(deps.DB)

	userRepository := repos.Users
	tokens := userService.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	authSvc := userService.NewAuthService(userRepository, tokens, deps.Logger)
	authHandler := userHttp.NewAuthHandler(authSvc)

	solicitudSvc := solicitudService.NewSolicitudService(repos.Solicitudes, deps.Logger)
	solicitudHandler := solicitudHttp.NewSolicitudHandler(solicitudSvc)

	profesionalSvc := profesionalService.NewProfesionalService(
		repos.Profesionales,
		deps.Storage,
		index,
		profesionalService.NewActivosCache(deps.Redis, activosCacheTTL),
		deps.Logger,
	)
	profesionalHandler := profesionalHttp.NewProfesionalHandler(profesionalSvc)

	scheduler := jobs.NewScheduler(deps.Logger)
	if cfg.MeiliSearchHost != "" && cfg.ReindexSchedule != "" {
		if err := scheduler.Register(jobs.NewReindexProfesionalesJob(profesionalSvc, cfg.ReindexSchedule)); err != nil {
			deps.Logger.Error().Err(err).Str("schedule", cfg.ReindexSchedule).Msg("invalid REINDEX_SCHEDULE, reindex job disabled")
		}
	}

	uploadSvc := uploadService.NewUploadService(deps.Storage, deps.Logger)
	uploadHandler := uploadHttp.NewUploadHandler(uploadSvc)

	healthSvc := healthService.NewHealthService(func(ctx context.Context) error {
		return database.Ping(ctx, deps.DB)
	}, deps.Storage, deps.Logger)
	healthHandler := healthHttp.NewHealthHandler(healthSvc, Version)

	solicitudLimiter := ratelimiter.New(deps.Redis, "solicitud", cfg.RateLimitSolicitud)
	loginLimiter := ratelimiter.NewMemory(rate.Limit(float64(cfg.RateLimitLoginPerMin)/60), cfg.RateLimitLoginPerMin)

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartSize

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(middleware.RequestLogger(deps.Logger, "/health"))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	authMiddleware := middleware.NewAuthMiddleware(tokens, userRepository)

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	// Public booking form
	api.POST("/solicitud",
		middleware.RateLimit(solicitudLimiter, "Demasiadas solicitudes. Intente nuevamente en unos segundos"),
		solicitudHandler.CreateSolicitud,
	)
	api.GET("/solicitudes", solicitudHandler.ListPublic)

	auth := api.Group("/auth")
	{
		auth.POST("/login",
			middleware.RateLimit(loginLimiter, "Demasiados intentos de inicio de sesión"),
			authHandler.Login,
		)
		auth.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		auth.GET("/verify", authMiddleware.RequireAuth(), authHandler.Verify)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth(), authMiddleware.RequireStaff())
	{
		adminGroup.GET("/solicitudes", solicitudHandler.List)
		adminGroup.GET("/solicitudes-pendientes", solicitudHandler.ListPending)
		adminGroup.GET("/solicitudes/:id", solicitudHandler.GetByID)
		adminGroup.PUT("/solicitudes/:id", solicitudHandler.Update)
		adminGroup.DELETE("/solicitudes/:id", solicitudHandler.Delete)
		adminGroup.GET("/estadisticas", solicitudHandler.Stats)

		// Roster management used by the admin panel; managers included.
		adminGroup.GET("/profesionales", profesionalHandler.List)
		adminGroup.GET("/profesionales/:id", profesionalHandler.GetByID)
		adminGroup.POST("/profesionales", profesionalHandler.Create)
		adminGroup.PUT("/profesionales/:id", profesionalHandler.Update)
		adminGroup.DELETE("/profesionales/:id", profesionalHandler.Delete)
	}

	profesionales := api.Group("/profesionales")
	{
		profesionales.GET("/public/activos", profesionalHandler.ListActivos)
		profesionales.GET("/public/buscar", profesionalHandler.Search)

		profesionales.GET("", authMiddleware.OptionalAuth(), profesionalHandler.List)
		profesionales.GET("/:id", authMiddleware.OptionalAuth(), profesionalHandler.GetByID)

		admin := profesionales.Group("")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			admin.POST("", profesionalHandler.Create)
			admin.POST("/reindex", profesionalHandler.Reindex)
			admin.PUT("/:id", profesionalHandler.Update)
			admin.DELETE("/:id", profesionalHandler.Delete)
		}
	}

	upload := api.Group("/upload")
	{
		upload.GET("/profesional-foto/:filename", uploadHandler.GetProfesionalFoto)
		upload.POST("/profesional-foto", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), uploadHandler.UploadProfesionalFoto)
		upload.DELETE("/profesional-foto/:filename", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), uploadHandler.DeleteProfesionalFoto)
	}

	return &Server{
		engine: router,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		scheduler: scheduler,
		log:       deps.Logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// background jobs.
func (s *Server) Run(ctx context.Context) error {
	s.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down http server")
	err := s.http.Shutdown(shutdownCtx)
	s.scheduler.Stop(shutdownCtx)
	return err
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
