package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/templui/vows/internal/config"
	"github.com/templui/vows/internal/db"
	"github.com/templui/vows/internal/media"
	"github.com/templui/vows/internal/middleware"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	Uploads           *upload.Orchestrator
	AuthService       *service.AuthService
	EmailService      *service.EmailService
	WishService       *service.WishService
	GalleryService    *service.GalleryService
	DashboardService  *service.DashboardService
	LoginLimiter      *middleware.RateLimiter
	SubmissionLimiter *middleware.RateLimiter
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	adminRepository := repository.NewAdminRepository(database)
	wishRepository := repository.NewWishRepository(database)
	galleryRepository := repository.NewGalleryRepository(database)

	// Storage
	imageStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	videoStorage := storage.NewMedia(cfg)

	// One upload worker for the whole process
	uploads := upload.New(media.NewFFProbe())

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.NotifyEmail,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		adminRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.SecureCookies(),
	)
	wishService := service.NewWishService(wishRepository, uploads, videoStorage, emailService, service.WishLimits{
		NameMax:      cfg.WishNameMax,
		MessageMax:   cfg.WishMessageMax,
		MaxVideoSize: cfg.UploadMaxVideoSize,
		MinDuration:  cfg.VideoMinDuration,
		MaxDuration:  cfg.VideoMaxDuration,
	})
	galleryService := service.NewGalleryService(galleryRepository, uploads, imageStorage, cfg.ObjectStorageKey, service.GalleryLimits{
		MaxImages:    cfg.UploadMaxImages,
		MaxImageSize: cfg.UploadMaxImageSize,
	})
	dashboardService := service.NewDashboardService(wishRepository, galleryRepository)

	return &App{
		Cfg:               cfg,
		DB:                database,
		Uploads:           uploads,
		AuthService:       authService,
		EmailService:      emailService,
		WishService:       wishService,
		GalleryService:    galleryService,
		DashboardService:  dashboardService,
		LoginLimiter:      middleware.NewLoginLimiter(),
		SubmissionLimiter: middleware.NewSubmissionLimiter(),
	}, nil
}

// Close waits for the upload in flight, then releases the database.
func (a *App) Close() error {
	if a.LoginLimiter != nil {
		a.LoginLimiter.Stop()
	}
	if a.SubmissionLimiter != nil {
		a.SubmissionLimiter.Stop()
	}
	if a.Uploads != nil {
		a.Uploads.Close()
	}
	if a.DB != nil {
		slog.Info("closing database")
		return a.DB.Close()
	}
	return nil
}
