package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/skillspad/api/internal/app/auth"
	appControllers "github.com/skillspad/api/internal/app/controllers"
	appMigrations "github.com/skillspad/api/internal/app/migrations"
	appRepos "github.com/skillspad/api/internal/app/repositories"
	appRoutes "github.com/skillspad/api/internal/app/routes"
	appServices "github.com/skillspad/api/internal/app/services"
	"github.com/skillspad/api/internal/config"
	"github.com/skillspad/api/internal/db"
	appMiddleware "github.com/skillspad/api/internal/middleware"
	pkgAuth "github.com/skillspad/api/internal/pkg/auth"
	"github.com/skillspad/api/internal/pkg/email"
	"github.com/skillspad/api/internal/pkg/filestorage"
	"github.com/skillspad/api/internal/pkg/helpers"
	"github.com/skillspad/api/internal/pkg/logger"
	"github.com/skillspad/api/internal/pkg/paystack"
	"github.com/skillspad/api/internal/seed"
)

const (
	defaultSessionLifetime = 7 * 24 * time.Hour
	startupTimeout         = 30 * time.Second
	// Leaves room for multipart overhead on top of the 20MB attachment limit
	maxMultipartMemory = 32 << 20
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Dispatcher  *email.Dispatcher
	Storage     filestorage.Provider
	LocalUpload string // directory served at /uploads when storage is local

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format)
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Str("mode", cfg.Server.Mode).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the MongoDB client
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.MongoDB, error) {
	lgr.Info().Str("database", cfg.Database.Name).Msg("Establishing database connection...")
	database, err := db.NewMongoDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies pending index migrations
func RunMigrations(ctx context.Context, database *db.MongoDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Database, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SeedDefaults creates the configured default admin
func SeedDefaults(ctx context.Context, cfg *config.Config, database *db.MongoDB, lgr zerolog.Logger) error {
	return seed.CreateDefaultData(ctx, appRepos.NewUserRepository(database.Database), seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, lgr)
}

// SetupDatabase connects, migrates and seeds. A failed seed is logged and
// startup continues.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.MongoDB, error) {
	database, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := RunMigrations(ctx, database, lgr); err != nil {
		_ = database.Close(context.Background())
		return nil, err
	}

	if err := SeedDefaults(ctx, cfg, database, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
// The email dispatcher is started; the caller stops it on shutdown.
func BuildDependencies(cfg *config.Config, database *db.MongoDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Database)

	storage, localDir, err := newStorage(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.Storage = storage
	deps.LocalUpload = localDir

	sessionLifetime := helpers.ParseDuration(cfg.JWT.Expiration, defaultSessionLifetime)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		Expiration:  sessionLifetime,
		TokenIssuer: cfg.JWT.Issuer,
	})

	sender := email.NewSender(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
	}, lgr)
	deps.Dispatcher = email.NewDispatcher(sender, email.DispatcherConfig{
		Workers:        cfg.Mail.Workers,
		QueueSize:      cfg.Mail.QueueSize,
		MaxAttempts:    cfg.Mail.MaxAttempts,
		RetryBaseDelay: cfg.Mail.RetryBaseDelay,
		SendTimeout:    cfg.Mail.SendTimeout,
	}, lgr)
	deps.Dispatcher.Start()
	notifier := email.NewNotifier(deps.Dispatcher, email.NotifierConfig{
		AppName:     cfg.SMTP.FromName,
		FrontendURL: cfg.Server.FrontendURL,
	})

	if cfg.PaystackSecretKey() == "" {
		lgr.Warn().Bool("production", cfg.IsProduction()).Msg("Paystack secret key not configured - payments will fail")
	}
	gateway := paystack.NewClient(paystack.Config{
		BaseURL:   cfg.Paystack.BaseURL,
		SecretKey: cfg.PaystackSecretKey(),
		Timeout:   cfg.Paystack.Timeout,
	})

	repos := deps.Repos
	authz := appAuth.NewAuthorizationService(repos.UserRepository)

	authService := appServices.NewAuthService(repos.UserRepository, repos.TransactionRepository, repos.PartialPaymentRepository, deps.JWTService, notifier, lgr)
	courseService := appServices.NewCourseService(repos.CourseRepository, lgr)
	assignmentService := appServices.NewAssignmentService(repos.AssignmentRepository, repos.CourseRepository, storage, lgr)
	paymentService := appServices.NewPaymentService(
		repos.UserRepository,
		repos.CourseRepository,
		repos.TransactionRepository,
		gateway,
		database,
		deps.JWTService,
		notifier,
		appServices.PaymentConfig{
			Currency:           cfg.Paystack.Currency,
			CallbackURL:        strings.TrimRight(cfg.Server.FrontendURL, "/") + "/payment/verify",
			PendingReuseWindow: cfg.Paystack.PendingReuseWindow,
		},
		lgr,
	)
	dashboardService := appServices.NewDashboardService(repos.UserRepository, repos.CourseRepository, repos.AssignmentRepository, repos.TransactionRepository, authz, lgr)
	studentService := appServices.NewStudentService(repos.UserRepository, lgr)
	uploadService := appServices.NewUploadService(storage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository, cfg.Cookie.Name)

	cookie := appControllers.CookieConfig{
		Name:   cfg.Cookie.Name,
		Domain: cfg.Cookie.Domain,
		Secure: cfg.IsProduction(),
		MaxAge: sessionLifetime,
	}
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(authService, cookie, lgr),
		Course:     appControllers.NewCourseController(courseService, lgr),
		Assignment: appControllers.NewAssignmentController(assignmentService, lgr),
		Payment:    appControllers.NewPaymentController(paymentService, cookie, lgr),
		Dashboard:  appControllers.NewDashboardController(dashboardService, lgr),
		Student:    appControllers.NewStudentController(studentService, lgr),
		Upload:     appControllers.NewUploadController(uploadService, lgr),
	}

	return deps, nil
}

// newStorage picks Cloudinary when credentials are configured and the local
// filesystem otherwise. The second result is the local directory to serve.
func newStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.Provider, string, error) {
	if cfg.CloudinaryEnabled() {
		storage, err := filestorage.NewCloudinaryStorage(filestorage.CloudinaryConfig{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			Folder:    cfg.Cloudinary.Folder,
		}, lgr)
		if err != nil {
			return nil, "", err
		}
		lgr.Info().Str("folder", cfg.Cloudinary.Folder).Msg("Using Cloudinary file storage")
		return storage, "", nil
	}

	baseURL := cfg.Server.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, strings.TrimRight(baseURL, "/")+"/uploads", cfg.Cloudinary.Folder)
	if err != nil {
		return nil, "", err
	}
	lgr.Warn().Str("path", cfg.Server.StoragePath).Msg("Cloudinary not configured - using local file storage")
	return storage, cfg.Server.StoragePath, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterBindingValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Recovery(lgr),
	)

	if !cfg.IsProduction() {
		appRoutes.SetupSwagger(router)
	}

	if deps.LocalUpload != "" {
		router.Static("/uploads", deps.LocalUpload)
		lgr.Info().Str("path", deps.LocalUpload).Msg("Static file serving configured for uploads directory")
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}
