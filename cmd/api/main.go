package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/clinica-dental-api/internal/config"
	"github.com/harentsoaR/clinica-dental-api/internal/handlers"
	"github.com/harentsoaR/clinica-dental-api/internal/services"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
	"github.com/harentsoaR/clinica-dental-api/internal/store/memstore"
	"github.com/harentsoaR/clinica-dental-api/internal/store/mongostore"
	"github.com/harentsoaR/clinica-dental-api/internal/utils"
)

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("LOG_LEVEL", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func main() {
	os.Exit(start())
}

// start runs the API until it is stopped and returns the process exit code.
// Deferred cleanup runs before the caller exits.
func start() int {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := newLogger(cfg.LogLevel)
	if envErr != nil {
		log.Info("No .env file found, relying on environment variables.")
	}
	log.WithFields(logrus.Fields{
		"API_PORT":       cfg.Port,
		"STORE_DRIVER":   cfg.StoreDriver,
		"MONGO_DATABASE": cfg.MongoDatabase,
		"SMTP_ENABLED":   cfg.SMTP.Enabled(),
		"ADMIN_SET":      cfg.Admin.Configured(),
	}).Info("Configuration loaded")

	// --- Credentials ---
	hasher, err := utils.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.WithError(err).Fatal("Invalid BCRYPT_COST")
	}
	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, nil)
	if err != nil {
		log.WithError(err).Fatal("Invalid JWT settings")
	}

	// --- Storage ---
	var repos store.Repositories
	switch cfg.StoreDriver {
	case config.DriverMemory:
		repos = memstore.New()
		log.Warn("Using in-memory store, data is lost on restart")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			cancel()
			log.WithError(err).Fatal("Failed to connect to MongoDB")
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			cancel()
			log.WithError(err).Fatal("Failed to create MongoDB indexes")
		}
		cancel()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.WithError(err).Warn("MongoDB disconnect failed")
			}
		}()
		repos = mongostore.New(db)
		log.Info("Successfully connected to MongoDB!")
	}

	// --- Initialize Services ---
	var mailer services.Mailer = services.LogMailer{Log: log}
	if cfg.SMTP.Enabled() {
		mailer = services.NewSMTPMailer(cfg.SMTP)
	}
	notifier := services.NewNotificationService(mailer, log)

	auth := services.NewAuthService(cfg.Admin, repos, hasher, tokens, log)
	svc := handlers.Services{
		Auth:         auth,
		Registration: services.NewRegistrationService(repos.Patients, hasher, tokens, auth, notifier, nil, log),
		Appointments: services.NewAppointmentService(repos, log),
		Ratings:      services.NewRatingService(repos, log),
		Doctors:      services.NewDoctorService(repos.Doctors, hasher, log),
		Patients:     services.NewPatientService(repos.Patients, hasher, log),
		Admins:       services.NewAccountService(repos.Admins, "admin", hasher, log),
		Assistants:   services.NewAccountService(repos.Assistants, "assistant", hasher, log),
		Catalog:      services.NewCatalogService(repos.Services, log),
	}

	// --- Gin Router ---
	gin.SetMode(gin.ReleaseMode)
	h := handlers.NewHandler(svc, tokens, cfg.CookieSecure, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	err = serve(srv, quit, 10*time.Second, log)
	notifier.Wait()
	if err != nil {
		log.WithError(err).Error("Server stopped")
		return 1
	}
	log.Info("Server exited")
	return 0
}
