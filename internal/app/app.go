package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"club-pass-go/internal/config"
	"club-pass-go/internal/db"
	admindomain "club-pass-go/internal/domain/admin"
	admissiondomain "club-pass-go/internal/domain/admission"
	memberdomain "club-pass-go/internal/domain/member"
	sessiondomain "club-pass-go/internal/domain/session"
	adminrepo "club-pass-go/internal/repository/postgres/admin"
	admissionrepo "club-pass-go/internal/repository/postgres/admission"
	memberrepo "club-pass-go/internal/repository/postgres/member"
	sessionrepo "club-pass-go/internal/repository/postgres/session"
	"club-pass-go/internal/transport/httpserver"
	"club-pass-go/internal/transport/httpserver/handler"
	authmw "club-pass-go/internal/transport/httpserver/middleware"
	"club-pass-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	secret := cfg.Scan.SigningSecret
	if secret == "" {
		if cfg.Env != "development" {
			return nil, fmt.Errorf("SCAN_SIGNING_SECRET is required outside development")
		}
		secret, err = ephemeralSecret()
		if err != nil {
			return nil, err
		}
		log.Warn("app: SCAN_SIGNING_SECRET not set, using ephemeral secret; issued passes will not survive restart")
	}

	signer, err := admissiondomain.NewPassSigner(secret, cfg.Scan.PassTTL)
	if err != nil {
		return nil, err
	}

	memberService := memberdomain.NewService(memberrepo.NewPostgres(dbConn))
	sessionService := sessiondomain.NewService(sessionrepo.NewPostgres(dbConn), cfg.Auth.SessionTTL, cfg.Auth.TokenBytes)
	admissionService := admissiondomain.NewService(admissionrepo.NewPostgres(dbConn), memberService, signer, cfg.Scan.PointsAward, cfg.Scan.DedupWindow)
	adminService := admindomain.NewService(adminrepo.NewPostgres(dbConn), memberService, log)

	if err := adminService.EnsureDefaultAdmin(context.Background(), cfg.Admin.SeedIdentifier, cfg.Admin.SeedPassword); err != nil {
		return nil, fmt.Errorf("seed default admin: %w", err)
	}

	if purged, err := sessionService.PurgeExpired(context.Background()); err != nil {
		log.Warn("app: purge expired sessions failed", "err", err)
	} else if purged > 0 {
		log.Info("app: purged expired sessions", "count", purged)
	}

	log.Info("app: initializing router")
	handlers := handler.New(memberService, sessionService, admissionService, adminService, log)
	auth := authmw.NewSessionAuth(sessionService, log)
	router := httpserver.NewRouter(cfg, handlers, auth)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ephemeralSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
