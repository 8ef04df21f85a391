// Command coursemart-server starts the course marketplace HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/coursemart/internal/config"
	"github.com/and161185/coursemart/internal/docstore"
	"github.com/and161185/coursemart/internal/limiter"
	"github.com/and161185/coursemart/internal/repository/filestore"
	httpserver "github.com/and161185/coursemart/internal/server/http"
	"github.com/and161185/coursemart/internal/service"
	"github.com/and161185/coursemart/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownGrace = 5 * time.Second

// main loads configuration, opens the document store and serves HTTP until signalled.
func main() {
	cfg, err := config.Load(".env", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("dataDir", cfg.DataDir),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	st, err := filestore.Open(ctx, filestore.Paths{
		Users:   cfg.UsersPath(),
		Admins:  cfg.AdminsPath(),
		Courses: cfg.CoursesPath(),
	}, docstore.WithLogger(logger), docstore.WithLockTimeout(cfg.LockTimeout))
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}

	// Repositories
	principals := filestore.NewPrincipalRepo(st)
	courses := filestore.NewCourseRepo(st)

	lim := limiter.NewMemory(cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	tokens := token.NewService([]byte(cfg.JWTKey), cfg.TokenTTL)

	// Services
	authSvc := service.NewAuthService(principals, tokens, lim, logger)
	courseSvc := service.NewCourseService(courses, principals, logger)

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	app := httpserver.New(authSvc, courseSvc, tokens, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS() {
			logger.Info("listening (TLS)", zap.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}
