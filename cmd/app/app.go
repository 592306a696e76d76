package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/homeloto/retail-api/internal/api"
	"github.com/homeloto/retail-api/internal/cache"
	"github.com/homeloto/retail-api/internal/config"
	"github.com/homeloto/retail-api/internal/db"
	"github.com/homeloto/retail-api/internal/identity"
	"github.com/homeloto/retail-api/internal/logger"
	"github.com/homeloto/retail-api/internal/mail"
	"github.com/homeloto/retail-api/internal/media"
	"github.com/homeloto/retail-api/internal/render"
	"github.com/homeloto/retail-api/internal/repository"
	"github.com/homeloto/retail-api/internal/repository/dao"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 15 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Log); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if err = config.Watch(configPath, applyConfigChange); err != nil {
		zap.L().Info("config file is not watched", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := openDatabase(conf.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}
	defer closeDatabase(conn)

	if err = dao.InitTables(conn); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	sessions, closeSessions, err := openSessions(ctx, conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize session store -> %w", err)
	}
	defer closeSessions()

	users := repository.NewUserRepository(dao.NewUserDAO(conn))
	provider, err := identity.New(ctx, conf.Auth, users)
	if err != nil {
		return fmt.Errorf("failed to initialize identity provider -> %w", err)
	}

	store, err := media.New(ctx, conf.Media)
	if err != nil {
		return fmt.Errorf("failed to initialize media store -> %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	mediaDir := ""
	if local, ok := store.(*media.Local); ok {
		mediaDir = local.Dir()
	}

	renderer, err := render.New(conf.Lottery.Currency)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer -> %w", err)
	}

	dispatcher := mail.NewDispatcher(newSender(conf.Mail))
	defer dispatcher.Wait()

	s := api.NewServer(conf, api.Dependencies{
		DB:       conn,
		Sessions: sessions,
		Identity: provider,
		Media:    store,
		MediaDir: mediaDir,
		Mailer:   dispatcher,
		Renderer: renderer,
		Location: time.Local,
	})

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}

// openDatabase prefers DATABASE_URL over the configured connection.
func openDatabase(conf *config.DatabaseConfig) (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return db.OpenWithURL(dbURL)
	}

	return db.OpenPostgres(conf)
}

func closeDatabase(conn *gorm.DB) {
	sqlDB, err := conn.DB()
	if err != nil {
		return
	}
	if err = sqlDB.Close(); err != nil {
		zap.L().Warn("failed to close database", zap.Error(err))
	}
}

// openSessions connects to Redis. Without an address sessions live in process memory, which
// only suits a single instance.
func openSessions(ctx context.Context, conf *config.RedisConfig) (api.SessionStore, func(), error) {
	if conf.Addr == "" {
		zap.L().Warn("redis.addr is empty, keeping sessions in memory")
		return cache.NewMemoryStore(), func() {}, nil
	}

	rdb, err := cache.Open(ctx, conf)
	if err != nil {
		return nil, nil, err
	}

	return cache.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
}

func newSender(conf *config.MailConfig) mail.Sender {
	if conf.SendGridAPIKey == "" {
		zap.L().Info("mail.sendgrid_api_key is empty, emails are only logged")
		return mail.Nop{}
	}

	return mail.NewSendGrid(conf.SendGridAPIKey, conf.From)
}

func applyConfigChange(conf *config.AppConfig) {
	if err := logger.SetLevel(conf.Log.Level); err != nil {
		zap.L().Warn("keeping the current log level", zap.Error(err))
	}
}
