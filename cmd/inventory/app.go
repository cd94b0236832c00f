package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/book-inventory-client/api"
	"github.com/jrsteele09/book-inventory-client/api/auditlogs"
	"github.com/jrsteele09/book-inventory-client/api/authapi"
	"github.com/jrsteele09/book-inventory-client/api/books"
	"github.com/jrsteele09/book-inventory-client/internal/config"
	"github.com/jrsteele09/book-inventory-client/session"
	"github.com/jrsteele09/book-inventory-client/storage"
	"github.com/jrsteele09/book-inventory-client/storage/filerepo"
	"github.com/jrsteele09/book-inventory-client/storage/redisrepo"
	"github.com/jrsteele09/book-inventory-client/storage/repofake"
	"github.com/jrsteele09/book-inventory-client/storage/sealed"
	"github.com/jrsteele09/book-inventory-client/storage/sqliterepo"
	"github.com/jrsteele09/book-inventory-client/transport"
)

var (
	errUsage         = errors.New("usage")
	errLoginRequired = errors.New("login required")
)

// app is everything a command needs, wired in boot order.
type app struct {
	cfg    config.Config
	store  *session.Store
	auth   *authapi.Service
	books  *books.Service
	audit  *auditlogs.Service
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	loginRequired bool
	closers       []func() error
}

// newApp boots the session core: storage, rehydration, then the one
// intercepted HTTP client every service shares.
func newApp(ctx context.Context, cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	a := &app{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}

	repo, err := a.openRepo(ctx)
	if err != nil {
		return nil, err
	}
	if passphrase := cfg.GetSessionPassphrase(); passphrase != "" {
		repo = sealed.New(repo, passphrase)
	}

	a.store = session.Boot(repo, session.WithKey(cfg.GetSessionKey()))

	logger := log.Logger
	httpClient := transport.NewClient(a.store, transport.NavigatorFunc(a.navigate), transport.ClientConfig{
		Timeout: cfg.GetHTTPTimeout(),
		Logger:  &logger,
		Limiter: transport.NewLimiter(cfg.GetRateLimit(), cfg.GetRateBurst()),
		Tracing: cfg.GetTracingEnabled(),
		Options: []transport.Option{
			transport.WithSentinelStatus(cfg.GetSentinelStatus()),
			transport.WithLoginPath(cfg.GetLoginPath()),
		},
	})
	client := api.NewClient(cfg.GetAPIBaseURL(), httpClient, a.store.TokenSource(),
		api.WithSentinelStatus(cfg.GetSentinelStatus()))

	a.auth = authapi.New(client, a.store)
	a.books = books.New(client)
	a.audit = auditlogs.New(client)
	return a, nil
}

func (a *app) openRepo(ctx context.Context) (storage.Repo, error) {
	switch backend := a.cfg.GetStorageBackend(); backend {
	case config.StorageFile:
		return filerepo.New(a.cfg.GetSessionDir())
	case config.StorageMemory:
		return repofake.NewFakeRepo(), nil
	case config.StorageSQLite:
		repo, err := sqliterepo.Open(ctx, a.cfg.GetSQLitePath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case config.StorageRedis:
		repo, client, err := redisrepo.Dial(ctx, a.cfg.GetRedisAddr(), a.cfg.GetRedisPassword(), a.cfg.GetRedisDB(),
			redisrepo.WithPrefix("book-inventory:"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: unknown SESSION_STORE %q", errUsage, backend)
	}
}

// navigate is where a browser would have been sent to the login page.
func (a *app) navigate(path string) {
	a.loginRequired = true
	fmt.Fprintf(a.stderr, "Your session has expired (%s). Run `inventory login` to sign in again.\n", path)
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Err(err).Msg("Failed to close session storage")
		}
	}
}

// finish maps a forced logout to errLoginRequired whatever the command returned.
func (a *app) finish(err error) error {
	if a.loginRequired {
		return errLoginRequired
	}
	if errors.Is(err, session.ErrNotLoggedIn) {
		fmt.Fprintln(a.stderr, "You are not logged in. Run `inventory login` first.")
		return errLoginRequired
	}
	return err
}

func setupLogging(cfg config.Config, stderr io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(cfg.GetEnv(), "DEV") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: stderr})
		return
	}
	log.Logger = zerolog.New(stderr).With().Timestamp().Logger()
}
