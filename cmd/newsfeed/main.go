package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newsfeed"
	"newsfeed/auth"
	"newsfeed/config"
	"newsfeed/httpapi"
	"newsfeed/model"
	"newsfeed/repository"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *gconfig.Container[*config.AppConfig]
	bunDB    *bun.DB
	repo     repository.Manager
	sessions *auth.SessionManager
	srv      *httpapi.Server
	logger   *glog.BaseLogger
}

func (a *App) Config() *config.AppConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("newsfeed"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.AppConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetDebug() {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
		fmt.Println("============")
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithSessions(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddress())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*model.User)(nil))
	persistence.RegisterModel((*model.Post)(nil))
	persistence.RegisterModel((*model.Comment)(nil))

	cfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(newsfeed.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = repository.NewManager(client.DB())

	return app.repo.Validate()
}

func WithSessions(ctx context.Context, app *App) error {
	acfg := app.Config().GetAuth()

	tokens := auth.NewTokenService(
		[]byte(acfg.GetSigningKey()),
		acfg.GetTokenExpiration(),
		acfg.GetIssuer(),
		acfg.GetAudience(),
		newGlogAdapter(app.GetLogger("auth:tokens")),
	)

	app.sessions = auth.NewSessionManager(
		app.repo.Users(),
		app.repo.Users(),
		tokens,
		auth.WithSessionLogger(newGlogAdapter(app.GetLogger("auth:session"))),
	)

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	app.srv = httpapi.NewServer(
		app.repo,
		app.sessions,
		app.Config().GetAuth(),
		httpapi.WithServerLogger(newGlogAdapter(app.GetLogger("http"))),
		httpapi.WithServerDebug(app.Config().GetDebug()),
	)

	return nil
}

// glogAdapter narrows glog to the logging surface the auth core expects.
type glogAdapter struct {
	logger glog.Logger
}

func newGlogAdapter(logger glog.Logger) glogAdapter {
	return glogAdapter{logger: logger}
}

func (g glogAdapter) Debug(format string, args ...any) { g.logger.Debug(format, args...) }
func (g glogAdapter) Info(format string, args ...any)  { g.logger.Info(format, args...) }
func (g glogAdapter) Warn(format string, args ...any)  { g.logger.Warn(format, args...) }
func (g glogAdapter) Error(format string, args ...any) { g.logger.Error(format, args...) }

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
