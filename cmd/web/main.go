package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/WingsGames/Neve-Or/internal/ai"
	"github.com/WingsGames/Neve-Or/internal/assets"
	"github.com/WingsGames/Neve-Or/internal/auth"
	"github.com/WingsGames/Neve-Or/internal/broker"
	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/content"
	"github.com/WingsGames/Neve-Or/internal/envstruct"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/i18n"
	"github.com/WingsGames/Neve-Or/internal/logging"
	"github.com/WingsGames/Neve-Or/internal/pprofserver"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
)

type config struct {
	// Addr is the address the HTTP server listens on. Use localhost:0 for a random port.
	Addr      string `env:"NEVEOR_ADDR" envDefault:"localhost:4000"`
	SqliteURL string `env:"NEVEOR_SQLITE_URL" envDefault:"./neveor.sqlite"`
	// AppID and SaveVersion make up the key the progress document is stored under.
	AppID             string        `env:"NEVEOR_APP_ID" envDefault:"neve_or_game"`
	SaveVersion       int           `env:"NEVEOR_SAVE_VERSION" envDefault:"9"`
	StorageQuotaBytes int64         `env:"NEVEOR_STORAGE_QUOTA_BYTES" envDefault:"5242880"`
	DevTools          bool          `env:"NEVEOR_DEV_TOOLS" envDefault:"false"`
	Language          string        `env:"NEVEOR_LANGUAGE" envDefault:"he"`
	IntroRevealDelay  time.Duration `env:"NEVEOR_INTRO_REVEAL_DELAY" envDefault:"4s"`
	// PlayerIdle is how long an unused player stays in memory. Zero disables eviction.
	PlayerIdle   time.Duration `env:"NEVEOR_PLAYER_IDLE" envDefault:"30m"`
	AssetBaseURL string        `env:"NEVEOR_ASSET_BASE_URL" envDefault:"/assets"`
	// OpenAIAPIKey enables background and portrait generation in the editor.
	OpenAIAPIKey string `env:"OPENAI_API_KEY" envDefault:""`
	// PprofAddr launches a pprof server on the loopback interface when set, e.g. :6060.
	PprofAddr string `env:"NEVEOR_PPROF_ADDR" envDefault:""`
}

type application struct {
	logger         *slog.Logger
	cfg            config
	sessionManager *scs.SessionManager
	auth           *auth.Service
	assets         *assets.Store
	players        *players
	snapshots      *broker.SnapshotBroker[string, snapshot]
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err      error
		cfg      config
		dbs      *sqlite.Database
		catalog  *content.Catalog
		language i18n.Language
		ok       bool
	)

	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if language, ok = i18n.Parse(cfg.Language); !ok {
		return errors.New("unsupported language", slog.String("language", cfg.Language))
	}
	if catalog, err = content.LoadEmbedded(); err != nil {
		return errors.Wrap(err, "load content")
	}
	translator, err := i18n.LoadEmbedded()
	if err != nil {
		return errors.Wrap(err, "load translations")
	}

	if cfg.PprofAddr != "" {
		// Initialise pprof listening on localhost so that it's not open to the world.
		pprofserver.Launch(cfg.PprofAddr, logger)
	}

	if dbs, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := dbs.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()

	sessionManager := newSessionManager(dbs)
	users := repositories.NewUserRepository(dbs, logger)
	saves := repositories.NewSaveRepository(dbs, logger, cfg.StorageQuotaBytes)
	store := assets.NewStore(repositories.NewAssetRepository(dbs, logger), cfg.AssetBaseURL, logger)
	snapshots := broker.NewSnapshotBroker[string, snapshot]()
	go snapshots.Start()
	defer snapshots.Stop()

	app := application{
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		auth:           auth.New(sessionManager, users, logger),
		assets:         store,
		snapshots:      snapshots,
	}
	app.players = newPlayers(playersConfig{
		catalog:    catalog,
		translator: translator,
		saves:      saves,
		images:     ai.NewClient(cfg.OpenAIAPIKey, logger),
		uploader:   store,
		snapshots:  snapshots,
		storageKey: campaign.StorageKey(cfg.AppID, cfg.SaveVersion),
		language:   language,
		devTools:   cfg.DevTools,
		reveal:     cfg.IntroRevealDelay,
		idle:       cfg.PlayerIdle,
	}, logger)
	defer app.players.stop()
	go app.players.sweepEvery(ctx, min(cfg.PlayerIdle, time.Minute))

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := logging.New(os.Stdout, slog.LevelDebug)

	// A missing .env file is fine, the environment may be configured otherwise.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
