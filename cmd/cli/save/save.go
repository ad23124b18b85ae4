package save

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/WingsGames/Neve-Or/internal/campaign"
	"github.com/WingsGames/Neve-Or/internal/envstruct"
	"github.com/WingsGames/Neve-Or/internal/errors"
	"github.com/WingsGames/Neve-Or/internal/logging"
	"github.com/WingsGames/Neve-Or/internal/repositories"
	"github.com/WingsGames/Neve-Or/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "save",
	Title: "Player progress",
}

type config struct {
	SqliteURL         string `env:"NEVEOR_SQLITE_URL" envDefault:"./neveor.sqlite"`
	AppID             string `env:"NEVEOR_APP_ID" envDefault:"neve_or_game"`
	SaveVersion       int    `env:"NEVEOR_SAVE_VERSION" envDefault:"9"`
	StorageQuotaBytes int64  `env:"NEVEOR_STORAGE_QUOTA_BYTES" envDefault:"5242880"`
}

func init() {
	Save.PersistentFlags().String("player", "", "hex encoded player id")
	_ = Save.MarkPersistentFlagRequired("player")
	Save.AddCommand(show, reset)
}

var Save = &cobra.Command{
	Use:     "save",
	GroupID: "save",
	Short:   "Inspect or reset the saved progress of a player",
}

var show = &cobra.Command{
	Use:   "show",
	Short: "Print the saved progress document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSaves(cmd, func(ctx context.Context, repo *repositories.SaveRepository, id []byte, key string) error {
			return Show(ctx, cmd.OutOrStdout(), repo, id, key)
		})
	},
}

var reset = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved progress so the player starts over",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withSaves(cmd, func(ctx context.Context, repo *repositories.SaveRepository, id []byte, key string) error {
			saver := campaign.NewSaver(repo.ForOwner(id), key, logging.New(io.Discard, slog.LevelInfo))
			if err := saver.Reset(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Progress deleted")
			return nil
		})
	},
}

// Show prints the indented progress document of a player followed by the storage usage.
func Show(ctx context.Context, w io.Writer, repo *repositories.SaveRepository, id []byte, key string) error {
	saver := campaign.NewSaver(repo.ForOwner(id), key, logging.New(io.Discard, slog.LevelInfo))
	blob, err := saver.Raw(ctx)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err = json.Indent(&pretty, []byte(blob), "", "  "); err != nil {
		return errors.Wrap(err, "indent save")
	}
	used, quota, err := repo.Usage(ctx, id)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, pretty.String())
	_, _ = fmt.Fprintf(w, "%s: %d of %d bytes used\n", key, used, quota)
	return nil
}

func withSaves(
	cmd *cobra.Command,
	fn func(ctx context.Context, repo *repositories.SaveRepository, id []byte, key string) error,
) error {
	var (
		cfg    config
		dbs    *sqlite.Database
		id     []byte
		err    error
		ctx    = context.Background()
		logger = logging.New(os.Stderr, slog.LevelWarn)
	)
	player, _ := cmd.Flags().GetString("player")
	if id, err = hex.DecodeString(player); err != nil || len(id) == 0 {
		return errors.New("player must be a hex encoded id", slog.String("player", player))
	}
	if err = envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if dbs, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database")
	}
	defer func() {
		_ = dbs.Close()
	}()
	repo := repositories.NewSaveRepository(dbs, logger, cfg.StorageQuotaBytes)
	return fn(ctx, repo, id, campaign.StorageKey(cfg.AppID, cfg.SaveVersion))
}
