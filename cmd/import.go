package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/logger"
	"github.com/A-zanke/alumni-matcher/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <profiles.json>",
	Short: "Load a JSON profile export into the SQLite store",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		written, err := importProfiles(cmd.Context(), args[0], viper.GetString("store.sqlite.path"), logger)
		if err != nil {
			logger.Fatal("importing profiles", zap.Error(err))
		}

		logger.Info("imported profiles", zap.Int("count", written))
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("db", "", "SQLite database to import into (default is alumni-matcher.db)")
	viper.BindPFlag("store.sqlite.path", importCmd.Flags().Lookup("db"))
}

func importProfiles(ctx context.Context, source, dbPath string, logger *zap.Logger) (int, error) {
	src, err := store.OpenJSON(source)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	db, err := store.OpenSQLite(ctx, dbPath, logger)
	if err != nil {
		return 0, fmt.Errorf("opening sqlite store: %w", err)
	}
	defer db.Close()

	profiles := src.All()
	logger.Debug("importing profiles",
		zap.String("from", src.Name()),
		zap.String("to", db.Name()),
		zap.Int("count", profiles.Len()),
	)

	return db.Import(ctx, profiles)
}
