package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/database"
	"github.com/imdbplus/imdbplus/internal/replacements"
	"github.com/imdbplus/imdbplus/internal/scraper"
	"github.com/imdbplus/imdbplus/internal/update"
)

func newSyncCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Check once for a new scraper script and rename database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			lock, err := acquireLock(cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			log := commandLogger(cfg)
			defer log.Close()

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			loader := replacements.NewLoader(cfg.Paths.ReplacementsFile(), cfg.Paths.CustomReplacementsFile(), &log.Logger)
			registry := scraper.NewRegistry(db.Conn(), &log.Logger)
			syncer := update.NewService(update.OptionsFromConfig(cfg), registry, loader,
				database.NewSettings(db.Conn()), nil, nil, &log.Logger)

			result := syncer.CheckForUpdate(cmd.Context())

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCycle(result))
			if result.Scraper.Error != "" && result.Replacements.Error != "" {
				return fmt.Errorf("sync failed: %s", result.Scraper.Error)
			}
			return nil
		},
	}
}

func renderCycle(result update.CycleResult) string {
	scraperStatus := result.Scraper.Result
	if result.Scraper.Error != "" {
		scraperStatus = result.Scraper.Error
	}
	replacementsStatus := "already current"
	switch {
	case result.Replacements.Error != "":
		replacementsStatus = result.Replacements.Error
	case result.Replacements.Updated:
		replacementsStatus = "updated"
	}

	rows := [][]string{
		{"Scraper script", yesNo(result.Scraper.Downloaded), scraperStatus},
		{"Rename database", yesNo(result.Replacements.Downloaded), replacementsStatus},
	}
	return renderTable([]string{"Item", "Downloaded", "Result"}, rows, nil)
}
