package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/properties"
	"github.com/imdbplus/imdbplus/internal/scraper"
)

func newSourcesCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the installed scraper sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			log := commandLogger(cfg)
			defer log.Close()

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			sources, err := scraper.NewRegistry(db.Conn(), &log.Logger).List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sources) == 0 {
				fmt.Fprintln(out, "No scraper sources installed.")
				return nil
			}
			fmt.Fprintln(out, renderSources(sources))
			return nil
		},
	}
}

func renderSources(sources []*scraper.Source) string {
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		version, published := "", ""
		if s.SelectedScript != nil {
			version = s.SelectedScript.Version
			published = s.SelectedScript.Published.Format(properties.DateLayout)
		}
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.ScriptID),
			version,
			published,
			strconv.Itoa(s.DetailsPriority),
			strconv.Itoa(s.CoverPriority),
		})
	}
	return renderTable(
		[]string{"Name", "Script ID", "Version", "Published", "Details", "Cover"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight},
	)
}
