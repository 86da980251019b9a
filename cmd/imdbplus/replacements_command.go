package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/replacements"
)

func newReplacementsCommand(configFlag *string) *cobra.Command {
	var custom bool

	cmd := &cobra.Command{
		Use:   "replacements",
		Short: "List the title replacements of a rename database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			log := commandLogger(cfg)
			defer log.Close()

			loader := replacements.NewLoader(cfg.Paths.ReplacementsFile(), cfg.Paths.CustomReplacementsFile(), &log.Logger)
			entries := loader.GetAll(custom)

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No replacements found.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, r := range entries {
				rows = append(rows, []string{r.ID, r.Title, r.SortBy})
			}
			fmt.Fprintln(out, renderTable([]string{"IMDb ID", "Title", "Sort By"}, rows, nil))
			if !custom {
				fmt.Fprintf(out, "Version %s, %d entries\n", loader.Version(), len(entries))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&custom, "custom", false, "Show the user's custom rename database")
	return cmd
}
