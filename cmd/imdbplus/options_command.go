package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imdbplus/imdbplus/internal/config"
	"github.com/imdbplus/imdbplus/internal/preferences"
)

func newOptionsCommand(configFlag *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show the scraper options",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			log := commandLogger(cfg)
			defer log.Close()

			prefs := preferences.NewService(cfg.Paths.OptionsFile(), &log.Logger).Load()

			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(output)) {
			case "", "table":
				fmt.Fprintln(out, renderOptions(prefs))
			case "yaml":
				data, err := yaml.Marshal(prefs)
				if err != nil {
					return fmt.Errorf("encode options: %w", err)
				}
				fmt.Fprint(out, string(data))
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")
	return cmd
}

func renderOptions(p preferences.Preferences) string {
	entries := p.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value})
	}
	return renderTable([]string{"Option", "Value"}, rows, nil)
}
