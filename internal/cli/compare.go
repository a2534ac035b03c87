package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cratepanel/internal/engine"
	"github.com/piwi3910/cratepanel/internal/model"
)

// compareCommand lays one panel out under every conflict strategy.
func (c *CLI) compareCommand() *cobra.Command {
	var (
		settings settingsFlags
		jsonOut  string
	)

	cmd := &cobra.Command{
		Use:   "compare WIDTH HEIGHT",
		Short: "Compare the splice conflict strategies on one panel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseDimension(args[0])
			if err != nil {
				return err
			}
			h, err := parseDimension(args[1])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			s := model.DefaultSettings()
			cfg.ApplyToSettings(&s)
			if err := settings.apply(cmd, &s, c.Logger); err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			comparisons, err := engine.CompareStrategies(s, model.NewPanel("Panel", w, h), engine.WithLogger(logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut != "" {
				return writeJSON(out, jsonOut, comparisons)
			}

			rows := make([][]string, 0, len(comparisons))
			for _, cmp := range comparisons {
				rows = append(rows, []string{
					cmp.Strategy.String(),
					fmt.Sprintf("%.3f x %.3f", cmp.Width, cmp.Height),
					fmt.Sprintf("%.3f", cmp.Adjustment),
					fmt.Sprintf("%d", cmp.Conflicts),
					fmt.Sprintf("%d", cmp.Accepted),
					fmt.Sprintf("%d", cmp.Cleats),
					fmt.Sprintf("%.1f", cmp.Estimate.CleatLength),
					fmt.Sprintf("%d", cmp.Klimps),
					cmp.Quality.String(),
				})
			}
			printTable(out, []string{"Strategy", "Panel", "Growth", "Conflicts", "Accepted", "Cleats", "Cleat len", "Klimps", "Spacing"}, rows)
			return nil
		},
	}

	settings.register(cmd)
	cmd.Flags().StringVar(&jsonOut, "json", "", "write the comparison as JSON (- for stdout)")

	return cmd
}
