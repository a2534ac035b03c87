package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/cratepanel/internal/gcode"
	"github.com/piwi3910/cratepanel/internal/model"
	"github.com/piwi3910/cratepanel/internal/project"
)

func (c *CLI) profilesPath() string {
	return filepath.Join(filepath.Dir(c.configPath), "profiles.json")
}

// configCommand groups the config file subcommands.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the cratepanel configuration",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configExportCommand())
	cmd.AddCommand(c.configImportCommand())
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", c.configPath)
			}
			if err := project.SaveAppConfig(c.configPath, model.DefaultAppConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Config written")
			printFile(cmd.OutOrStdout(), c.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			custom, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return fmt.Errorf("load profiles: %w", err)
			}

			w := cmd.OutOrStdout()
			printTitle(w, "%s", c.configPath)
			printKeyValue(w, "Stock", fmt.Sprintf("%.3f x %.3f", cfg.DefaultStock.Width, cfg.DefaultStock.Height))
			printKeyValue(w, "Cleat", fmt.Sprintf("%.3f x %.3f", cfg.DefaultCleatWidth, cfg.DefaultCleatThickness))
			printKeyValue(w, "Sheathing", fmt.Sprintf("%.3f", cfg.DefaultSheathing))
			printKeyValue(w, "Strategy", fmt.Sprintf("%s (hybrid threshold %.3f)", cfg.DefaultStrategy, cfg.DefaultHybridThreshold))
			printKeyValue(w, "Klimp", fmt.Sprintf("%.3f", cfg.DefaultKlimpDiameter))
			printKeyValue(w, "G-code", cfg.DefaultGCodeProfile)
			printKeyValue(w, "Profiles", strings.Join(gcode.ProfileNames(custom...), ", "))
			for _, job := range cfg.RecentJobs {
				printFile(w, job)
			}
			return nil
		},
	}
}

func (c *CLI) configExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Back up the config and custom G-code profiles to one JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			custom, err := project.LoadCustomProfiles(c.profilesPath())
			if err != nil {
				return fmt.Errorf("load profiles: %w", err)
			}
			if err := project.ExportAllData(args[0], cfg, custom); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Backup written")
			printFile(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func (c *CLI) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore the config and custom G-code profiles from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(c.configPath, backup.Config); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if err := project.SaveCustomProfiles(c.profilesPath(), backup.Profiles); err != nil {
				return fmt.Errorf("write profiles: %w", err)
			}
			loggerFromContext(cmd.Context()).Info("restored backup", "created", backup.CreatedAt, "profiles", len(backup.Profiles))
			printSuccess(cmd.OutOrStdout(), "Config restored")
			printFile(cmd.OutOrStdout(), c.configPath)
			return nil
		},
	}
}
