package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newSettingsCmd creates the 'settings' command group.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write app settings",
		Long: `Key/value settings stored in the local database. The engine does not
interpret them; they belong to the front-end (theme, notification
preferences and the like) and ride along in backups.`,
	}

	settingsCmd.AddCommand(newSettingsGetCmd())
	settingsCmd.AddCommand(newSettingsSetCmd())
	settingsCmd.AddCommand(newSettingsListCmd())

	return settingsCmd
}

// newSettingsGetCmd creates the 'settings get' command.
func newSettingsGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting's value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			value, ok, err := eng.App.GetSetting(GetContext(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("setting %q is not set", args[0])
			}
			fmt.Println(value)
			return nil
		},
	}

	return cmd
}

// newSettingsSetCmd creates the 'settings set' command.
func newSettingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.App.SetSetting(GetContext(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("✓ %s = %s\n", args[0], args[1])
			return nil
		},
	}

	return cmd
}

// newSettingsListCmd creates the 'settings list' command.
func newSettingsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			settings, err := eng.App.Settings(GetContext())
			if err != nil {
				return err
			}

			if len(settings) == 0 {
				fmt.Println("No settings stored")
				return nil
			}

			fmt.Printf("%-30s %s\n", "KEY", "VALUE")
			fmt.Println(strings.Repeat("-", 60))
			for _, s := range settings {
				fmt.Printf("%-30s %s\n", s.Key, s.Value)
			}
			return nil
		},
	}

	return cmd
}
