package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsGroups = []string{"app", "database", "api", "features"}

func validGroup(group string) bool {
	for _, g := range settingsGroups {
		if g == group {
			return true
		}
	}
	return false
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change server settings (admin only)",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <group>",
		Short: "Show a settings group (app, database, api, features)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := args[0]
			if !validGroup(group) {
				return fmt.Errorf("unknown settings group %q (expected app, database, api or features)", group)
			}
			if err := requireSession(); err != nil {
				return err
			}

			var settings map[string]any
			if err := client.GetSettings(group, &settings); err != nil {
				return err
			}
			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <group> <json>",
		Short: "Update fields of a settings group from a JSON object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := args[0]
			if !validGroup(group) {
				return fmt.Errorf("unknown settings group %q (expected app, database, api or features)", group)
			}

			var patch map[string]any
			if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
				return fmt.Errorf("invalid JSON patch: %w", err)
			}

			if err := requireSession(); err != nil {
				return err
			}

			var settings map[string]any
			if err := client.UpdateSettings(group, patch, &settings); err != nil {
				return err
			}
			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
