package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := client.Health()
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			out, err := json.MarshalIndent(health, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if err := session.Bootstrap(); err != nil {
				fmt.Printf("Session: %s (probe failed: %v)\n", session.State(), err)
				return nil
			}
			if session.IsAuthenticated() {
				fmt.Printf("Session: %s as %s\n", session.State(), session.User().Username)
			} else {
				fmt.Printf("Session: %s\n", session.State())
			}
			return nil
		},
	}
}
