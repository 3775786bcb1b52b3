package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagServer string

	client  *Client
	session *Session
)

// defaultServer returns the default server URL, checking SOLCONF_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("SOLCONF_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the solconf CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "solconf",
		Short: "solconf — solution configuration manager",
		Long:  "solconf manages configuration solutions, parameters, tags, container services and compute pools.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(flagServer)
			store, err := NewStore(os.Getenv("SOLCONF_HOME"))
			if err != nil {
				return err
			}
			session = NewSession(store, client)
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "solconf server URL (or SOLCONF_SERVER env)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newTagsCmd(),
		newSolutionsCmd(),
		newParamsCmd(),
		newServicesCmd(),
		newPoolsCmd(),
		newSettingsCmd(),
		newStatusCmd(),
	)

	return root
}

// requireSession verifies the stored token against the server before a
// command that needs an identity runs.
func requireSession() error {
	if err := session.Bootstrap(); err != nil {
		return err
	}
	if !session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
