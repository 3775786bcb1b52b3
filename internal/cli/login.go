package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in; run 'solconf login' first")

func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
		authType string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the solconf server",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if username == "" {
				// A remembered username from the last session becomes
				// the prompt default; enter accepts it.
				if def := rememberedUsername(); def != "" {
					fmt.Printf("Username [%s]: ", def)
					line, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("read username: %w", err)
					}
					username = strings.TrimSpace(line)
					if username == "" {
						username = def
					}
				} else {
					fmt.Print("Username: ")
					line, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("read username: %w", err)
					}
					username = strings.TrimSpace(line)
				}
			}
			if username == "" {
				return fmt.Errorf("username cannot be empty")
			}

			if password == "" {
				fmt.Print("Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Println()
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = string(raw)
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			result, err := client.Login(username, password, authType)
			if err != nil {
				return err
			}

			if err := session.Establish(result.Token, result.User, remember); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Printf("Logged in as %s (%s)\n", result.User.Username, result.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&authType, "auth-type", "", "Authentication backend (local or ldap)")
	cmd.Flags().BoolVar(&remember, "remember", true, "Persist the session to disk")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds := sessionCreds(); creds != nil {
				client.SetToken(creds.Token)
				// Best effort; the server holds no session state
				client.Logout()
			}
			if err := session.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func sessionCreds() *Credentials {
	store, err := NewStore(os.Getenv("SOLCONF_HOME"))
	if err != nil {
		return nil
	}
	return store.Load()
}

func rememberedUsername() string {
	store, err := NewStore(os.Getenv("SOLCONF_HOME"))
	if err != nil {
		return ""
	}
	return store.RememberedUsername()
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			user := session.User()
			fmt.Printf("%s\trole=%s\tauth=%s\n", user.Username, user.Role, user.AuthType)
			return nil
		},
	}
}
