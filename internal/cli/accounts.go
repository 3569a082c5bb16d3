package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/recipekeeper/internal/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/common"
)

func (st *cliState) newSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup USERNAME",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			password, err := st.readSecret("Password: ")
			if err != nil {
				return err
			}

			return st.withBackend(cmd.Context(), func(b *backend) error {
				err := b.accounts.CreateAccount(cmd.Context(), username, password)
				if errors.Is(err, common.ErrorUsernameTaken) {
					return fmt.Errorf("username %q is already taken", username)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(st.out, "Account %s created\n", username)
				return nil
			})
		},
	}
}

func (st *cliState) newLoginCmd() *cobra.Command {
	var printToken bool

	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Check a username and password",
		Long: `login verifies the credentials. With --token it also prints a session token
for the HTTP API, signed with the configured secret key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			password, err := st.readSecret("Password: ")
			if err != nil {
				return err
			}

			return st.withBackend(cmd.Context(), func(b *backend) error {
				acc, err := b.accounts.Authenticate(cmd.Context(), username, password)
				if err != nil {
					return err
				}

				fmt.Fprintf(st.out, "Logged in as %s\n", acc.Username)
				if !printToken {
					return nil
				}

				if b.cfg.SecretKey == "" {
					return errors.New("a session token needs a configured secret key")
				}
				token, err := auth.GenerateToken(acc.Username, []byte(b.cfg.SecretKey), b.cfg.SessionValidityDuration)
				if err != nil {
					return err
				}
				fmt.Fprintln(st.out, token)
				fmt.Fprintf(st.out, "Valid until %s\n", time.Now().Add(b.cfg.SessionValidityDuration).UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&printToken, "token", false, "print a session token")
	return cmd
}
