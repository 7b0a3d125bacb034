package cli

import (
	"fmt"

	"github.com/cathoderay/accountsvc/internal/token"
	"github.com/spf13/cobra"
)

func newTokenCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Issue a session token for an email using the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			tokens, err := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration, cfg.Auth.Issuer)
			if err != nil {
				return err
			}
			signed, err := tokens.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
}
