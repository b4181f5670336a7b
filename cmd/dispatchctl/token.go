package main

import (
	"fieldfuze-dispatch/middelware"
	"fieldfuze-dispatch/models"
	"fmt"

	"github.com/spf13/cobra"
)

// newTokenCmd signs a bearer token with the server's configured secret, for
// local development against a server sharing this config.
func newTokenCmd(a *app) *cobra.Command {
	var claims models.JWTClaims
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middelware.NewJWTManager(a.config, a.logger).GenerateToken(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&claims.UserID, "user-id", "", "user id (required)")
	cmd.Flags().StringVar(&claims.OrgID, "org-id", "", "organization id (required)")
	cmd.Flags().StringVar(&claims.Username, "username", "", "display name recorded as dispatcher")
	cmd.Flags().StringVar(&claims.Email, "email", "", "email")
	cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagRequired("org-id")
	return cmd
}
