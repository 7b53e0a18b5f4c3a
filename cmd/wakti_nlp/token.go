package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wakti/wakti-nlp/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the wizard session API",
	Long:  "Signs a JWT for --user-id with WAKTI_JWT_SECRET. A new user ID is generated when none is given.",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

var tokenUserID string

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User ID (UUID) the token is issued for")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	jwtConfig, err := cfg.JWTConfig()
	if err != nil {
		return fmt.Errorf("invalid JWT configuration: %w", err)
	}

	userID := uuid.New()
	if tokenUserID != "" {
		userID, err = uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id %q: %w", tokenUserID, err)
		}
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "user_id: %s\n", userID)
	_, _ = fmt.Fprintf(out, "expires_in_hours: %d\n", jwtConfig.ExpirationHours)
	_, _ = fmt.Fprintf(out, "token: %s\n", token)
	return nil
}
