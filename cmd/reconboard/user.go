package main

import (
	"fmt"
	"os"

	"github.com/lotworks/reconboard/internal/auth"
	"github.com/lotworks/reconboard/internal/config"
	"github.com/lotworks/reconboard/internal/db"
	"github.com/lotworks/reconboard/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		email      string
		name       string
		role       string
		department string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (used to bootstrap the first admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("user: --email is required")
			}
			switch role {
			case models.RoleAdmin, models.RoleManager, models.RoleUser:
			default:
				return fmt.Errorf("user: role must be one of ADMIN, MANAGER, USER")
			}

			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			conn, err := db.Connect(cfg.DatabaseDSN)
			if err != nil {
				return err
			}

			user := models.User{
				Email:        email,
				Name:         name,
				PasswordHash: hash,
				Role:         role,
				Department:   department,
			}
			if err := conn.Create(&user).Error; err != nil {
				return fmt.Errorf("user: create %s: %w", email, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s (id %d)\n", role, email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", models.RoleUser, "ADMIN, MANAGER, or USER")
	cmd.Flags().StringVar(&department, "department", "", "department")
	return cmd
}

// promptPassword reads the password twice from the terminal without echo.
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("user: stdin is not a terminal; cannot prompt for a password")
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("user: read password: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), "Confirm: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("user: read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("user: passwords do not match")
	}
	if len(first) < 8 {
		return "", fmt.Errorf("user: password must be at least 8 characters")
	}
	return string(first), nil
}
