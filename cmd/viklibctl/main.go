// viklibctl is an operator tool for managing VIKLIB accounts directly
// against the database. It covers the bootstrap cases the HTTP API cannot:
// creating the first admin account and promoting an existing user.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"github.com/viklib/backend/internal/config"
	"github.com/viklib/backend/internal/logger"
	"github.com/viklib/backend/internal/models"
	"github.com/viklib/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "viklibctl",
		Short: "VIKLIB account administration tool",
	}

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(promoteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func createAdminCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init("warn"); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			db, err := sql.Open("mysql", cfg.DSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			if err := db.Ping(); err != nil {
				return fmt.Errorf("failed to ping database: %w", err)
			}

			password, err := readPassword("Enter password for new admin: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			users := repositories.NewUsersRepository(db, logger.Logger)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			user := &models.User{
				Username:     username,
				Email:        strings.ToLower(email),
				PasswordHash: string(passwordHash),
				Role:         models.RoleAdmin,
				Status:       models.StatusActive,
			}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Admin account %q created (id %s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "admin email address")
	if err := cmd.MarkFlagRequired("email"); err != nil {
		log.Fatal(err)
	}

	return cmd
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "Promote an existing user to admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init("warn"); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			db, err := sql.Open("mysql", cfg.DSN())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			if err := db.Ping(); err != nil {
				return fmt.Errorf("failed to ping database: %w", err)
			}

			users := repositories.NewUsersRepository(db, logger.Logger)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			user, err := users.GetByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to look up user: %w", err)
			}
			if user.Role == models.RoleAdmin {
				fmt.Printf("User %q is already an admin\n", user.Username)
				return nil
			}

			user.Role = models.RoleAdmin
			if err := users.Update(ctx, user); err != nil {
				return fmt.Errorf("failed to promote user: %w", err)
			}

			fmt.Printf("User %q promoted to admin\n", user.Username)
			return nil
		},
	}
}
