package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/devilmonastery/curator/internal/config"
	"github.com/devilmonastery/curator/internal/domain/entities"
	"github.com/devilmonastery/curator/internal/infrastructure/database/postgres"
	"github.com/devilmonastery/curator/internal/pkg/idgen"
	"github.com/devilmonastery/curator/migrations"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Commands for managing users in the Curator database",
	}

	cmd.AddCommand(newUserCreateCommand())

	return cmd
}

func newUserCreateCommand() *cobra.Command {
	var (
		email      string
		password   string
		name       string
		role       string
		isActive   bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Long:  "Create a new user with the specified email, password, and role",
		Example: `  # Create an admin user
  server user create --email admin@example.com --password secret123 --role admin --name "Admin User"

  # Create a regular user
  server user create --email user@example.com --password pass123 --role user --name "Regular User"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createUser(configPath, email, password, name, role, isActive)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&password, "password", "", "User password (required)")
	cmd.Flags().StringVar(&name, "name", "", "User display name (optional)")
	cmd.Flags().StringVar(&role, "role", "user", "User role (user, admin)")
	cmd.Flags().BoolVar(&isActive, "active", true, "Whether user is active")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func createUser(configPath, email, password, name, role string, isActive bool) error {
	// Initialize ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database
	pgConn, err := postgres.NewConnection(cfg.Database.Postgres.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}
	defer pgConn.Close()

	// Run migrations to ensure database is up to date
	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(pgConn.DB)

	// Check if user already exists
	ctx := context.Background()
	existingUser, err := userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return fmt.Errorf("user with email %s already exists", email)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hashedPasswordStr := string(hashedPassword)
	user := &entities.User{
		ID:           idgen.GenerateID(),
		Email:        email,
		PasswordHash: &hashedPasswordStr,
		DisplayName:  name,
		Role:         entities.Role(role),
		IsActive:     isActive,
	}

	// If no name provided, use email
	if user.DisplayName == "" {
		user.DisplayName = email
	}

	// Validate role
	if user.Role != entities.RoleUser && user.Role != entities.RoleAdmin {
		return fmt.Errorf("invalid role: %s (must be 'user' or 'admin')", role)
	}

	// Save user to database
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID:     %s\n", user.ID)
	fmt.Printf("  Email:  %s\n", user.Email)
	fmt.Printf("  Name:   %s\n", user.DisplayName)
	fmt.Printf("  Role:   %s\n", user.Role)
	fmt.Printf("  Active: %t\n", user.IsActive)

	return nil
}
