package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"codearena/config"
	"codearena/db"
	"codearena/models"
	"codearena/services"
	"codearena/utils"
)

type options struct {
	email      string
	password   string
	username   string
	role       models.Role
	configPath string
}

// addadmin grants a role (admin by default, or judge for the judging
// service account) to an existing account, or creates the account first
// when the email is not registered yet.
func main() {
	email := flag.String("email", "", "Account email (required)")
	password := flag.String("password", "", "Password, required when the account does not exist")
	username := flag.String("username", "", "Username for a new account (defaults to the email's local part)")
	role := flag.String("role", string(models.RoleAdmin), "Role to grant: admin or judge")
	configPath := flag.String("config", "config/config.prod.yml", "Path to config file")
	flag.Parse()

	if *email == "" {
		fmt.Println("Error: email is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	opts := options{
		email:      *email,
		password:   *password,
		username:   *username,
		role:       models.Role(*role),
		configPath: *configPath,
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so the Mongo connection is always closed.
func run(opts options) error {
	if err := grantable(opts.role); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := db.ConnectMongoDB(cfg.Database.URI); err != nil {
		return err
	}
	defer func() {
		if err := db.DisconnectMongoDB(context.Background()); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := db.NewMongoUserStore(db.MongoDatabase)
	if err := store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	normalized := utils.NormalizeEmail(opts.email)
	user, err := store.FindByEmail(ctx, normalized)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		if opts.password == "" {
			return fmt.Errorf("no account for %s; -password is required to create one", normalized)
		}
		name := opts.username
		if name == "" {
			name = utils.ExtractNameFromEmail(normalized)
		}
		user, err = register(ctx, cfg, store, name, normalized, opts.password)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
	case err != nil:
		return fmt.Errorf("database error: %w", err)
	}

	if user.Role == opts.role {
		fmt.Printf("%s already has role %s\n", user.Email, opts.role)
		return nil
	}

	// Only the role fields are written so a concurrent login or activity
	// update is not overwritten.
	user, err = store.SetFields(ctx, user.ID.Hex(), map[string]interface{}{
		models.FieldRole:      opts.role,
		models.FieldUpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to grant role: %w", err)
	}

	fmt.Printf("Account ready\n")
	fmt.Printf("   ID: %s\n", user.ID.Hex())
	fmt.Printf("   Email: %s\n", user.Email)
	fmt.Printf("   Username: %s\n", user.Username)
	fmt.Printf("   Role: %s\n", user.Role)
	return nil
}

// grantable accepts the elevated roles this tool hands out.
func grantable(role models.Role) error {
	if !role.Valid() || role == models.RoleUser {
		return fmt.Errorf("unsupported role %q", role)
	}
	return nil
}

func register(ctx context.Context, cfg *config.Config, store *db.MongoUserStore, username, email, password string) (*models.User, error) {
	tokens, err := utils.NewJWTManager(cfg.JWT.Secret, utils.SessionTTL)
	if err != nil {
		return nil, err
	}
	progress := services.NewProgressionService(store, store, nil)
	credentials := services.NewCredentialService(store, progress, tokens, utils.LogMailer{})

	if _, err := credentials.Register(ctx, username, email, password); err != nil {
		var ie *services.InternalError
		if errors.As(err, &ie) {
			return nil, errors.New(ie.Cause())
		}
		return nil, err
	}
	return store.FindByEmail(ctx, email)
}
